package script

import "strings"

// stripBlockComments removes /* ... */ comments from script text so plain
// JSON parsers downstream accept the commented superset. Comment markers
// inside double-quoted strings are left alone; an unterminated comment is
// dropped to end of input, which the structural parse then reports.
func stripBlockComments(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	inString := false
	inComment := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				inComment = false
				i++
			}
		case inString:
			out.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				out.WriteByte(text[i+1])
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
			out.WriteByte(c)
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			inComment = true
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
