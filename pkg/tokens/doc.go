// Package tokens implements the two textual substitution conventions used by
// scripts and actors.
//
// The percent convention (%VAR%) is applied to raw script text and string
// option values, resolved against the process environment merged with any
// explicitly supplied tokens. The brace convention ({VAR}) is applied to
// description and condition templates, resolved against an actor's init
// context only, with \{...\} as the escape form. The two conventions are
// deliberately independent and are never unified.
package tokens
