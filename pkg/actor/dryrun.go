package actor

import (
	"context"
	"fmt"
	"strings"
)

// Mutate is the only sanctioned dry-run mechanism for state-changing
// operations. The message is always rendered from format and args, in dry
// and wet mode alike, so a template/argument mismatch is caught regardless of
// mode. In dry mode the rendered message is logged at warning level and fn is
// never called; otherwise fn runs normally and its result propagates.
//
// Non-mutating reads must not go through Mutate: they execute normally even
// in dry mode.
func (b *Base) Mutate(ctx context.Context, format string, args []any, fn func(context.Context) error) error {
	msg := fmt.Sprintf(format, args...)
	if strings.Contains(msg, "%!") {
		return NewUnrecoverable("dry-run message template %q does not match its arguments: %s", format, msg)
	}
	if b.Dry {
		b.Log.Warn().Msg(msg)
		return nil
	}
	return fn(ctx)
}
