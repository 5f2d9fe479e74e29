// Package options implements the declarative option schema shared by all
// actors. An actor declares a Spec mapping option names to their accepted
// kinds, default values and help text; Validate resolves a supplied options
// mapping against the Spec, filling defaults and accumulating every violation
// before failing.
package options
