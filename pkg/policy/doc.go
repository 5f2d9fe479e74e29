// Package policy gates compiled scripts with Rego policies before anything
// executes. Built-in policies enforce actor naming hygiene and cap per-actor
// timeouts; operators can load additional .rego policies from a directory.
// A policy denial aborts the run before the rehearsal pass starts.
package policy
