// Package script turns a script document into runnable actor configs. A
// source is read from a local path or an http(s) URL, stripped of block
// comments, token-substituted, parsed as YAML (a JSON superset, so plain
// JSON scripts parse too), validated against the orchestration node schema,
// and resolved into actor.Config nodes. Sources ending in .star are evaluated
// as Starlark programs whose main function returns the document.
package script
