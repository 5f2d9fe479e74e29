// Package actor defines the execution contract every orchestration unit
// implements: construction-time option validation and token substitution,
// conditional skipping, timing, per-actor timeouts, warn-vs-fail translation
// and the dry-run guard. It also hosts the registry that resolves actor name
// strings from scripts into registered factories.
package actor
