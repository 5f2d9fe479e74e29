// Package group implements the composite actors: Sync runs its children
// strictly in declaration order and stops at the first unsuppressed failure;
// Async runs them concurrently, lets every child reach a terminal state, and
// raises one aggregated failure afterwards. Both are registered under the
// "group." namespace.
package group
