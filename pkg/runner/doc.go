// Package runner drives a complete orchestration run: compile the script,
// gate it with policies, rehearse it in dry mode, then execute it for real.
// A rehearsal failure aborts before any mutation is attempted; setting
// SKIP_DRY in the environment bypasses the rehearsal entirely.
package runner
