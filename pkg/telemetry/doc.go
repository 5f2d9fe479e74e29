// Package telemetry provides structured logging, Prometheus metrics, OTel
// tracing and in-process run events for the orchestrator. Logging wraps
// zerolog; metrics cover actor executions and failure kinds; the tracer
// installs a stdout-exporting provider suitable for a single-process run.
package telemetry
