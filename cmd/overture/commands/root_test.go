package commands

import (
	"errors"
	"fmt"
	"testing"

	"github.com/overture-run/overture/pkg/actor"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage error", &usageError{err: errors.New("missing --script")}, 1},
		{"invalid options", actor.NewInvalidOptionsError("misc.Sleep", errors.New("bad")), 1},
		{"invalid script", &actor.InvalidScriptError{Diag: errors.New("bad")}, 1},
		{"unknown actor", &actor.InvalidActorError{Name: "misc.Nope"}, 1},
		{"recoverable failure", actor.NewRecoverable("retry later"), 2},
		{"unrecoverable failure", actor.NewUnrecoverable("broken"), 2},
		{"timeout", &actor.ActorTimedOut{Actor: "slow"}, 2},
		{"wrapped actor failure", fmt.Errorf("run: %w", actor.NewRecoverable("retry")), 2},
		{"internal error", errors.New("nil pointer somewhere"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTelemetryConfig_FlagsFlowThrough(t *testing.T) {
	origLevel, origFormat, origDebug, origColor := logLevel, logFormat, debug, color
	defer func() { logLevel, logFormat, debug, color = origLevel, origFormat, origDebug, origColor }()

	logLevel, logFormat, debug, color = "warn", "json", false, false
	cfg := telemetryConfig("1.2.3")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected flag-derived config to validate, got: %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" || cfg.Logging.Color {
		t.Errorf("Expected flags to flow into the logging config, got %+v", cfg.Logging)
	}
	if cfg.ServiceVersion != "1.2.3" {
		t.Errorf("Expected version to flow through, got %q", cfg.ServiceVersion)
	}
}

func TestTelemetryConfig_DebugShorthand(t *testing.T) {
	origLevel, origDebug := logLevel, debug
	defer func() { logLevel, debug = origLevel, origDebug }()

	logLevel, debug = "info", true
	if cfg := telemetryConfig("dev"); cfg.Logging.Level != "debug" {
		t.Errorf("Expected --debug to force debug level, got %q", cfg.Logging.Level)
	}
}

func TestTelemetryConfig_BadFormatFailsValidation(t *testing.T) {
	origFormat := logFormat
	defer func() { logFormat = origFormat }()

	logFormat = "xml"
	if err := telemetryConfig("dev").Validate(); err == nil {
		t.Error("Expected unsupported log format to be rejected")
	}
}
