package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/telemetry"
)

var (
	// Global flags
	logLevel  string
	logFormat string
	debug     bool
	color     bool
)

// telemetryConfig assembles the run's telemetry configuration from the
// global flags. Callers layer their own tracing settings on top and
// validate the result.
func telemetryConfig(version string) *telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = version
	if debug {
		logLevel = "debug"
	}
	cfg.Logging.Level = logLevel
	cfg.Logging.Format = logFormat
	cfg.Logging.Color = color
	return cfg
}

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "overture",
		Short: "Overture - declarative deployment orchestrator",
		Long: `Overture executes declarative deployment scripts: a tree of actors
(sequential and parallel groups, sleeps, nested scripts, resource
convergers) described in JSON or YAML.

Every run rehearses the script in dry mode first; a rehearsal failure
aborts before any mutation is attempted.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "shorthand for --level debug")
	rootCmd.PersistentFlags().BoolVar(&color, "color", true, "colorize console output")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newActorsCommand())

	return rootCmd
}

// usageError marks a bad invocation so main exits with the build error code.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// ExitCode maps an error surfaced by Execute to the process exit code:
// 1 for usage and build problems, 2 for actor execution failures, 3 for
// anything unexpected.
func ExitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return 1
	}
	switch actor.Classify(err) {
	case actor.FailureKindOptions, actor.FailureKindScript, actor.FailureKindActor:
		return 1
	case actor.FailureKindRecoverable, actor.FailureKindUnrecoverable, actor.FailureKindTimeout:
		if recognizedFailure(err) {
			return 2
		}
		return 3
	default:
		return 3
	}
}

// recognizedFailure distinguishes real actor failures from internal errors,
// which Classify lumps into the recoverable default.
func recognizedFailure(err error) bool {
	var (
		rec     *actor.RecoverableActorFailure
		unrec   *actor.UnrecoverableActorFailure
		timeout *actor.ActorTimedOut
	)
	return errors.As(err, &rec) || errors.As(err, &unrec) || errors.As(err, &timeout)
}
