package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	// Register the built-in actors.
	_ "github.com/overture-run/overture/pkg/actor/group"
	_ "github.com/overture-run/overture/pkg/actors/misc"

	"github.com/overture-run/overture/pkg/runner"
	"github.com/overture-run/overture/pkg/telemetry"
)

func newRunCommand() *cobra.Command {
	var (
		scriptPath  string
		actorName   string
		optionKVs   []string
		paramKVs    []string
		dry         bool
		buildOnly   bool
		explain     bool
		noPolicy    bool
		policyDir   string
		traces      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a script or a single actor",
		Long: `Execute a deployment script, or a single actor given by name.

The run rehearses everything in dry mode first and aborts on any
rehearsal failure, so mutations only start once the whole tree has
validated and simulated cleanly. Set SKIP_DRY in the environment (to
any value) to bypass the rehearsal.`,
		Example: `  # Run a script
  overture run --script deploy.json

  # Rehearse only
  overture run --script deploy.json --dry

  # Run a single actor
  overture run --actor misc.Sleep --option sleep=2

  # Show the compiled actor tree without executing
  overture run --script deploy.json --explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (scriptPath == "") == (actorName == "") {
				return &usageError{err: fmt.Errorf("exactly one of --script and --actor is required")}
			}

			cfg := telemetryConfig(cmd.Root().Version)
			if traces {
				cfg.Tracing = telemetry.TracingConfig{
					Enabled:      true,
					Exporter:     "stdout",
					SamplingRate: 1.0,
				}
			}
			if err := cfg.Validate(); err != nil {
				return &usageError{err: err}
			}
			log := telemetry.NewLogger(cfg.Logging)

			tracer, err := telemetry.NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(cmd.Context()) //nolint:errcheck

			if metricsAddr != "" {
				if reg := telemetry.Default().Registry(); reg != nil {
					srv := &http.Server{
						Addr:    metricsAddr,
						Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					}
					go srv.ListenAndServe()                  //nolint:errcheck
					defer srv.Shutdown(context.Background()) //nolint:errcheck
				}
			}

			tokens, err := parseKVs(paramKVs)
			if err != nil {
				return &usageError{err: err}
			}
			actorOpts, err := parseOptionKVs(optionKVs)
			if err != nil {
				return &usageError{err: err}
			}

			r, err := runner.New(runner.Options{
				Script:       scriptPath,
				Actor:        actorName,
				ActorOptions: actorOpts,
				Tokens:       tokens,
				DryOnly:      dry || buildOnly,
				Explain:      explain || buildOnly,
				SkipPolicy:   noPolicy,
				PolicyDir:    policyDir,
				Out:          cmd.OutOrStdout(),
				Log:          log,
			})
			if err != nil {
				return err
			}

			ctx, span := tracer.Start(cmd.Context(), "run")
			defer span.End()
			return r.Execute(ctx)
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "script path or http(s) URL")
	cmd.Flags().StringVarP(&actorName, "actor", "a", "", "single actor name to run")
	cmd.Flags().StringArrayVarP(&optionKVs, "option", "o", nil, "actor option as k=v, repeatable")
	cmd.Flags().StringArrayVarP(&paramKVs, "param", "p", nil, "substitution token as k=v, repeatable")
	cmd.Flags().BoolVar(&dry, "dry", false, "stop after the rehearsal pass")
	cmd.Flags().BoolVar(&buildOnly, "build-only", false, "compile and print the tree, execute nothing")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the compiled actor tree instead of executing")
	cmd.Flags().BoolVar(&noPolicy, "no-policy", false, "skip the policy gate")
	cmd.Flags().StringVar(&policyDir, "policy-dir", "", "directory of additional .rego policies")
	cmd.Flags().BoolVar(&traces, "traces", false, "export execution spans to stdout")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address for the run")

	return cmd
}

// parseKVs splits repeated k=v flags into a string map.
func parseKVs(kvs []string) (map[string]string, error) {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected k=v, got %q", kv)
		}
		out[key] = value
	}
	return out, nil
}

// parseOptionKVs is parseKVs with values kept as strings; actors coerce
// numeric options themselves.
func parseOptionKVs(kvs []string) (map[string]any, error) {
	parsed, err := parseKVs(kvs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(parsed))
	for k, v := range parsed {
		out[k] = v
	}
	return out, nil
}
