package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/overture-run/overture/pkg/actor"
	_ "github.com/overture-run/overture/pkg/actor/group"
	_ "github.com/overture-run/overture/pkg/actors/misc"

	"github.com/overture-run/overture/pkg/policy"
	"github.com/overture-run/overture/pkg/script"
	"github.com/overture-run/overture/pkg/telemetry"
)

func newValidateCommand() *cobra.Command {
	var (
		paramKVs []string
		noPolicy bool
	)

	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Compile and policy-check a script without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := telemetryConfig(cmd.Root().Version)
			if err := cfg.Validate(); err != nil {
				return &usageError{err: err}
			}
			log := telemetry.NewLogger(cfg.Logging)

			tokens, err := parseKVs(paramKVs)
			if err != nil {
				return &usageError{err: err}
			}

			compiler := script.NewCompiler(log)
			cfgs, err := compiler.Compile(cmd.Context(), args[0], tokens)
			if err != nil {
				return err
			}

			if !noPolicy {
				engine, err := policy.NewEngine(log)
				if err != nil {
					return err
				}
				result, err := engine.Evaluate(cmd.Context(), cfgs)
				if err != nil {
					return err
				}
				for _, v := range result.Violations {
					log.Warn().Str("policy", v.Policy).Str("actor", v.Actor).Msg(v.Message)
				}
				if !result.Allowed {
					return &actor.InvalidScriptError{
						Source: args[0],
						Diag:   fmt.Errorf("script failed the policy gate"),
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Script is valid: %d root node(s)\n", len(cfgs))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paramKVs, "param", "p", nil, "substitution token as k=v, repeatable")
	cmd.Flags().BoolVar(&noPolicy, "no-policy", false, "skip the policy gate")

	return cmd
}
