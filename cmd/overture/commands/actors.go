package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/overture-run/overture/pkg/actor"
	_ "github.com/overture-run/overture/pkg/actor/group"
	_ "github.com/overture-run/overture/pkg/actors/misc"
)

func newActorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actors",
		Short: "List registered actors",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range actor.Registered() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
