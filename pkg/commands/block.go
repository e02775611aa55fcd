package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/runner/block"
)

func addBlock(topLevel *cobra.Command) {
	topLevel.AddCommand(blockCommand(true), blockCommand(false))
}

func blockCommand(blocked bool) *cobra.Command {
	oo := &options.OutputOptions{}

	use, short := "block <mac>", "cut a device off the network"
	if !blocked {
		use, short = "unblock <mac>", "restore a device's network access"
	}

	cmd := &cobra.Command{
		Use:               use,
		Short:             short,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: macCompletions,
		Example: `
nodewatch block aa:bb:cc:dd:ee:ff
nodewatch unblock aa:bb:cc:dd:ee:ff --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			env, err := loadEnvironment(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer env.Close()

			b := block.Block{
				MAC:     args[0],
				Blocked: blocked,
				Client:  env.Client,
				JSON:    oo.JSON,
			}
			return oo.HandleError(b.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	return cmd
}
