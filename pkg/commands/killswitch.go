package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/runner/killswitch"
	"tableflip.dev/nodewatch/pkg/snake"
)

func addKillSwitch(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:       "killswitch on|off",
		Short:     "cut every device off, or let them back on",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"on", "off"},
		Example: `
nodewatch killswitch on
nodewatch killswitch off
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			enabled, err := parseOnOff(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			env, err := loadEnvironment(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer env.Close()

			k := killswitch.KillSwitch{
				Enabled: enabled,
				Client:  env.Client,
				JSON:    oo.JSON,
			}
			return oo.HandleError(k.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func parseOnOff(s string) (bool, error) {
	if b, err := snake.ParseBool(s); err == nil {
		return b, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
