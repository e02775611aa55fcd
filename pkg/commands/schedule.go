package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/runner/schedule"
)

func addSchedule(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var start, end string
	var clearWindow bool

	cmd := &cobra.Command{
		Use:   "schedule <mac>",
		Short: "block a device every day between two times",
		Long: `Store a daily window during which the backend blocks the device.

Times are HH:MM in the backend's local time. A start later than the end wraps
past midnight, so --start 22:00 --end 06:00 blocks overnight. --clear removes
the window.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: macCompletions,
		Example: `
nodewatch schedule aa:bb:cc:dd:ee:ff --start 22:00 --end 06:00
nodewatch schedule aa:bb:cc:dd:ee:ff --clear
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearWindow && !cmd.Flags().Changed("start") {
				return errors.New("--start and --end are required unless --clear is set")
			}
			cmd.SilenceUsage = true
			env, err := loadEnvironment(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer env.Close()

			s := schedule.Schedule{
				MAC:    args[0],
				Start:  start,
				End:    end,
				Client: env.Client,
				JSON:   oo.JSON,
			}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().StringVar(&start, "start", "", "Start of the block window, HH:MM.")
	cmd.Flags().StringVar(&end, "end", "", "End of the block window, HH:MM.")
	cmd.Flags().BoolVar(&clearWindow, "clear", false, "Remove the block window.")
	cmd.MarkFlagsRequiredTogether("start", "end")
	cmd.MarkFlagsMutuallyExclusive("clear", "start")
	cmd.MarkFlagsMutuallyExclusive("clear", "end")

	topLevel.AddCommand(cmd)
}
