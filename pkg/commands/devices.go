package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/runner/devices"
)

func addDevices(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	ao := &options.ActiveOnlyOptions{}
	poll := false

	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"ls"},
		Short:   "print the current device list",
		Long: `Print the device list once and exit.

By default this waits for the first update on the push channel, which carries
live rates. With --poll the stored list is read over HTTP instead; it has no
rates but works while no scan is running.`,
		Example: `
nodewatch devices
nodewatch devices --active-only --json
nodewatch devices --poll
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			env, err := loadEnvironment(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer env.Close()

			feedURL, err := feed.URLFromServer(env.Config.Server())
			if err != nil {
				return oo.HandleError(err)
			}
			d := devices.Devices{
				Poll:       poll,
				Lister:     env.Client,
				FeedURL:    feedURL,
				Wait:       env.Config.RequestTimeout(),
				Logger:     env.Log,
				ActiveOnly: ao.ActiveOnly,
				JSON:       oo.JSON,
			}
			return oo.HandleError(d.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddActiveOnlyArg(cmd, ao)
	cmd.Flags().BoolVar(&poll, "poll", false, "Read the stored list instead of waiting for a live update.")

	topLevel.AddCommand(cmd)
}
