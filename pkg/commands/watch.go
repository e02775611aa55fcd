package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	ao := &options.ActiveOnlyOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "stream device changes as they happen",
		Long: `Follow the push channel and print one line per change:

  + a device appeared
  ~ a device changed
  - a device went away (or went stale, with --active-only)

The connection is re-established after any loss until interrupted.`,
		Example: `
nodewatch watch
nodewatch watch --active-only
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			env, err := loadEnvironment(nil)
			if err != nil {
				return err
			}
			defer env.Close()

			feedURL, err := feed.URLFromServer(env.Config.Server())
			if err != nil {
				return err
			}
			w := watch.Watch{
				FeedURL:        feedURL,
				ReconnectDelay: env.Config.ReconnectDelay(),
				ActiveOnly:     ao.ActiveOnly,
				Logger:         env.Log,
				Out:            cmd.OutOrStdout(),
			}
			return w.Do(contextOf(cmd))
		},
	}

	options.AddActiveOnlyArg(cmd, ao)

	topLevel.AddCommand(cmd)
}
