package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/runner/prefs"
	"tableflip.dev/nodewatch/pkg/store"
)

func addPrefs(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "show the dashboard's saved view preferences",
		Example: `
nodewatch prefs
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			s := prefs.Show{Persistence: p, JSON: oo.JSON}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	addPrefsSet(cmd)

	topLevel.AddCommand(cmd)
}

func addPrefsSet(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	var activeOnly, events bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "change the dashboard's view preferences",
		Long: `Change saved view preferences. A running dashboard applies them
immediately.`,
		Example: `
nodewatch prefs set --active-only
nodewatch prefs set --events=false
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			s := prefs.Set{Persistence: p, JSON: oo.JSON}
			if cmd.Flags().Changed("active-only") {
				s.ActiveOnly = &activeOnly
			}
			if cmd.Flags().Changed("events") {
				s.ShowEvents = &events
			}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVar(&activeOnly, "active-only", false, "Hide stale devices in the dashboard.")
	cmd.Flags().BoolVar(&events, "events", false, "Show the event log pane in the dashboard.")

	parent.AddCommand(cmd)
}
