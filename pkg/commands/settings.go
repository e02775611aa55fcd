package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/runner/settings"
	"tableflip.dev/nodewatch/pkg/snake"
)

func addSettings(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "show the backend's scan settings",
		Example: `
nodewatch settings
nodewatch settings --json
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			env, err := loadEnvironment(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer env.Close()

			s := settings.Show{Client: env.Client, JSON: oo.JSON}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	addSettingsSet(cmd)

	topLevel.AddCommand(cmd)
}

func addSettingsSet(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	i := &options.InteractiveOptions{}
	var (
		iface    string
		interval int
		paranoid bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "change the backend's scan settings",
		Long: `Change one or more scan settings. Only the flags given are sent.
The backend applies them after a restart.`,
		Example: `
nodewatch settings set --scan-interval 60
nodewatch settings set --interface wlan0 --paranoid
nodewatch settings set -i
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				if err := offerCurrentSettings(cmd); err != nil {
					return err
				}
				return snake.PromptFlags(cmd, args)
			}
			cmd.SilenceUsage = true

			var u control.SettingsUpdate
			if cmd.Flags().Changed("interface") {
				u.Interface = &iface
			}
			if cmd.Flags().Changed("scan-interval") {
				u.ScanInterval = &interval
			}
			if cmd.Flags().Changed("paranoid") {
				u.ParanoidMode = &paranoid
			}

			env, err := loadEnvironment(nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer env.Close()

			s := settings.Set{Client: env.Client, Update: u, JSON: oo.JSON}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.InteractiveArgs(cmd, i)
	cmd.Flags().StringVar(&iface, "interface", "", "Network interface to scan.")
	cmd.Flags().IntVar(&interval, "scan-interval", 30, "Seconds between scans.")
	cmd.Flags().BoolVar(&paranoid, "paranoid", false, "Automatically block devices the first time they appear.")

	parent.AddCommand(cmd)
}

// offerCurrentSettings seeds the interactive prompts with the backend's
// current values and its list of interfaces.
func offerCurrentSettings(cmd *cobra.Command) error {
	env, err := loadEnvironment(nil)
	if err != nil {
		return err
	}
	defer env.Close()

	view, err := env.Client.GetSettings(contextOf(cmd))
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	flags.Lookup("interface").DefValue = view.Settings.Interface
	flags.Lookup("scan-interval").DefValue = strconv.Itoa(view.Settings.ScanInterval)
	flags.Lookup("paranoid").DefValue = strconv.FormatBool(view.Settings.ParanoidMode)
	if len(view.Interfaces) > 0 {
		return flags.SetAnnotation("interface", snake.ChoicesAnnotation, view.Interfaces)
	}
	return nil
}
