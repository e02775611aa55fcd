package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(nodewatch completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(nodewatch completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(cmd.OutOrStdout())
		},
	}

	topLevel.AddCommand(cmd)
}

// macCompletions offers the MACs the backend knows about, annotated with
// vendor and address.
func macCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env, err := loadEnvironment(nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer env.Close()

	devices, err := env.Client.Devices(contextOf(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	toComplete = strings.ToLower(toComplete)
	var out []string
	for _, d := range devices {
		if !strings.HasPrefix(strings.ToLower(d.MAC), toComplete) {
			continue
		}
		out = append(out, fmt.Sprintf("%s\t%s %s", d.MAC, d.Vendor, d.IP))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
