package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/nodewatch/pkg/commands/options"
	"tableflip.dev/nodewatch/pkg/snake"
)

func New() *cobra.Command {
	var (
		server     string
		configFile string
		logLevel   string
	)
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "nodewatch",
		Short: base.Wrap80("Watch and control the devices on your network from the terminal."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				viper.SetConfigFile(configFile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return snake.PromptNext(cmd, args)
			}
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&server, "server", "", "Backend base URL, e.g. http://127.0.0.1:8000.")
	flags.StringVar(&configFile, "config", "", "Config file (default is $HOME/.nodewatch.yaml).")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	_ = viper.BindPFlag("server", flags.Lookup("server"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))

	options.InteractiveArgs(cmd, i)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addDevices(topLevel)
	addWatch(topLevel)
	addBlock(topLevel)
	addKillSwitch(topLevel)
	addSchedule(topLevel)
	addSettings(topLevel)
	addStats(topLevel)
	addPrefs(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
