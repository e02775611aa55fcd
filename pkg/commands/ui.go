package commands

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/runner/ui"
	"tableflip.dev/nodewatch/pkg/store"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the live device dashboard",
		Example: `
nodewatch ui
nodewatch ui --server http://192.168.1.10:8000
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errors.New("ui needs a terminal; try `nodewatch watch` or `nodewatch devices`")
			}
			cmd.SilenceUsage = true

			// The dashboard owns the screen, so logs go to the event viewer
			// and, if configured, the log file. Nothing reaches stderr.
			env, err := loadEnvironment(io.Discard)
			if err != nil {
				return err
			}
			defer env.Close()

			p, err := store.Load(env.Config)
			if err != nil {
				return err
			}
			i := ui.UI{Config: env.Config, Persistence: p, Logger: env.Log}
			return i.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}
