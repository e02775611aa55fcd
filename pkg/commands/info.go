package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/runner/info"
	"tableflip.dev/nodewatch/pkg/store"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about configuration and where preferences are stored.",
		Example: `
nodewatch info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			p, err := store.Load(cfg)
			if err != nil {
				return err
			}
			s := info.Info{
				Config:      cfg,
				Persistence: p,
			}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}
