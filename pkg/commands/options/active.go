package options

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"
)

// ActiveOnlyOptions
type ActiveOnlyOptions struct {
	ActiveOnly bool
}

func AddActiveOnlyArg(cmd *cobra.Command, o *ActiveOnlyOptions) {
	cmd.Flags().BoolVarP(&o.ActiveOnly, "active-only", "a", false,
		base.Wrap80("Hide stale devices that the backend has not heard from recently."))
}
