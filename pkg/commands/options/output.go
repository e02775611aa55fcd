package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/control"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

type errorOutput struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// HandleError prints err as a JSON object when --json is set, carrying the
// backend's status code for rejected requests. Otherwise err is returned.
func (o *OutputOptions) HandleError(err error) error {
	if !o.JSON || err == nil {
		return err
	}
	out := errorOutput{Error: err.Error()}
	var reqErr *control.RequestError
	if errors.As(err, &reqErr) {
		out.Status = reqErr.StatusCode
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(color.Output, string(b))
	return nil
}
