package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewStatusCommand reports a single watcher's attachment state and
// buffer sizes.
func NewStatusCommand(o *ArgusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [watcher-id]",
		Short: "Show a watcher's attachment state and buffer sizes",
		Long: cliutil.LongDesc(`
			status resolves a watcher (explicitly by id, or implicitly per
			spec.md §4.10) and prints whether it is attached to a Chrome target,
			along with its log/net buffer counts and high-water marks.`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}

			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodGet, "/status", nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}

			return o.emit(resp, func() {
				o.printf("watcher:  %s\n", rec.ID)
				o.printf("attached: %v\n", resp["attached"])
				o.printf("logs:     %v (high-water %v)\n", resp["logCount"], resp["logHighWater"])
				o.printf("net:      %v (high-water %v)\n", resp["netCount"], resp["netHighWater"])
			})
		},
	}
}
