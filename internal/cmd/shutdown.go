package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewShutdownCommand requests a watcher's orderly shutdown.
func NewShutdownCommand(o *ArgusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown [watcher-id]",
		Short: "Ask a watcher to shut down",
		Long: cliutil.LongDesc(`
			shutdown calls POST /shutdown, which deregisters the watcher and
			tears it down after the response is sent.`),
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
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/shutdown", nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("shutdown requested\n") })
		},
	}
}
