package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewTraceCommand groups trace start/stop under `argus trace <action>`.
func NewTraceCommand(o *ArgusOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Start or stop a Chrome tracing session",
		Long: cliutil.LongDesc(`
			trace wraps Tracing.start/Tracing.end; stop assembles the collected
			events into a JSON trace file and uploads it as an artifact.`),
	}

	var categories string
	startCmd := &cobra.Command{
		Use:           "start [watcher-id]",
		Short:         "Start a tracing session",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			body := map[string]any{"categories": categories}
			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/trace/start", body, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("tracing started\n") })
		},
	}
	startCmd.Flags().StringVar(&categories, "categories", "", "comma-separated trace category filter")
	cmd.AddCommand(startCmd)

	cmd.AddCommand(&cobra.Command{
		Use:           "stop [watcher-id]",
		Short:         "Stop the tracing session and upload the trace",
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
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/trace/stop", nil, &resp, 30*time.Second); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("%v\n", resp["url"]) })
		},
	})

	return cmd
}
