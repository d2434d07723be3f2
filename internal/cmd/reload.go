package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewReloadCommand reloads the watched page, optionally rewriting its
// query string first.
func NewReloadCommand(o *ArgusOptions) *cobra.Command {
	var param []string
	var params string
	cmd := &cobra.Command{
		Use:   "reload [watcher-id]",
		Short: "Reload the watched page",
		Long: cliutil.LongDesc(`
			reload calls Page.reload with no arguments, or, when --param or
			--params is given, rewrites the current http(s) URL's query
			string and navigates to it instead, per spec.md §6.`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			body := map[string]any{}
			if len(param) > 0 {
				body["param"] = param
			}
			if params != "" {
				body["params"] = params
			}
			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/reload", body, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("ok\n") })
		},
	}
	cmd.Flags().StringArrayVar(&param, "param", nil, "key=value query param to set before reload (repeatable)")
	cmd.Flags().StringVar(&params, "params", "", "bulk k1=v1&k2=v2 query params to set before reload")
	return cmd
}
