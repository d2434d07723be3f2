package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewEvalCommand evaluates a JavaScript expression in the watched page.
func NewEvalCommand(o *ArgusOptions) *cobra.Command {
	var timeoutMs int
	var noAwait bool
	var noReturnByValue bool
	cmd := &cobra.Command{
		Use:   "eval [watcher-id] <expression>",
		Short: "Evaluate a JavaScript expression in the watched page",
		Args:  cobra.RangeArgs(1, 2),
		Long: cliutil.LongDesc(`
			eval runs an expression via Runtime.evaluate in the currently
			attached target and prints its result (or thrown exception).`),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := args[len(args)-1]
			watcherArgs := args[:len(args)-1]

			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), watcherArgs)
			if err != nil {
				return err
			}

			body := map[string]any{"expression": expr}
			if timeoutMs > 0 {
				body["timeoutMs"] = timeoutMs
			}
			if noAwait {
				f := false
				body["awaitPromise"] = &f
			}
			if noReturnByValue {
				f := false
				body["returnByValue"] = &f
			}

			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/eval", body, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() {
				if resp["exception"] != nil {
					o.printf("exception: %v\n", resp["exception"])
					return
				}
				o.printf("%v\n", resp["result"])
			})
		},
	}
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "Runtime.evaluate timeout in milliseconds")
	cmd.Flags().BoolVar(&noAwait, "no-await", false, "do not await a returned promise")
	cmd.Flags().BoolVar(&noReturnByValue, "no-return-by-value", false, "return a remote object reference instead of a serialized value")
	return cmd
}
