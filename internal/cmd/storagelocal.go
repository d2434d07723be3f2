package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewStorageLocalCommand groups POST /storage/local's get|set|remove|
// list|clear actions under `argus storage-local <action>`.
func NewStorageLocalCommand(o *ArgusOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage-local",
		Short: "Inspect or mutate the watched page's window.localStorage",
		Long: cliutil.LongDesc(`
			storage-local actions optionally take --origin, checked against the
			page's current origin and rejected with origin_mismatch on a
			scheme/host difference, per spec.md §7.`),
	}

	run := func(action string, needsKey, needsValue bool) *cobra.Command {
		var key, value, origin string
		use := action
		if needsKey {
			use += " <key>"
		}
		sub := &cobra.Command{
			Use:           use,
			Short:         "Run the " + action + " localStorage action",
			Args:          cobra.MaximumNArgs(2),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if needsKey {
					var rest []string
					key, rest = func() (string, []string) {
						if len(args) == 0 {
							return "", args
						}
						return args[len(args)-1], args[:len(args)-1]
					}()
					args = rest
				}
				c := newClients()
				rec, _, err := c.resolveOne(cmd.Context(), args)
				if err != nil {
					return err
				}
				body := map[string]any{"action": action, "key": key, "origin": origin}
				if needsValue {
					body["value"] = value
				}
				var resp map[string]any
				if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/storage/local", body, &resp, dispatch.DefaultTimeout); err != nil {
					return err
				}
				return o.emit(resp, func() {
					if action == "list" {
						o.printf("%v\n", resp["keys"])
						return
					}
					o.printf("%v\n", resp["result"])
				})
			},
		}
		sub.Flags().StringVar(&origin, "origin", "", "require the page's current origin to equal this before proceeding")
		if needsValue {
			sub.Flags().StringVar(&value, "value", "", "value to store (required)")
			_ = sub.MarkFlagRequired("value")
		}
		return sub
	}

	cmd.AddCommand(run("get", true, false))
	cmd.AddCommand(run("set", true, true))
	cmd.AddCommand(run("remove", true, false))
	cmd.AddCommand(run("list", false, false))
	cmd.AddCommand(run("clear", false, false))

	return cmd
}
