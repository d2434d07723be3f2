package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
)

// NewListCommand lists every watcher currently in the registry, after
// pruning entries stale past the TTL.
func NewListCommand(o *ArgusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watchers registered in the shared registry",
		Long: cliutil.LongDesc(`
			list prunes stale registry entries, then prints every remaining
			watcher's id, bound address, pid, and working directory.`),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			_ = c.store.PruneStaleWatchers(0)
			reg, _ := c.store.Read()

			watchers := make([]any, 0, len(reg.Watchers))
			for _, rec := range reg.Watchers {
				watchers = append(watchers, rec)
			}

			ids := make([]string, 0, len(reg.Watchers))
			for id := range reg.Watchers {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			return o.emit(map[string]any{"ok": true, "watchers": watchers}, func() {
				if len(ids) == 0 {
					o.printf("no watchers registered\n")
					return
				}
				for _, id := range ids {
					rec := reg.Watchers[id]
					o.printf("%s  %s:%d  pid=%d  cwd=%s\n", rec.ID, rec.Host, rec.Port, rec.PID, rec.Cwd)
				}
			})
		},
	}
}
