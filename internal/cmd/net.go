package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

type netFilterFlags struct {
	sinceTs   int64
	afterID   int64
	limit     int
	urlSubstr string
}

func addNetFilterFlags(cmd *cobra.Command, f *netFilterFlags) {
	cmd.Flags().Int64Var(&f.sinceTs, "since-ts", 0, "only requests at or after this unix millis timestamp")
	cmd.Flags().Int64Var(&f.afterID, "after-id", 0, "only requests with id greater than this")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of requests to return")
	cmd.Flags().StringVar(&f.urlSubstr, "url", "", "restrict to requests whose (redacted) URL contains this substring")
}

func (f *netFilterFlags) query() url.Values {
	q := url.Values{}
	if f.sinceTs > 0 {
		q.Set("sinceTs", fmt.Sprint(f.sinceTs))
	}
	if f.afterID > 0 {
		q.Set("afterId", fmt.Sprint(f.afterID))
	}
	if f.limit > 0 {
		q.Set("limit", fmt.Sprint(f.limit))
	}
	if f.urlSubstr != "" {
		q.Set("url", f.urlSubstr)
	}
	return q
}

func printNetEvents(o *ArgusOptions, events []any) {
	for _, raw := range events {
		e, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		status := e["status"]
		if e["errorText"] != nil && e["errorText"] != "" {
			status = e["errorText"]
		}
		o.printf("[%v] %-6v %-4v %v (%.0fms)\n", e["id"], e["method"], status, e["url"], toFloat(e["durationMs"]))
	}
}

func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// NewNetCommand fetches a page of buffered network request summaries.
func NewNetCommand(o *ArgusOptions) *cobra.Command {
	f := &netFilterFlags{}
	cmd := &cobra.Command{
		Use:   "net [watcher-id]",
		Short: "Fetch buffered network request summaries",
		Long: cliutil.LongDesc(`
			net lists completed or failed network requests already captured
			into the watcher's ring buffer, with URLs redacted per spec.md §4.5.`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			var resp struct {
				Events    []any `json:"events"`
				NextAfter int64 `json:"nextAfter"`
			}
			if err := c.client.Do(cmd.Context(), rec, http.MethodGet, "/net?"+f.query().Encode(), nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { printNetEvents(o, resp.Events) })
		},
	}
	addNetFilterFlags(cmd, f)
	return cmd
}

// NewNetTailCommand long-polls the watcher for new network requests.
func NewNetTailCommand(o *ArgusOptions) *cobra.Command {
	f := &netFilterFlags{}
	var timeoutMs int
	var follow bool
	cmd := &cobra.Command{
		Use:   "net-tail [watcher-id]",
		Short: "Follow network requests as they complete",
		Args:  cobra.MaximumNArgs(1),
		Long: cliutil.LongDesc(`
			net-tail mirrors tail for network request summaries: it calls the
			watcher's long-poll endpoint and, with --follow, keeps polling.`),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			for {
				q := f.query()
				if timeoutMs > 0 {
					q.Set("timeoutMs", fmt.Sprint(timeoutMs))
				}
				var resp struct {
					Events    []any `json:"events"`
					NextAfter int64 `json:"nextAfter"`
					TimedOut  bool  `json:"timedOut"`
				}
				timeout := dispatch.DefaultTimeout
				if timeoutMs > 0 {
					timeout = time.Duration(timeoutMs)*time.Millisecond + dispatch.DefaultTimeout
				}
				if err := c.client.Do(cmd.Context(), rec, http.MethodGet, "/net/tail?"+q.Encode(), nil, &resp, timeout); err != nil {
					return err
				}
				if o.JSON {
					if err := o.emit(resp, func() {}); err != nil {
						return err
					}
				} else {
					printNetEvents(o, resp.Events)
				}
				f.afterID = resp.NextAfter
				if !follow {
					return nil
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				default:
				}
			}
		},
	}
	addNetFilterFlags(cmd, f)
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 25000, "server-side long-poll timeout in milliseconds")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling indefinitely instead of returning after one round-trip")
	return cmd
}
