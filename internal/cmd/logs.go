package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

type logFilterFlags struct {
	levels  []string
	match   []string
	source  string
	sinceTs int64
	afterID int64
	limit   int
}

func addLogFilterFlags(cmd *cobra.Command, f *logFilterFlags) {
	cmd.Flags().StringSliceVar(&f.levels, "level", nil, "restrict to these levels (trace,debug,info,warning,error,exception)")
	cmd.Flags().StringArrayVar(&f.match, "match", nil, "regex a log's text must match (repeatable, OR'd together)")
	cmd.Flags().StringVar(&f.source, "source", "", "restrict to sources containing this substring (console|exception)")
	cmd.Flags().Int64Var(&f.sinceTs, "since-ts", 0, "only events at or after this unix millis timestamp")
	cmd.Flags().Int64Var(&f.afterID, "after-id", 0, "only events with id greater than this")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of events to return")
}

func (f *logFilterFlags) query() url.Values {
	q := url.Values{}
	if len(f.levels) > 0 {
		q.Set("level", strings.Join(f.levels, ","))
	}
	for _, m := range f.match {
		q.Add("match", m)
	}
	if f.source != "" {
		q.Set("source", f.source)
	}
	if f.sinceTs > 0 {
		q.Set("sinceTs", fmt.Sprint(f.sinceTs))
	}
	if f.afterID > 0 {
		q.Set("afterId", fmt.Sprint(f.afterID))
	}
	if f.limit > 0 {
		q.Set("limit", fmt.Sprint(f.limit))
	}
	return q
}

func printLogEvents(o *ArgusOptions, events []any) {
	for _, raw := range events {
		e, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		loc := ""
		if l, ok := e["location"].(map[string]any); ok {
			loc = fmt.Sprintf(" (%v:%v:%v)", l["file"], l["line"], l["column"])
		}
		o.printf("[%v] %-9v %v%s\n", e["id"], e["level"], e["text"], loc)
	}
}

// NewLogsCommand fetches a page of buffered console/exception events.
func NewLogsCommand(o *ArgusOptions) *cobra.Command {
	f := &logFilterFlags{}
	cmd := &cobra.Command{
		Use:   "logs [watcher-id]",
		Short: "Fetch buffered console/exception events",
		Long: cliutil.LongDesc(`
			logs lists log events already captured into the watcher's ring
			buffer, newest-after-id ordering, optionally filtered by level,
			text, source, or timestamp.`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			path := "/logs?" + f.query().Encode()
			var resp struct {
				Events    []any `json:"events"`
				NextAfter int64 `json:"nextAfter"`
			}
			if err := c.client.Do(cmd.Context(), rec, http.MethodGet, path, nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { printLogEvents(o, resp.Events) })
		},
	}
	addLogFilterFlags(cmd, f)
	return cmd
}

// NewTailCommand long-polls the watcher for new log events past afterId,
// looping until interrupted.
func NewTailCommand(o *ArgusOptions) *cobra.Command {
	f := &logFilterFlags{}
	var timeoutMs int
	var follow bool
	cmd := &cobra.Command{
		Use:   "tail [watcher-id]",
		Short: "Follow console/exception events as they arrive",
		Long: cliutil.LongDesc(`
			tail calls the watcher's long-poll endpoint, printing new events as
			they arrive. With --follow it repeats indefinitely, advancing
			--after-id by each response's nextAfter; without it, it returns
			after one round-trip.`),
		Args:          cobra.MaximumNArgs(1),
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
				if err := c.client.Do(cmd.Context(), rec, http.MethodGet, "/tail?"+q.Encode(), nil, &resp, timeout); err != nil {
					return err
				}
				if o.JSON {
					if err := o.emit(resp, func() {}); err != nil {
						return err
					}
				} else {
					printLogEvents(o, resp.Events)
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
	addLogFilterFlags(cmd, f)
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 25000, "server-side long-poll timeout in milliseconds")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling indefinitely instead of returning after one round-trip")
	return cmd
}
