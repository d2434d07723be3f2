package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// domRequestFlags mirrors ops.DOMRequest's JSON body, filled in from flags
// shared by every dom subcommand.
type domRequestFlags struct {
	selector string
	all      bool
	text     string
	html     string
	key      string
	value    string
	attr     string
	mode     string
	dx, dy   int
	files    []string
}

func addSelectorFlags(cmd *cobra.Command, f *domRequestFlags) {
	cmd.Flags().StringVar(&f.selector, "selector", "", "CSS selector to match (required)")
	cmd.Flags().BoolVar(&f.all, "all", false, "apply to every match instead of requiring exactly one")
	cmd.Flags().StringVar(&f.text, "text", "", "further filter matches by text content: an exact string, or /regex/flags")
	_ = cmd.MarkFlagRequired("selector")
}

func (f *domRequestFlags) body() map[string]any {
	body := map[string]any{"selector": f.selector, "all": f.all, "text": f.text}
	if f.html != "" {
		body["html"] = f.html
	}
	if f.key != "" {
		body["key"] = f.key
	}
	if f.value != "" {
		body["value"] = f.value
	}
	if f.attr != "" {
		body["attr"] = f.attr
	}
	if f.mode != "" {
		body["mode"] = f.mode
	}
	if f.dx != 0 {
		body["dx"] = f.dx
	}
	if f.dy != 0 {
		body["dy"] = f.dy
	}
	if len(f.files) > 0 {
		body["files"] = f.files
	}
	return body
}

// domRun runs a /dom/<route> call and renders its {result} field (if any)
// as JSON when printing for humans, since most DOM results are structured.
func domRun(o *ArgusOptions, route string) func(*cobra.Command, []string, *domRequestFlags) error {
	return func(cmd *cobra.Command, args []string, f *domRequestFlags) error {
		c := newClients()
		rec, _, err := c.resolveOne(cmd.Context(), args)
		if err != nil {
			return err
		}
		var resp map[string]any
		if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/dom/"+route, f.body(), &resp, dispatch.DefaultTimeout); err != nil {
			return err
		}
		return o.emit(resp, func() {
			if result, ok := resp["result"]; ok && result != nil {
				o.printf("%v\n", result)
				return
			}
			o.printf("ok\n")
		})
	}
}

// NewDOMCommand groups every /dom/* operation under `argus dom <op>`.
func NewDOMCommand(o *ArgusOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dom",
		Short: "Inspect and mutate DOM elements in the watched page",
		Long: cliutil.LongDesc(`
			dom operations resolve a CSS selector (optionally filtered by text,
			exact string or /regex/flags) to one matching element, or every
			match when --all is set, and either inspect or mutate it.`),
	}

	add := func(use, short, route string, extra func(*cobra.Command, *domRequestFlags)) {
		f := &domRequestFlags{}
		sub := &cobra.Command{
			Use:           use,
			Short:         short,
			Args:          cobra.MaximumNArgs(1),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return domRun(o, route)(cmd, args, f)
			},
		}
		addSelectorFlags(sub, f)
		if extra != nil {
			extra(sub, f)
		}
		cmd.AddCommand(sub)
	}

	add("tree", "Print the DOM subtree rooted at the match(es)", "tree", nil)
	add("info", "Print bounding box, visibility, and attributes of the match(es)", "info", nil)
	add("hover", "Dispatch a mouseover event on the match(es)", "hover", nil)
	add("click", "Click the match(es)", "click", nil)
	add("focus", "Focus the match(es)", "focus", nil)
	add("fill", "Set the value of an input/textarea match", "fill", func(c *cobra.Command, f *domRequestFlags) {
		c.Flags().StringVar(&f.value, "value", "", "value to set (required)")
		_ = c.MarkFlagRequired("value")
	})
	add("keydown", "Dispatch a keydown event on the match(es)", "keydown", func(c *cobra.Command, f *domRequestFlags) {
		c.Flags().StringVar(&f.key, "key", "", "key name, e.g. Enter (required)")
		_ = c.MarkFlagRequired("key")
	})
	add("scroll", "Scroll the match(es) by a relative offset", "scroll", func(c *cobra.Command, f *domRequestFlags) {
		c.Flags().IntVar(&f.dx, "dx", 0, "horizontal scroll delta")
		c.Flags().IntVar(&f.dy, "dy", 0, "vertical scroll delta")
	})
	add("scroll-to", "Scroll the match(es) into view", "scroll-to", nil)
	add("add", "Insert HTML relative to the match(es)", "add", func(c *cobra.Command, f *domRequestFlags) {
		c.Flags().StringVar(&f.html, "html", "", "HTML to insert (required)")
		c.Flags().StringVar(&f.mode, "mode", "append", "append|before|after")
		_ = c.MarkFlagRequired("html")
	})
	add("remove", "Remove the match(es) from the DOM", "remove", nil)
	add("modify", "Set an attribute or replace innerHTML on the match(es)", "modify", func(c *cobra.Command, f *domRequestFlags) {
		c.Flags().StringVar(&f.attr, "attr", "", "attribute name to set (use with --value)")
		c.Flags().StringVar(&f.value, "value", "", "value for --attr")
		c.Flags().StringVar(&f.html, "html", "", "replacement innerHTML (mutually exclusive with --attr)")
	})
	add("set-file", "Set the files of a file input match", "set-file", func(c *cobra.Command, f *domRequestFlags) {
		c.Flags().StringSliceVar(&f.files, "file", nil, "local file path to attach (repeatable)")
		_ = c.MarkFlagRequired("file")
	})

	return cmd
}
