package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewScreenshotCommand captures a screenshot of the watched page (or a
// selector's bounding box) and prints the uploaded artifact's URL.
func NewScreenshotCommand(o *ArgusOptions) *cobra.Command {
	var selector, format string
	cmd := &cobra.Command{
		Use:   "screenshot [watcher-id]",
		Short: "Capture a screenshot and upload it as an artifact",
		Long: cliutil.LongDesc(`
			screenshot calls Page.captureScreenshot, clipped to --selector's
			bounding box when given, and uploads the result via the watcher's
			configured artifact storage.`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			body := map[string]any{"selector": selector, "format": format}
			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/screenshot", body, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("%v\n", resp["url"]) })
		},
	}
	cmd.Flags().StringVar(&selector, "selector", "", "clip the screenshot to this CSS selector's bounding box")
	cmd.Flags().StringVar(&format, "format", "png", "png or jpeg")
	return cmd
}

// NewSnapshotCommand captures the page's full accessibility tree.
func NewSnapshotCommand(o *ArgusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [watcher-id]",
		Short: "Capture the page's full accessibility tree",
		Long: cliutil.LongDesc(`
			snapshot calls Accessibility.getFullAXTree and prints the resulting
			tree.`),
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
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/snapshot", nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("%v\n", resp["tree"]) })
		},
	}
}
