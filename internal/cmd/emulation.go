package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/dispatch"
)

// NewEmulationCommand groups GET/POST /emulation under `argus emulation`.
func NewEmulationCommand(o *ArgusOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emulation",
		Short: "Get or set viewport/touch/user-agent emulation",
		Long: cliutil.LongDesc(`
			emulation overrides are desired state: the watcher re-applies them
			on every reattachment to the Chrome target, per spec.md §3.`),
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "get [watcher-id]",
		Short:         "Print the current desired/applied emulation state",
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
			if err := c.client.Do(cmd.Context(), rec, http.MethodGet, "/emulation", nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("%v\n", resp) })
		},
	})

	var width, height int
	var scale float64
	var mobile, touch bool
	var userAgent string
	setCmd := &cobra.Command{
		Use:           "set [watcher-id]",
		Short:         "Set the desired emulation state",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			body := map[string]any{
				"width": width, "height": height, "deviceScaleFactor": scale,
				"mobile": mobile, "hasTouch": touch, "userAgent": userAgent,
			}
			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/emulation", body, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("ok\n") })
		},
	}
	setCmd.Flags().IntVar(&width, "width", 0, "viewport width in pixels")
	setCmd.Flags().IntVar(&height, "height", 0, "viewport height in pixels")
	setCmd.Flags().Float64Var(&scale, "device-scale-factor", 1, "device scale factor")
	setCmd.Flags().BoolVar(&mobile, "mobile", false, "emulate a mobile viewport")
	setCmd.Flags().BoolVar(&touch, "touch", false, "emulate touch input")
	setCmd.Flags().StringVar(&userAgent, "user-agent", "", "override the User-Agent header")
	cmd.AddCommand(setCmd)

	return cmd
}

// NewThrottleCommand groups GET/POST /throttle under `argus throttle`.
func NewThrottleCommand(o *ArgusOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "throttle",
		Short: "Get or set CPU/network throttling",
		Long: cliutil.LongDesc(`
			throttle overrides are desired state: the watcher re-applies them
			on every reattachment to the Chrome target, per spec.md §3.`),
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "get [watcher-id]",
		Short:         "Print the current desired/applied throttle state",
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
			if err := c.client.Do(cmd.Context(), rec, http.MethodGet, "/throttle", nil, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("%v\n", resp) })
		},
	})

	var cpuRate, downloadKbps, uploadKbps, latencyMs float64
	var cacheDisabled, offline bool
	setCmd := &cobra.Command{
		Use:           "set [watcher-id]",
		Short:         "Set the desired throttle state",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClients()
			rec, _, err := c.resolveOne(cmd.Context(), args)
			if err != nil {
				return err
			}
			body := map[string]any{
				"cpuRate": cpuRate, "downloadKbps": downloadKbps, "uploadKbps": uploadKbps,
				"latencyMs": latencyMs, "cacheDisabled": cacheDisabled, "offline": offline,
			}
			var resp map[string]any
			if err := c.client.Do(cmd.Context(), rec, http.MethodPost, "/throttle", body, &resp, dispatch.DefaultTimeout); err != nil {
				return err
			}
			return o.emit(resp, func() { o.printf("ok\n") })
		},
	}
	setCmd.Flags().Float64Var(&cpuRate, "cpu-rate", 0, "CPU slowdown multiplier, e.g. 4 for 4x")
	setCmd.Flags().Float64Var(&downloadKbps, "download-kbps", 0, "simulated download throughput in kbps")
	setCmd.Flags().Float64Var(&uploadKbps, "upload-kbps", 0, "simulated upload throughput in kbps")
	setCmd.Flags().Float64Var(&latencyMs, "latency-ms", 0, "simulated round-trip latency in milliseconds")
	setCmd.Flags().BoolVar(&cacheDisabled, "cache-disabled", false, "disable the browser cache")
	setCmd.Flags().BoolVar(&offline, "offline", false, "simulate an offline network")
	cmd.AddCommand(setCmd)

	return cmd
}
