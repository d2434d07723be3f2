// Command argus-watchd is the watcher process: it attaches to a single
// Chrome target, captures its telemetry, and serves it over a localhost
// HTTP API, per spec.md §2 and §4.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/argconfig"
	"github.com/vforsh/argus/internal/cdpsrc"
	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/httpapi"
	"github.com/vforsh/argus/internal/registry"
	"github.com/vforsh/argus/internal/storage"
	"github.com/vforsh/argus/internal/supervisor"
)

type watchdOptions struct {
	chromeHost string
	chromePort int

	bindHost string
	bindPort int

	matchURL        string
	matchTitle      string
	matchURLRegex   string
	matchTitleRegex string
	matchType       string
	matchOrigin     string
	matchTargetID   string
	matchParent     string

	mode           string
	logDir         string
	maxLogFiles    int
	ringCapacity   int
	heartbeatMs    int
	ignorePatterns []string
	artifactDir    string

	criteria cdpsrc.Criteria
}

func main() {
	os.Exit(cliutil.Run(newRootCommand()))
}

func newRootCommand() *cobra.Command {
	o := &watchdOptions{}

	cmd := &cobra.Command{
		Use:   "argus-watchd",
		Short: "Attach to a Chrome target and serve its telemetry over HTTP",
		Long: cliutil.LongDesc(`
			argus-watchd attaches to a single Chrome DevTools Protocol target
			matching the given criteria, captures its console/exception/network
			telemetry into in-memory ring buffers and a rotating log file, and
			serves both over a localhost HTTP API that argus (the front-end CLI)
			talks to.`),
		Example: cliutil.Examples(`
			# Attach to whatever Chrome exposes on the default debugging port
			argus-watchd --chrome-port 9222

			# Attach only to a tab whose URL contains "localhost:3000"
			argus-watchd --chrome-port 9222 --match-url localhost:3000`),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.chromeHost, "chrome-host", "127.0.0.1", "Chrome DevTools host")
	flags.IntVar(&o.chromePort, "chrome-port", 9222, "Chrome DevTools debugging port")
	flags.StringVar(&o.bindHost, "bind-host", "127.0.0.1", "host to bind the watcher's HTTP API on")
	flags.IntVar(&o.bindPort, "bind-port", 0, "port to bind the watcher's HTTP API on (0 = pick any free port)")

	flags.StringVar(&o.matchURL, "match-url", "", "match targets whose URL contains this substring")
	flags.StringVar(&o.matchTitle, "match-title", "", "match targets whose title contains this substring")
	flags.StringVar(&o.matchURLRegex, "match-url-regex", "", "match targets whose URL matches this regex")
	flags.StringVar(&o.matchTitleRegex, "match-title-regex", "", "match targets whose title matches this regex")
	flags.StringVar(&o.matchType, "match-type", "page", "match targets of this CDP target type")
	flags.StringVar(&o.matchOrigin, "match-origin", "", "match targets whose URL origin equals this value")
	flags.StringVar(&o.matchTargetID, "match-target-id", "", "match a specific CDP target id")
	flags.StringVar(&o.matchParent, "match-parent", "", "match targets whose parent target's URL contains this substring")

	flags.StringVar(&o.mode, "mode", "cdp", "attachment mode: cdp or extension")
	flags.StringVar(&o.logDir, "log-dir", "", "directory for rotating per-watcher log files (default $ARGUS_LOG_DIR)")
	flags.IntVar(&o.maxLogFiles, "max-log-files", 5, "maximum rotated log files retained per watcher")
	flags.IntVar(&o.ringCapacity, "ring-capacity", 50000, "capacity of each in-memory ring buffer")
	flags.IntVar(&o.heartbeatMs, "heartbeat-ms", 15000, "registry heartbeat interval in milliseconds")
	flags.StringSliceVar(&o.ignorePatterns, "ignore", nil, "regex of stack-frame file paths to skip when attributing log locations (repeatable)")
	flags.StringVar(&o.artifactDir, "artifact-dir", "", "local directory screenshots/traces are written to (default $ARGUS_HOME/artifacts)")

	return cmd
}

func (o *watchdOptions) Complete() error {
	if o.logDir == "" {
		o.logDir = argconfig.LogDir()
	}
	if o.artifactDir == "" {
		o.artifactDir = argconfig.Home() + "/artifacts"
	}
	o.criteria = cdpsrc.Criteria{
		URL:        o.matchURL,
		Title:      o.matchTitle,
		URLRegex:   o.matchURLRegex,
		TitleRegex: o.matchTitleRegex,
		Type:       o.matchType,
		Origin:     o.matchOrigin,
		TargetID:   o.matchTargetID,
		Parent:     o.matchParent,
	}
	return o.criteria.Compile()
}

func (o *watchdOptions) Validate() error {
	if o.chromePort <= 0 {
		return fmt.Errorf("--chrome-port must be positive")
	}
	if o.mode != "cdp" && o.mode != "extension" {
		return fmt.Errorf("--mode must be cdp or extension")
	}
	return nil
}

func (o *watchdOptions) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := os.MkdirAll(o.artifactDir, 0o755); err != nil {
		return fmt.Errorf("argus-watchd: failed to create artifact dir: %w", err)
	}
	uploader, err := storage.NewLocalUploader(o.artifactDir)
	if err != nil {
		return fmt.Errorf("argus-watchd: failed to initialise local uploader: %w", err)
	}

	store := registry.New(argconfig.RegistryPath())
	if err := os.MkdirAll(argconfig.Home(), 0o755); err != nil {
		return fmt.Errorf("argus-watchd: failed to create %s: %w", argconfig.Home(), err)
	}

	sup, err := supervisor.New(supervisor.Config{
		ChromeHost:     o.chromeHost,
		ChromePort:     o.chromePort,
		Criteria:       o.criteria,
		Mode:           httpapi.Mode(o.mode),
		BindHost:       o.bindHost,
		BindPort:       o.bindPort,
		LogDir:         o.logDir,
		MaxLogFiles:    o.maxLogFiles,
		RingCapacity:   o.ringCapacity,
		HeartbeatMs:    o.heartbeatMs,
		RegistryStore:  store,
		Uploader:       uploader,
		IgnorePatterns: o.ignorePatterns,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("argus-watchd: %w", err)
	}

	logger.Info("argus-watchd: starting", "chromeHost", o.chromeHost, "chromePort", o.chromePort, "match", o.criteria.Describe())

	return sup.Run(ctx)
}
