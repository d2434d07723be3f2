// Package cmd implements the argus front-end CLI: a thin dispatcher that
// resolves a watcher id against the shared registry and forwards the
// operation to that watcher's HTTP API, per spec.md §4.10 and §6.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/cliutil"
)

var (
	rootLong = cliutil.LongDesc(`
		argus talks to one or more argus-watchd processes over their localhost
		HTTP APIs. Every subcommand accepts an optional watcher id as its first
		positional argument; when omitted, argus resolves the watcher to use
		the same way every time: prune stale registry entries, match the
		current working directory, then probe the survivors' /status and
		proceed only if exactly one responds.`)

	rootExamples = cliutil.Examples(`
		# List every watcher currently registered
		argus list

		# Tail console/exception events from whichever watcher resolves
		argus tail

		# Address a specific watcher explicitly
		argus --json status 3fa91c2e-...`)

	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

// ArgusOptions carries the flags and streams shared by every subcommand.
type ArgusOptions struct {
	cliutil.IOStreams
	JSON bool
}

// NewArgusOptions returns an ArgusOptions bound to streams.
func NewArgusOptions(streams cliutil.IOStreams) *ArgusOptions {
	return &ArgusOptions{IOStreams: streams}
}

// NewRootCommand creates the `argus` command with default arguments.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithArgs(NewArgusOptions(cliutil.Default()))
}

// NewRootCommandWithArgs creates the `argus` command and its nested
// children.
func NewRootCommandWithArgs(o *ArgusOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "argus [command]",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Inspect and control browser tabs watched by argus-watchd",
		Long:                  rootLong,
		Example:               rootExamples,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}

	cmd.PersistentFlags().BoolVar(&o.JSON, "json", false, "emit machine-readable JSON instead of human text")

	cmd.AddCommand(
		NewListCommand(o),
		NewStatusCommand(o),
		NewLogsCommand(o),
		NewTailCommand(o),
		NewNetCommand(o),
		NewNetTailCommand(o),
		NewEvalCommand(o),
		NewDOMCommand(o),
		NewEmulationCommand(o),
		NewThrottleCommand(o),
		NewStorageLocalCommand(o),
		NewReloadCommand(o),
		NewScreenshotCommand(o),
		NewTraceCommand(o),
		NewSnapshotCommand(o),
		NewShutdownCommand(o),
	)

	return cmd
}

func versionInfo() string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
