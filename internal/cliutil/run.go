package cliutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/resolver"
)

// Run executes cmd under a context cancelled on SIGINT/SIGTERM, printing any
// error to stderr and translating it into the process exit code spec.md §6
// assigns: 0 success, 1 generic runtime failure, 2 usage/validation/resolve
// failure, 130 interrupted.
func Run(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}

	fmt.Fprintln(os.Stderr, "argus:", err)

	var rerr *resolver.Error
	if errors.As(err, &rerr) {
		return argerr.ExitCode(rerr.Kind)
	}
	return argerr.ExitCode(argerr.KindOf(err))
}
