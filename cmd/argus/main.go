// Command argus is the front-end CLI: it resolves a watcher against the
// shared registry and dispatches one operation to its HTTP API, per
// spec.md §4.10.
package main

import (
	"os"

	"github.com/vforsh/argus/internal/cliutil"
	"github.com/vforsh/argus/internal/cmd"
)

func main() {
	os.Exit(cliutil.Run(cmd.NewRootCommand()))
}
