package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vforsh/argus/internal/argconfig"
	"github.com/vforsh/argus/internal/dispatch"
	"github.com/vforsh/argus/internal/registry"
	"github.com/vforsh/argus/internal/resolver"
)

// clients bundles the registry store, dispatch client, and resolver every
// subcommand needs, built fresh per invocation from $ARGUS_HOME.
type clients struct {
	store    *registry.Store
	client   *dispatch.Client
	resolver *resolver.Resolver
}

func newClients() *clients {
	store := registry.New(argconfig.RegistryPath())
	client := dispatch.NewClient(store)
	return &clients{store: store, client: client, resolver: resolver.New(store, client)}
}

// watcherArg pulls the optional leading watcher-id positional off args,
// returning the remaining positionals unchanged.
func watcherArg(args []string) (id string, rest []string) {
	if len(args) == 0 {
		return "", args
	}
	return args[0], args[1:]
}

// resolveOne resolves args' optional leading watcher id against the
// registry, per spec.md §4.10.
func (c *clients) resolveOne(ctx context.Context, args []string) (registry.WatcherRecord, []string, error) {
	id, rest := watcherArg(args)
	rec, err := c.resolver.Resolve(ctx, id)
	return rec, rest, err
}

// emit writes v as pretty JSON when o.JSON is set, otherwise delegates to
// human for a human-readable rendering.
func (o *ArgusOptions) emit(v any, human func()) error {
	if o.JSON {
		enc := json.NewEncoder(o.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func (o *ArgusOptions) printf(format string, args ...any) {
	fmt.Fprintf(o.Out, format, args...)
}
