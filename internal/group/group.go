package group

import (
	"context"
	"math/rand"

	"github.com/dnsfleet/mhost/internal/dnserrors"
	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/resolver"
	"github.com/dnsfleet/mhost/internal/stream"
)

// Group is a ResolverGroup: an ordered fleet of Resolvers plus
// group-level options. A Group owns its Resolvers: dropping the group
// drops the underlying client handles (Go's GC does this once the last
// reference goes away, so there is no explicit Close; callers simply
// stop referencing the Group).
type Group struct {
	resolvers []*resolver.Resolver
	opts      Opts
}

// FromConfigs constructs all Resolvers concurrently from specs and
// collects them into a Group; failure of any one propagates and the
// group never partially initializes.
func FromConfigs(ctx context.Context, specs []*nsspec.Spec, resolverOpts resolver.Opts, groupOpts Opts) (*Group, error) {
	tasks := make([]stream.Task[*resolver.Resolver], len(specs))
	for i, spec := range specs {
		spec := spec
		tasks[i] = func(ctx context.Context) (*resolver.Resolver, error) {
			return resolver.New(spec, resolverOpts)
		}
	}
	resolvers, err := stream.Collect(ctx, groupOpts.normalized().MaxConcurrentServers, tasks, nil)
	if err != nil {
		return nil, &dnserrors.ResolveError{Reason: err.Error()}
	}
	return &Group{resolvers: resolvers, opts: groupOpts.normalized()}, nil
}

// New wraps an already-constructed resolver fleet into a Group, for
// callers (like the bootstrap helper) that build Resolvers directly.
func New(resolvers []*resolver.Resolver, opts Opts) *Group {
	return &Group{resolvers: resolvers, opts: opts.normalized()}
}

// Len reports the fleet size.
func (g *Group) Len() int { return len(g.resolvers) }

// Resolvers returns the fleet in insertion order.
func (g *Group) Resolvers() []*resolver.Resolver { return g.resolvers }

// fleet returns the first min(limit, len(resolvers)) resolvers, a
// stable prefix of insertion order.
func (g *Group) fleet() []*resolver.Resolver {
	n := g.opts.effectiveLimit(len(g.resolvers))
	return g.resolvers[:n]
}

// Lookup dispatches mq against every resolver in the (possibly
// limit-truncated) fleet, running them through the bounded-concurrency
// stream at width opts.MaxConcurrentServers, and concatenates all
// per-resolver Lookups into one Lookups in completion order.
func (g *Group) Lookup(ctx context.Context, mq query.MultiQuery) lookup.Lookups {
	fleet := g.fleet()
	tasks := make([]stream.Task[lookup.Lookups], 0, len(fleet))
	for _, r := range fleet {
		r := r
		tasks = append(tasks, func(ctx context.Context) (lookup.Lookups, error) {
			return r.Lookup(ctx, mq.Clone()), nil
		})
	}
	perResolver, _ := stream.Collect(ctx, g.opts.MaxConcurrentServers, tasks, nil)

	out := lookup.Of(nil)
	for _, l := range perResolver {
		out = out.Merge(l)
	}
	return out
}

// SingleServerLookup expands mq into its UniQuery cross-product and, for
// each one, schedules it against a single uniformly-random resolver
// from the fleet: this distributes load across the fleet without
// duplicating queries. The outer stream
// width remains opts.MaxConcurrentServers.
func (g *Group) SingleServerLookup(ctx context.Context, mq query.MultiQuery) lookup.Lookups {
	fleet := g.fleet()
	if len(fleet) == 0 {
		return lookup.Of(nil)
	}
	uqs := mq.Expand()
	tasks := make([]stream.Task[lookup.Lookups], 0, len(uqs))
	for _, uq := range uqs {
		uq := uq
		tasks = append(tasks, func(ctx context.Context) (lookup.Lookups, error) {
			r := fleet[rand.Intn(len(fleet))]
			return r.Lookup(ctx, query.Single(uq.Name, uq.Type)), nil
		})
	}
	perQuery, _ := stream.Collect(ctx, g.opts.MaxConcurrentServers, tasks, nil)

	out := lookup.Of(nil)
	for _, l := range perQuery {
		out = out.Merge(l)
	}
	return out
}

// Merge appends other's resolvers to self's: self's opts win, and no
// deduplication is performed. Returns a new
// Group; the receiver is left unmodified.
func (g *Group) Merge(other *Group) *Group {
	merged := make([]*resolver.Resolver, 0, len(g.resolvers)+len(other.resolvers))
	merged = append(merged, g.resolvers...)
	merged = append(merged, other.resolvers...)
	return &Group{resolvers: merged, opts: g.opts}
}
