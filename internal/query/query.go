// Package query holds the query value types a Resolver or ResolverGroup
// is asked to run: a single (name, type) UniQuery, and the MultiQuery
// cross-product of a name-set and a type-set that expands into a
// sequence of UniQueries.
package query

import (
	"github.com/dnsfleet/mhost/internal/dnsname"
	"github.com/dnsfleet/mhost/internal/recordtype"
)

// UniQuery is a single (name, record type) pair to resolve against one
// name server.
type UniQuery struct {
	Name dnsname.Name
	Type recordtype.Type
}

// MultiQuery is the Cartesian product of a set of names and a set of
// record types. Names and Types are kept as slices rather than sets:
// only the cross-product cardinality |names|·|types| matters, and
// preserving input order makes Expand's output order deterministic.
type MultiQuery struct {
	Names []dnsname.Name
	Types []recordtype.Type
}

// New builds a MultiQuery from a set of name strings and record types.
func New(names []string, types []recordtype.Type) MultiQuery {
	ns := make([]dnsname.Name, len(names))
	for i, n := range names {
		ns[i] = dnsname.New(n)
	}
	return MultiQuery{Names: ns, Types: types}
}

// Single builds a MultiQuery carrying exactly one UniQuery.
func Single(name dnsname.Name, ty recordtype.Type) MultiQuery {
	return MultiQuery{Names: []dnsname.Name{name}, Types: []recordtype.Type{ty}}
}

// Cardinality is |names|·|types|, the number of UniQueries Expand
// produces.
func (m MultiQuery) Cardinality() int {
	return len(m.Names) * len(m.Types)
}

// Expand enumerates the UniQuery cross-product, names outer and types
// inner, so that all record types for one name are adjacent.
func (m MultiQuery) Expand() []UniQuery {
	out := make([]UniQuery, 0, m.Cardinality())
	for _, n := range m.Names {
		for _, t := range m.Types {
			out = append(out, UniQuery{Name: n, Type: t})
		}
	}
	return out
}

// Clone returns a MultiQuery with independent backing slices, so that a
// caller handing the same logical query to several resolvers (as
// Group.Lookup does) cannot have one resolver's use of the slices
// observed by another.
func (m MultiQuery) Clone() MultiQuery {
	names := make([]dnsname.Name, len(m.Names))
	copy(names, m.Names)
	types := make([]recordtype.Type, len(m.Types))
	copy(types, m.Types)
	return MultiQuery{Names: names, Types: types}
}

// Estimate returns the {min, max} UniQuery count a lookup of this
// MultiQuery will issue against a single resolver with the given number
// of attempts per query: min is the cross-product cardinality, max
// accounts for retries.
func (m MultiQuery) Estimate(attempts int) (min, max int) {
	c := m.Cardinality()
	if attempts < 1 {
		attempts = 1
	}
	return c, c * attempts
}
