package lookup

import (
	"net"

	"github.com/dnsfleet/mhost/internal/recordtype"
)

// Lookups is an ordered, immutable collection of Lookup results. It never
// deduplicates implicitly; callers who want set semantics call Unique
// explicitly.
type Lookups struct {
	items []Lookup
}

// Of builds a Lookups from a slice of Lookup, taking ownership of (not
// copying) the backing slice.
func Of(items []Lookup) Lookups { return Lookups{items: items} }

func (l Lookups) Len() int      { return len(l.items) }
func (l Lookups) IsEmpty() bool { return len(l.items) == 0 }

// Iter returns the underlying Lookup slice. Callers must not mutate it;
// Lookups is documented immutable.
func (l Lookups) Iter() []Lookup { return l.items }

// RecordTypes returns the set of record types with at least one
// Outcome.Kind == OutcomeResponse record across the collection.
func (l Lookups) RecordTypes() []recordtype.Type {
	seen := map[string]recordtype.Type{}
	var order []string
	for _, lk := range l.items {
		if lk.Outcome.Kind != OutcomeResponse {
			continue
		}
		for _, r := range lk.Outcome.Records {
			key := r.Type.String()
			if _, ok := seen[key]; !ok {
				seen[key] = r.Type
				order = append(order, key)
			}
		}
	}
	out := make([]recordtype.Type, 0, len(order))
	for _, k := range order {
		out = append(out, seen[k])
	}
	return out
}

// Records flattens every record from every Response outcome in the
// collection, in collection order.
func (l Lookups) Records() []recordtype.Record {
	var out []recordtype.Record
	for _, lk := range l.items {
		if lk.Outcome.Kind == OutcomeResponse {
			out = append(out, lk.Outcome.Records...)
		}
	}
	return out
}

// RecordsByType flattens every record of the given type from every
// Response outcome.
func (l Lookups) RecordsByType(rt recordtype.Type) []recordtype.Record {
	var out []recordtype.Record
	for _, r := range l.Records() {
		if r.Type.Equal(rt) {
			out = append(out, r)
		}
	}
	return out
}

// HasRecords reports whether at least one Lookup is a Response outcome
// carrying at least one record.
func (l Lookups) HasRecords() bool {
	for _, lk := range l.items {
		if lk.Outcome.HasRecords() {
			return true
		}
	}
	return false
}

// Merge concatenates self and other into a new Lookups (multiset
// union). Merge(Empty) = Lookups, and Merge is associative.
func (l Lookups) Merge(other Lookups) Lookups {
	out := make([]Lookup, 0, len(l.items)+len(other.items))
	out = append(out, l.items...)
	out = append(out, other.items...)
	return Lookups{items: out}
}

// Combine has the same semantics as Merge; it exists as a separate name
// for the call sites that layer optional workflow stages, where
// "combine" reads more naturally than "merge".
func (l Lookups) Combine(other Lookups) Lookups { return l.Merge(other) }

// Typed projections. Each returns the corresponding RData payload for
// every record of the matching type, in the order Records() would yield
// them: a typed projection is exactly filter-then-rdata-extract.

func (l Lookups) A() []net.IP {
	var out []net.IP
	for _, r := range l.RecordsByType(recordtype.A) {
		out = append(out, r.Data.A)
	}
	return out
}

func (l Lookups) AAAA() []net.IP {
	var out []net.IP
	for _, r := range l.RecordsByType(recordtype.AAAA) {
		out = append(out, r.Data.AAAA)
	}
	return out
}

// IPs is the union of A and AAAA projections, A first.
func (l Lookups) IPs() []net.IP {
	return append(l.A(), l.AAAA()...)
}

func (l Lookups) NS() []recordtype.Name {
	var out []recordtype.Name
	for _, r := range l.RecordsByType(recordtype.NS) {
		out = append(out, r.Data.NS)
	}
	return out
}

func (l Lookups) CNAME() []recordtype.Name {
	var out []recordtype.Name
	for _, r := range l.RecordsByType(recordtype.CNAME) {
		out = append(out, r.Data.CNAME)
	}
	return out
}

func (l Lookups) ANAME() []recordtype.Name {
	var out []recordtype.Name
	for _, r := range l.RecordsByType(recordtype.ANAME) {
		out = append(out, r.Data.ANAME)
	}
	return out
}

func (l Lookups) PTR() []recordtype.Name {
	var out []recordtype.Name
	for _, r := range l.RecordsByType(recordtype.PTR) {
		out = append(out, r.Data.PTR)
	}
	return out
}

func (l Lookups) MX() []recordtype.MXData {
	var out []recordtype.MXData
	for _, r := range l.RecordsByType(recordtype.MX) {
		out = append(out, r.Data.MX)
	}
	return out
}

func (l Lookups) SOA() []recordtype.SOAData {
	var out []recordtype.SOAData
	for _, r := range l.RecordsByType(recordtype.SOA) {
		out = append(out, r.Data.SOA)
	}
	return out
}

func (l Lookups) SRV() []recordtype.SRVData {
	var out []recordtype.SRVData
	for _, r := range l.RecordsByType(recordtype.SRV) {
		out = append(out, r.Data.SRV)
	}
	return out
}

func (l Lookups) TXT() [][][]byte {
	var out [][][]byte
	for _, r := range l.RecordsByType(recordtype.TXT) {
		out = append(out, r.Data.TXT)
	}
	return out
}

// Unique performs a generic set-conversion over a comparable slice,
// preserving first-occurrence order.
func Unique[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// UniqueRecords is Unique specialized to Record, keyed by Record.Key()
// (structural equality on Name/RecordType/TTL/RData).
func UniqueRecords(records []recordtype.Record) []recordtype.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]recordtype.Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
