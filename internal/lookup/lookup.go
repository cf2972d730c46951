package lookup

import (
	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
)

// Lookup is the immutable result of running one UniQuery against one
// server. The server spec is shared (by pointer) across every Lookup
// produced by the same resolver: one logical NameServerSpec instance,
// many references, lifetime = fleet lifetime.
type Lookup struct {
	Query   query.UniQuery
	Server  *nsspec.Spec
	Outcome Outcome
}

func New(q query.UniQuery, server *nsspec.Spec, outcome Outcome) Lookup {
	return Lookup{Query: q, Server: server, Outcome: outcome}
}
