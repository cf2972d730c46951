package group

import (
	"context"
	"net"

	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
)

// ResolveFunc returns an nsspec.ResolveFunc backed by this group: it
// issues a MultiQuery{A, AAAA} against the group and picks the first
// unique IPv4, else the first IPv6, returning (nil, nil) when neither
// exists so the caller can report UnresolvableHost.
func (g *Group) ResolveFunc() func(ctx context.Context, host string) (net.IP, error) {
	return func(ctx context.Context, host string) (net.IP, error) {
		mq := query.New([]string{host}, []recordtype.Type{recordtype.A, recordtype.AAAA})
		lookups := g.Lookup(ctx, mq)

		v4 := lookup.UniqueRecords(lookups.RecordsByType(recordtype.A))
		if len(v4) > 0 {
			return v4[0].Data.A, nil
		}
		v6 := lookup.UniqueRecords(lookups.RecordsByType(recordtype.AAAA))
		if len(v6) > 0 {
			return v6[0].Data.AAAA, nil
		}
		return nil, nil
	}
}
