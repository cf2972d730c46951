package workflow

import (
	"context"
	"math/rand"
	"net"

	"github.com/dnsfleet/mhost/internal/dnsname"
	"github.com/dnsfleet/mhost/internal/group"
	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
)

// wideTypes is the record-type set discover's first stage queries for
// the target itself.
var wideTypes = []recordtype.Type{
	recordtype.A, recordtype.AAAA, recordtype.ANY, recordtype.ANAME,
	recordtype.CNAME, recordtype.MX, recordtype.NS, recordtype.SRV,
	recordtype.SOA, recordtype.TXT,
}

// wordlistTypes is the record-type set the wordlist stage queries for
// each candidate subdomain.
var wordlistTypes = []recordtype.Type{
	recordtype.A, recordtype.AAAA, recordtype.MX, recordtype.NS,
	recordtype.SRV, recordtype.SOA,
}

const randomLabelAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DiscoverOptions configures the random-subdomain wildcard probe and the
// wordlist stage of the discover workflow.
type DiscoverOptions struct {
	RndNamesNumber int
	RndNamesLen    int
	Wordlist       []string
}

// DiscoverResult is the accumulated output of the discover workflow.
type DiscoverResult struct {
	WildcardIPs []net.IP
	Lookups     lookup.Lookups
	Exit        ExitCode
}

// Discover runs the three-stage discover pipeline:
//  1. Lookup the target with a wide record-type set.
//  2. Wildcard probe: query random subdomains for A+AAAA, recording any
//     IPs they resolve to.
//  3. Wordlist stage: query wordlist-derived subdomains, filtering out
//     any response whose IP set is not disjoint from the wildcard set.
//
// discover has no abort condition of its own (every stage is best
// effort); it always finishes with ExitOk unless the context is
// cancelled.
func Discover(ctx context.Context, g *group.Group, target string, opts DiscoverOptions) (DiscoverResult, error) {
	name := dnsname.New(target)
	var res DiscoverResult

	stages := []Stage{
		// Stage 1: wide lookup of the target itself.
		func(ctx context.Context) *Abort {
			mq := query.New([]string{name.String()}, wideTypes)
			res.Lookups = res.Lookups.Merge(g.Lookup(ctx, mq))
			return nil
		},
		// Stage 2: wildcard probe via random subdomains.
		func(ctx context.Context) *Abort {
			n := opts.RndNamesNumber
			if n <= 0 {
				n = 1
			}
			names := make([]string, n)
			for i := range names {
				names[i] = dnsname.Prepend(randomLabel(opts.RndNamesLen), name).String()
			}
			mq := query.New(names, []recordtype.Type{recordtype.A, recordtype.AAAA})
			wildcardLookups := g.Lookup(ctx, mq)
			res.Lookups = res.Lookups.Merge(wildcardLookups)
			res.WildcardIPs = uniqueIPs(wildcardLookups.IPs())
			return nil
		},
		// Stage 3: wordlist-derived subdomains, filtered against the
		// wildcard IP set.
		func(ctx context.Context) *Abort {
			if len(opts.Wordlist) == 0 {
				return nil
			}
			names := make([]string, len(opts.Wordlist))
			for i, w := range opts.Wordlist {
				names[i] = dnsname.Prepend(w, name).String()
			}
			mq := query.New(names, wordlistTypes)
			wordlistLookups := g.Lookup(ctx, mq)
			res.Lookups = res.Lookups.Merge(filterWildcard(wordlistLookups, res.WildcardIPs))
			return nil
		},
	}

	exit, err := runPipeline(ctx, stages...)
	if err != nil {
		return res, err
	}
	res.Exit = exit
	return res, nil
}

// randomLabel generates an n-character alphanumeric label for the
// wildcard probe.
func randomLabel(n int) string {
	if n <= 0 {
		n = 8
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = randomLabelAlphabet[rand.Intn(len(randomLabelAlphabet))]
	}
	return string(b)
}

// filterWildcard drops any Response outcome in l whose A/AAAA records
// overlap wildcard. Non-response outcomes and responses carrying no IP
// record (e.g. an MX-only answer) pass through unfiltered.
func filterWildcard(l lookup.Lookups, wildcard []net.IP) lookup.Lookups {
	if len(wildcard) == 0 {
		return l
	}
	wildcardSet := make(map[string]struct{}, len(wildcard))
	for _, ip := range wildcard {
		wildcardSet[ip.String()] = struct{}{}
	}

	kept := make([]lookup.Lookup, 0, l.Len())
	for _, lk := range l.Iter() {
		if lk.Outcome.Kind != lookup.OutcomeResponse {
			kept = append(kept, lk)
			continue
		}
		disjoint := true
		for _, r := range lk.Outcome.Records {
			var ipText string
			switch {
			case r.Data.A != nil:
				ipText = r.Data.A.String()
			case r.Data.AAAA != nil:
				ipText = r.Data.AAAA.String()
			default:
				continue
			}
			if _, overlap := wildcardSet[ipText]; overlap {
				disjoint = false
				break
			}
		}
		if disjoint {
			kept = append(kept, lk)
		}
	}
	return lookup.Of(kept)
}
