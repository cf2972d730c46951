package lookup

import (
	"time"

	"github.com/dnsfleet/mhost/internal/nsspec"
)

// Summary is the per-outcome, per-type roll-up of a collection: counts
// per outcome kind, counts per record type, responding-server count,
// and min/max response time across Response outcomes.
type Summary struct {
	Responses int
	NxDomains int
	Timeouts  int
	Errors    int

	ByType map[string]int

	RespondingServers int

	MinResponseTime time.Duration
	MaxResponseTime time.Duration
	hasResponseTime bool
}

// Total is the sum of every outcome-kind bucket; it always equals the
// collection's Len().
func (s Summary) Total() int {
	return s.Responses + s.NxDomains + s.Timeouts + s.Errors
}

// Statistics computes the Summary for this collection. A "responding
// server" is a NameServerSpec that produced at least one Response
// outcome.
func (l Lookups) Statistics() Summary {
	s := Summary{ByType: map[string]int{}}
	responded := map[*nsspec.Spec]struct{}{}

	for _, lk := range l.items {
		switch lk.Outcome.Kind {
		case OutcomeResponse:
			s.Responses++
			responded[lk.Server] = struct{}{}
			for _, r := range lk.Outcome.Records {
				s.ByType[r.Type.String()]++
			}
			if !s.hasResponseTime {
				s.MinResponseTime = lk.Outcome.ResponseTime
				s.MaxResponseTime = lk.Outcome.ResponseTime
				s.hasResponseTime = true
			} else {
				if lk.Outcome.ResponseTime < s.MinResponseTime {
					s.MinResponseTime = lk.Outcome.ResponseTime
				}
				if lk.Outcome.ResponseTime > s.MaxResponseTime {
					s.MaxResponseTime = lk.Outcome.ResponseTime
				}
			}
		case OutcomeNxDomain:
			s.NxDomains++
		case OutcomeTimeout:
			s.Timeouts++
		case OutcomeError:
			s.Errors++
		}
	}

	s.RespondingServers = len(responded)
	return s
}
