// Package resolver implements the single-endpoint async DNS client:
// one Resolver is bound to one NameServerSpec, is
// cheap to clone (the miekg/dns.Client handle is shared), and runs a
// MultiQuery through a bounded-concurrency stream of its own requests.
package resolver

import "time"

// Opts is the per-server configuration: attempts ≥ 1,
// MaxConcurrentRequests ≥ 1, ndots, timeout, and a handful of behavior
// flags.
type Opts struct {
	Attempts              int
	MaxConcurrentRequests int
	Ndots                 int
	Timeout               time.Duration

	ExpectsMultipleResponses bool
	AbortOnError             bool
	AbortOnTimeout           bool
	PreserveIntermediates    bool
}

// DefaultOpts mirrors the defaults a system resolv.conf typically
// implies: 2 attempts, ndots 1, a 5 second per-attempt timeout, and
// modest per-server concurrency.
func DefaultOpts() Opts {
	return Opts{
		Attempts:              2,
		MaxConcurrentRequests: 10,
		Ndots:                 1,
		Timeout:               5 * time.Second,
	}
}

// normalized returns a copy of o with attempts and concurrency clamped
// to their minimum of 1.
func (o Opts) normalized() Opts {
	if o.Attempts < 1 {
		o.Attempts = 1
	}
	if o.MaxConcurrentRequests < 1 {
		o.MaxConcurrentRequests = 1
	}
	return o
}
