// Package lookup holds the Lookup/Lookups aggregate: the immutable result
// of running a UniQuery against one NameServerSpec, and the ordered
// collection of such results a Resolver or resolver group produces.
package lookup

import (
	"time"

	"github.com/dnsfleet/mhost/internal/dnserrors"
	"github.com/dnsfleet/mhost/internal/recordtype"
)

// OutcomeKind discriminates the variant an Outcome carries.
type OutcomeKind int

const (
	OutcomeResponse OutcomeKind = iota
	OutcomeNxDomain
	OutcomeTimeout
	OutcomeError
)

// Outcome is the result of one UniQuery attempt sequence against one
// server: Response{records, response_time, valid_until},
// NxDomain{response_time, valid_until?}, Timeout, or Error(kind).
//
// Only the fields relevant to Kind are meaningful; the typed constructors
// below (NewResponse, NewNxDomain, NewTimeout, NewError) are the intended
// way to build one, so callers don't have to remember which fields apply.
type Outcome struct {
	Kind         OutcomeKind
	Records      []recordtype.Record
	ResponseTime time.Duration
	ValidUntil   time.Time // zero if not applicable (e.g. no negative-cache TTL)
	Err          error     // meaningful only when Kind == OutcomeError
}

func NewResponse(records []recordtype.Record, responseTime time.Duration, validUntil time.Time) Outcome {
	return Outcome{Kind: OutcomeResponse, Records: records, ResponseTime: responseTime, ValidUntil: validUntil}
}

func NewNxDomain(responseTime time.Duration, validUntil time.Time) Outcome {
	return Outcome{Kind: OutcomeNxDomain, ResponseTime: responseTime, ValidUntil: validUntil}
}

func NewTimeout() Outcome {
	return Outcome{Kind: OutcomeTimeout, Err: dnserrors.ErrTimeout}
}

func NewError(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// HasRecords reports whether this outcome is a Response carrying at least
// one record.
func (o Outcome) HasRecords() bool {
	return o.Kind == OutcomeResponse && len(o.Records) > 0
}
