package resolver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"github.com/semihalev/zlog/v2"

	"github.com/dnsfleet/mhost/internal/dnserrors"
	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/metrics"
	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
	"github.com/dnsfleet/mhost/internal/stream"
)

// Resolver is a single-endpoint async DNS client bound to one
// NameServerSpec. Its miekg/dns.Client (or, for https, *http.Client)
// handle is shared across clones, so a Resolver is cheap to clone.
type Resolver struct {
	spec *nsspec.Spec
	opts Opts

	dnsClient  *dns.Client
	httpClient *http.Client // only set for Protocol == Https

	metrics *metrics.Registry // optional; nil means no metrics recorded
}

// New constructs a Resolver bound to spec with opts. spec is expected
// to be a single shared instance held by the owning group/fleet.
func New(spec *nsspec.Spec, opts Opts) (*Resolver, error) {
	opts = opts.normalized()
	r := &Resolver{spec: spec, opts: opts}

	switch spec.Protocol {
	case nsspec.Udp:
		r.dnsClient = &dns.Client{Net: "udp", Timeout: opts.Timeout}
	case nsspec.Tcp:
		r.dnsClient = &dns.Client{Net: "tcp", Timeout: opts.Timeout}
	case nsspec.Tls:
		tlsConf, err := pinnedTLSConfig(spec.SPKI)
		if err != nil {
			return nil, err
		}
		r.dnsClient = &dns.Client{Net: "tcp-tls", TLSConfig: tlsConf, Timeout: opts.Timeout}
	case nsspec.Https:
		tlsConf, err := pinnedTLSConfig(spec.SPKI)
		if err != nil {
			return nil, err
		}
		r.httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConf,
			},
		}
	default:
		return nil, &dnserrors.ResolveError{Reason: fmt.Sprintf("unsupported protocol %v", spec.Protocol)}
	}
	return r, nil
}

// Spec returns the NameServerSpec this Resolver is bound to.
func (r *Resolver) Spec() *nsspec.Spec { return r.spec }

// WithMetrics attaches a metrics.Registry that subsequent Lookup calls
// report lookups_total and resolver_inflight against. Returns r for
// chaining; nil disables metrics (the default).
func (r *Resolver) WithMetrics(m *metrics.Registry) *Resolver {
	r.metrics = m
	return r
}

// Clone returns a Resolver sharing the same underlying client handle.
// Since Resolver's fields are all pointers or immutable values already,
// this is just a struct copy.
func (r *Resolver) Clone() *Resolver {
	c := *r
	return &c
}

// Estimate returns the {min, max} UniQuery attempt count:
// min = |names|·|types|, max = min·attempts.
func (r *Resolver) Estimate(mq query.MultiQuery) (min, max int) {
	return mq.Estimate(r.opts.Attempts)
}

// Lookup expands mq into its UniQuery cross-product and runs them
// through a bounded-concurrency stream of width
// opts.MaxConcurrentRequests. When AbortOnError or AbortOnTimeout is
// set, the stream's breaker stops pulling further UniQueries after the
// first matching outcome; outcomes already in flight are still
// collected.
func (r *Resolver) Lookup(ctx context.Context, mq query.MultiQuery) lookup.Lookups {
	uqs := mq.Expand()
	tasks := make([]stream.Task[lookup.Lookup], 0, len(uqs))
	for _, uq := range uqs {
		uq := uq
		tasks = append(tasks, func(ctx context.Context) (lookup.Lookup, error) {
			return r.lookupOne(ctx, uq), nil
		})
	}

	var breaker stream.Breaker[lookup.Lookup]
	if r.opts.AbortOnError || r.opts.AbortOnTimeout {
		breaker = func(lk lookup.Lookup) bool {
			tripped := (r.opts.AbortOnError && lk.Outcome.Kind == lookup.OutcomeError) ||
				(r.opts.AbortOnTimeout && lk.Outcome.Kind == lookup.OutcomeTimeout)
			if tripped {
				zlog.Warn("aborting remaining queries", "server", r.spec.String(), "name", lk.Query.Name.String(), "type", lk.Query.Type.String())
				if r.metrics != nil {
					r.metrics.ObserveBreakerTrip()
				}
			}
			return tripped
		}
	}

	items, _ := stream.Collect(ctx, r.opts.MaxConcurrentRequests, tasks, breaker)
	return lookup.Of(items)
}

// lookupOne records the start time, issues the request with
// opts.Timeout and up to opts.Attempts tries, and classifies the
// outcome. All non-panic errors are captured in the returned Lookup's
// Outcome, never propagated.
func (r *Resolver) lookupOne(ctx context.Context, uq query.UniQuery) lookup.Lookup {
	start := time.Now()
	msg := new(dns.Msg)
	msg.SetQuestion(uq.Name.String(), wireType(uq.Type))
	msg.RecursionDesired = false

	var lastErr error
	var resp *dns.Msg
	var rtt time.Duration

	for attempt := 0; attempt < r.opts.Attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		if r.metrics != nil {
			r.metrics.ResolverInflight.Inc()
		}
		resp, rtt, lastErr = r.exchange(attemptCtx, msg)
		if r.metrics != nil {
			r.metrics.ResolverInflight.Dec()
		}
		cancel()
		if lastErr == nil {
			break
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			break
		}
	}

	responseTime := time.Since(start)
	outcome := classify(resp, rtt, responseTime, lastErr)
	if lastErr != nil {
		zlog.Debug("lookup attempt failed", "server", r.spec.String(), "name", uq.Name.String(), "type", uq.Type.String(), "error", lastErr.Error())
	}
	if r.metrics != nil {
		r.metrics.ObserveOutcome(outcomeLabel(outcome))
	}
	return lookup.New(uq, r.spec, outcome)
}

func outcomeLabel(o lookup.Outcome) string {
	switch o.Kind {
	case lookup.OutcomeResponse:
		return "response"
	case lookup.OutcomeNxDomain:
		return "nxdomain"
	case lookup.OutcomeTimeout:
		return "timeout"
	default:
		return "error"
	}
}

func (r *Resolver) exchange(ctx context.Context, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
	if r.spec.Protocol == nsspec.Https {
		return r.exchangeDoH(ctx, msg)
	}
	addr := net.JoinHostPort(r.spec.Address, fmt.Sprint(r.spec.Port))
	resp, rtt, err := r.dnsClient.ExchangeContext(ctx, msg, addr)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, rtt, dnserrors.ErrTimeout
		}
		return nil, rtt, &dnserrors.ProtocolError{Reason: err.Error()}
	}
	return resp, rtt, nil
}

// exchangeDoH sends msg as an RFC 8484 POST body
// ("application/dns-message") and unpacks the wire-format response.
func (r *Resolver) exchangeDoH(ctx context.Context, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
	packed, err := msg.Pack()
	if err != nil {
		return nil, 0, &dnserrors.ProtocolError{Reason: err.Error()}
	}

	url := fmt.Sprintf("https://%s/dns-query", net.JoinHostPort(r.spec.Address, fmt.Sprint(r.spec.Port)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(packed))
	if err != nil {
		return nil, 0, &dnserrors.ProtocolError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/dns-message")
	req.Header.Set("Accept", "application/dns-message")

	start := time.Now()
	httpResp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, time.Since(start), dnserrors.ErrTimeout
		}
		return nil, time.Since(start), &dnserrors.IoError{Source: err}
	}
	defer httpResp.Body.Close()
	rtt := time.Since(start)

	if httpResp.StatusCode != http.StatusOK {
		return nil, rtt, &dnserrors.HttpStatusError{Code: httpResp.StatusCode}
	}
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, rtt, &dnserrors.HttpBodyError{Source: err}
	}
	resp := new(dns.Msg)
	if err := resp.Unpack(body); err != nil {
		return nil, rtt, &dnserrors.ProtocolError{Reason: err.Error()}
	}
	return resp, rtt, nil
}

func classify(resp *dns.Msg, rtt time.Duration, responseTime time.Duration, err error) lookup.Outcome {
	if err != nil {
		if errors.Is(err, dnserrors.ErrTimeout) {
			return lookup.NewTimeout()
		}
		return lookup.NewError(err)
	}
	if resp == nil {
		return lookup.NewError(&dnserrors.OtherError{Reason: "nil response with no error"})
	}

	switch resp.Rcode {
	case dns.RcodeRefused:
		return lookup.NewError(dnserrors.QueryRefusedError{})
	case dns.RcodeServerFailure:
		return lookup.NewError(dnserrors.ServerFailureError{})
	case dns.RcodeNameError:
		validUntil := time.Time{}
		if ttl, ok := negativeTTL(resp); ok {
			validUntil = time.Now().Add(time.Duration(ttl) * time.Second)
		}
		return lookup.NewNxDomain(responseTime, validUntil)
	case dns.RcodeSuccess:
		records, minTTL := toRecords(resp)
		validUntil := time.Time{}
		if minTTL >= 0 {
			validUntil = time.Now().Add(time.Duration(minTTL) * time.Second)
		}
		return lookup.NewResponse(records, responseTime, validUntil)
	default:
		return lookup.NewError(&dnserrors.OtherError{Reason: fmt.Sprintf("rcode %s", dns.RcodeToString[resp.Rcode])})
	}
}

func negativeTTL(resp *dns.Msg) (uint32, bool) {
	for _, rr := range resp.Ns {
		if soa, ok := rr.(*dns.SOA); ok {
			return soa.Minttl, true
		}
	}
	return 0, false
}

// toRecords converts a successful response into the Record set kept in
// Outcome.Response, walking both the Answer and Additional sections:
// additional-section records (e.g. glue A/AAAA alongside an NS/MX/SRV
// answer) are kept as returned, not discarded. minTTL is taken
// across both sections, since a glue record's TTL still bounds how long
// the overall answer should be considered fresh.
func toRecords(resp *dns.Msg) ([]recordtype.Record, int64) {
	var records []recordtype.Record
	minTTL := int64(-1)
	collect := func(rrs []dns.RR) {
		for _, rr := range rrs {
			rec, ok := fromRR(rr)
			if !ok {
				continue
			}
			records = append(records, rec)
			if minTTL < 0 || int64(rec.TTL) < minTTL {
				minTTL = int64(rec.TTL)
			}
		}
	}
	collect(resp.Answer)
	collect(resp.Extra)
	return records, minTTL
}

func pinnedTLSConfig(spki string) (*tls.Config, error) {
	if spki == "" {
		return &tls.Config{}, nil
	}
	want, err := decodeSPKI(spki)
	if err != nil {
		return nil, &nsspec.InvalidSpecError{What: spki, Why: "invalid spki: " + err.Error()}
	}
	return &tls.Config{
		InsecureSkipVerify: true, // verification is done by VerifyPeerCertificate against the pin
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			for _, raw := range rawCerts {
				cert, err := x509.ParseCertificate(raw)
				if err != nil {
					continue
				}
				sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
				if bytes.Equal(sum[:], want) {
					return nil
				}
			}
			return errors.New("tls: no certificate matched the pinned spki")
		},
	}, nil
}

func decodeSPKI(spki string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(spki); err == nil && len(b) == sha256.Size {
		return b, nil
	}
	if b, err := hex.DecodeString(spki); err == nil && len(b) == sha256.Size {
		return b, nil
	}
	return nil, errors.New("expected base64 or hex sha256 digest")
}
