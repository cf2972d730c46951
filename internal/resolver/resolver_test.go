package resolver

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsfleet/mhost/internal/dnserrors"
	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
)

// runLocalUDPServer starts a miekg/dns UDP server on an ephemeral
// port.
func runLocalUDPServer(t *testing.T, handler dns.HandlerFunc) (addr string, shutdown func()) {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &dns.Server{PacketConn: pc, Handler: handler}
	waitLock := sync.Mutex{}
	waitLock.Lock()
	server.NotifyStartedFunc = waitLock.Unlock

	go func() { _ = server.ActivateAndServe() }()
	waitLock.Lock()

	return pc.LocalAddr().String(), func() { _ = server.Shutdown() }
}

func answerA(name string, ip net.IP, ttl uint32) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		m.Answer = append(m.Answer, &dns.A{
			Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: ttl},
			A:   ip,
		})
		_ = w.WriteMsg(m)
	}
}

func nxdomain() dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(req, dns.RcodeNameError)
		_ = w.WriteMsg(m)
	}
}

func refused() dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(req, dns.RcodeRefused)
		_ = w.WriteMsg(m)
	}
}

func specFor(t *testing.T, addr string) *nsspec.Spec {
	t.Helper()
	s, err := nsspec.Parse("udp://" + addr)
	require.NoError(t, err)
	return s
}

func TestLookupResponseOutcome(t *testing.T) {
	addr, shutdown := runLocalUDPServer(t, answerA("www.example.com.", net.ParseIP("192.0.2.1"), 300))
	defer shutdown()

	r, err := New(specFor(t, addr), Opts{Attempts: 2, MaxConcurrentRequests: 4, Timeout: time.Second})
	require.NoError(t, err)

	mq := query.New([]string{"www.example.com"}, []recordtype.Type{recordtype.A})
	lookups := r.Lookup(context.Background(), mq)

	require.Equal(t, 1, lookups.Len())
	got := lookups.Iter()[0]
	assert.Equal(t, lookup.OutcomeResponse, got.Outcome.Kind)
	require.Len(t, got.Outcome.Records, 1)
	assert.Equal(t, "192.0.2.1", got.Outcome.Records[0].Data.A.String())
}

func TestLookupNxDomainOutcome(t *testing.T) {
	addr, shutdown := runLocalUDPServer(t, nxdomain())
	defer shutdown()

	r, err := New(specFor(t, addr), Opts{Attempts: 1, MaxConcurrentRequests: 1, Timeout: time.Second})
	require.NoError(t, err)

	mq := query.New([]string{"nope.example.com"}, []recordtype.Type{recordtype.A})
	lookups := r.Lookup(context.Background(), mq)
	require.Equal(t, 1, lookups.Len())
	assert.Equal(t, lookup.OutcomeNxDomain, lookups.Iter()[0].Outcome.Kind)
}

func TestLookupRefusedOutcome(t *testing.T) {
	addr, shutdown := runLocalUDPServer(t, refused())
	defer shutdown()

	r, err := New(specFor(t, addr), Opts{Attempts: 1, MaxConcurrentRequests: 1, Timeout: time.Second})
	require.NoError(t, err)

	mq := query.New([]string{"x.example.com"}, []recordtype.Type{recordtype.A})
	lookups := r.Lookup(context.Background(), mq)
	require.Equal(t, 1, lookups.Len())
	outcome := lookups.Iter()[0].Outcome
	assert.Equal(t, lookup.OutcomeError, outcome.Kind)
	assert.ErrorAs(t, outcome.Err, new(dnserrors.QueryRefusedError))
}

func TestLookupTimeoutOutcome(t *testing.T) {
	// No server listening at this address: the exchange should time out
	// rather than hang, and the result must still be a single Lookup.
	r, err := New(specFor(t, "127.0.0.1:1"), Opts{Attempts: 1, MaxConcurrentRequests: 1, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	mq := query.New([]string{"x.example.com"}, []recordtype.Type{recordtype.A})
	lookups := r.Lookup(context.Background(), mq)
	require.Equal(t, 1, lookups.Len())
	outcome := lookups.Iter()[0].Outcome
	assert.Contains(t, []lookup.OutcomeKind{lookup.OutcomeTimeout, lookup.OutcomeError}, outcome.Kind)
}

func TestEstimate(t *testing.T) {
	addr, shutdown := runLocalUDPServer(t, answerA("a.example.com.", net.ParseIP("192.0.2.1"), 60))
	defer shutdown()

	r, err := New(specFor(t, addr), Opts{Attempts: 3, MaxConcurrentRequests: 1, Timeout: time.Second})
	require.NoError(t, err)

	mq := query.New([]string{"a.example.com", "b.example.com"}, []recordtype.Type{recordtype.A, recordtype.AAAA})
	min, max := r.Estimate(mq)
	assert.Equal(t, 4, min)
	assert.Equal(t, 12, max)
}

func TestAbortOnErrorStopsRemainingQueries(t *testing.T) {
	addr, shutdown := runLocalUDPServer(t, refused())
	defer shutdown()

	r, err := New(specFor(t, addr), Opts{Attempts: 1, MaxConcurrentRequests: 1, Timeout: time.Second, AbortOnError: true})
	require.NoError(t, err)

	mq := query.New([]string{"a.example.com", "b.example.com", "c.example.com", "d.example.com"}, []recordtype.Type{recordtype.A})
	lookups := r.Lookup(context.Background(), mq)
	// Serial stream: the first REFUSED outcome trips the breaker before
	// any further UniQuery is admitted.
	assert.Equal(t, 1, lookups.Len())
	assert.Equal(t, lookup.OutcomeError, lookups.Iter()[0].Outcome.Kind)
}

func TestMultipleUniQueriesAllComplete(t *testing.T) {
	addr, shutdown := runLocalUDPServer(t, answerA("www.example.com.", net.ParseIP("192.0.2.1"), 300))
	defer shutdown()

	r, err := New(specFor(t, addr), Opts{Attempts: 1, MaxConcurrentRequests: 2, Timeout: time.Second})
	require.NoError(t, err)

	mq := query.New([]string{"www.example.com"}, []recordtype.Type{recordtype.A, recordtype.AAAA})
	lookups := r.Lookup(context.Background(), mq)
	assert.Equal(t, 2, lookups.Len())
}
