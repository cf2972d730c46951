package group

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
	"github.com/dnsfleet/mhost/internal/resolver"
)

func runLocalUDPServer(t *testing.T, ip net.IP) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &dns.Server{PacketConn: pc, Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		m.Answer = append(m.Answer, &dns.A{
			Hdr: dns.RR_Header{Name: req.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
			A:   ip,
		})
		_ = w.WriteMsg(m)
	})}
	waitLock := sync.Mutex{}
	waitLock.Lock()
	server.NotifyStartedFunc = waitLock.Unlock
	go func() { _ = server.ActivateAndServe() }()
	waitLock.Lock()
	t.Cleanup(func() { _ = server.Shutdown() })
	return pc.LocalAddr().String()
}

func buildGroup(t *testing.T, n int) *Group {
	t.Helper()
	var specs []*nsspec.Spec
	for i := 0; i < n; i++ {
		addr := runLocalUDPServer(t, net.ParseIP("192.0.2.1"))
		spec, err := nsspec.Parse("udp://" + addr)
		require.NoError(t, err)
		specs = append(specs, spec)
	}
	g, err := FromConfigs(context.Background(), specs, resolver.Opts{Attempts: 1, MaxConcurrentRequests: 4, Timeout: time.Second}, Opts{MaxConcurrentServers: 4})
	require.NoError(t, err)
	return g
}

func TestLookupCardinalityAcrossFleet(t *testing.T) {
	g := buildGroup(t, 2)
	mq := query.New([]string{"www.example.com"}, []recordtype.Type{recordtype.A, recordtype.AAAA})
	lookups := g.Lookup(context.Background(), mq)
	assert.Equal(t, 4, lookups.Len())
}

func TestZeroResolversEmptyNoError(t *testing.T) {
	g, err := FromConfigs(context.Background(), nil, resolver.Opts{}, Opts{MaxConcurrentServers: 4})
	require.NoError(t, err)
	mq := query.New([]string{"www.example.com"}, []recordtype.Type{recordtype.A})
	lookups := g.Lookup(context.Background(), mq)
	assert.True(t, lookups.IsEmpty())
}

func TestLimitZeroMeansUnlimited(t *testing.T) {
	g := buildGroup(t, 3)
	g.opts.Limit = 0
	assert.Equal(t, 3, len(g.fleet()))
}

func TestLimitTruncatesToStablePrefix(t *testing.T) {
	g := buildGroup(t, 3)
	g.opts.Limit = 2
	assert.Len(t, g.fleet(), 2)
	assert.Same(t, g.resolvers[0], g.fleet()[0])
	assert.Same(t, g.resolvers[1], g.fleet()[1])
}

func TestMergeAppendsResolversKeepsSelfOpts(t *testing.T) {
	a := buildGroup(t, 1)
	b := buildGroup(t, 2)
	a.opts.MaxConcurrentServers = 7
	merged := a.Merge(b)
	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, 7, merged.opts.MaxConcurrentServers)
}

func TestSingleServerLookupDoesNotDuplicateQueries(t *testing.T) {
	g := buildGroup(t, 3)
	mq := query.New([]string{"a.example.com", "b.example.com"}, []recordtype.Type{recordtype.A})
	lookups := g.SingleServerLookup(context.Background(), mq)
	assert.Equal(t, 2, lookups.Len())
}

func TestResolveFuncPicksIPv4(t *testing.T) {
	g := buildGroup(t, 1)
	resolve := g.ResolveFunc()
	ip, err := resolve(context.Background(), "bootstrap.example.com")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", ip.String())
}
