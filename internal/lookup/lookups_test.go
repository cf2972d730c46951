package lookup

import (
	"net"
	"testing"
	"time"

	"github.com/dnsfleet/mhost/internal/dnsname"
	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpec(t *testing.T, s string) *nsspec.Spec {
	t.Helper()
	spec, err := nsspec.Parse(s)
	require.NoError(t, err)
	return spec
}

func TestMergeEmptyIsIdentity(t *testing.T) {
	l := Of([]Lookup{{Query: query.UniQuery{}, Server: mustSpec(t, "udp://1.1.1.1"), Outcome: NewTimeout()}})
	merged := l.Merge(Lookups{})
	assert.Equal(t, l.Len(), merged.Len())
}

func TestMergeAssociative(t *testing.T) {
	a := Of([]Lookup{{Outcome: NewTimeout()}})
	b := Of([]Lookup{{Outcome: NewTimeout()}})
	c := Of([]Lookup{{Outcome: NewTimeout()}})
	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	assert.Equal(t, left.Len(), right.Len())
	assert.Equal(t, 3, left.Len())
}

func TestStatisticsTotalsMatchLen(t *testing.T) {
	server := mustSpec(t, "udp://9.9.9.9")
	items := []Lookup{
		New(query.UniQuery{Name: dnsname.New("example.com"), Type: recordtype.A}, server,
			NewResponse([]recordtype.Record{{Name: dnsname.New("example.com"), Type: recordtype.A, TTL: 60, Data: recordtype.RData{A: net.ParseIP("192.0.2.1")}}}, 10*time.Millisecond, time.Time{})),
		New(query.UniQuery{Name: dnsname.New("nx.example.com"), Type: recordtype.A}, server, NewNxDomain(5*time.Millisecond, time.Time{})),
		New(query.UniQuery{Name: dnsname.New("slow.example.com"), Type: recordtype.A}, server, NewTimeout()),
		New(query.UniQuery{Name: dnsname.New("bad.example.com"), Type: recordtype.A}, server, NewError(&net.DNSError{Err: "refused"})),
	}
	l := Of(items)
	stats := l.Statistics()
	assert.Equal(t, l.Len(), stats.Total())
	assert.Equal(t, 1, stats.Responses)
	assert.Equal(t, 1, stats.NxDomains)
	assert.Equal(t, 1, stats.Timeouts)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.RespondingServers)
}

func TestTypedProjectionIsFilterThenExtract(t *testing.T) {
	server := mustSpec(t, "udp://9.9.9.9")
	ip1 := net.ParseIP("192.0.2.1")
	ip2 := net.ParseIP("192.0.2.2")
	records := []recordtype.Record{
		{Name: dnsname.New("example.com"), Type: recordtype.A, TTL: 60, Data: recordtype.RData{A: ip1}},
		{Name: dnsname.New("example.com"), Type: recordtype.AAAA, TTL: 60, Data: recordtype.RData{AAAA: net.ParseIP("2001:db8::1")}},
		{Name: dnsname.New("example.com"), Type: recordtype.A, TTL: 60, Data: recordtype.RData{A: ip2}},
	}
	l := Of([]Lookup{New(query.UniQuery{}, server, NewResponse(records, time.Millisecond, time.Time{}))})

	a := l.A()
	require.Len(t, a, 2)
	assert.Equal(t, ip1.String(), a[0].String())
	assert.Equal(t, ip2.String(), a[1].String())

	assert.Len(t, l.IPs(), 3)
}

func TestRecordTypesSetDeduplicates(t *testing.T) {
	server := mustSpec(t, "udp://9.9.9.9")
	records := []recordtype.Record{
		{Name: dnsname.New("a.com"), Type: recordtype.A, TTL: 60, Data: recordtype.RData{A: net.ParseIP("192.0.2.1")}},
		{Name: dnsname.New("a.com"), Type: recordtype.A, TTL: 120, Data: recordtype.RData{A: net.ParseIP("192.0.2.2")}},
	}
	l := Of([]Lookup{New(query.UniQuery{}, server, NewResponse(records, time.Millisecond, time.Time{}))})
	assert.Len(t, l.RecordTypes(), 1)
}

func TestUniqueRecordsTreatsTTLAsPartOfKey(t *testing.T) {
	name := dnsname.New("example.com")
	ip := net.ParseIP("192.0.2.1")
	records := []recordtype.Record{
		{Name: name, Type: recordtype.A, TTL: 60, Data: recordtype.RData{A: ip}},
		{Name: name, Type: recordtype.A, TTL: 120, Data: recordtype.RData{A: ip}},
		{Name: name, Type: recordtype.A, TTL: 60, Data: recordtype.RData{A: ip}},
	}
	unique := UniqueRecords(records)
	assert.Len(t, unique, 2)
}

func TestUniqueGenericPreservesFirstOccurrenceOrder(t *testing.T) {
	got := Unique([]int{3, 1, 3, 2, 1})
	assert.Equal(t, []int{3, 1, 2}, got)
}

func TestHasRecords(t *testing.T) {
	server := mustSpec(t, "udp://9.9.9.9")
	empty := Of([]Lookup{New(query.UniQuery{}, server, NewNxDomain(0, time.Time{}))})
	assert.False(t, empty.HasRecords())

	withRecords := Of([]Lookup{New(query.UniQuery{}, server,
		NewResponse([]recordtype.Record{{Name: dnsname.New("a.com"), Type: recordtype.A, Data: recordtype.RData{A: net.ParseIP("1.2.3.4")}}}, 0, time.Time{}))})
	assert.True(t, withRecords.HasRecords())
}
