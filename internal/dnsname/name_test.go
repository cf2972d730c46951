package dnsname

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCanonicalizes(t *testing.T) {
	n := New("WWW.Example.COM")
	assert.Equal(t, "www.example.com.", n.String())
	assert.True(t, n.IsFQDN())
	assert.Equal(t, 3, n.Labels())
}

func TestNewIdempotentOnTrailingDot(t *testing.T) {
	assert.Equal(t, New("example.com"), New("example.com."))
}

func TestZeroName(t *testing.T) {
	var n Name
	assert.True(t, n.IsZero())
	assert.Equal(t, 0, n.Labels())
}

func TestPrepend(t *testing.T) {
	base := New("example.com")
	got := Prepend("www", base)
	assert.Equal(t, "www.example.com.", got.String())
}

func TestPTRRoundTripIPv4(t *testing.T) {
	ip := net.ParseIP("85.197.30.30")
	ptr, ok := ToPTRName(ip)
	require.True(t, ok)
	assert.Equal(t, "30.30.197.85.in-addr.arpa.", ptr.String())

	back, ok := FromPTRName(ptr)
	require.True(t, ok)
	assert.True(t, ip.Equal(back))
	assert.Equal(t, 1, IsReverse(ptr))
}

func TestPTRRoundTripIPv6(t *testing.T) {
	ip := net.ParseIP("2001:db8::567:89ab")
	ptr, ok := ToPTRName(ip)
	require.True(t, ok)
	assert.Equal(t, 2, IsReverse(ptr))

	back, ok := FromPTRName(ptr)
	require.True(t, ok)
	assert.True(t, ip.Equal(back))
}

func TestPTRRoundTripFuzzLikeIPv4Set(t *testing.T) {
	samples := []string{"1.2.3.4", "255.255.255.255", "0.0.0.0", "192.168.1.1", "10.0.0.255"}
	for _, s := range samples {
		ip := net.ParseIP(s)
		require.NotNil(t, ip)
		ptr, ok := ToPTRName(ip)
		require.True(t, ok)
		back, ok := FromPTRName(ptr)
		require.True(t, ok)
		assert.True(t, ip.Equal(back), "round trip failed for %s", s)
	}
}

func TestFromPTRNameRejectsNonReverse(t *testing.T) {
	_, ok := FromPTRName(New("www.example.com"))
	assert.False(t, ok)
	assert.Equal(t, 0, IsReverse(New("www.example.com")))
}
