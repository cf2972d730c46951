// Package dnsname implements a canonical, case-insensitive DNS name type
// and the PTR-name <-> IP address conversions used throughout the lookup
// pipeline.
//
// The reverse-zone conversions follow the same shape as CoreDNS's
// dnsutil.ExtractAddressFromReverse/IsReverse helpers, generalized into
// a two-way Name <-> net.IP mapping.
package dnsname

import (
	"net"
	"strings"
)

const (
	ip4arpaSuffix = "in-addr.arpa."
	ip6arpaSuffix = "ip6.arpa."
)

// Name is a canonical, fully-qualified DNS name. It is cheap to copy: the
// only field is a string, and Go strings already share their backing
// array across copies.
type Name struct {
	fqdn string // lowercase, trailing dot, "" only for the zero value
}

// New canonicalizes s (lowercasing it and ensuring a trailing dot) and
// returns the resulting Name. An empty string produces the zero Name.
func New(s string) Name {
	if s == "" {
		return Name{}
	}
	s = strings.ToLower(s)
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return Name{fqdn: s}
}

// IsZero reports whether n is the zero Name (no value set).
func (n Name) IsZero() bool { return n.fqdn == "" }

// String returns the canonical, FQDN textual form, including the
// trailing dot.
func (n Name) String() string { return n.fqdn }

// IsFQDN always reports true for a non-zero Name: canonicalization in New
// guarantees the trailing dot.
func (n Name) IsFQDN() bool { return n.fqdn != "" }

// Labels returns the number of labels in the name, e.g. "www.example.com."
// has 3.
func (n Name) Labels() int {
	if n.fqdn == "" {
		return 0
	}
	trimmed := strings.TrimSuffix(n.fqdn, ".")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, ".") + 1
}

// Equal reports whether two Names denote the same canonical name.
func (n Name) Equal(o Name) bool { return n.fqdn == o.fqdn }

// Prepend returns a new Name formed by prepending label as the leftmost
// label of n, e.g. Prepend("www", New("example.com.")) = "www.example.com.".
func Prepend(label string, n Name) Name {
	return New(label + "." + n.fqdn)
}

// ToPTRName converts an IP address into its PTR query name under
// in-addr.arpa (IPv4) or ip6.arpa (IPv6).
func ToPTRName(ip net.IP) (Name, bool) {
	if v4 := ip.To4(); v4 != nil {
		labels := make([]string, 4)
		for i := 0; i < 4; i++ {
			labels[3-i] = itoa(v4[i])
		}
		return New(strings.Join(labels, ".") + "." + ip4arpaSuffix), true
	}
	if v6 := ip.To16(); v6 != nil {
		const hex = "0123456789abcdef"
		labels := make([]string, 0, 32)
		for i := len(v6) - 1; i >= 0; i-- {
			b := v6[i]
			labels = append(labels, string(hex[b&0x0f]), string(hex[b>>4]))
		}
		return New(strings.Join(labels, ".") + "." + ip6arpaSuffix), true
	}
	return Name{}, false
}

// FromPTRName converts a PTR query name back into the IP address it
// denotes. It is the left inverse of ToPTRName: for any valid IPv4/IPv6
// ip, FromPTRName(ToPTRName(ip)) == (ip, true).
func FromPTRName(n Name) (net.IP, bool) {
	s := n.fqdn
	switch {
	case strings.HasSuffix(s, "."+ip4arpaSuffix):
		return fromReverseSegments(strings.TrimSuffix(s, "."+ip4arpaSuffix), false)
	case strings.HasSuffix(s, "."+ip6arpaSuffix):
		return fromReverseSegments(strings.TrimSuffix(s, "."+ip6arpaSuffix), true)
	default:
		return nil, false
	}
}

// IsReverse reports whether n lies in a reverse zone: 1 for in-addr.arpa
// (IPv4), 2 for ip6.arpa (IPv6), 0 otherwise.
func IsReverse(n Name) int {
	switch {
	case strings.HasSuffix(n.fqdn, "."+ip4arpaSuffix):
		return 1
	case strings.HasSuffix(n.fqdn, "."+ip6arpaSuffix):
		return 2
	default:
		return 0
	}
}

func fromReverseSegments(segments string, v6 bool) (net.IP, bool) {
	parts := strings.Split(segments, ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	if v6 {
		if len(parts)%4 != 0 {
			return nil, false
		}
		groups := make([]string, 0, len(parts)/4)
		for i := 0; i < len(parts); i += 4 {
			groups = append(groups, strings.Join(parts[i:i+4], ""))
		}
		ip := net.ParseIP(strings.Join(groups, ":"))
		if ip == nil {
			return nil, false
		}
		return ip.To16(), true
	}
	ip := net.ParseIP(strings.Join(parts, ".")).To4()
	if ip == nil {
		return nil, false
	}
	return ip, true
}

func itoa(b byte) string {
	if b < 10 {
		return string(rune('0' + b))
	}
	buf := [3]byte{}
	n := len(buf)
	for b > 0 {
		n--
		buf[n] = byte('0' + b%10)
		b /= 10
	}
	return string(buf[n:])
}
