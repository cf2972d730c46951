// Package nsspec parses the compact textual name-server descriptor
// grammar into a Spec and renders it back.
package nsspec

import (
	"errors"
	"fmt"
)

// Protocol is the wire transport a name server is addressed over.
type Protocol int

const (
	Udp Protocol = iota
	Tcp
	Tls
	Https
)

func (p Protocol) String() string {
	switch p {
	case Udp:
		return "udp"
	case Tcp:
		return "tcp"
	case Tls:
		return "tls"
	case Https:
		return "https"
	default:
		return "unknown"
	}
}

func defaultPort(p Protocol) uint16 {
	switch p {
	case Udp, Tcp:
		return 53
	case Tls:
		return 853
	case Https:
		return 443
	default:
		return 53
	}
}

// Spec is a parsed name-server endpoint descriptor: a transport protocol,
// an address (always an IP literal once parsing has succeeded), a port,
// an optional SPKI pin and an optional display name.
//
// Many Lookups from the same resolver share one *Spec
// instance; callers should hold a single Spec per resolver and pass its
// pointer around rather than re-parsing or cloning it.
type Spec struct {
	Protocol Protocol
	Address  string // IP literal, textual form (e.g. "127.0.0.1" or "::1")
	Port     uint16
	SPKI     string // required for Tls/Https, empty (forbidden) for Udp/Tcp
	Name     string // optional display name

	// resolvedFromHost is the original hostname this Spec was built from
	// via ParseResolving, if any. Non-empty here means Render is not a
	// faithful round trip of the original text.
	resolvedFromHost string
}

// InvalidSpecError reports a grammar or semantic violation in a
// name-server spec string.
type InvalidSpecError struct {
	What string
	Why  string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid name server spec %q: %s", e.What, e.Why)
}

// UnresolvableHostError reports that bootstrap resolution of a symbolic
// name-server host yielded no A or AAAA record.
type UnresolvableHostError struct {
	Host string
}

func (e *UnresolvableHostError) Error() string {
	return fmt.Sprintf("unresolvable name server host: %s", e.Host)
}

// ErrHostnameNotAllowed is returned by Parse when the target is a bare
// hostname rather than an IP literal; use ParseResolving for those.
var ErrHostnameNotAllowed = errors.New("nsspec: target is a hostname, use ParseResolving")

// Render is the textual round trip of the Spec. For a
// Spec built from a resolved hostname, Render reflects the resolved IP,
// not the original host text (the original is not a round trip by
// definition in that case).
func (s *Spec) Render() string {
	out := s.Protocol.String() + "://" + addressText(s.Address)
	if s.Port != defaultPort(s.Protocol) {
		out += fmt.Sprintf(":%d", s.Port)
	}
	if s.SPKI != "" {
		out += ",spki=" + s.SPKI
	}
	if s.Name != "" {
		out += ",name=" + s.Name
	}
	return out
}

func addressText(addr string) string {
	// A literal containing ":" that isn't already bracketed is IPv6.
	for i := 0; i < len(addr); i++ {
		if addr[i] == ':' {
			return "[" + addr + "]"
		}
	}
	return addr
}

// String renders the same form as Render; it exists so Spec satisfies
// fmt.Stringer for logging.
func (s *Spec) String() string { return s.Render() }
