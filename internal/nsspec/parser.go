package nsspec

import (
	"context"
	"net"
	"strconv"
	"strings"
)

// ResolveFunc resolves a symbolic name-server hostname to an IP
// address: the first unique IPv4, else the first IPv6, or nothing when
// neither exists. The bootstrap mechanics
// (issuing a MultiQuery{A,AAAA} against the bootstrap group and applying
// that selection rule) live with the caller, in the group package's
// bootstrap helpers, so this package stays free of a dependency on the
// resolver/group machinery.
type ResolveFunc func(ctx context.Context, host string) (net.IP, error)

// Parse parses a name-server spec string. Targets
// that are not IP literals are rejected with ErrHostnameNotAllowed; use
// ParseResolving for those.
func Parse(s string) (*Spec, error) {
	return parse(context.Background(), s, nil)
}

// ParseResolving parses a name-server spec string, resolving a bare
// hostname target through resolve (typically backed by a bootstrap
// resolver group) instead of rejecting it.
func ParseResolving(ctx context.Context, s string, resolve ResolveFunc) (*Spec, error) {
	return parse(ctx, s, resolve)
}

func parse(ctx context.Context, s string, resolve ResolveFunc) (*Spec, error) {
	orig := s
	proto := Udp
	rest := s

	if idx := strings.Index(rest, "://"); idx >= 0 {
		p, ok := parseProto(rest[:idx])
		if !ok {
			return nil, &InvalidSpecError{What: orig, Why: "unknown protocol: " + rest[:idx]}
		}
		proto = p
		rest = rest[idx+3:]
	} else if idx := strings.Index(rest, ":"); idx >= 0 {
		if p, ok := parseProto(rest[:idx]); ok {
			proto = p
			rest = rest[idx+1:]
			rest = strings.TrimPrefix(rest, "//")
		}
	}

	// Split off ",param=value" suffixes first; they never contain the
	// target/port separator we still need to parse.
	var spki, name string
	for {
		idx := strings.LastIndex(rest, ",")
		if idx < 0 {
			break
		}
		param := rest[idx+1:]
		if strings.HasPrefix(param, "spki=") {
			spki = strings.TrimPrefix(param, "spki=")
		} else if strings.HasPrefix(param, "name=") {
			name = strings.TrimPrefix(param, "name=")
		} else {
			break
		}
		rest = rest[:idx]
	}

	target, port, err := splitTargetPort(rest, defaultPort(proto))
	if err != nil {
		return nil, &InvalidSpecError{What: orig, Why: err.Error()}
	}

	if (proto == Tls || proto == Https) && spki == "" {
		return nil, &InvalidSpecError{What: orig, Why: "spki is required for tls/https specs"}
	}
	if (proto == Udp || proto == Tcp) && spki != "" {
		return nil, &InvalidSpecError{What: orig, Why: "spki is forbidden for udp/tcp specs"}
	}

	if target == "localhost" {
		target = "127.0.0.1"
	}

	spec := &Spec{Protocol: proto, Port: port, SPKI: spki, Name: name}

	if ip := net.ParseIP(target); ip != nil {
		spec.Address = ip.String()
		return spec, nil
	}

	if resolve == nil {
		return nil, ErrHostnameNotAllowed
	}

	ip, err := resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if ip == nil {
		return nil, &UnresolvableHostError{Host: target}
	}
	spec.Address = ip.String()
	spec.resolvedFromHost = target
	return spec, nil
}

func parseProto(s string) (Protocol, bool) {
	switch s {
	case "udp":
		return Udp, true
	case "tcp":
		return Tcp, true
	case "tls":
		return Tls, true
	case "https":
		return Https, true
	default:
		return 0, false
	}
}

// splitTargetPort splits "target[:port]", correctly handling bracketed
// IPv6 literals ("[::1]:53") and bare IPv6 literals with no port
// ("::1", which must not be split on its internal colons).
func splitTargetPort(s string, def uint16) (string, uint16, error) {
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return "", 0, errMalformed("unterminated ipv6 literal")
		}
		target := s[1:end]
		rest := s[end+1:]
		if rest == "" {
			return target, def, nil
		}
		rest = strings.TrimPrefix(rest, ":")
		port, err := strconv.ParseUint(rest, 10, 16)
		if err != nil {
			return "", 0, errMalformed("invalid port: " + rest)
		}
		return target, uint16(port), nil
	}

	// Bare IPv6 literal (multiple colons, no brackets): no port possible.
	if strings.Count(s, ":") > 1 {
		if net.ParseIP(s) == nil {
			return "", 0, errMalformed("invalid ipv6 literal: " + s)
		}
		return s, def, nil
	}

	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		port, err := strconv.ParseUint(s[idx+1:], 10, 16)
		if err != nil {
			return "", 0, errMalformed("invalid port: " + s[idx+1:])
		}
		return s[:idx], uint16(port), nil
	}

	return s, def, nil
}

type malformedError string

func (e malformedError) Error() string { return string(e) }

func errMalformed(s string) error { return malformedError(s) }
