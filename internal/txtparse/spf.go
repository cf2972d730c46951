// Package txtparse implements TXT record sub-parsers: an SPF grammar
// parser and a domain-verification-record heuristic.
package txtparse

import "strings"

// Qualifier is the leading modifier on an SPF mechanism: '+' pass
// (default, may be omitted), '?' neutral, '~' softfail, '-' fail.
type Qualifier byte

const (
	QualifierPass     Qualifier = '+'
	QualifierNeutral  Qualifier = '?'
	QualifierSoftFail Qualifier = '~'
	QualifierFail     Qualifier = '-'
)

// Mechanism is one SPF directive: a qualifier, a mechanism name, an
// optional domain-spec, and an optional CIDR suffix.
type Mechanism struct {
	Qualifier  Qualifier
	Name       string // "all", "a", "ip4", "ip6", "mx", "ptr", "exists", "include"
	DomainSpec string
	CIDR       string
}

// Modifier is a "name=value" SPF term that isn't a mechanism, e.g.
// "redirect=" or "exp=".
type Modifier struct {
	Name  string
	Value string
}

// SPF is a parsed SPF record: its version tag plus its mechanisms and
// its modifiers, each list in the order its terms appeared. How
// mechanisms and modifiers were interleaved is not kept.
type SPF struct {
	Version    string // e.g. "spf1"
	Mechanisms []Mechanism
	Modifiers  []Modifier
}

// isValidSPFVersion reports whether version (the part of "v=spf<n>" after
// "spf") is a valid version number: one or more digits, nothing else. A
// record like "v=spfx -all" has the right prefix but an invalid version
// and must be rejected as a parse failure, not accepted with
// a garbage Version field.
func isValidSPFVersion(version string) bool {
	if !strings.HasPrefix(version, "spf") {
		return false
	}
	digits := strings.TrimPrefix(version, "spf")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var spfMechanismNames = map[string]bool{
	"all": true, "a": true, "ip4": true, "ip6": true, "mx": true,
	"ptr": true, "exists": true, "include": true,
}

// IsSPF reports whether txt begins with "v=spf", the marker the SPF
// lint stage filters TXT records on.
func IsSPF(txt string) bool {
	return strings.HasPrefix(strings.ToLower(txt), "v=spf")
}

// ParseSPF parses an SPF record body: "v=spf<n>" followed by
// space-separated words; qualifiers +?~- default
// to '+'; mechanisms all|a|ip4|ip6|mx|ptr|exists|include with optional
// ":domain-spec" and "/cidr"; modifiers "redirect=" and "exp=".
func ParseSPF(txt string) (SPF, bool) {
	fields := strings.Fields(txt)
	if len(fields) == 0 || !IsSPF(fields[0]) {
		return SPF{}, false
	}
	version := strings.TrimPrefix(strings.ToLower(fields[0]), "v=")
	if !isValidSPFVersion(version) {
		return SPF{}, false
	}
	spf := SPF{Version: version}

	for _, word := range fields[1:] {
		if word == "" {
			continue
		}
		if name, value, ok := strings.Cut(word, "="); ok && (name == "redirect" || name == "exp") {
			spf.Modifiers = append(spf.Modifiers, Modifier{Name: name, Value: value})
			continue
		}

		qual := QualifierPass
		rest := word
		switch rest[0] {
		case '+', '?', '~', '-':
			qual = Qualifier(rest[0])
			rest = rest[1:]
		}

		name := rest
		var domainSpec, cidr string
		if idx := strings.IndexAny(rest, ":/"); idx >= 0 {
			name = rest[:idx]
			remainder := rest[idx:]
			if strings.HasPrefix(remainder, ":") {
				remainder = remainder[1:]
				if slash := strings.Index(remainder, "/"); slash >= 0 {
					domainSpec = remainder[:slash]
					cidr = remainder[slash+1:]
				} else {
					domainSpec = remainder
				}
			} else if strings.HasPrefix(remainder, "/") {
				cidr = remainder[1:]
			}
		}

		if !spfMechanismNames[name] {
			// Unrecognized term: keep it as a best-effort mechanism entry
			// rather than dropping it, so lint output can still surface it.
			spf.Mechanisms = append(spf.Mechanisms, Mechanism{Qualifier: qual, Name: name})
			continue
		}
		spf.Mechanisms = append(spf.Mechanisms, Mechanism{Qualifier: qual, Name: name, DomainSpec: domainSpec, CIDR: cidr})
	}
	return spf, true
}
