// Package recordtype holds the closed set of DNS record types this tool
// understands and the typed payloads (RData) that go with them.
package recordtype

import (
	"fmt"
	"net"

	"github.com/dnsfleet/mhost/internal/dnsname"
)

// Type is the closed set of record types a lookup can target or a
// response can carry, plus a total ordinal used to sort output.
type Type struct {
	name    string
	ordinal int
	dnssec  string // subtype label, only meaningful when name == "DNSSEC"
	unknown uint16 // only meaningful when name == "UNKNOWN"
}

// Ordinal returns the type's position in the stable sort order used for
// rendering aggregated results.
func (t Type) Ordinal() int { return t.ordinal }

func (t Type) String() string {
	switch t.name {
	case "DNSSEC":
		return "DNSSEC(" + t.dnssec + ")"
	case "UNKNOWN":
		return fmt.Sprintf("UNKNOWN(%d)", t.unknown)
	default:
		return t.name
	}
}

// Equal reports whether two Types denote the same record type, including
// the DNSSEC subtype and the UNKNOWN code.
func (t Type) Equal(o Type) bool {
	return t.name == o.name && t.dnssec == o.dnssec && t.unknown == o.unknown
}

// The closed set of named types. Ordinals are fixed at declaration;
// DNSSEC and UNKNOWN ordinals are derived from their base category plus
// subtype/code below, so the ordinal is a total, stable sort key no
// matter when or on which goroutine a Type value is built.
var (
	A          = Type{name: "A", ordinal: 1}
	AAAA       = Type{name: "AAAA", ordinal: 2}
	ANAME      = Type{name: "ANAME", ordinal: 3}
	ANY        = Type{name: "ANY", ordinal: 4}
	AXFR       = Type{name: "AXFR", ordinal: 5}
	CAA        = Type{name: "CAA", ordinal: 6}
	CNAME      = Type{name: "CNAME", ordinal: 7}
	IXFR       = Type{name: "IXFR", ordinal: 8}
	MX         = Type{name: "MX", ordinal: 9}
	NAPTR      = Type{name: "NAPTR", ordinal: 10}
	NS         = Type{name: "NS", ordinal: 11}
	NULL       = Type{name: "NULL", ordinal: 12}
	OPENPGPKEY = Type{name: "OPENPGPKEY", ordinal: 13}
	OPT        = Type{name: "OPT", ordinal: 14}
	PTR        = Type{name: "PTR", ordinal: 15}
	SOA        = Type{name: "SOA", ordinal: 16}
	SRV        = Type{name: "SRV", ordinal: 17}
	SSHFP      = Type{name: "SSHFP", ordinal: 18}
	TLSA       = Type{name: "TLSA", ordinal: 19}
	TXT        = Type{name: "TXT", ordinal: 20}
	ZERO       = Type{name: "ZERO", ordinal: 21}
)

// DNSSEC types sort after every named type, in the fixed subtype order
// below; UNKNOWN types sort after DNSSEC, by wire code.
const (
	dnssecOrdinalBase  = 32
	unknownOrdinalBase = 64
)

var dnssecSubtypes = []string{"DS", "DNSKEY", "RRSIG", "NSEC", "NSEC3", "NSEC3PARAM", "CDS", "CDNSKEY"}

// DNSSEC returns the Type for a DNSSEC record subtype, e.g. "RRSIG" or
// "DS". Two DNSSEC Types with the same subtype compare Equal and carry
// the same ordinal.
func DNSSEC(subtype string) Type {
	ordinal := dnssecOrdinalBase + len(dnssecSubtypes)
	for i, s := range dnssecSubtypes {
		if s == subtype {
			ordinal = dnssecOrdinalBase + i
			break
		}
	}
	return Type{name: "DNSSEC", ordinal: ordinal, dnssec: subtype}
}

// Unknown returns the Type for a record type this tool has no dedicated
// projection for, keyed by its wire type code. Two Unknown Types with
// the same code compare Equal and carry the same ordinal.
func Unknown(code uint16) Type {
	return Type{name: "UNKNOWN", ordinal: unknownOrdinalBase + int(code), unknown: code}
}

// ByName looks up one of the named (non-DNSSEC, non-Unknown) types by its
// textual form, e.g. "A" or "MX". It is the inverse of Type.String() for
// those variants.
func ByName(s string) (Type, bool) {
	for _, t := range []Type{A, AAAA, ANAME, ANY, AXFR, CAA, CNAME, IXFR, MX,
		NAPTR, NS, NULL, OPENPGPKEY, OPT, PTR, SOA, SRV, SSHFP, TLSA, TXT, ZERO} {
		if t.name == s {
			return t, true
		}
	}
	return Type{}, false
}

// MXData is the preference/exchange pair carried by an MX record.
type MXData struct {
	Preference uint16
	Exchange   dnsname.Name
}

// SOAData is the fields of a start-of-authority record.
type SOAData struct {
	MName   dnsname.Name
	RName   dnsname.Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

// SRVData is the fields of a service record.
type SRVData struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   dnsname.Name
}

// UnknownRData carries the raw payload of a record type this tool does
// not model with a dedicated struct.
type UnknownRData struct {
	Code  uint16
	Bytes []byte
}

// RData is the tagged-variant payload of a Record. Exactly one of the
// fields is meaningful for any given record's Type; callers should use
// the RecordType to decide which, or use the typed accessors on Lookups
// (see the lookup package) that already do this filtering.
type RData struct {
	A     net.IP // 4-byte form
	AAAA  net.IP // 16-byte form
	CNAME dnsname.Name
	NS    dnsname.Name
	PTR   dnsname.Name
	ANAME dnsname.Name
	MX    MXData
	SOA   SOAData
	SRV   SRVData
	TXT   [][]byte
	NULL  []byte

	Unknown UnknownRData
}

// Record is a single resource record: a name, its type, time-to-live and
// payload. Records are hashable by all fields (via Key) so that
// set-uniquification treats the TTL as significant.
type Record struct {
	Name Name
	Type Type
	TTL  uint32
	Data RData
}

// Name is re-exported here under the local alias used by Record so that
// callers of this package don't need to import dnsname directly just to
// spell Record's field type. It is the same type as dnsname.Name.
type Name = dnsname.Name

// Key returns a comparable, hashable representation of the record for use
// as a map/set key. Two records produce equal keys iff they are equal on
// (Name, RecordType, TTL, RData).
func (r Record) Key() string {
	return fmt.Sprintf("%s|%s|%d|%s", r.Name.String(), r.Type.String(), r.TTL, r.Data.key())
}

func (d RData) key() string {
	switch {
	case d.A != nil:
		return "A:" + d.A.String()
	case d.AAAA != nil:
		return "AAAA:" + d.AAAA.String()
	default:
	}
	if !d.CNAME.IsZero() {
		return "CNAME:" + d.CNAME.String()
	}
	if !d.NS.IsZero() {
		return "NS:" + d.NS.String()
	}
	if !d.PTR.IsZero() {
		return "PTR:" + d.PTR.String()
	}
	if !d.ANAME.IsZero() {
		return "ANAME:" + d.ANAME.String()
	}
	if d.MX.Exchange.String() != "" {
		return fmt.Sprintf("MX:%d:%s", d.MX.Preference, d.MX.Exchange.String())
	}
	if d.SOA.MName.String() != "" {
		return fmt.Sprintf("SOA:%s:%s:%d:%d:%d:%d:%d",
			d.SOA.MName, d.SOA.RName, d.SOA.Serial, d.SOA.Refresh, d.SOA.Retry, d.SOA.Expire, d.SOA.Minimum)
	}
	if d.SRV.Target.String() != "" {
		return fmt.Sprintf("SRV:%d:%d:%d:%s", d.SRV.Priority, d.SRV.Weight, d.SRV.Port, d.SRV.Target)
	}
	if len(d.TXT) > 0 {
		s := "TXT:"
		for _, t := range d.TXT {
			s += string(t) + "\x00"
		}
		return s
	}
	if d.NULL != nil {
		return fmt.Sprintf("NULL:%x", d.NULL)
	}
	if d.Unknown.Bytes != nil {
		return fmt.Sprintf("UNKNOWN:%d:%x", d.Unknown.Code, d.Unknown.Bytes)
	}
	return "ZERO"
}
