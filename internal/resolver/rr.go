package resolver

import (
	"github.com/miekg/dns"

	"github.com/dnsfleet/mhost/internal/dnsname"
	"github.com/dnsfleet/mhost/internal/recordtype"
)

// wireType maps a recordtype.Type onto the miekg/dns wire type code used
// to build the outgoing question.
func wireType(t recordtype.Type) uint16 {
	switch {
	case t.Equal(recordtype.A):
		return dns.TypeA
	case t.Equal(recordtype.AAAA):
		return dns.TypeAAAA
	case t.Equal(recordtype.ANAME):
		return dns.TypeCNAME // ANAME has no wire type; resolved via CNAME-like chasing upstream
	case t.Equal(recordtype.ANY):
		return dns.TypeANY
	case t.Equal(recordtype.AXFR):
		return dns.TypeAXFR
	case t.Equal(recordtype.CAA):
		return dns.TypeCAA
	case t.Equal(recordtype.CNAME):
		return dns.TypeCNAME
	case t.Equal(recordtype.IXFR):
		return dns.TypeIXFR
	case t.Equal(recordtype.MX):
		return dns.TypeMX
	case t.Equal(recordtype.NAPTR):
		return dns.TypeNAPTR
	case t.Equal(recordtype.NS):
		return dns.TypeNS
	case t.Equal(recordtype.NULL):
		return dns.TypeNULL
	case t.Equal(recordtype.OPENPGPKEY):
		return dns.TypeOPENPGPKEY
	case t.Equal(recordtype.OPT):
		return dns.TypeOPT
	case t.Equal(recordtype.PTR):
		return dns.TypePTR
	case t.Equal(recordtype.SOA):
		return dns.TypeSOA
	case t.Equal(recordtype.SRV):
		return dns.TypeSRV
	case t.Equal(recordtype.SSHFP):
		return dns.TypeSSHFP
	case t.Equal(recordtype.TLSA):
		return dns.TypeTLSA
	case t.Equal(recordtype.TXT):
		return dns.TypeTXT
	default:
		return dns.TypeNone
	}
}

// fromRR converts one wire resource record into this tool's Record
// model. Types outside the closed set recordtype models fall back to
// recordtype.Unknown with the raw rdata bytes, so CNAME chains and
// additional-section records of unmodeled types are still preserved
// rather than silently dropped.
func fromRR(rr dns.RR) (recordtype.Record, bool) {
	hdr := rr.Header()
	name := dnsname.New(hdr.Name)
	ttl := hdr.Ttl

	switch v := rr.(type) {
	case *dns.A:
		return recordtype.Record{Name: name, Type: recordtype.A, TTL: ttl, Data: recordtype.RData{A: v.A}}, true
	case *dns.AAAA:
		return recordtype.Record{Name: name, Type: recordtype.AAAA, TTL: ttl, Data: recordtype.RData{AAAA: v.AAAA}}, true
	case *dns.CNAME:
		return recordtype.Record{Name: name, Type: recordtype.CNAME, TTL: ttl, Data: recordtype.RData{CNAME: dnsname.New(v.Target)}}, true
	case *dns.NS:
		return recordtype.Record{Name: name, Type: recordtype.NS, TTL: ttl, Data: recordtype.RData{NS: dnsname.New(v.Ns)}}, true
	case *dns.PTR:
		return recordtype.Record{Name: name, Type: recordtype.PTR, TTL: ttl, Data: recordtype.RData{PTR: dnsname.New(v.Ptr)}}, true
	case *dns.MX:
		return recordtype.Record{Name: name, Type: recordtype.MX, TTL: ttl, Data: recordtype.RData{
			MX: recordtype.MXData{Preference: v.Preference, Exchange: dnsname.New(v.Mx)},
		}}, true
	case *dns.SOA:
		return recordtype.Record{Name: name, Type: recordtype.SOA, TTL: ttl, Data: recordtype.RData{
			SOA: recordtype.SOAData{
				MName:   dnsname.New(v.Ns),
				RName:   dnsname.New(v.Mbox),
				Serial:  v.Serial,
				Refresh: v.Refresh,
				Retry:   v.Retry,
				Expire:  v.Expire,
				Minimum: v.Minttl,
			},
		}}, true
	case *dns.SRV:
		return recordtype.Record{Name: name, Type: recordtype.SRV, TTL: ttl, Data: recordtype.RData{
			SRV: recordtype.SRVData{Priority: v.Priority, Weight: v.Weight, Port: v.Port, Target: dnsname.New(v.Target)},
		}}, true
	case *dns.TXT:
		chunks := make([][]byte, len(v.Txt))
		for i, s := range v.Txt {
			chunks[i] = []byte(s)
		}
		return recordtype.Record{Name: name, Type: recordtype.TXT, TTL: ttl, Data: recordtype.RData{TXT: chunks}}, true
	case *dns.NULL:
		return recordtype.Record{Name: name, Type: recordtype.NULL, TTL: ttl, Data: recordtype.RData{NULL: []byte(v.Data)}}, true
	default:
		raw, err := rawRdata(rr)
		if err != nil {
			return recordtype.Record{}, false
		}
		return recordtype.Record{Name: name, Type: recordtype.Unknown(hdr.Rrtype), TTL: ttl, Data: recordtype.RData{
			Unknown: recordtype.UnknownRData{Code: hdr.Rrtype, Bytes: raw},
		}}, true
	}
}

// rawRdata packs rr to wire form for the Unknown-type fallback. This is
// the whole record (name, header, rdata), not just rdata: miekg/dns
// doesn't expose rdata-only packing, and keeping the full wire bytes is
// still enough for a caller to re-parse or display the record.
func rawRdata(rr dns.RR) ([]byte, error) {
	buf := make([]byte, dns.Len(rr))
	off, err := dns.PackRR(rr, buf, 0, nil, false)
	if err != nil {
		return nil, err
	}
	return buf[:off], nil
}
