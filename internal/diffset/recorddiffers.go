package diffset

import "github.com/dnsfleet/mhost/internal/recordtype"

// MXDiffer compares two MXData payloads field by field.
func MXDiffer(a, b recordtype.MXData) ([]FieldTag, bool) {
	var tags []FieldTag
	if a.Preference != b.Preference {
		tags = append(tags, "Preference")
	}
	if !a.Exchange.Equal(b.Exchange) {
		tags = append(tags, "Exchange")
	}
	return tags, len(tags) > 0
}

// SOADiffer compares two SOAData payloads field by field. This is the
// primitive soa-check uses to decide deviation across a target's
// authoritative servers.
func SOADiffer(a, b recordtype.SOAData) ([]FieldTag, bool) {
	var tags []FieldTag
	if !a.MName.Equal(b.MName) {
		tags = append(tags, "MName")
	}
	if !a.RName.Equal(b.RName) {
		tags = append(tags, "RName")
	}
	if a.Serial != b.Serial {
		tags = append(tags, "Serial")
	}
	if a.Refresh != b.Refresh {
		tags = append(tags, "Refresh")
	}
	if a.Retry != b.Retry {
		tags = append(tags, "Retry")
	}
	if a.Expire != b.Expire {
		tags = append(tags, "Expire")
	}
	if a.Minimum != b.Minimum {
		tags = append(tags, "Minimum")
	}
	return tags, len(tags) > 0
}

// SRVDiffer compares two SRVData payloads field by field.
func SRVDiffer(a, b recordtype.SRVData) ([]FieldTag, bool) {
	var tags []FieldTag
	if a.Priority != b.Priority {
		tags = append(tags, "Priority")
	}
	if a.Weight != b.Weight {
		tags = append(tags, "Weight")
	}
	if a.Port != b.Port {
		tags = append(tags, "Port")
	}
	if !a.Target.Equal(b.Target) {
		tags = append(tags, "Target")
	}
	return tags, len(tags) > 0
}

// UnknownDiffer compares two UnknownRData payloads by code and raw bytes.
func UnknownDiffer(a, b recordtype.UnknownRData) ([]FieldTag, bool) {
	var tags []FieldTag
	if a.Code != b.Code {
		tags = append(tags, "Code")
	}
	if string(a.Bytes) != string(b.Bytes) {
		tags = append(tags, "Bytes")
	}
	return tags, len(tags) > 0
}
