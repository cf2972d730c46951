package txtparse

import "github.com/dnsfleet/mhost/internal/diffset"

// SPFDiffer compares two parsed SPF records field by field, for the
// check (lint) workflow's multiple-SPF divergence warning.
func SPFDiffer(a, b SPF) ([]diffset.FieldTag, bool) {
	var tags []diffset.FieldTag
	if a.Version != b.Version {
		tags = append(tags, "Version")
	}
	if !equalMechanisms(a.Mechanisms, b.Mechanisms) {
		tags = append(tags, "Mechanisms")
	}
	if !equalModifiers(a.Modifiers, b.Modifiers) {
		tags = append(tags, "Modifiers")
	}
	return tags, len(tags) > 0
}

func equalMechanisms(a, b []Mechanism) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalModifiers(a, b []Modifier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
