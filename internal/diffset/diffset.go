// Package diffset implements the field-level difference algebra used
// by the soa-check workflow to detect deviating authoritative
// answers: a Differ reports which fields disagree between two typed
// record payloads, or nothing at all when they're equal.
package diffset

import "sort"

// FieldTag names one differing field of a record payload, e.g. "Serial"
// for an SOAData or "Preference" for an MXData.
type FieldTag string

// Differ computes the set of differing FieldTags between two values of
// type T, returning (nil, false) when they are equal.
type Differ[T any] func(a, b T) ([]FieldTag, bool)

// Difference returns the set of unequal field tags between a and b, or
// (nil, false) when all fields are equal; Difference(d, x, x) is
// always (nil, false).
func Difference[T any](d Differ[T], a, b T) ([]FieldTag, bool) {
	return d(a, b)
}

// Differences computes, for an ordered collection of at least two
// values, the sorted list of field-diff-sets obtained by pairwise
// diffing the first element against each subsequent one. Returns
// (nil, false) when len(items) < 2 or when no pair differs.
func Differences[T any](d Differ[T], items []T) ([][]FieldTag, bool) {
	if len(items) < 2 {
		return nil, false
	}
	first := items[0]
	out := make([][]FieldTag, 0, len(items)-1)
	for _, other := range items[1:] {
		tags, differ := d(first, other)
		if !differ {
			continue
		}
		sorted := append([]FieldTag(nil), tags...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		out = append(out, sorted)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
