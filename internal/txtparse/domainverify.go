package txtparse

import "strings"

// vendorPrefixes are recognized non-generic domain-verification TXT
// forms.
var vendorPrefixes = []string{"MS=", "ZOOM_verify_", "google-site-verification=", "facebook-domain-verification="}

// IsDomainVerification reports whether txt looks like a domain
// ownership verification record: either a recognized vendor prefix, or
// the generic
// "<prefix>-<prefix>-<prefix>=<id>" three-hyphen-separated-prefix form.
func IsDomainVerification(txt string) bool {
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(txt, p) {
			return true
		}
	}
	return isThreeHyphenPrefixed(txt)
}

// isThreeHyphenPrefixed matches "a-b-c=id": exactly three hyphen
// separated prefix components before the "=", each non-empty, followed
// by a non-empty id.
func isThreeHyphenPrefixed(txt string) bool {
	prefix, id, ok := strings.Cut(txt, "=")
	if !ok || id == "" {
		return false
	}
	parts := strings.Split(prefix, "-")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
