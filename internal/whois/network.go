package whois

import (
	"encoding/json"
	"net"
)

// networkFields is the subset of a stat-service JSON payload this tool
// understands well enough to recover the CIDR block a response applies
// to, so the cache can serve any other IP in that same block. Real
// responses carry many more fields; everything else passes through
// untouched in Response.Payload.
type networkFields struct {
	CIDR    string `json:"cidr"`
	Network string `json:"network"`
}

// extractNetwork best-effort parses a "cidr" or "network" field out of a
// WHOIS-style JSON payload. A zero net.IPNet (ok=false) means the caller
// should fall back to a single-address cache entry.
func extractNetwork(payload []byte) (net.IPNet, bool) {
	var fields networkFields
	if err := json.Unmarshal(payload, &fields); err != nil {
		return net.IPNet{}, false
	}
	for _, candidate := range []string{fields.CIDR, fields.Network} {
		if candidate == "" {
			continue
		}
		if _, ipnet, err := net.ParseCIDR(candidate); err == nil {
			return *ipnet, true
		}
	}
	return net.IPNet{}, false
}
