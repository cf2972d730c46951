// Package sysconfig loads the OS's /etc/resolv.conf-style system
// resolver configuration into name-server specs and default resolver
// options.
package sysconfig

import (
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/dnsfleet/mhost/internal/dnserrors"
	"github.com/dnsfleet/mhost/internal/nsspec"
)

// Config is the information this tool extracts from the system resolver
// configuration: a list of name-server specs (each UDP or TCP, port 53,
// display name "System", depending on the file's `use_vc` flag) plus the
// attempts/ndots/timeout defaults found alongside them.
type Config struct {
	NameServers []*nsspec.Spec
	Attempts    int
	Ndots       int
	Timeout     time.Duration
}

// Load reads and parses path (typically "/etc/resolv.conf") using
// miekg/dns's resolv.conf reader, then reshapes it into our own Spec
// type and options. The `options` lines are scanned separately for the
// use-vc flag, which miekg/dns's reader does not expose. I/O or parse
// failure is a construction-time error, wrapped as dnserrors.IoError.
func Load(path string) (*Config, error) {
	cc, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, &dnserrors.IoError{Source: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dnserrors.IoError{Source: err}
	}
	var options []string
	for _, line := range strings.Split(string(data), "\n") {
		if f := strings.Fields(line); len(f) > 0 && f[0] == "options" {
			options = append(options, f[1:]...)
		}
	}
	return fromClientConfig(cc, options), nil
}

func fromClientConfig(cc *dns.ClientConfig, options []string) *Config {
	useVC := false
	for _, opt := range options {
		if opt == "use-vc" || opt == "use_vc" {
			useVC = true
		}
	}

	specs := make([]*nsspec.Spec, 0, len(cc.Servers))
	for _, server := range cc.Servers {
		proto := "udp"
		if useVC {
			proto = "tcp"
		}
		// Bracket bare IPv6 addresses before appending ":53"; otherwise
		// the trailing ":53" is just one more colon-separated group and
		// net.ParseIP happily (and wrongly) parses the concatenation as a
		// different address instead of host+port.
		if strings.Contains(server, ":") {
			server = "[" + server + "]"
		}
		spec, err := nsspec.Parse(proto + "://" + server + ":53,name=System")
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}

	attempts := cc.Attempts
	if attempts < 1 {
		attempts = 1
	}
	ndots := cc.Ndots
	timeout := time.Duration(cc.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Config{NameServers: specs, Attempts: attempts, Ndots: ndots, Timeout: timeout}
}
