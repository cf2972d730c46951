package workflow

import (
	"context"
	"net"

	"github.com/dnsfleet/mhost/internal/diffset"
	"github.com/dnsfleet/mhost/internal/dnsname"
	"github.com/dnsfleet/mhost/internal/group"
	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
	"github.com/dnsfleet/mhost/internal/resolver"
)

// SOACheckResult is the accumulated output of the soa-check workflow:
// every Lookups the pipeline issued, the authoritative name servers and
// IPs it discovered, the SOA records returned by each, and the
// field-diff sets across them.
type SOACheckResult struct {
	Target      dnsname.Name
	AuthNames   []recordtype.Name
	AuthIPs     []net.IP
	SOARecords  []recordtype.SOAData
	Differences [][]diffset.FieldTag
	Lookups     lookup.Lookups
	Exit        ExitCode
}

// SOACheckOptions configures the ephemeral authoritative-server group
// soa-check's third stage builds.
type SOACheckOptions struct {
	ResolverOpts resolver.Opts
	GroupOpts    group.Opts

	// AuthPort is the port the ephemeral authoritative group dials;
	// zero defaults to 53, the standard DNS port. Overridable so tests
	// can point the workflow at a loopback server bound to an ephemeral
	// port instead of requiring root to bind :53.
	AuthPort uint16
}

// SOACheck runs the four-stage soa-check pipeline:
//  1. NS lookup for target against bootstrap. Abort if empty.
//  2. A+AAAA lookup for each NS target. Abort if no IPs resolvable.
//  3. SOA lookup for target against an ephemeral group built from those IPs.
//  4. Difference across the returned SOA records: any deviation -> CheckFailed.
func SOACheck(ctx context.Context, bootstrap *group.Group, target string, opts SOACheckOptions) (SOACheckResult, error) {
	res := SOACheckResult{Target: dnsname.New(target)}
	authPort := opts.AuthPort
	if authPort == 0 {
		authPort = 53
	}

	stages := []Stage{
		// Stage 1: NS lookup for the target against the bootstrap group.
		func(ctx context.Context) *Abort {
			nsLookups := bootstrap.Lookup(ctx, query.Single(res.Target, recordtype.NS))
			res.Lookups = res.Lookups.Merge(nsLookups)

			nsRecords := lookup.UniqueRecords(nsLookups.RecordsByType(recordtype.NS))
			if len(nsRecords) == 0 {
				return &Abort{Code: ExitAbort, Reason: "no NS records found for " + res.Target.String()}
			}
			for _, r := range nsRecords {
				res.AuthNames = append(res.AuthNames, r.Data.NS)
			}
			return nil
		},
		// Stage 2: A+AAAA lookup for every NS target.
		func(ctx context.Context) *Abort {
			names := make([]string, len(res.AuthNames))
			for i, n := range res.AuthNames {
				names[i] = n.String()
			}
			mq := query.New(names, []recordtype.Type{recordtype.A, recordtype.AAAA})
			ipLookups := bootstrap.Lookup(ctx, mq)
			res.Lookups = res.Lookups.Merge(ipLookups)

			res.AuthIPs = uniqueIPs(ipLookups.IPs())
			if len(res.AuthIPs) == 0 {
				return &Abort{Code: ExitAbort, Reason: "no IPs resolvable for any authoritative name server"}
			}
			return nil
		},
		// Stage 3: build the ephemeral authoritative group and SOA-query it.
		func(ctx context.Context) *Abort {
			specs := make([]*nsspec.Spec, len(res.AuthIPs))
			for i, ip := range res.AuthIPs {
				specs[i] = &nsspec.Spec{Protocol: nsspec.Udp, Address: ip.String(), Port: authPort, Name: "authoritative"}
			}
			authGroup, err := group.FromConfigs(ctx, specs, opts.ResolverOpts, opts.GroupOpts)
			if err != nil {
				return &Abort{Code: ExitAbort, Reason: "could not build authoritative server group: " + err.Error()}
			}

			soaLookups := authGroup.Lookup(ctx, query.Single(res.Target, recordtype.SOA))
			res.Lookups = res.Lookups.Merge(soaLookups)
			res.SOARecords = soaLookups.SOA()
			return nil
		},
		// Stage 4: difference across the SOA records.
		func(ctx context.Context) *Abort {
			diffs, differs := diffset.Differences(diffset.SOADiffer, res.SOARecords)
			if differs {
				res.Differences = diffs
				return &Abort{Code: ExitCheckFailed, Reason: "authoritative servers disagree on SOA"}
			}
			return nil
		},
	}

	exit, err := runPipeline(ctx, stages...)
	if err != nil {
		return res, err
	}
	res.Exit = exit
	return res, nil
}

// uniqueIPs dedupes a slice of net.IP by textual form, preserving first
// occurrence order; net.IP is a slice type and so is not `comparable`,
// which rules out lookup.Unique directly.
func uniqueIPs(ips []net.IP) []net.IP {
	seen := make(map[string]struct{}, len(ips))
	out := make([]net.IP, 0, len(ips))
	for _, ip := range ips {
		k := ip.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ip)
	}
	return out
}
