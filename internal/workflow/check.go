package workflow

import (
	"context"
	"fmt"

	"github.com/dnsfleet/mhost/internal/diffset"
	"github.com/dnsfleet/mhost/internal/dnsname"
	"github.com/dnsfleet/mhost/internal/group"
	"github.com/dnsfleet/mhost/internal/lookup"
	"github.com/dnsfleet/mhost/internal/query"
	"github.com/dnsfleet/mhost/internal/recordtype"
	"github.com/dnsfleet/mhost/internal/txtparse"
)

// comprehensiveTypes is the record-type set check's first stage
// queries.
var comprehensiveTypes = []recordtype.Type{
	recordtype.A, recordtype.AAAA, recordtype.ANAME, recordtype.CAA,
	recordtype.CNAME, recordtype.MX, recordtype.NAPTR, recordtype.NS,
	recordtype.PTR, recordtype.SOA, recordtype.SRV, recordtype.SSHFP,
	recordtype.TLSA, recordtype.TXT,
}

// CheckOptions toggles the two optional lint stages.
type CheckOptions struct {
	CNAMELint bool
	SPFLint   bool
}

// CheckResult is the accumulated output of the check (lint) workflow: the
// comprehensive Lookups plus any lint findings, each a human-readable
// description of one failure or warning.
type CheckResult struct {
	Lookups  lookup.Lookups
	Findings []string
	Exit     ExitCode
}

// Check runs the check (lint) pipeline:
//  1. Lookup a comprehensive record-type set.
//  2. Optional CNAME lint: any MX exchange, SRV target, or CNAME target
//     that itself resolves via CNAME is a finding.
//  3. Optional SPF lint: exactly one v=spf TXT record is required; zero
//     is informational (not a finding), two or more is a finding, and a
//     record that fails to parse is a finding.
//
// Exit is ExitCheckFailed when any finding was produced, ExitOk
// otherwise.
func Check(ctx context.Context, g *group.Group, target string, opts CheckOptions) (CheckResult, error) {
	name := dnsname.New(target)
	var res CheckResult

	stages := []Stage{
		func(ctx context.Context) *Abort {
			mq := query.New([]string{name.String()}, comprehensiveTypes)
			res.Lookups = g.Lookup(ctx, mq)
			return nil
		},
		func(ctx context.Context) *Abort {
			if !opts.CNAMELint {
				return nil
			}
			res.Findings = append(res.Findings, lintCNAME(ctx, g, res.Lookups)...)
			return nil
		},
		func(ctx context.Context) *Abort {
			if !opts.SPFLint {
				return nil
			}
			res.Findings = append(res.Findings, lintSPF(res.Lookups)...)
			return nil
		},
	}

	exit, err := runPipeline(ctx, stages...)
	if err != nil {
		return res, err
	}
	if len(res.Findings) > 0 {
		res.Exit = ExitCheckFailed
	} else {
		res.Exit = exit
	}
	return res, nil
}

// lintCNAME queries CNAME for every MX exchange, SRV target, and CNAME
// target found in lookups; a non-empty result for any of them is a
// finding: MX/SRV must not alias, and CNAME chains are discouraged.
func lintCNAME(ctx context.Context, g *group.Group, lookups lookup.Lookups) []string {
	var targets []recordtype.Name
	for _, mx := range lookups.MX() {
		targets = append(targets, mx.Exchange)
	}
	for _, srv := range lookups.SRV() {
		targets = append(targets, srv.Target)
	}
	targets = append(targets, lookups.CNAME()...)
	targets = lookup.Unique(targets)
	if len(targets) == 0 {
		return nil
	}

	names := make([]string, len(targets))
	for i, n := range targets {
		names[i] = n.String()
	}
	mq := query.New(names, []recordtype.Type{recordtype.CNAME})
	cnameLookups := g.Lookup(ctx, mq)

	var findings []string
	reported := map[string]struct{}{}
	for _, lk := range cnameLookups.Iter() {
		if lk.Outcome.Kind != lookup.OutcomeResponse || len(lk.Outcome.Records) == 0 {
			continue
		}
		key := lk.Query.Name.String()
		if _, ok := reported[key]; ok {
			continue
		}
		reported[key] = struct{}{}
		findings = append(findings, fmt.Sprintf("%s is itself an alias (MX/SRV targets and CNAME chains must not resolve via CNAME)", key))
	}
	return findings
}

// lintSPF extracts every TXT record beginning with "v=spf" and
// enforces the exactly-one rule from RFC 4408 §3.1.2:
// zero records is informational, one is fine once parsed, two or more
// is a finding, and any record that fails to parse is a finding. When
// more than one parses, they are diffed and divergence is a finding.
func lintSPF(lookups lookup.Lookups) []string {
	var spfTexts []string
	for _, txt := range lookups.TXT() {
		joined := joinTXT(txt)
		if txtparse.IsSPF(joined) {
			spfTexts = append(spfTexts, joined)
		}
	}

	var findings []string
	var parsed []txtparse.SPF
	for _, s := range spfTexts {
		spf, ok := txtparse.ParseSPF(s)
		if !ok {
			findings = append(findings, fmt.Sprintf("SPF record failed to parse: %q", s))
			continue
		}
		parsed = append(parsed, spf)
	}

	switch len(spfTexts) {
	case 0:
		// Informational: absence of an SPF record is not a finding.
	case 1:
		// A single record is fine as long as it parsed, already checked above.
	default:
		findings = append(findings, fmt.Sprintf("multiple SPF records found (%d), exactly one is required per RFC 4408 §3.1.2", len(spfTexts)))
		if diffs, differ := diffset.Differences(txtparse.SPFDiffer, parsed); differ {
			findings = append(findings, fmt.Sprintf("SPF records diverge: %v", diffs))
		}
	}
	return findings
}

func joinTXT(chunks [][]byte) string {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return string(out)
}
