// Package workflow implements the investigation workflows: discover,
// soa-check and check (lint), each a staged pipeline composed over one
// or more group.Group lookups.
//
// A stage consumes environment (options + a group) plus the previous
// stage's accumulated output, and either falls through to the next
// stage or aborts the whole pipeline with an exit code.
package workflow

import "context"

// ExitCode is the three-valued workflow outcome: Ok, Abort (the
// pipeline could not continue) or CheckFailed (the pipeline ran to
// completion but found a problem).
type ExitCode int

const (
	ExitOk ExitCode = iota
	ExitAbort
	ExitCheckFailed
)

func (c ExitCode) String() string {
	switch c {
	case ExitOk:
		return "ok"
	case ExitAbort:
		return "abort"
	case ExitCheckFailed:
		return "check-failed"
	default:
		return "unknown"
	}
}

// Abort stops a pipeline early with the given exit code and a
// human-readable reason. A nil *Abort returned from a Stage means
// "continue to the next stage".
type Abort struct {
	Code   ExitCode
	Reason string
}

// Stage is one step of an investigation pipeline. It closes over the
// workflow's accumulated result (a plain pointer to a per-workflow
// struct) rather than threading an explicit "previous stage output"
// value, since each workflow's stages disagree on shape; see
// soacheck.go/discover.go/check.go for the per-workflow state each
// closure reads and writes.
type Stage func(ctx context.Context) *Abort

// runPipeline runs stages in order, stopping at the first one that
// aborts or the first context cancellation, and returns the resulting
// exit code. A stage abort is not a Go error: workflow-level failures
// (including a failure to build soa-check's ephemeral group) are
// reported as ExitAbort/ExitCheckFailed, and only context cancellation
// is surfaced as an error.
func runPipeline(ctx context.Context, stages ...Stage) (ExitCode, error) {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return ExitAbort, err
		}
		if ab := stage(ctx); ab != nil {
			return ab.Code, nil
		}
	}
	return ExitOk, nil
}
