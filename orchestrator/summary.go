// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import "github.com/vryella/nonbfinder/errs"

// Status is the terminal disposition of one sequence's run (spec §7's
// per-error recovery actions, surfaced as a result rather than a log
// line alone).
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
	StatusTimedOut
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SeqSummary is one sequence's outcome.
type SeqSummary struct {
	SeqID  string
	Status Status
	Motifs int
}

// RunSummary is the whole run's outcome: one SeqSummary per input
// sequence plus a count of every errs.Kind the run encountered, so a
// caller can tell "47 sequences ok, 2 skipped for InvalidSequence"
// without re-deriving it from logs.
type RunSummary struct {
	Sequences   []SeqSummary
	ErrorCounts map[errs.Kind]int
}
