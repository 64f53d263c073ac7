// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package motif defines the MotifCandidate record produced by every
// detector, the Detector contract (spec §4.1) each of the nine detectors
// satisfies, and the universal score normalizer (spec §4.11).
package motif

import (
	"fmt"

	"github.com/vryella/nonbfinder/taxonomy"
)

// Strand is the strand a motif was found on.
type Strand int8

const (
	StrandUnknown Strand = 0
	StrandPlus    Strand = 1
	StrandMinus   Strand = -1
)

func (s Strand) String() string {
	switch s {
	case StrandPlus:
		return "+"
	case StrandMinus:
		return "-"
	default:
		return "."
	}
}

// Candidate is a detector's raw output, or a post-processor's derived
// Hybrid/Cluster record. Coordinates are 0-based half-open, internal
// (spec §3); external encoding is applied only at the result-store
// boundary (internal/store).
type Candidate struct {
	Class    taxonomy.ClassID
	Subclass string
	SeqID    string
	Start    int
	End      int
	Strand   Strand

	RawScore        float64
	NormalizedScore float64

	Features map[string]interface{}

	// ComponentClasses is set only on Hybrid/Cluster records (spec §9,
	// "tabular names that look dynamic"): the structured data backing
	// the derived display subclass name, rather than a string that must
	// be parsed back apart.
	ComponentClasses []taxonomy.ClassID
}

// Len returns End-Start.
func (c Candidate) Len() int { return c.End - c.Start }

// Validate checks the invariants spec §3 requires of every candidate
// before it is accepted into the pipeline. It does not check
// NormalizedScore range; that invariant only holds after Normalize has
// run (spec §3: "after the normalizer has run").
func (c Candidate) Validate() error {
	if c.Start >= c.End {
		return fmt.Errorf("motif: invalid interval [%d,%d) for %s/%s", c.Start, c.End, taxonomy.CanonicalClass(c.Class), c.Subclass)
	}
	return nil
}

// Profile names the normalization discipline a detector declares for its
// raw scores (spec §4.11).
type Profile int

const (
	ProfileLinear Profile = iota
	ProfileLog
	ProfileG4Hunter
	ProfileZDNACumulative
)

// Detector is the contract every one of the nine detectors satisfies
// (spec §4.1). Implementations must be pure functions of (seq,
// parameters): no shared mutable state, so chunk/sequence fan-out can run
// detectors concurrently without synchronization.
type Detector interface {
	// ClassID is the constant primary class this detector produces.
	ClassID() taxonomy.ClassID
	// DefaultSubclasses lists the subclasses this detector may emit.
	DefaultSubclasses() []string
	// Profile returns the normalization discipline and the (raw_min,
	// raw_max) bounds used by Normalize.
	Profile() (Profile, float64, float64)
	// Detect scans seq (already chunked and cleaned) and returns
	// candidates in absolute coordinates: the detector itself adds
	// offset, the absolute start of seq, to every candidate's Start and
	// End, and the orchestrator does not translate them again.
	Detect(seq []byte, seqID string, offset int) []Candidate
}
