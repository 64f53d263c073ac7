// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequence

import (
	"bytes"
	"fmt"
)

// MinSequenceLength is the shortest sequence the pipeline will accept
// (spec §7: InvalidSequence is raised below this length).
const MinSequenceLength = 10

// ErrInvalidSequence reports that a sequence could not be ingested: it
// contains characters outside the normalization map, or is shorter than
// MinSequenceLength.
type ErrInvalidSequence struct {
	SeqID  string
	Reason string
}

func (e *ErrInvalidSequence) Error() string {
	return fmt.Sprintf("sequence %q: invalid: %s", e.SeqID, e.Reason)
}

// ambiguityAsMismatch lists the IUPAC ambiguity codes this pipeline
// accepts on input but treats as mismatches (never matched literally by a
// detector): they are retained in place, not substituted, so coordinates
// never shift, but no detector's pattern grammar ever matches them since
// every detector compares against exactly A, C, G or T.
var knownBases = map[byte]bool{'A': true, 'C': true, 'G': true, 'T': true}

var ambiguityAsMismatch = map[byte]bool{
	'N': true, 'R': true, 'Y': true, 'S': true, 'W': true, 'K': true,
	'M': true, 'B': true, 'D': true, 'H': true, 'V': true,
}

// Clean upper-cases bases, maps U to T (RNA input), and validates that
// every remaining byte is either a canonical base or a recognized
// ambiguity code. It returns ErrInvalidSequence if an unrecognized
// character is found or the sequence is too short.
func Clean(seqID string, bases []byte) ([]byte, error) {
	out, err := CleanChunk(seqID, bases, 0)
	if err != nil {
		return nil, err
	}
	if len(out) < MinSequenceLength {
		return nil, &ErrInvalidSequence{SeqID: seqID, Reason: fmt.Sprintf("length %d below minimum %d", len(out), MinSequenceLength)}
	}
	return out, nil
}

// CleanChunk applies Clean's case-folding/U->T/character-validation
// rules to bases without enforcing MinSequenceLength, which is a
// whole-sequence property, not a per-chunk one: the chunker (spec §5)
// calls this once per chunk it reads, while the orchestrator checks
// MinSequenceLength once against the whole sequence's total_length
// before chunking begins. offset is added to the reported position of
// any invalid character, so error messages carry absolute coordinates
// even when bases is a chunk slice.
func CleanChunk(seqID string, bases []byte, offset int) ([]byte, error) {
	out := make([]byte, len(bases))
	for i, b := range bases {
		switch {
		case b >= 'a' && b <= 'z':
			b -= 'a' - 'A'
		}
		if b == 'U' {
			b = 'T'
		}
		if !knownBases[b] && !ambiguityAsMismatch[b] {
			return nil, &ErrInvalidSequence{SeqID: seqID, Reason: fmt.Sprintf("unrecognized base %q at position %d", b, offset+i)}
		}
		out[i] = b
	}
	return out, nil
}

// IsClean reports whether bases contains only A, C, G, T (i.e. Clean has
// already been applied and no ambiguity codes remain to mask out).
func IsClean(bases []byte) bool {
	return !bytes.ContainsFunc(bases, func(r rune) bool {
		return !knownBases[byte(r)]
	})
}
