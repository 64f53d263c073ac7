// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs classifies the error taxonomy of spec §7. The orchestrator
// wraps every error it encounters in an *Error with a Kind so run
// summaries can classify failures without string matching; it never
// imports a third-party errors package, following the teacher's plain
// fmt.Errorf("...: %w", err) style.
package errs

import "fmt"

// Kind is one of the five error categories spec §7 defines.
type Kind int

const (
	// InvalidSequence: characters outside the normalization map, or
	// shorter than sequence.MinSequenceLength. The orchestrator skips the
	// sequence and records a warning.
	InvalidSequence Kind = iota
	// UnknownTaxonomy: an input class/subclass label could not be
	// resolved via the alias table. Ingestion fails for that record.
	UnknownTaxonomy
	// ChunkReadFailed: a backing sequence-store read failed. The
	// orchestrator retries once; on a second failure the sequence is
	// aborted.
	ChunkReadFailed
	// Timeout: the per-sequence wall-clock budget was exceeded. Completed
	// motifs are flushed and the sequence is marked timed_out.
	Timeout
	// InternalDetectorFailure: a detector returned a candidate violating
	// its own contract (e.g. End <= Start). The offending candidate is
	// dropped; sibling candidates from the same chunk are unaffected.
	InternalDetectorFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidSequence:
		return "InvalidSequence"
	case UnknownTaxonomy:
		return "UnknownTaxonomy"
	case ChunkReadFailed:
		return "ChunkReadFailed"
	case Timeout:
		return "Timeout"
	case InternalDetectorFailure:
		return "InternalDetectorFailure"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with the sequence/context it occurred in and the
// underlying cause, wrapped with %w so errors.As/errors.Is both work.
type Error struct {
	Kind  Kind
	SeqID string
	Chunk string
	Err   error
}

func (e *Error) Error() string {
	if e.Chunk != "" {
		return fmt.Sprintf("%s: seq %q chunk %q: %v", e.Kind, e.SeqID, e.Chunk, e.Err)
	}
	return fmt.Sprintf("%s: seq %q: %v", e.Kind, e.SeqID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err as an *Error of the given kind for seqID.
func New(kind Kind, seqID string, err error) *Error {
	return &Error{Kind: kind, SeqID: seqID, Err: err}
}

// NewChunk wraps err as an *Error of the given kind for seqID, recording
// which chunk it occurred in.
func NewChunk(kind Kind, seqID, chunk string, err error) *Error {
	return &Error{Kind: kind, SeqID: seqID, Chunk: chunk, Err: err}
}
