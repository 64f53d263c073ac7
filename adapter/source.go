// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package adapter holds the input/output collaborators spec §1 places out
// of scope for the Core but §6 still defines a contract for: the
// sequence source the orchestrator reads chunks from, and the two
// backends that satisfy it (in-memory FASTA, for anything under the
// disk-backed threshold, and indexed-FASTA random access for large
// genomes).
package adapter

// Source is the sequence source contract of spec §6: something that
// yields a seq_id, a total length, and random-access range reads. Small
// sequences can be backed by an in-memory byte slice (fastaSource); large
// ones must support true random access without holding the whole
// sequence resident (indexedSource, internal/store.SequenceFile).
type Source interface {
	SeqID() string
	Len() int
	// ReadRange returns bases [start,end) of the sequence. Implementations
	// must make this O(end-start), not O(Len()) (spec §6, "range reads
	// are O(range length)").
	ReadRange(start, end int) ([]byte, error)
}

// Sequences is an ordered collection of Source, the unit the orchestrator
// iterates across preserving "input order is preserved" (spec §5,
// "Ordering guarantees").
type Sequences interface {
	// Next advances to the next sequence, returning false when exhausted.
	Next() bool
	// Source returns the current sequence's Source.
	Source() Source
	// Err returns any error encountered by Next.
	Err() error
}
