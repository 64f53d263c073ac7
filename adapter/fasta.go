// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adapter

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// fastaSource is an in-memory Source: the whole sequence is held
// resident as bases, appropriate for anything under the disk-backed
// threshold (spec §6: "for small sequences the backend can be
// in-memory"). Grounded on ins/cmd/ins/fragment.go's split, which reads
// records the same way (seqio.Scanner over fasta.NewReader into a
// linear.Seq) before fragmenting them.
type fastaSource struct {
	id    string
	bases []byte
}

func (s *fastaSource) SeqID() string { return s.id }
func (s *fastaSource) Len() int      { return len(s.bases) }

func (s *fastaSource) ReadRange(start, end int) ([]byte, error) {
	if start < 0 || end > len(s.bases) || start > end {
		return nil, fmt.Errorf("adapter: range [%d,%d) out of bounds for sequence %q of length %d", start, end, s.id, len(s.bases))
	}
	return s.bases[start:end], nil
}

// FastaSequences is a Sequences backed by scanning a FASTA stream fully
// into memory, one fastaSource per record, in file order (spec §5
// "across seq_ids, input order is preserved").
type FastaSequences struct {
	sc  *seqio.Scanner
	cur Source
	err error
}

// NewFastaSequences wraps r as a Sequences, scanning FASTA records with
// biogo's fasta.Reader exactly as ins/cmd/ins/fragment.go's split does.
func NewFastaSequences(r io.Reader) *FastaSequences {
	return &FastaSequences{
		sc: seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))),
	}
}

func (f *FastaSequences) Next() bool {
	if !f.sc.Next() {
		f.err = f.sc.Error()
		return false
	}
	seq := f.sc.Seq().(*linear.Seq)
	bases := make([]byte, seq.Len())
	for i, l := range seq.Seq {
		bases[i] = byte(l)
	}
	f.cur = &fastaSource{id: seq.ID, bases: bases}
	return true
}

func (f *FastaSequences) Source() Source { return f.cur }
func (f *FastaSequences) Err() error     { return f.err }

// NewInMemorySource builds a Source directly from an id and bases,
// bypassing FASTA parsing — used by tests and by callers that already
// have sequence bytes from some other adapter.
func NewInMemorySource(id string, bases []byte) Source {
	return &fastaSource{id: id, bases: append([]byte(nil), bases...)}
}

// MemorySequences is a Sequences over an explicit, already in-memory list
// of Source values, in the order given. It is the simplest implementation
// of the Sequences contract, used wherever a caller already holds
// Source values and has no FASTA stream or index file to read them from
// (tests, and small programmatic inputs).
type MemorySequences struct {
	sources []Source
	i       int
}

// NewMemorySequences wraps sources as a Sequences.
func NewMemorySequences(sources ...Source) *MemorySequences {
	return &MemorySequences{sources: sources, i: -1}
}

func (m *MemorySequences) Next() bool {
	m.i++
	return m.i < len(m.sources)
}

func (m *MemorySequences) Source() Source { return m.sources[m.i] }
func (m *MemorySequences) Err() error     { return nil }
