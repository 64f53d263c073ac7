// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sequence holds the shared nucleotide sequence primitives used by
// every detector: an ASCII-restricted immutable buffer, reverse
// complement, GC content, a k-mer position index and a prefix-sum G-count
// for O(1) windowed G% queries.
package sequence

import (
	"fmt"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

// Sequence is an immutable ASCII-restricted nucleotide buffer over
// {A,C,G,T}. It wraps a biogo linear.Seq so that downstream adapters that
// already speak biogo (FASTA readers, indexed-FASTA range readers) can be
// handed back a Sequence without a copy of the letter alphabet logic.
type Sequence struct {
	id  string
	raw *linear.Seq
}

// New builds a Sequence from raw bases. Ingestion runs Clean (see
// normalize.go) before this is called; Clean keeps ambiguity codes in
// place rather than removing them. New itself does not validate, since detectors
// operate on already-cleaned chunk slices handed to them by the chunker.
func New(id string, bases []byte) *Sequence {
	return &Sequence{
		id:  id,
		raw: linear.NewSeq(id, alphabet.BytesToLetters(bases), alphabet.DNA),
	}
}

// ID returns the sequence identifier.
func (s *Sequence) ID() string { return s.id }

// Len returns the number of bases.
func (s *Sequence) Len() int { return s.raw.Len() }

// Bytes returns the raw upper-case ASCII bases as a fresh copy; mutating
// the returned slice does not affect the Sequence.
func (s *Sequence) Bytes() []byte {
	b := make([]byte, s.raw.Len())
	for i, l := range s.raw.Seq {
		b[i] = byte(l)
	}
	return b
}

// Slice returns the half-open range [start,end) as a new Sequence, with
// id suffixed by the coordinates for traceability in logs.
func (s *Sequence) Slice(start, end int) *Sequence {
	if start < 0 || end > s.Len() || start > end {
		panic(fmt.Sprintf("sequence: invalid range [%d,%d) of length %d", start, end, s.Len()))
	}
	return New(fmt.Sprintf("%s:%d-%d", s.id, start, end), s.Bytes()[start:end])
}

var complement = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N',
}

// ReverseComplement returns the reverse complement of bases.
func ReverseComplement(bases []byte) []byte {
	out := make([]byte, len(bases))
	n := len(bases)
	for i, b := range bases {
		c, ok := complement[b]
		if !ok {
			c = 'N'
		}
		out[n-1-i] = c
	}
	return out
}

// GCFraction returns the fraction of bases in bases that are G or C. It
// returns 0 for an empty slice.
func GCFraction(bases []byte) float64 {
	if len(bases) == 0 {
		return 0
	}
	n := 0
	for _, b := range bases {
		if b == 'G' || b == 'C' {
			n++
		}
	}
	return float64(n) / float64(len(bases))
}

// GPrefixSum returns a length len(bases)+1 prefix-sum array such that
// GPrefixSum(bases)[j]-GPrefixSum(bases)[i] is the number of G bases in
// bases[i:j]. This gives O(1) windowed G-count queries, the primitive
// behind the R-Loop detector's RIZ/REZ %G scan (spec §4.7).
func GPrefixSum(bases []byte) []int32 {
	sum := make([]int32, len(bases)+1)
	for i, b := range bases {
		sum[i+1] = sum[i]
		if b == 'G' {
			sum[i+1]++
		}
	}
	return sum
}

// KmerIndex maps every k-mer occurring in bases to the sorted list of
// positions where it starts. It is the seed structure for the
// seed-and-extend detectors Cruciform (§4.8) and Triplex H-DNA (§4.9);
// the Slipped DNA Direct Repeat scan builds its own 6-mer map instead.
type KmerIndex struct {
	K   int
	pos map[string][]int
}

// NewKmerIndex builds a KmerIndex over bases for the given k-mer length.
func NewKmerIndex(bases []byte, k int) *KmerIndex {
	idx := &KmerIndex{K: k, pos: make(map[string][]int)}
	if len(bases) < k {
		return idx
	}
	for i := 0; i+k <= len(bases); i++ {
		key := string(bases[i : i+k])
		idx.pos[key] = append(idx.pos[key], i)
	}
	return idx
}

// Positions returns the sorted starting positions of kmer in the indexed
// sequence.
func (idx *KmerIndex) Positions(kmer string) []int {
	return idx.pos[kmer]
}

// Purine fraction helpers used by Triplex (spec §4.9).

var purine = map[byte]bool{'A': true, 'G': true}
var pyrimidine = map[byte]bool{'C': true, 'T': true}

// PurineFraction returns the fraction of bases that are purines (A or G).
func PurineFraction(bases []byte) float64 {
	if len(bases) == 0 {
		return 0
	}
	n := 0
	for _, b := range bases {
		if purine[b] {
			n++
		}
	}
	return float64(n) / float64(len(bases))
}

// PyrimidineFraction returns the fraction of bases that are pyrimidines
// (C or T).
func PyrimidineFraction(bases []byte) float64 {
	if len(bases) == 0 {
		return 0
	}
	n := 0
	for _, b := range bases {
		if pyrimidine[b] {
			n++
		}
	}
	return float64(n) / float64(len(bases))
}
