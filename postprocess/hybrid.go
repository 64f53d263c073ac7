// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postprocess

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// motifInterval adapts a motif.Candidate to biogo/store/interval's
// IntInterface, the same adaptation the teacher's cmd/cull and cmd/ins
// use (subjectInterval) to back an interval.IntTree with GFF features.
type motifInterval struct {
	uid uintptr
	idx int
	c   *motif.Candidate
}

func (m motifInterval) ID() uintptr { return m.uid }

func (m motifInterval) Range() interval.IntRange {
	return interval.IntRange{Start: m.c.Start, End: m.c.End}
}

// Overlap reports true interval overlap (not containment, unlike
// cmd/cull's culling predicate): any shared base counts.
func (m motifInterval) Overlap(b interval.IntRange) bool {
	return m.c.Start < b.End && b.Start < m.c.End
}

// HybridAnnotate implements spec §4.10.2: for every unordered pair of
// primary motifs of different classes whose overlap fraction lies in
// [minOverlap, maxOverlap), emit a Hybrid record. The pairwise scan uses
// an interval.IntTree so the cost is O((N+K) log N), not O(N^2), where K
// is the number of emitted Hybrid records.
func HybridAnnotate(cands []motif.Candidate, minOverlap, maxOverlap float64) []motif.Candidate {
	if len(cands) == 0 {
		return nil
	}
	var tree interval.IntTree
	nodes := make([]motifInterval, len(cands))
	for i := range cands {
		nodes[i] = motifInterval{uid: uintptr(i), idx: i, c: &cands[i]}
		if err := tree.Insert(nodes[i], true); err != nil {
			panic(fmt.Sprintf("postprocess: interval tree insert: %v", err))
		}
	}
	tree.AdjustRanges()

	seen := make(map[[2]int]bool)
	var out []motif.Candidate
	for i := range cands {
		a := &cands[i]
		hits := tree.Get(nodes[i])
		for _, h := range hits {
			j := h.(motifInterval).idx
			if j <= i {
				continue
			}
			b := &cands[j]
			if a.Class == b.Class {
				continue
			}
			overlapLen := minInt(a.End, b.End) - maxInt(a.Start, b.Start)
			if overlapLen <= 0 {
				continue
			}
			shorter := minInt(a.Len(), b.Len())
			if shorter == 0 {
				continue
			}
			frac := float64(overlapLen) / float64(shorter)
			if frac < minOverlap || frac >= maxOverlap {
				continue
			}
			lo, hi := a, b
			key := [2]int{i, j}
			if seen[key] {
				continue
			}
			seen[key] = true
			start, end := minInt(lo.Start, hi.Start), maxInt(lo.End, hi.End)
			out = append(out, motif.Candidate{
				Class:            taxonomy.Hybrid,
				Subclass:         taxonomy.DynamicHybridName(lo.Class, hi.Class),
				SeqID:            a.SeqID,
				Start:            start,
				End:              end,
				Strand:           motif.StrandUnknown,
				RawScore:         (lo.NormalizedScore + hi.NormalizedScore) / 2,
				NormalizedScore:  (lo.NormalizedScore + hi.NormalizedScore) / 2,
				ComponentClasses: []taxonomy.ClassID{lo.Class, hi.Class},
			})
		}
	}
	return dedupExactTuples(out)
}

// dedupExactTuples removes Hybrid records with identical (start, end,
// component-class pair), per spec §4.10.2.
func dedupExactTuples(cands []motif.Candidate) []motif.Candidate {
	type key struct {
		start, end int
		a, b       taxonomy.ClassID
	}
	seen := make(map[key]bool)
	out := make([]motif.Candidate, 0, len(cands))
	for _, c := range cands {
		k := key{c.Start, c.End, c.ComponentClasses[0], c.ComponentClasses[1]}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
