// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package postprocess implements the three post-detection stages of
// spec §4.10: within-subclass deduplication, cross-class Hybrid
// annotation, and dense multi-class Cluster annotation. All three
// operate on the full primary-motif set for one sequence, already
// normalized by motif.NormalizeAll.
package postprocess

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// DedupSubclass implements spec §4.10.1: sort candidates within one
// (class_id, subclass_id) by (start, -score) and greedily retain those
// whose interval does not overlap an already-kept interval. The kept
// set lives in an interval.IntTree queried before each retention, the
// same discard-the-overlapped-lower-scorer structure cmd/cull and
// cmd/ins's cullContained build over their merged BLAST regions; here
// the tree is grown incrementally, so Insert rebalances as it goes
// instead of batching behind AdjustRanges.
func DedupSubclass(cands []motif.Candidate) []motif.Candidate {
	sorted := append([]motif.Candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].RawScore > sorted[j].RawScore
	})
	var tree interval.IntTree
	var kept []motif.Candidate
	for i := range sorted {
		iv := motifInterval{uid: uintptr(i), idx: i, c: &sorted[i]}
		if len(tree.Get(iv)) > 0 {
			continue
		}
		if err := tree.Insert(iv, false); err != nil {
			panic(fmt.Sprintf("postprocess: interval tree insert: %v", err))
		}
		kept = append(kept, sorted[i])
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// DedupAll groups cands by (class_id, subclass_id) and applies
// DedupSubclass independently within each group, per spec §4.10.1:
// "different classes and different subclasses of the same class are
// processed independently".
func DedupAll(cands []motif.Candidate) []motif.Candidate {
	groups := make(map[taxonomy.ClassID]map[string][]motif.Candidate)
	for _, c := range cands {
		if groups[c.Class] == nil {
			groups[c.Class] = make(map[string][]motif.Candidate)
		}
		groups[c.Class][c.Subclass] = append(groups[c.Class][c.Subclass], c)
	}
	var out []motif.Candidate
	for _, bySub := range groups {
		for _, group := range bySub {
			out = append(out, DedupSubclass(group)...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Subclass < b.Subclass
	})
	return out
}
