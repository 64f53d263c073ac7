// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postprocess

import (
	"sort"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// ClusterAnnotate implements spec §4.10.3: for each distinct window
// start anchored at a motif start, count motifs with start in
// [s, s+window) and their distinct class set; if count >= minMotifs and
// the number of distinct classes >= minClasses, emit a Cluster record.
// The sorted-by-start motif list lets each anchor's window membership be
// found by binary search in O(log N + k).
func ClusterAnnotate(cands []motif.Candidate, window, minMotifs, minClasses int) []motif.Candidate {
	if len(cands) == 0 {
		return nil
	}
	sorted := append([]motif.Candidate(nil), cands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	starts := make([]int, len(sorted))
	for i, c := range sorted {
		starts[i] = c.Start
	}

	type window2 struct{ start, end int }
	seen := make(map[window2]bool)
	var out []motif.Candidate
	for i, anchor := range sorted {
		lo := i
		hi := sort.SearchInts(starts, anchor.Start+window)
		members := sorted[lo:hi]
		if len(members) < minMotifs {
			continue
		}
		classes := make(map[taxonomy.ClassID]bool)
		for _, m := range members {
			classes[m.Class] = true
		}
		if len(classes) < minClasses {
			continue
		}
		minStart, maxEnd := members[0].Start, members[0].End
		scores := make([]float64, 0, len(members))
		classSet := make([]taxonomy.ClassID, 0, len(classes))
		for cl := range classes {
			classSet = append(classSet, cl)
		}
		sort.Slice(classSet, func(a, b int) bool { return classSet[a] < classSet[b] })
		for _, m := range members {
			if m.Start < minStart {
				minStart = m.Start
			}
			if m.End > maxEnd {
				maxEnd = m.End
			}
			scores = append(scores, m.NormalizedScore)
		}
		w := window2{minStart, maxEnd}
		if seen[w] {
			continue
		}
		seen[w] = true
		mean := motif.Mean(scores)
		out = append(out, motif.Candidate{
			Class:            taxonomy.Clusters,
			Subclass:         taxonomy.DynamicClusterName(len(classes)),
			SeqID:            anchor.SeqID,
			Start:            minStart,
			End:              maxEnd,
			Strand:           motif.StrandUnknown,
			RawScore:         mean,
			NormalizedScore:  mean,
			ComponentClasses: classSet,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
