// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"sort"

	"github.com/vryella/nonbfinder/detect"
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// resolveClassPriorities re-runs the G-Quadruplex and i-Motif priority
// overlap resolution over the merged cross-chunk candidate set. Each
// detector already resolved its own chunk's candidates, but a motif
// island straddling a core boundary can leave a truncated lower-priority
// candidate from the next chunk's partial view of the island; resolving
// again globally suppresses it, keeping the chunked result identical to
// the direct (unchunked) one. Both passes are idempotent, so the direct
// tier is unaffected.
func resolveClassPriorities(cands []motif.Candidate) []motif.Candidate {
	var g4, im, others []motif.Candidate
	for _, c := range cands {
		switch c.Class {
		case taxonomy.GQuadruplex:
			g4 = append(g4, c)
		case taxonomy.IMotif:
			im = append(im, c)
		default:
			others = append(others, c)
		}
	}
	out := others
	out = append(out, detect.ResolveG4Overlaps(g4)...)
	out = append(out, detect.ResolveIMotifOverlaps(im)...)
	return out
}

const localCurvatureSubclass = "Local Curvature"

// consolidateSpanning stitches Local Curvature candidates that were cut
// apart by a chunk boundary back into one motif (spec §8: "Very long A/T
// tracts longer than a single chunk still produce exactly one local
// curvature motif"). Every other class's candidates, and every other
// Curved DNA subclass, pass through untouched: only a contiguous
// same-base A/T tract can legitimately span a chunk, since every other
// detector's window is bounded well within one chunk's core.
func consolidateSpanning(cands []motif.Candidate) []motif.Candidate {
	var others []motif.Candidate
	byBase := make(map[byte][]motif.Candidate)
	for _, c := range cands {
		if c.Class == taxonomy.CurvedDNA && c.Subclass == localCurvatureSubclass {
			base := tractBase(c)
			byBase[base] = append(byBase[base], c)
			continue
		}
		others = append(others, c)
	}
	for _, group := range byBase {
		others = append(others, mergeAdjacentTracts(group)...)
	}
	return others
}

func tractBase(c motif.Candidate) byte {
	if s, ok := c.Features["tract_base"].(string); ok && len(s) > 0 {
		return s[0]
	}
	return 0
}

// mergeAdjacentTracts merges touching or overlapping candidates in group
// (already known to share one tract_base) and recomputes each merged
// record's score with the detector's own length formula, L/(L+6) (spec
// §4.1's A-tract curvature propensity), rather than carrying forward
// either half's stale score.
func mergeAdjacentTracts(group []motif.Candidate) []motif.Candidate {
	sort.Slice(group, func(i, j int) bool { return group[i].Start < group[j].Start })
	var merged []motif.Candidate
	for _, c := range group {
		if n := len(merged); n > 0 && c.Start <= merged[n-1].End {
			last := &merged[n-1]
			if c.End > last.End {
				last.End = c.End
			}
			l := float64(last.End - last.Start)
			last.RawScore = l / (l + 6)
			last.NormalizedScore = motif.Normalize(motif.ProfileLinear, 0, 1, last.RawScore)
			if last.Features == nil {
				last.Features = make(map[string]interface{})
			}
			last.Features["tract_len"] = last.End - last.Start
			continue
		}
		merged = append(merged, c)
	}
	return merged
}
