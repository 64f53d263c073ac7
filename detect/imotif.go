// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"sort"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// IMotifDetector implements the i-Motif detector (spec §4.3): Canonical
// four-C-tract motifs and the six hand-coded HUR AC-motif templates.
type IMotifDetector struct{}

func (IMotifDetector) ClassID() taxonomy.ClassID { return taxonomy.IMotif }

func (IMotifDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.IMotif)
}

func (IMotifDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLinear, 0, 1
}

func (d IMotifDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	var cands []motif.Candidate

	cRuns := findRuns(seq, 'C', 3)
	canonical := findTractGrammar(cRuns, 4, 3, 1, 7)
	for _, m := range canonical {
		raw := canonicalIMotifScore(seq[m.Start:m.End], len(m.Tracts))
		cands = append(cands, motif.Candidate{
			Class:    taxonomy.IMotif,
			Subclass: "Canonical",
			SeqID:    seqID,
			Start:    m.Start,
			End:      m.End,
			Strand:   motif.StrandMinus,
			RawScore: raw,
			Features: map[string]interface{}{
				"c_tracts":     len(m.Tracts),
				"loop_lengths": m.Loops,
			},
		})
	}

	cands = append(cands, d.acMotifCandidates(seq, seqID)...)

	cands = ResolveIMotifOverlaps(cands)
	for i := range cands {
		cands[i].Start += offset
		cands[i].End += offset
	}
	return motif.NormalizeAll(d, cands)
}

// canonicalIMotifScore implements spec §4.3's canonical raw score:
// C_count/length + min(0.4, 0.12*(n_tracts-2)), clamped to [0,1].
func canonicalIMotifScore(region []byte, nTracts int) float64 {
	cCount := 0
	for _, b := range region {
		if b == 'C' {
			cCount++
		}
	}
	raw := float64(cCount)/float64(len(region)) + minf(0.4, 0.12*float64(nTracts-2))
	return clampf(raw, 0, 1)
}

// acMotifCandidates scans for the six hand-coded HUR AC-motif templates:
// (A3)(linker 4..6)(C3)(linker 4..6)(C3)(linker 4..6)(C3). The six named
// variants share this tract order and differ only in their three linker
// lengths (4, 5 or 6 nt each), which the score's linker_boost weighs.
func (d IMotifDetector) acMotifCandidates(seq []byte, seqID string) []motif.Candidate {
	aRuns := findRuns(seq, 'A', 3)
	cRuns := findRuns(seq, 'C', 3)
	runs := append(append([]run(nil), aRuns...), cRuns...)
	sort.Slice(runs, func(i, j int) bool { return runs[i].Start < runs[j].Start })

	var out []motif.Candidate
	for i := 0; i+4 <= len(runs); i++ {
		four := runs[i : i+4]
		kinds := make([]byte, 4)
		for k, r := range four {
			kinds[k] = seq[r.Start]
		}
		if !isACMotifKindPattern(kinds) {
			continue
		}
		ok := true
		linkerLens := make([]int, 3)
		for k := 0; k < 3; k++ {
			l := four[k+1].Start - four[k].End
			if l < 4 || l > 6 {
				ok = false
				break
			}
			linkerLens[k] = l
		}
		if !ok {
			continue
		}
		start, end := four[0].Start, four[3].End
		raw := acMotifScore(seq[start:end], linkerLens)
		out = append(out, motif.Candidate{
			Class:    taxonomy.IMotif,
			Subclass: "AC-motif (HUR)",
			SeqID:    seqID,
			Start:    start,
			End:      end,
			Strand:   motif.StrandMinus,
			RawScore: raw,
			Features: map[string]interface{}{
				"linker_lengths": linkerLens,
			},
		})
	}
	return out
}

// isACMotifKindPattern reports whether kinds is exactly an A-run
// followed by three C-runs, the tract order all six HUR templates
// share.
func isACMotifKindPattern(kinds []byte) bool {
	if kinds[0] != 'A' {
		return false
	}
	return kinds[1] == 'C' && kinds[2] == 'C' && kinds[3] == 'C'
}

// acMotifScore implements spec §4.3's HUR AC-motif raw score.
func acMotifScore(region []byte, linkerLens []int) float64 {
	ac := 0
	for _, b := range region {
		if b == 'A' || b == 'C' {
			ac++
		}
	}
	raw := minf(0.6, 0.8*float64(ac)/float64(len(region)))
	nCTracts := 3
	raw += minf(0.2, 0.12*float64(nCTracts-1))
	boost := 0.0
	for _, l := range linkerLens {
		if l == 4 || l == 5 {
			boost += 0.25
		} else if l == 6 {
			boost += 0.12
		}
	}
	raw += boost / float64(len(linkerLens))
	return clampf(raw, 0, 1)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ResolveIMotifOverlaps applies spec §4.3's overlap rule: Canonical
// outranks AC-motif (HUR); ties by raw_score. Like ResolveG4Overlaps it
// runs once per chunk inside Detect and once more in the orchestrator
// over the merged cross-chunk set, and is idempotent.
func ResolveIMotifOverlaps(cands []motif.Candidate) []motif.Candidate {
	priority := map[string]int{"Canonical": 0, "AC-motif (HUR)": 1}
	sort.SliceStable(cands, func(i, j int) bool {
		pi, pj := priority[cands[i].Subclass], priority[cands[j].Subclass]
		if pi != pj {
			return pi < pj
		}
		return cands[i].RawScore > cands[j].RawScore
	})
	var kept []motif.Candidate
	for _, c := range cands {
		overlaps := false
		for _, k := range kept {
			if c.Start < k.End && k.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
