// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"sort"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/tables"
	"github.com/vryella/nonbfinder/taxonomy"
)

// g4Priority orders the eight G-Quadruplex subclasses for overlap
// resolution (spec §4.2): lower value wins.
var g4Priority = map[string]int{
	"Telomeric":           0,
	"Higher-order/G-wire": 1,
	"Stacked":             2,
	"Canonical":           3,
	"Bulged":              4,
	"Extended-loop":       5,
	"G-triplex":           6,
	"Weak PQS":            7,
}

const defaultG4Window = 25

// G4Detector implements the eight-subclass-ordered G-Quadruplex scan (spec
// §4.2). Window is the G4Hunter sliding-window width; zero selects the
// spec default of 25 (config option g4_window_size).
type G4Detector struct {
	Window int
}

func (d G4Detector) window() int {
	if d.Window > 0 {
		return d.Window
	}
	return defaultG4Window
}

func (G4Detector) ClassID() taxonomy.ClassID { return taxonomy.GQuadruplex }

func (G4Detector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.GQuadruplex)
}

func (G4Detector) Profile() (motif.Profile, float64, float64) {
	// Bounds are calibrated against the "region" raw score
	// (windowNorm*region_length/W, see g4RegionScore), not against the
	// 0.5/1.2 G4Hunter windowNorm thresholds themselves: a minimal
	// qualifying motif (region length close to W) already produces a
	// region score well under 1.0, so raw_max must be small for the
	// normalizer to spread minimal-to-strong hits across [1,3] instead
	// of flooring every short motif at 1.0.
	return motif.ProfileG4Hunter, 0.1, 0.6
}

// g4RegionScore computes the G4Hunter normalized window score and the
// region score (windowNorm * region_length/W) over seq[start:end], per
// spec §4.2's "Seeded G4Hunter scoring".
func g4RegionScore(seq []byte, start, end, w int) (windowNorm, region float64) {
	sub := seq[start:end]
	win := w
	if win > len(sub) {
		win = len(sub)
	}
	if win == 0 {
		return 0, 0
	}
	ps := tables.G4HunterPrefixSum(sub)
	best, _ := tables.MaxWindowSum(ps, win)
	windowNorm = float64(best) / float64(win)
	region = windowNorm * float64(len(sub)) / float64(w)
	return windowNorm, region
}

func (d G4Detector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	w := d.window()
	var cands []motif.Candidate

	cands = append(cands, d.telomericCandidates(seq, seqID, w)...)

	gRuns3 := findRuns(seq, 'G', 3)
	gRuns2 := findRuns(seq, 'G', 2)

	canonical := findTractGrammar(gRuns3, 4, 3, 1, 7)
	cands = append(cands, d.tractCandidates(seq, seqID, w, canonical, "Canonical")...)

	extended := findTractGrammar(gRuns3, 4, 3, 1, 12)
	cands = append(cands, d.tractCandidates(seq, seqID, w, filterMaxLoopOver(extended, 7), "Extended-loop")...)

	higherOrder := findTractGrammar(gRuns3, 7, 3, 1, 7)
	cands = append(cands, d.tractCandidates(seq, seqID, w, higherOrder, "Higher-order/G-wire")...)

	triplex := findTractGrammar(gRuns3, 3, 3, 1, 7)
	cands = append(cands, d.tractCandidates(seq, seqID, w, triplex, "G-triplex")...)

	weak := findTractGrammar(gRuns2, 4, 2, 1, 7)
	cands = append(cands, d.tractCandidates(seq, seqID, w, weak, "Weak PQS")...)

	bulgedRuns := mergeFuzzyRuns(gRuns3, seq, 'G', 1)
	bulged := findTractGrammar(bulgedRuns, 4, 3, 1, 7)
	cands = append(cands, d.tractCandidates(seq, seqID, w, bulged, "Bulged")...)

	cands = append(cands, d.stackedCandidates(canonical, seq, seqID, w)...)

	cands = ResolveG4Overlaps(cands)
	for i := range cands {
		cands[i].Start += offset
		cands[i].End += offset
	}
	return motif.NormalizeAll(d, cands)
}

func (d G4Detector) tractCandidates(seq []byte, seqID string, w int, matches []fourTractMatch, subclass string) []motif.Candidate {
	out := make([]motif.Candidate, 0, len(matches))
	for _, m := range matches {
		windowNorm, region := g4RegionScore(seq, m.Start, m.End, w)
		if windowNorm < 0.5 {
			continue
		}
		out = append(out, motif.Candidate{
			Class:    taxonomy.GQuadruplex,
			Subclass: subclass,
			SeqID:    seqID,
			Start:    m.Start,
			End:      m.End,
			Strand:   motif.StrandPlus,
			RawScore: region,
			Features: map[string]interface{}{
				"g_tracts":        len(m.Tracts),
				"loop_lengths":    m.Loops,
				"g4hunter_window": windowNorm,
			},
		})
	}
	return out
}

func (d G4Detector) telomericCandidates(seq []byte, seqID string, w int) []motif.Candidate {
	var out []motif.Candidate
	for _, unit := range []string{"TTAGGG", "TTGGGG"} {
		for _, rep := range findTandemRepeats(seq, unit, 4) {
			windowNorm, region := g4RegionScore(seq, rep.Start, rep.End, w)
			out = append(out, motif.Candidate{
				Class:    taxonomy.GQuadruplex,
				Subclass: "Telomeric",
				SeqID:    seqID,
				Start:    rep.Start,
				End:      rep.End,
				Strand:   motif.StrandPlus,
				RawScore: region,
				Features: map[string]interface{}{
					"repeat_unit":     unit,
					"copy_number":     rep.CopyCount,
					"g4hunter_window": windowNorm,
				},
			})
		}
	}
	return out
}

// stackedCandidates merges runs of >=2 canonical G4 units separated by
// <=20 nt into a Stacked candidate (spec §4.2).
func (d G4Detector) stackedCandidates(canonical []fourTractMatch, seq []byte, seqID string, w int) []motif.Candidate {
	if len(canonical) < 2 {
		return nil
	}
	sorted := append([]fourTractMatch(nil), canonical...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []motif.Candidate
	i := 0
	for i < len(sorted) {
		j := i
		for j+1 < len(sorted) && sorted[j+1].Start-sorted[j].End <= 20 {
			j++
		}
		if j > i {
			start, end := sorted[i].Start, sorted[j].End
			windowNorm, region := g4RegionScore(seq, start, end, w)
			out = append(out, motif.Candidate{
				Class:    taxonomy.GQuadruplex,
				Subclass: "Stacked",
				SeqID:    seqID,
				Start:    start,
				End:      end,
				Strand:   motif.StrandPlus,
				RawScore: region,
				Features: map[string]interface{}{
					"stacked_units":   j - i + 1,
					"g4hunter_window": windowNorm,
				},
			})
		}
		i = j + 1
	}
	return out
}

func filterMaxLoopOver(matches []fourTractMatch, threshold int) []fourTractMatch {
	out := make([]fourTractMatch, 0, len(matches))
	for _, m := range matches {
		over := false
		for _, l := range m.Loops {
			if l > threshold {
				over = true
				break
			}
		}
		if over {
			out = append(out, m)
		}
	}
	return out
}

// mergeFuzzyRuns merges adjacent runs of base separated by exactly a
// single mismatched byte into one run, modelling a G-run tolerating one
// non-G substitution (spec §4.2, Bulged G4). Runs already present in
// runs are also kept unmerged so a pure >=3 run still qualifies.
func mergeFuzzyRuns(runs []run, seq []byte, base byte, gap int) []run {
	out := append([]run(nil), runs...)
	for i := 0; i+1 < len(runs); i++ {
		if runs[i+1].Start-runs[i].End == gap {
			out = append(out, run{runs[i].Start, runs[i+1].End})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// ResolveG4Overlaps applies spec §4.2's priority-based overlap
// resolution across all eight subclasses: process candidates in
// (priority, -raw_score) order and greedily keep one whenever it does
// not overlap an already-kept higher-priority candidate. The detector
// applies it per chunk; the orchestrator re-applies it to the merged
// cross-chunk set, where it suppresses truncated lower-priority
// candidates a chunk boundary exposed. It is idempotent on an
// already-resolved set.
func ResolveG4Overlaps(cands []motif.Candidate) []motif.Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		pi, pj := g4Priority[cands[i].Subclass], g4Priority[cands[j].Subclass]
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
