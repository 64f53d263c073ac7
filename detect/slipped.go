// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// SlippedDetector implements the Slipped DNA detector (SPEC_FULL.md §C,
// supplementing the ninth taxonomy entry the distilled spec names but
// does not detail): Short Tandem Repeats (unit length 1..6) and Direct
// Repeats (seed-and-extend without reverse complement).
type SlippedDetector struct{}

func (SlippedDetector) ClassID() taxonomy.ClassID { return taxonomy.SlippedDNA }

func (SlippedDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.SlippedDNA)
}

func (SlippedDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLinear, 0, 1
}

func (d SlippedDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	var cands []motif.Candidate
	cands = append(cands, d.strCandidates(seq, seqID)...)
	cands = append(cands, d.directRepeatCandidates(seq, seqID)...)
	for i := range cands {
		cands[i].Start += offset
		cands[i].End += offset
	}
	return cands
}

var strUnits = buildSTRUnits()

// buildSTRUnits enumerates every distinct unit string of length 1..6
// over {A,C,G,T}, used to scan for Short Tandem Repeats.
func buildSTRUnits() []string {
	var out []string
	bases := []byte{'A', 'C', 'G', 'T'}
	var gen func(prefix []byte, remaining int)
	gen = func(prefix []byte, remaining int) {
		if remaining == 0 {
			out = append(out, string(prefix))
			return
		}
		for _, b := range bases {
			gen(append(prefix, b), remaining-1)
		}
	}
	for unitLen := 1; unitLen <= 6; unitLen++ {
		gen(nil, unitLen)
	}
	return out
}

// strCandidates scans for Short Tandem Repeats: unit length 1..6, >=3
// whole copies. Raw = copy_number*u/(copy_number*u+8) (SPEC_FULL.md §C).
func (SlippedDetector) strCandidates(seq []byte, seqID string) []motif.Candidate {
	claimed := make([]bool, len(seq)+1)
	var out []motif.Candidate
	for unitLen := 1; unitLen <= 6; unitLen++ {
		for _, rep := range scanUnitLength(seq, unitLen, 3) {
			if claimed[rep.Start] {
				continue
			}
			overlapsClaimed := false
			for p := rep.Start; p < rep.End; p++ {
				if claimed[p] {
					overlapsClaimed = true
					break
				}
			}
			if overlapsClaimed {
				continue
			}
			u := float64(unitLen)
			n := float64(rep.CopyCount)
			raw := n * u / (n*u + 8)
			out = append(out, motif.Candidate{
				Class:    taxonomy.SlippedDNA,
				Subclass: "STR",
				SeqID:    seqID,
				Start:    rep.Start,
				End:      rep.End,
				Strand:   motif.StrandUnknown,
				RawScore: raw,
				Features: map[string]interface{}{
					"unit":        rep.Unit,
					"copy_number": rep.CopyCount,
					"unit_length": unitLen,
				},
			})
			for p := rep.Start; p < rep.End; p++ {
				claimed[p] = true
			}
		}
	}
	return out
}

// scanUnitLength scans every distinct unit of the given length for
// tandem repeats with at least minCopies whole copies, in ascending
// Start order, keeping only the longest (most copies) repeat at each
// start position across all units of this length.
func scanUnitLength(seq []byte, unitLen, minCopies int) []tandemRepeat {
	bestAt := make(map[int]tandemRepeat)
	units := unitsOfLength(unitLen)
	for _, unit := range units {
		for _, rep := range findTandemRepeats(seq, unit, minCopies) {
			if cur, ok := bestAt[rep.Start]; !ok || rep.CopyCount > cur.CopyCount {
				bestAt[rep.Start] = rep
			}
		}
	}
	out := make([]tandemRepeat, 0, len(bestAt))
	for _, r := range bestAt {
		out = append(out, r)
	}
	sortTandemRepeats(out)
	return out
}

func unitsOfLength(n int) []string {
	var out []string
	for _, u := range strUnits {
		if len(u) == n {
			out = append(out, u)
		}
	}
	return out
}

func sortTandemRepeats(reps []tandemRepeat) {
	for i := 1; i < len(reps); i++ {
		for j := i; j > 0 && reps[j].Start < reps[j-1].Start; j-- {
			reps[j], reps[j-1] = reps[j-1], reps[j]
		}
	}
}

const (
	directRepeatSeedLen = 6
	directRepeatMinArm  = 10
	directRepeatMaxArm  = 300
	directRepeatMaxGap  = 1000
)

// directRepeatCandidates seed-and-extends direct repeats (seq[i] ==
// seq[j], NOT reverse complement) with arm 10..300 and spacer <=1000,
// via a 6-mer seed. Raw = min(1, arm_len/50)*(1 - spacer_len/1000)
// (SPEC_FULL.md §C).
func (SlippedDetector) directRepeatCandidates(seq []byte, seqID string) []motif.Candidate {
	if len(seq) < directRepeatSeedLen*2 {
		return nil
	}
	pos := make(map[string][]int)
	for i := 0; i+directRepeatSeedLen <= len(seq); i++ {
		key := string(seq[i : i+directRepeatSeedLen])
		pos[key] = append(pos[key], i)
	}

	var out []motif.Candidate
	seenFirstArm := make(map[int]bool)
	for i := 0; i+directRepeatSeedLen <= len(seq); i++ {
		key := string(seq[i : i+directRepeatSeedLen])
		for _, j := range pos[key] {
			if j <= i {
				continue
			}
			if j-(i+directRepeatSeedLen) > directRepeatMaxGap {
				continue
			}
			armLen := extendDirectRepeat(seq, i, j, directRepeatMaxArm)
			if armLen < directRepeatMinArm || seenFirstArm[i] {
				continue
			}
			firstEnd := i + armLen
			secondEnd := j + armLen
			if secondEnd > len(seq) || firstEnd > j {
				continue
			}
			// The spacer is measured between the extended arms, not the
			// seeds: extension eats into the seed-to-seed gap.
			spacer := j - firstEnd
			seenFirstArm[i] = true
			raw := minf(1, float64(armLen)/50) * (1 - float64(spacer)/directRepeatMaxGap)
			out = append(out, motif.Candidate{
				Class:    taxonomy.SlippedDNA,
				Subclass: "Direct Repeat",
				SeqID:    seqID,
				Start:    i,
				End:      secondEnd,
				Strand:   motif.StrandUnknown,
				RawScore: clampf(raw, 0, 1),
				Features: map[string]interface{}{
					"arm_length":   armLen,
					"spacer_len":   spacer,
					"first_start":  i,
					"second_start": j,
				},
			})
		}
	}
	return out
}

func extendDirectRepeat(seq []byte, i, j, maxArm int) int {
	armLen := directRepeatSeedLen
	for armLen < maxArm {
		li := i + armLen
		lj := j + armLen
		if li >= j || lj >= len(seq) {
			break
		}
		if seq[li] != seq[lj] {
			break
		}
		armLen++
	}
	return armLen
}
