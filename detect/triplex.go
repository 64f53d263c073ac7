// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"math"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/sequence"
	"github.com/vryella/nonbfinder/taxonomy"
)

const triplexSeedLen = 5

// TriplexDetector implements the Triplex detector (spec §4.9): H-DNA
// mirror-repeat (not palindromic) seed-and-extend with purity scoring,
// and Sticky DNA GAA/TTC trinucleotide-repeat scoring.
type TriplexDetector struct{}

func (TriplexDetector) ClassID() taxonomy.ClassID { return taxonomy.Triplex }

func (TriplexDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.Triplex)
}

func (TriplexDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLinear, 1, 3
}

func (d TriplexDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	var cands []motif.Candidate
	cands = append(cands, d.hdnaCandidates(seq, seqID)...)
	cands = append(cands, d.stickyCandidates(seq, seqID)...)
	for i := range cands {
		cands[i].Start += offset
		cands[i].End += offset
	}
	return cands
}

// hdnaCandidates seed-and-extends mirror repeats (not reverse
// complement: the right arm read backwards equals the left arm) with arm
// 10..100, loop <=8, and purity >=0.90. The innermost triplexSeedLen
// bases of each arm seed the match; extension then grows the stem
// outward, leftward from the left seed and rightward from the right
// seed, exactly as the Cruciform detector extends its palindromic stems
// but testing base equality instead of complementarity.
func (TriplexDetector) hdnaCandidates(seq []byte, seqID string) []motif.Candidate {
	if len(seq) < triplexSeedLen*2 {
		return nil
	}
	idx := sequence.NewKmerIndex(seq, triplexSeedLen)
	var out []motif.Candidate
	seen := make(map[int]bool)
	for seedStart := 0; seedStart+triplexSeedLen <= len(seq); seedStart++ {
		seed := string(seq[seedStart : seedStart+triplexSeedLen])
		mirrorSeed := reverseString(seed)
		for _, rightStart := range idx.Positions(mirrorSeed) {
			loopLen := rightStart - (seedStart + triplexSeedLen)
			if loopLen < 0 || loopLen > 8 {
				continue
			}
			extra := extendMirror(seq, seedStart, rightStart, 100-triplexSeedLen)
			armLen := triplexSeedLen + extra
			armStart := seedStart - extra
			if armLen < 10 || armStart < 0 || seen[armStart] {
				continue
			}
			rightArmEnd := rightStart + armLen
			if rightArmEnd > len(seq) {
				continue
			}
			arm := seq[armStart : armStart+armLen]
			purityP := math.Max(sequence.PurineFraction(arm), sequence.PyrimidineFraction(arm))
			if purityP < 0.90 {
				continue
			}
			seen[armStart] = true
			raw := hdnaScore(armLen, loopLen, purityP, 0)
			out = append(out, motif.Candidate{
				Class:    taxonomy.Triplex,
				Subclass: "Triplex",
				SeqID:    seqID,
				Start:    armStart,
				End:      rightArmEnd,
				Strand:   motif.StrandUnknown,
				RawScore: raw,
				Features: map[string]interface{}{
					"arm_length":  armLen,
					"loop_length": loopLen,
					"purity":      purityP,
				},
			})
		}
	}
	return out
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// extendMirror grows a seeded mirror-repeat outward with zero
// mismatches: each additional base d pairs seq[seedStart-1-d] on the
// left arm with seq[rightStart+triplexSeedLen+d] on the right, keeping
// the mirror symmetry seq[L+i] == seq[Rend-1-i] across the whole stem.
func extendMirror(seq []byte, seedStart, rightStart, maxExtra int) int {
	d := 0
	for d < maxExtra {
		li := seedStart - 1 - d
		ri := rightStart + triplexSeedLen + d
		if li < 0 || ri >= len(seq) {
			break
		}
		if seq[li] != seq[ri] {
			break
		}
		d++
	}
	return d
}

// hdnaScore implements spec §4.9's H-DNA raw score: 1 + 2*min(1,
// L*0.35 + H*0.20 + P*0.30 + I*0.15).
func hdnaScore(armLen, loopLen int, purity float64, interruptions int) float64 {
	L := math.Min(1, math.Log(float64(armLen))/math.Log(35))
	H := math.Exp(-0.4 * float64(loopLen))
	P := math.Max(0, (purity-0.8)/0.2)
	I := 1 / (1 + float64(interruptions))
	return 1 + 2*math.Min(1, L*0.35+H*0.20+P*0.30+I*0.15)
}

// stickyCandidates detects GAA/TTC trinucleotide repeats, >=4 copies,
// scored by spec §4.9's piecewise copy-number function.
func (TriplexDetector) stickyCandidates(seq []byte, seqID string) []motif.Candidate {
	var out []motif.Candidate
	for _, unit := range []string{"GAA", "TTC"} {
		for _, rep := range findTandemRepeats(seq, unit, 4) {
			raw := stickyScore(rep.CopyCount)
			out = append(out, motif.Candidate{
				Class:    taxonomy.Triplex,
				Subclass: "Sticky DNA",
				SeqID:    seqID,
				Start:    rep.Start,
				End:      rep.End,
				Strand:   motif.StrandUnknown,
				RawScore: raw,
				Features: map[string]interface{}{
					"repeat_unit": unit,
					"copy_number": rep.CopyCount,
				},
			})
		}
	}
	return out
}

func stickyScore(n int) float64 {
	switch {
	case n < 20:
		return 1.0 + 0.015*float64(n)
	case n < 40:
		return 1.3 + 0.03*float64(n-20)
	case n < 60:
		return 2.0 + 0.02*float64(n-40)
	default:
		return 2.6 + 0.01*float64(n-60)
	}
}
