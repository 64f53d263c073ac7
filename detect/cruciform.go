// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"sort"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/sequence"
	"github.com/vryella/nonbfinder/tables"
	"github.com/vryella/nonbfinder/taxonomy"
)

const cruciformSeedLen = 6

// CruciformDetector implements the seed-and-extend inverted-repeat
// (palindrome) stem detector (spec §4.8): a 6-mer index pairs each
// position with its reverse complement's occurrences, candidate arms are
// extended with zero mismatches, and each stem is validated by
// nearest-neighbour ΔG.
type CruciformDetector struct {
	MinArm, MaxArm, MaxLoop int
}

func (d CruciformDetector) minArm() int {
	if d.MinArm > 0 {
		return d.MinArm
	}
	return 8
}

func (d CruciformDetector) maxArm() int {
	if d.MaxArm > 0 {
		return d.MaxArm
	}
	return 50
}

func (d CruciformDetector) maxLoop() int {
	if d.MaxLoop > 0 {
		return d.MaxLoop
	}
	return 12
}

func (CruciformDetector) ClassID() taxonomy.ClassID { return taxonomy.Cruciform }

func (CruciformDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.Cruciform)
}

func (CruciformDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLinear, 0, 1
}

func (d CruciformDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	if len(seq) < cruciformSeedLen*2 {
		return nil
	}
	idx := sequence.NewKmerIndex(seq, cruciformSeedLen)
	minArm, maxArm, maxLoop := d.minArm(), d.maxArm(), d.maxLoop()

	// seedStart/seedEnd are the starts of the innermost (loop-adjacent) 6
	// bases of the left and right arms: the left arm's stem meets the loop
	// at seedStart+cruciformSeedLen, the right arm's stem meets it at
	// seedEnd. Extension grows the stem outward from the seeds: leftward
	// from seedStart, rightward from seedEnd+cruciformSeedLen.
	type stem struct {
		armStart, armLen, loopLen int
	}
	var stems []stem
	for seedStart := 0; seedStart+cruciformSeedLen <= len(seq); seedStart++ {
		seed := seq[seedStart : seedStart+cruciformSeedLen]
		rc := string(sequence.ReverseComplement(seed))
		for _, seedEnd := range idx.Positions(rc) {
			loopLen := seedEnd - (seedStart + cruciformSeedLen)
			if loopLen < 0 || loopLen > maxLoop {
				continue
			}
			extra := extendArm(seq, seedStart, seedEnd, maxArm-cruciformSeedLen)
			armLen := cruciformSeedLen + extra
			if armLen < minArm {
				continue
			}
			stems = append(stems, stem{armStart: seedStart - extra, armLen: armLen, loopLen: loopLen})
		}
	}

	var out []motif.Candidate
	for _, st := range stems {
		if st.armStart < 0 {
			continue
		}
		armEnd := st.armStart + st.armLen
		rightArmStart := armEnd + st.loopLen
		rightArmEnd := rightArmStart + st.armLen
		if rightArmEnd > len(seq) {
			continue
		}
		arm := seq[st.armStart:armEnd]
		dg := tables.StemDeltaG(arm, maxInt(st.loopLen, 1))
		if dg > -5.0 {
			continue
		}
		raw := clampf(maxf(0, -dg/20), 0, 1)
		out = append(out, motif.Candidate{
			Class:    taxonomy.Cruciform,
			Subclass: "Cruciform forming IRs",
			SeqID:    seqID,
			Start:    st.armStart + offset,
			End:      rightArmEnd + offset,
			Strand:   motif.StrandUnknown,
			RawScore: raw,
			Features: map[string]interface{}{
				"arm_length":  st.armLen,
				"loop_length": st.loopLen,
				"delta_g":     dg,
			},
		})
	}
	return dedupCruciformByStart(out)
}

// extendArm grows the stem outward from the innermost matched 6-mer
// seed with zero mismatches: seq[seedStart-1-d] must complement
// seq[seedEnd+cruciformSeedLen+d] for each additional base d, up to
// maxExtra additional bases on each arm.
func extendArm(seq []byte, seedStart, seedEnd, maxExtra int) int {
	d := 0
	for d < maxExtra {
		li := seedStart - 1 - d
		ri := seedEnd + cruciformSeedLen + d
		if li < 0 || ri >= len(seq) {
			break
		}
		if !complementary(seq[li], seq[ri]) {
			break
		}
		d++
	}
	return d
}

func complementary(a, b byte) bool {
	switch a {
	case 'A':
		return b == 'T'
	case 'T':
		return b == 'A'
	case 'C':
		return b == 'G'
	case 'G':
		return b == 'C'
	}
	return false
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// dedupCruciformByStart keeps, for each distinct Start, only the
// highest-scoring stem; the seed-and-extend scan can otherwise emit
// several nested loop-length variants anchored at the same left arm.
func dedupCruciformByStart(cands []motif.Candidate) []motif.Candidate {
	best := make(map[int]motif.Candidate)
	for _, c := range cands {
		if cur, ok := best[c.Start]; !ok || c.RawScore > cur.RawScore {
			best[c.Start] = c
		}
	}
	out := make([]motif.Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
