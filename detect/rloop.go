// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/sequence"
	"github.com/vryella/nonbfinder/taxonomy"
)

const (
	numLinker      = 50
	rezMaxLen      = 2000
	rezScanStep    = 100
	rizMinLen      = 20
	rizMinGC       = 0.50
	rezMinGC       = 0.40
	rloopAcceptMin = 0.4
)

// rloopModel is one of the two QmRLFS G-run thresholds (spec §4.7).
type rloopModel struct {
	subclass string
	minGRun  int
}

var rloopModels = []rloopModel{
	{subclass: "R-loop formation sites (M1)", minGRun: 3},
	{subclass: "R-loop formation sites (M2)", minGRun: 4},
}

// RLoopDetector implements the QmRLFS R-Loop detector (spec §4.7): for
// each of the M1/M2 G-run thresholds, scans for an RNA-invasion zone
// (RIZ) and extends a matching RNA-exit zone (REZ) downstream.
type RLoopDetector struct{}

func (RLoopDetector) ClassID() taxonomy.ClassID { return taxonomy.RLoop }

func (RLoopDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.RLoop)
}

func (RLoopDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLinear, 0.4, 2.0
}

func (RLoopDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	gps := sequence.GPrefixSum(seq)
	var cands []motif.Candidate
	for _, model := range rloopModels {
		cands = append(cands, scanRLoopModel(seq, gps, seqID, model)...)
	}
	for i := range cands {
		cands[i].Start += offset
		cands[i].End += offset
	}
	return cands
}

// gcFractionFromPrefix returns the G-content fraction of seq[start:end]
// using the O(1) prefix-sum query.
func gcFractionFromPrefix(gps []int32, start, end int) float64 {
	if end <= start {
		return 0
	}
	return float64(gps[end]-gps[start]) / float64(end-start)
}

func scanRLoopModel(seq []byte, gps []int32, seqID string, model rloopModel) []motif.Candidate {
	gRuns := findRuns(seq, 'G', model.minGRun)
	var out []motif.Candidate
	for i := 0; i < len(seq); {
		rizEnd := -1
		for end := minInt(i+rizMinLen, len(seq)); end <= len(seq); end++ {
			if end-i < rizMinLen {
				continue
			}
			if gcFractionFromPrefix(gps, i, end) >= rizMinGC && hasGRunIn(gRuns, i, end) {
				rizEnd = end
			} else if rizEnd > 0 {
				break
			}
		}
		if rizEnd < 0 {
			i++
			continue
		}
		rizStart, rizEndFinal := i, rizEnd
		rizGC := gcFractionFromPrefix(gps, rizStart, rizEndFinal)

		// The REZ may sit up to numLinker nt downstream of the RIZ: try
		// each linker gap in order and take the earliest start that
		// yields a qualifying zone, extended to its furthest qualifying
		// end within rezMaxLen at the coarse scan step.
		rezStart, rezEnd := -1, -1
		rezGC := 0.0
		for ls := rizEndFinal; ls <= rizEndFinal+numLinker && ls < len(seq); ls++ {
			limit := minInt(ls+rezMaxLen, len(seq))
			for end := ls + rizMinLen; end <= limit; end += rezScanStep {
				gc := gcFractionFromPrefix(gps, ls, end)
				if gc >= rezMinGC {
					rezStart, rezEnd, rezGC = ls, end, gc
				}
			}
			if rezEnd > 0 {
				break
			}
		}

		combined := rizGC
		end := rizEndFinal
		if rezEnd > 0 {
			combined = minf(1, rizGC+rezGC)
			end = rezEnd
		}
		if combined >= rloopAcceptMin {
			features := map[string]interface{}{
				"riz_start": rizStart,
				"riz_end":   rizEndFinal,
				"riz_gc":    rizGC,
				"rez_gc":    rezGC,
			}
			if rezEnd > 0 {
				features["rez_start"] = rezStart
				features["linker_len"] = rezStart - rizEndFinal
			}
			out = append(out, motif.Candidate{
				Class:    taxonomy.RLoop,
				Subclass: model.subclass,
				SeqID:    seqID,
				Start:    rizStart,
				End:      end,
				Strand:   motif.StrandPlus,
				RawScore: combined,
				Features: features,
			})
		}
		i = rizEndFinal
	}
	return out
}

func hasGRunIn(runs []run, start, end int) bool {
	for _, r := range runs {
		if r.Start >= start && r.End <= end {
			return true
		}
	}
	return false
}
