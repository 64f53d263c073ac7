// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

const helicalRepeat = 10.5

// CurvedDetector implements the Curved DNA detector (spec §4.6): single
// long A/T-tracts (Local Curvature) and phased A/T-tract trains whose
// spacing matches the ~10.5 bp helical repeat (Global Curvature / APR).
type CurvedDetector struct{}

func (CurvedDetector) ClassID() taxonomy.ClassID { return taxonomy.CurvedDNA }

func (CurvedDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.CurvedDNA)
}

func (CurvedDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLinear, 0, 1
}

func (d CurvedDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	var cands []motif.Candidate
	cands = append(cands, d.localCandidates(seq, seqID)...)
	cands = append(cands, d.globalCandidates(seq, seqID)...)
	for i := range cands {
		cands[i].Start += offset
		cands[i].End += offset
	}
	return cands
}

func (CurvedDetector) localCandidates(seq []byte, seqID string) []motif.Candidate {
	var out []motif.Candidate
	for _, base := range []byte{'A', 'T'} {
		for _, r := range findRuns(seq, base, 7) {
			l := float64(r.Len())
			raw := l / (l + 6)
			out = append(out, motif.Candidate{
				Class:    taxonomy.CurvedDNA,
				Subclass: "Local Curvature",
				SeqID:    seqID,
				Start:    r.Start,
				End:      r.End,
				Strand:   motif.StrandUnknown,
				RawScore: raw,
				Features: map[string]interface{}{
					"tract_base": string(base),
					"tract_len":  r.Len(),
				},
			})
		}
	}
	return out
}

// globalCandidates finds runs of >=3 A/T-tracts (length 3..9) whose
// center-to-center spacing lies within [9.9, 11.1] of the 10.5 bp
// helical repeat (spec §4.6).
func (CurvedDetector) globalCandidates(seq []byte, seqID string) []motif.Candidate {
	var tracts []run
	for _, base := range []byte{'A', 'T'} {
		tracts = append(tracts, findRuns(seq, base, 3)...)
	}
	var filtered []run
	for _, t := range tracts {
		if t.Len() <= 9 {
			filtered = append(filtered, t)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Start < filtered[j].Start })

	centers := make([]float64, len(filtered))
	for i, t := range filtered {
		centers[i] = float64(t.Start+t.End) / 2
	}

	var out []motif.Candidate
	i := 0
	for i < len(filtered) {
		j := i
		spacings := []float64{}
		for j+1 < len(filtered) {
			spacing := centers[j+1] - centers[j]
			if spacing < 9.9 || spacing > 11.1 {
				break
			}
			spacings = append(spacings, spacing)
			j++
		}
		if j-i+1 >= 3 {
			start, end := filtered[i].Start, filtered[j].End
			raw := aprRawScore(spacings)
			out = append(out, motif.Candidate{
				Class:    taxonomy.CurvedDNA,
				Subclass: "Global Curvature",
				SeqID:    seqID,
				Start:    start,
				End:      end,
				Strand:   motif.StrandUnknown,
				RawScore: raw,
				Features: map[string]interface{}{
					"tract_count": j - i + 1,
					"spacings":    spacings,
				},
			})
			i = j + 1
		} else {
			i++
		}
	}
	return out
}

func aprRawScore(spacings []float64) float64 {
	if len(spacings) == 0 {
		return 0
	}
	const maxAllowedDeviation = 0.6
	deviations := make([]float64, len(spacings))
	for i, s := range spacings {
		deviations[i] = math.Abs(s - helicalRepeat)
	}
	meanDeviation := stat.Mean(deviations, nil)
	return clampf(1.0-meanDeviation/maxAllowedDeviation, 0, 1)
}
