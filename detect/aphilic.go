// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package detect

import (
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/tables"
	"github.com/vryella/nonbfinder/taxonomy"
)

// APhilicDetector implements the A-philic DNA detector (spec §4.5): the
// 112-entry 10-mer log2-propensity table scan, built identically to the
// Z-DNA cumulative scan but merging adjacent/overlapping positive 10-mers
// rather than requiring the higher Z-DNA threshold.
type APhilicDetector struct{}

func (APhilicDetector) ClassID() taxonomy.ClassID { return taxonomy.APhilicDNA }

func (APhilicDetector) DefaultSubclasses() []string {
	return taxonomy.DefaultSubclasses(taxonomy.APhilicDNA)
}

func (APhilicDetector) Profile() (motif.Profile, float64, float64) {
	return motif.ProfileLog, 0.5, 50
}

func (APhilicDetector) Detect(seq []byte, seqID string, offset int) []motif.Candidate {
	hits := tables.ScanAPhilic(seq)
	likes := make([]tableHitLike, len(hits))
	for i, h := range hits {
		likes[i] = tableHitLike{Start: h.Start, Score: h.Score}
	}
	contrib := distributeHits(likes, 10, len(seq))
	regions := extractRegions(contrib, 0.5)

	out := make([]motif.Candidate, 0, len(regions))
	for _, r := range regions {
		out = append(out, motif.Candidate{
			Class:    taxonomy.APhilicDNA,
			Subclass: "A-philic DNA",
			SeqID:    seqID,
			Start:    r.Start + offset,
			End:      r.End + offset,
			Strand:   motif.StrandUnknown,
			RawScore: r.Sum,
			Features: map[string]interface{}{
				"cumulative_log2_score": r.Sum,
			},
		})
	}
	return out
}
