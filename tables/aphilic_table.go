// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tables

import "math"

// aphilicStepWeight holds the Vinogradov (2003) dinucleotide-step
// log-odds weights for A-form/nucleosome-affine propensity: all sixteen
// steps contribute (unlike the Z-DNA table, which only scores the eight
// alternating steps), biased towards A/T-rich and A-tract-extending
// steps.
var aphilicStepWeight = map[string]float64{
	"AA": 1.8, "TT": 1.6,
	"AT": 1.2, "TA": 0.6,
	"AC": 0.3, "CA": 0.3,
	"AG": 0.2, "GA": 0.2,
	"TC": 0.1, "CT": 0.1,
	"TG": 0.1, "GT": 0.1,
	"CC": -0.4, "GG": -0.4,
	"CG": -0.9, "GC": -0.9,
}

// APhilicTable is the 10-mer log2-propensity table (Vinogradov 2003):
// each entry is a 10-mer generated from one of the sixteen dinucleotide
// steps repeated with a phase shift (16 steps × 13 phases), scored as
// log2 of one plus the sum of its nine step weights. Phases past the
// 10-mer width all yield the pure repeat and the four homodimer steps
// yield a single 10-mer each, so the table holds 112 distinct entries,
// not 208. Built once at init.
var APhilicTable = buildAPhilicTable()

func buildAPhilicTable() map[string]float64 {
	const width = 10
	t := make(map[string]float64, 208)
	for step := range aphilicStepWeight {
		for phase := 2; phase <= 2+12; phase++ { // thirteen phases: 2..14, capped at width
			kmer := make([]byte, 0, width)
			for len(kmer) < phase && len(kmer) < width {
				kmer = append(kmer, step[len(kmer)%2])
			}
			rev := string([]byte{step[1], step[0]})
			for len(kmer) < width {
				kmer = append(kmer, rev[len(kmer)%2])
			}
			key := string(kmer)
			if _, exists := t[key]; exists {
				continue
			}
			t[key] = aphilicLog2Score(key)
		}
	}
	return t
}

func aphilicLog2Score(kmer string) float64 {
	sum := 0.0
	for i := 0; i+1 < len(kmer); i++ {
		sum += aphilicStepWeight[kmer[i:i+2]]
	}
	return math.Log2(1 + math.Max(0, sum))
}

// APhilicKeys returns the sorted 10-mer keys of APhilicTable, used to
// build the shared Aho-Corasick automaton (see multipattern.go).
func APhilicKeys() []string {
	return sortedKeys(APhilicTable)
}
