// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tables

// zdnaStepWeight holds the Ho (1986) dinucleotide-step propensity weights
// for B-to-Z transition: purine-pyrimidine alternating steps (GC/CG,
// GT/TG, AC/CA, AT/TA) score highly, homopolymeric steps score zero.
var zdnaStepWeight = map[string]float64{
	"GC": 7.0, "CG": 7.0,
	"GT": 1.25, "TG": 1.25,
	"AC": 1.25, "CA": 1.25,
	"AT": 0.5, "TA": 0.5,
}

// zdnaUnits are the eight purine-pyrimidine alternating dinucleotide
// repeat units the classical Z-DNA table is built from.
var zdnaUnits = []string{"GC", "CG", "GT", "TG", "AC", "CA", "AT", "TA"}

// ZDNATable is the 10-mer propensity table (Ho 1986, 56 entries): for
// each of the eight alternating dinucleotide units it holds the pure
// alternating 10-mer plus six 10-mers that switch to the unit's reverse
// partner at one of six internal phase positions (8 units × 7 10-mers,
// all distinct), each scored as the sum of its nine dinucleotide-step
// weights. This is the fixed, read-only table
// referenced by spec §4.4; it is built once at init.
var ZDNATable = buildZDNATable()

func buildZDNATable() map[string]float64 {
	const width = 10
	t := make(map[string]float64, 48)
	for _, unit := range zdnaUnits {
		// The pure, unswitched decamer (the classical alternating
		// purine-pyrimidine repeat, e.g. "CGCGCGCGCG") scores highest
		// and is the textbook Z-DNA-forming case; include it alongside
		// the six switch-junction variants below.
		pure := make([]byte, width)
		for i := range pure {
			pure[i] = unit[i%2]
		}
		if _, exists := t[string(pure)]; !exists {
			t[string(pure)] = scoreStepSum(string(pure))
		}

		for phase := 2; phase <= 2+5; phase++ { // six switch positions: 2..7
			kmer := make([]byte, 0, width)
			for len(kmer) < phase && len(kmer) < width {
				kmer = append(kmer, unit[len(kmer)%2])
			}
			// Switch to the reverse-ordered unit for the remainder, so
			// the 10-mer captures a junction between the two phases of
			// the alternating repeat rather than the pure run above.
			rev := string([]byte{unit[1], unit[0]})
			for len(kmer) < width {
				kmer = append(kmer, rev[len(kmer)%2])
			}
			key := string(kmer)
			if _, exists := t[key]; exists {
				continue
			}
			t[key] = scoreStepSum(key)
		}
	}
	return t
}

func scoreStepSum(kmer string) float64 {
	sum := 0.0
	for i := 0; i+1 < len(kmer); i++ {
		sum += zdnaStepWeight[kmer[i:i+2]]
	}
	return sum
}

// ZDNAKeys returns the sorted 10-mer keys of ZDNATable, used to build the
// shared Aho-Corasick automaton (see multipattern.go).
func ZDNAKeys() []string {
	return sortedKeys(ZDNATable)
}
