// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tables holds the process-wide, read-only scoring tables and
// pattern matchers shared by the detectors: the Z-DNA and A-philic 10-mer
// propensity tables, the nearest-neighbour ΔG table, and the G4Hunter
// per-base weight function (spec §4, §9 "shared scoring tables"). All
// tables are built once at package init and never mutated afterwards;
// sharing them by reference across concurrent detector calls is safe.
package tables

import "math"

// NNDeltaG holds the sixteen SantaLucia (1998) unified nearest-neighbour
// free energy parameters (kcal/mol, 37°C, 1 M NaCl) used by the Cruciform
// detector's stem thermodynamic validation (spec §4.8). Complementary
// steps (e.g. AA/TT) share a value by symmetry but are both present as
// independent map entries.
var NNDeltaG = map[string]float64{
	"AA": -1.00, "TT": -1.00,
	"AT": -0.88,
	"TA": -0.58,
	"CA": -1.45, "TG": -1.45,
	"GT": -1.44, "AC": -1.44,
	"CT": -1.28, "AG": -1.28,
	"GA": -1.30, "TC": -1.30,
	"CG": -2.17,
	"GC": -2.24,
	"GG": -1.84, "CC": -1.84,
}

// StemDeltaG sums the nearest-neighbour ΔG of a double-stranded stem
// (arm paired with the reverse complement of the other arm) plus a loop
// entropy penalty, per spec §4.8:
//
//	ΔG = Σ NN steps + 1.75 + 0.6·ln(loopLen)
func StemDeltaG(arm []byte, loopLen int) float64 {
	dg := 0.0
	for i := 0; i+1 < len(arm); i++ {
		step := string(arm[i : i+2])
		dg += NNDeltaG[step]
	}
	dg += loopEntropyPenalty(loopLen)
	return dg
}

func loopEntropyPenalty(loopLen int) float64 {
	if loopLen < 1 {
		loopLen = 1
	}
	return 1.75 + 0.6*math.Log(float64(loopLen))
}
