// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package motif

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// clamp restricts v to [lo,hi]. gonum has no single exported generic
// clamp, so this mirrors the one-purpose helper style of the teacher's
// blast.dust (a small template helper with no further abstraction).
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Normalize maps a detector's raw score into the universal [1.0, 3.0]
// range per spec §4.11, given the detector's declared profile and
// (rawMin, rawMax) bounds.
func Normalize(profile Profile, rawMin, rawMax, raw float64) float64 {
	switch profile {
	case ProfileLinear:
		return linearMap(raw, rawMin, rawMax)
	case ProfileLog:
		return logMap(raw, rawMin, rawMax)
	case ProfileG4Hunter:
		return linearMap(math.Abs(raw), rawMin, rawMax)
	case ProfileZDNACumulative:
		return logMap(raw, 50, 2000)
	default:
		panic("motif: unknown normalization profile")
	}
}

func linearMap(raw, rawMin, rawMax float64) float64 {
	if rawMax <= rawMin {
		return 1
	}
	frac := (raw - rawMin) / (rawMax - rawMin)
	return 1 + 2*clamp(frac, 0, 1)
}

func logMap(raw, rawMin, rawMax float64) float64 {
	if raw <= 0 || rawMin <= 0 || rawMax <= 0 || rawMax <= rawMin {
		return 1
	}
	frac := (math.Log(raw) - math.Log(rawMin)) / (math.Log(rawMax) - math.Log(rawMin))
	return 1 + 2*clamp(frac, 0, 1)
}

// NormalizeAll normalizes every candidate in place according to d's
// declared profile, and returns cands for chaining. Detectors publish
// both RawScore (preserved for diagnostics) and NormalizedScore (spec
// §4.11).
func NormalizeAll(d Detector, cands []Candidate) []Candidate {
	profile, rawMin, rawMax := d.Profile()
	for i := range cands {
		cands[i].NormalizedScore = Normalize(profile, rawMin, rawMax, cands[i].RawScore)
	}
	return cands
}

// Mean is a thin wrapper over gonum's stat.Mean for the Cluster
// annotator's mean-score aggregation (spec §4.10.3). The Hybrid
// annotator averages its two scores directly and does not call it.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
