// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package detect implements the nine structural-motif detectors of spec
// §4.2–§4.9 plus the supplemented Slipped DNA detector (SPEC_FULL.md §C).
// Every detector is a pure function of (seq, parameters) satisfying
// motif.Detector (spec §4.1): no package-level mutable state, so a chunk
// fan-out can call them concurrently without synchronization.
package detect

// run is a maximal homopolymer tract [Start,End) of a single base.
type run struct {
	Start, End int
}

func (r run) Len() int { return r.End - r.Start }

// findRuns returns every maximal run of base in seq with length >= minLen.
func findRuns(seq []byte, base byte, minLen int) []run {
	var runs []run
	i := 0
	for i < len(seq) {
		if seq[i] != base {
			i++
			continue
		}
		j := i
		for j < len(seq) && seq[j] == base {
			j++
		}
		if j-i >= minLen {
			runs = append(runs, run{i, j})
		}
		i = j
	}
	return runs
}

// fourTractMatch is one match of the "four tracts separated by bounded
// loops" grammar shared by Canonical/Bulged/Extended-loop/Weak-PQS G4 and
// Canonical i-Motif: four runs of >= minTractLen of the same base, with
// 1..3 loops each within [minLoop, maxLoop].
type fourTractMatch struct {
	Start, End int
	Tracts     []run
	Loops      []int
}

// findTractGrammar scans runs (already sorted by Start, non-overlapping,
// as produced by findRuns) for every maximal run of exactly n consecutive
// tracts (each >= minTractLen) whose inter-tract gaps all fall within
// [minLoop, maxLoop]. It returns every window of n consecutive qualifying
// tracts, not just non-overlapping ones; overlap resolution is the
// caller's responsibility (each detector applies its own priority rule,
// spec §4.2/§4.3).
func findTractGrammar(runs []run, n, minTractLen, minLoop, maxLoop int) []fourTractMatch {
	var out []fourTractMatch
	for i := 0; i+n <= len(runs); i++ {
		ok := true
		loops := make([]int, 0, n-1)
		for k := 0; k < n; k++ {
			if runs[i+k].Len() < minTractLen {
				ok = false
				break
			}
			if k > 0 {
				loop := runs[i+k].Start - runs[i+k-1].End
				if loop < minLoop || loop > maxLoop {
					ok = false
					break
				}
				loops = append(loops, loop)
			}
		}
		if !ok {
			continue
		}
		out = append(out, fourTractMatch{
			Start:  runs[i].Start,
			End:    runs[i+n-1].End,
			Tracts: append([]run(nil), runs[i:i+n]...),
			Loops:  loops,
		})
	}
	return out
}

// tandemRepeat is one maximal tandem repeat of unit, with copyCount whole
// copies. End is the end of the last whole copy; a trailing partial copy,
// if any, is neither counted nor included in [Start, End).
type tandemRepeat struct {
	Start, End int
	Unit       string
	CopyCount  int
}

// findTandemRepeats scans seq for maximal tandem repeats of unit exactly
// as given (other rotations of unit are not matched, so a repeat starts
// where unit itself first occurs), keeping only repeats with at least
// minCopies whole copies. It underlies
// eGZ (§4.4), Sticky DNA (§4.9), and STR (SPEC_FULL.md §C).
func findTandemRepeats(seq []byte, unit string, minCopies int) []tandemRepeat {
	u := len(unit)
	if u == 0 || len(seq) < u*minCopies {
		return nil
	}
	var out []tandemRepeat
	i := 0
	for i+u <= len(seq) {
		if !matchesAt(seq, i, unit) {
			i++
			continue
		}
		start := i
		copies := 0
		j := i
		for j+u <= len(seq) && matchesAt(seq, j, unit) {
			j += u
			copies++
		}
		if copies >= minCopies {
			out = append(out, tandemRepeat{Start: start, End: j, Unit: unit, CopyCount: copies})
		}
		i = j
		if j == start {
			i++
		}
	}
	return out
}

func matchesAt(seq []byte, pos int, unit string) bool {
	if pos+len(unit) > len(seq) {
		return false
	}
	for k := 0; k < len(unit); k++ {
		if seq[pos+k] != unit[k] {
			return false
		}
	}
	return true
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// scoredRegion is a contiguous run of positions whose per-base
// contributions are all positive, as produced by extractRegions. It is
// the shared region-extraction primitive behind the Z-DNA cumulative
// scan (spec §4.4) and the A-philic log2-propensity scan (spec §4.5):
// both distribute a k-mer table score evenly over its k positions and
// then merge the resulting per-base contribution array into regions.
type scoredRegion struct {
	Start, End int
	Sum        float64
}

// distributeHits spreads each hit's Score evenly across its k positions
// into a per-base contribution array of length seqLen, per spec §4.4's
// "each 10-mer's score is distributed as score/10 to each of its ten
// positions".
func distributeHits(hits []tableHitLike, k, seqLen int) []float64 {
	contrib := make([]float64, seqLen)
	for _, h := range hits {
		share := h.Score / float64(k)
		for p := h.Start; p < h.Start+k && p < seqLen; p++ {
			contrib[p] += share
		}
	}
	return contrib
}

// tableHitLike mirrors tables.TableHit's fields without importing
// tables into this low-level helper's signature (kept separate so
// common.go has no table-scoring dependency).
type tableHitLike struct {
	Start int
	Score float64
}

// extractRegions merges contiguous positive-contribution runs of contrib
// into scoredRegions, keeping only those whose cumulative sum meets
// minSum.
func extractRegions(contrib []float64, minSum float64) []scoredRegion {
	var out []scoredRegion
	i := 0
	for i < len(contrib) {
		if contrib[i] <= 0 {
			i++
			continue
		}
		j := i
		sum := 0.0
		for j < len(contrib) && contrib[j] > 0 {
			sum += contrib[j]
			j++
		}
		if sum >= minSum {
			out = append(out, scoredRegion{Start: i, End: j, Sum: sum})
		}
		i = j
	}
	return out
}
