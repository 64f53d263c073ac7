// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tables

// G4HunterWeight returns the per-base signed G4Hunter contribution of b:
// +1 for G, -1 for C, 0 otherwise (spec §4.2, GLOSSARY "G4Hunter score").
func G4HunterWeight(b byte) int {
	switch b {
	case 'G':
		return 1
	case 'C':
		return -1
	default:
		return 0
	}
}

// G4HunterPrefixSum returns a length len(seq)+1 prefix-sum of
// G4HunterWeight over seq, giving O(1) windowed-sum queries for the
// sliding-window maximum scan (spec §4.2).
func G4HunterPrefixSum(seq []byte) []int32 {
	sum := make([]int32, len(seq)+1)
	for i, b := range seq {
		sum[i+1] = sum[i] + int32(G4HunterWeight(b))
	}
	return sum
}

// MaxWindowSum returns the maximum sum of any width-w window of seq's
// G4Hunter score, using the prefix sum ps (as returned by
// G4HunterPrefixSum), and the 0-based start of the best window. It
// returns (0, -1) if seq is shorter than w.
func MaxWindowSum(ps []int32, w int) (best int32, bestStart int) {
	n := len(ps) - 1
	if n < w {
		return 0, -1
	}
	bestStart = 0
	best = ps[w] - ps[0]
	for i := 1; i+w <= n; i++ {
		s := ps[i+w] - ps[i]
		if s > best {
			best = s
			bestStart = i
		}
	}
	return best, bestStart
}
