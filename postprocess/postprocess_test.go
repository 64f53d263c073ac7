// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postprocess

import (
	"testing"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

func mk(class taxonomy.ClassID, sub string, start, end int, score float64) motif.Candidate {
	return motif.Candidate{Class: class, Subclass: sub, SeqID: "seq1", Start: start, End: end, RawScore: score, NormalizedScore: score}
}

func TestDedupSubclassGreedyRetainsHigherScoreFirst(t *testing.T) {
	// Two overlapping candidates in the same subclass: the higher-scoring
	// one, [0,10), is processed first (tie on Start broken by -score) and
	// should survive; the lower-scoring overlapping one is dropped.
	cands := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", 0, 10, 1.0),
		mk(taxonomy.GQuadruplex, "Canonical", 0, 10, 2.0),
	}
	got := DedupSubclass(cands)
	if len(got) != 1 {
		t.Fatalf("DedupSubclass: got %d candidates, want 1", len(got))
	}
	if got[0].RawScore != 2.0 {
		t.Errorf("DedupSubclass kept RawScore %v, want 2.0 (the higher-scoring overlapping candidate)", got[0].RawScore)
	}
}

func TestDedupSubclassNonOverlappingBothSurvive(t *testing.T) {
	cands := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", 0, 10, 1.0),
		mk(taxonomy.GQuadruplex, "Canonical", 20, 30, 1.0),
	}
	got := DedupSubclass(cands)
	if len(got) != 2 {
		t.Fatalf("DedupSubclass: got %d candidates, want 2 (non-overlapping)", len(got))
	}
}

func TestDedupAllKeepsDifferentSubclassesIndependently(t *testing.T) {
	// Overlapping intervals in different (class, subclass) groups are
	// never compared against each other (spec §4.10.1): both survive.
	cands := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", 0, 10, 1.0),
		mk(taxonomy.GQuadruplex, "Bulged", 0, 10, 1.0),
		mk(taxonomy.ZDNA, "Z-DNA", 0, 10, 1.0),
	}
	got := DedupAll(cands)
	if len(got) != 3 {
		t.Fatalf("DedupAll: got %d candidates, want 3 (cross-subclass/cross-class overlap is permitted)", len(got))
	}
}

func TestHybridAnnotateEmitsOnQualifyingOverlap(t *testing.T) {
	// a = [100,120), b = [110,140): overlap_len=10, shorter len = min(20,30)=20,
	// frac = 10/20 = 0.50, right at the inclusive lower bound (spec §4.10.2,
	// test scenario E9).
	a := mk(taxonomy.GQuadruplex, "Canonical", 100, 120, 2.0)
	b := mk(taxonomy.ZDNA, "Z-DNA", 110, 140, 2.4)
	got := HybridAnnotate([]motif.Candidate{a, b}, 0.50, 0.99)
	if len(got) != 1 {
		t.Fatalf("HybridAnnotate: got %d records, want 1", len(got))
	}
	h := got[0]
	if h.Class != taxonomy.Hybrid {
		t.Errorf("Hybrid record Class = %v, want %v", h.Class, taxonomy.Hybrid)
	}
	if want := "G-Quadruplex_Z-DNA_Overlap"; h.Subclass != want {
		t.Errorf("Hybrid record Subclass = %q, want %q", h.Subclass, want)
	}
	if h.Start != 100 || h.End != 140 {
		t.Errorf("Hybrid record span = [%d,%d), want [100,140)", h.Start, h.End)
	}
	if want := 2.2; h.NormalizedScore != want {
		t.Errorf("Hybrid record score = %v, want %v (mean of 2.0 and 2.4)", h.NormalizedScore, want)
	}
}

func TestHybridAnnotateRejectsBelowMinOverlap(t *testing.T) {
	// overlap_len=5, shorter=20, frac=0.25 < 0.50: no Hybrid record.
	a := mk(taxonomy.GQuadruplex, "Canonical", 100, 120, 2.0)
	b := mk(taxonomy.ZDNA, "Z-DNA", 115, 135, 2.0)
	got := HybridAnnotate([]motif.Candidate{a, b}, 0.50, 0.99)
	if len(got) != 0 {
		t.Fatalf("HybridAnnotate: got %d records, want 0 (overlap fraction below threshold)", len(got))
	}
}

func TestHybridAnnotateRejectsFullContainment(t *testing.T) {
	// b fully inside a: overlap_frac = 1.0 >= maxOverlap(0.99), excluded.
	a := mk(taxonomy.GQuadruplex, "Canonical", 0, 100, 2.0)
	b := mk(taxonomy.ZDNA, "Z-DNA", 10, 30, 2.0)
	got := HybridAnnotate([]motif.Candidate{a, b}, 0.50, 0.99)
	if len(got) != 0 {
		t.Fatalf("HybridAnnotate: got %d records, want 0 (overlap fraction 1.0 excluded by maxOverlap)", len(got))
	}
}

func TestHybridAnnotateSkipsSameClassPairs(t *testing.T) {
	a := mk(taxonomy.GQuadruplex, "Canonical", 100, 120, 2.0)
	b := mk(taxonomy.GQuadruplex, "Bulged", 110, 140, 2.0)
	got := HybridAnnotate([]motif.Candidate{a, b}, 0.50, 0.99)
	if len(got) != 0 {
		t.Fatalf("HybridAnnotate: got %d records, want 0 (same class never hybridizes)", len(got))
	}
}

func TestClusterAnnotateEmitsOnDenseMultiClassWindow(t *testing.T) {
	// Four motifs from four distinct classes, all starting within a 300 nt
	// window: spec scenario E10.
	cands := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", 10, 30, 2.0),
		mk(taxonomy.ZDNA, "Z-DNA", 50, 70, 2.0),
		mk(taxonomy.Cruciform, "Cruciform forming IRs", 100, 130, 2.0),
		mk(taxonomy.APhilicDNA, "A-philic DNA", 200, 220, 2.0),
	}
	got := ClusterAnnotate(cands, 300, 4, 3)
	if len(got) == 0 {
		t.Fatal("ClusterAnnotate: got 0 records, want at least 1")
	}
	c := got[0]
	if c.Class != taxonomy.Clusters {
		t.Errorf("Cluster record Class = %v, want %v", c.Class, taxonomy.Clusters)
	}
	if want := "Mixed_Cluster_4_classes"; c.Subclass != want {
		t.Errorf("Cluster record Subclass = %q, want %q", c.Subclass, want)
	}
	if c.Start != 10 || c.End != 220 {
		t.Errorf("Cluster record span = [%d,%d), want [10,220)", c.Start, c.End)
	}
}

func TestClusterAnnotateRejectsSparseWindow(t *testing.T) {
	// Only 2 motifs, below minMotifs=4.
	cands := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", 10, 30, 2.0),
		mk(taxonomy.ZDNA, "Z-DNA", 50, 70, 2.0),
	}
	got := ClusterAnnotate(cands, 300, 4, 3)
	if len(got) != 0 {
		t.Fatalf("ClusterAnnotate: got %d records, want 0 (below minMotifs)", len(got))
	}
}

func TestClusterAnnotateRejectsLowClassDiversity(t *testing.T) {
	// Four motifs but only 2 distinct classes, below minClasses=3.
	cands := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", 10, 30, 2.0),
		mk(taxonomy.GQuadruplex, "Bulged", 40, 60, 2.0),
		mk(taxonomy.ZDNA, "Z-DNA", 70, 90, 2.0),
		mk(taxonomy.ZDNA, "eGZ", 100, 120, 2.0),
	}
	got := ClusterAnnotate(cands, 300, 4, 3)
	if len(got) != 0 {
		t.Fatalf("ClusterAnnotate: got %d records, want 0 (below minClasses)", len(got))
	}
}

func TestHybridAnnotateIsIdempotent(t *testing.T) {
	// spec §8: "Hybrid annotation is idempotent: running it twice yields
	// the same set."
	a := mk(taxonomy.GQuadruplex, "Canonical", 100, 120, 2.0)
	b := mk(taxonomy.ZDNA, "Z-DNA", 110, 140, 2.4)
	first := HybridAnnotate([]motif.Candidate{a, b}, 0.50, 0.99)
	second := HybridAnnotate(first, 0.50, 0.99)
	if len(second) != 0 {
		t.Fatalf("running HybridAnnotate on its own (different-class) output produced %d new records, want 0", len(second))
	}
	// Re-running on the same primary input is deterministic.
	again := HybridAnnotate([]motif.Candidate{a, b}, 0.50, 0.99)
	if len(again) != len(first) {
		t.Fatalf("HybridAnnotate not deterministic: got %d records, then %d", len(first), len(again))
	}
}
