// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

func mk(class taxonomy.ClassID, sub, seqID string, start, end int, score float64) motif.Candidate {
	return motif.Candidate{
		Class: class, Subclass: sub, SeqID: seqID,
		Start: start, End: end,
		RawScore: score, NormalizedScore: score,
	}
}

func newTestStore(t *testing.T) *ResultStore {
	t.Helper()
	s, err := Create(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMotifKeyRoundTrip(t *testing.T) {
	c := mk(taxonomy.GQuadruplex, "Canonical", "chr1", 100, 120, 2.0)
	key := MarshalMotifKey(c, 7)
	got := UnmarshalMotifKey(key)
	want := MotifKey{SeqID: "chr1", Start: 100, End: 120, Class: taxonomy.GQuadruplex, Subclass: "Canonical", Seq: 7}
	if got != want {
		t.Errorf("key round trip = %+v, want %+v", got, want)
	}
}

func TestByGenomicPositionOrdersKeys(t *testing.T) {
	a := MarshalMotifKey(mk(taxonomy.GQuadruplex, "Canonical", "chr1", 100, 120, 2.0), 1)
	b := MarshalMotifKey(mk(taxonomy.ZDNA, "Z-DNA", "chr1", 100, 120, 2.0), 2)
	c := MarshalMotifKey(mk(taxonomy.GQuadruplex, "Canonical", "chr1", 150, 160, 2.0), 3)
	d := MarshalMotifKey(mk(taxonomy.GQuadruplex, "Canonical", "chr2", 0, 10, 2.0), 4)

	if ByGenomicPosition(a, b) >= 0 {
		t.Error("same position: lower class should order first")
	}
	if ByGenomicPosition(a, c) >= 0 {
		t.Error("lower start should order first")
	}
	if ByGenomicPosition(c, d) >= 0 {
		t.Error("seq_id should dominate position")
	}
	if ByGenomicPosition(a, a) != 0 {
		t.Error("identical keys should compare equal")
	}
}

func TestResultStoreIterIsSorted(t *testing.T) {
	s := newTestStore(t)
	// Append deliberately out of genomic order.
	cands := []motif.Candidate{
		mk(taxonomy.ZDNA, "Z-DNA", "chr1", 500, 520, 2.0),
		mk(taxonomy.GQuadruplex, "Canonical", "chr1", 100, 120, 2.0),
		mk(taxonomy.GQuadruplex, "Telomeric", "chr1", 100, 120, 2.5),
		mk(taxonomy.CurvedDNA, "Local Curvature", "chr1", 300, 310, 1.5),
	}
	for _, c := range cands {
		if err := s.Append(c); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got, err := s.Iter(0)
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if len(got) != len(cands) {
		t.Fatalf("Iter returned %d records, want %d", len(got), len(cands))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Start > cur.Start {
			t.Errorf("record %d starts at %d after %d", i, cur.Start, prev.Start)
		}
		if prev.Start == cur.Start && prev.End == cur.End && prev.Class > cur.Class {
			t.Errorf("record %d: class %v ordered after %v at equal position", i, cur.Class, prev.Class)
		}
	}
}

func TestResultStoreIterLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		if err := s.Append(mk(taxonomy.ZDNA, "Z-DNA", "chr1", i*100, i*100+10, 2.0)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got, err := s.Iter(2)
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Iter(2) returned %d records, want 2", len(got))
	}
}

func TestResultStoreSummaryIsIncremental(t *testing.T) {
	s := newTestStore(t)
	// Two overlapping G4 motifs and one disjoint Z-DNA motif: coverage
	// counts each covered base once, not per motif.
	appends := []motif.Candidate{
		mk(taxonomy.GQuadruplex, "Canonical", "chr1", 0, 20, 2.0),
		mk(taxonomy.GQuadruplex, "Telomeric", "chr1", 10, 30, 2.5),
		mk(taxonomy.ZDNA, "Z-DNA", "chr1", 100, 110, 2.0),
	}
	for _, c := range appends {
		if err := s.Append(c); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	sum := s.Summary()
	if sum.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", sum.TotalCount)
	}
	if got := sum.ClassDistribution["G-Quadruplex"]; got != 2 {
		t.Errorf("ClassDistribution[G-Quadruplex] = %d, want 2", got)
	}
	if got := sum.ClassDistribution["Z-DNA"]; got != 1 {
		t.Errorf("ClassDistribution[Z-DNA] = %d, want 1", got)
	}
	if sum.CoverageBP != 40 {
		t.Errorf("CoverageBP = %d, want 40 ([0,30) merged + [100,110))", sum.CoverageBP)
	}
}

func TestResultStoreWriteExternal(t *testing.T) {
	s := newTestStore(t)
	c := mk(taxonomy.GQuadruplex, "Canonical", "chr1", 99, 120, 2.5)
	c.Strand = motif.StrandPlus
	if err := s.Append(c); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	var buf bytes.Buffer
	if err := s.WriteExternal(&buf); err != nil {
		t.Fatalf("WriteExternal: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("WriteExternal wrote %d lines, want 1", len(lines))
	}
	rec, err := motif.ParseLine(lines[0])
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if rec.Start1Based != 100 || rec.EndInclusive != 120 {
		t.Errorf("external span = %d..%d, want 100..120 (1-based inclusive)", rec.Start1Based, rec.EndInclusive)
	}
	back, err := rec.Candidate()
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if back.Start != 99 || back.End != 120 {
		t.Errorf("round trip span = [%d,%d), want [99,120)", back.Start, back.End)
	}
}

func TestSequenceFileSaveReadRange(t *testing.T) {
	sf, err := NewSequenceFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewSequenceFile: %v", err)
	}
	defer sf.DeleteAll()

	bases := []byte("ACGTACGTGGCC")
	if err := sf.Save("chr1", bases); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := sf.ReadRange("chr1", 4, 8)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if string(got) != "ACGT" {
		t.Errorf("ReadRange(4,8) = %q, want %q", got, "ACGT")
	}
	length, gc, ok := sf.Metadata("chr1")
	if !ok {
		t.Fatal("Metadata: chr1 missing")
	}
	if length != len(bases) {
		t.Errorf("Metadata length = %d, want %d", length, len(bases))
	}
	if want := 8.0 / 12.0; gc != want {
		t.Errorf("Metadata gc = %v, want %v", gc, want)
	}
}

func TestSequenceFileReadRangeBounds(t *testing.T) {
	sf, err := NewSequenceFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewSequenceFile: %v", err)
	}
	defer sf.DeleteAll()
	if err := sf.Save("chr1", []byte("ACGT")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := sf.ReadRange("chr1", 0, 5); err == nil {
		t.Error("expected an error for a range past the sequence end")
	}
	if _, err := sf.ReadRange("nope", 0, 1); err == nil {
		t.Error("expected an error for an unknown sequence")
	}
}

func TestSequenceFileDelete(t *testing.T) {
	sf, err := NewSequenceFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewSequenceFile: %v", err)
	}
	if err := sf.Save("chr1", []byte("ACGTACGT")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := sf.Delete("chr1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, ok := sf.Metadata("chr1"); ok {
		t.Error("Metadata still present after Delete")
	}
	if _, err := sf.ReadRange("chr1", 0, 1); err == nil {
		t.Error("expected an error reading a deleted sequence")
	}
}

func TestSequenceFileSourceAdaptsChunkReads(t *testing.T) {
	sf, err := NewSequenceFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewSequenceFile: %v", err)
	}
	defer sf.DeleteAll()
	bases := []byte("ACGTACGTGGCCTTAA")
	if err := sf.Save("chr9", bases); err != nil {
		t.Fatalf("Save: %v", err)
	}
	src, err := sf.Source("chr9")
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if src.SeqID() != "chr9" || src.Len() != len(bases) {
		t.Errorf("Source identity = (%q, %d), want (%q, %d)", src.SeqID(), src.Len(), "chr9", len(bases))
	}
	got, err := src.ReadRange(12, 16)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if string(got) != "TTAA" {
		t.Errorf("ReadRange(12,16) = %q, want %q", got, "TTAA")
	}
}
