// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chunk

import "testing"

func TestSelectTier(t *testing.T) {
	tests := []struct {
		totalLen int
		want     Tier
	}{
		{0, TierDirect},
		{999_999, TierDirect},
		{1_000_000, TierMicro},
		{9_999_999, TierMicro},
		{10_000_000, TierMesoMicro},
		{99_999_999, TierMesoMicro},
		{100_000_000, TierMacroMesoMicro},
		{500_000_000, TierMacroMesoMicro},
	}
	for _, test := range tests {
		got := SelectTier(test.totalLen)
		if got != test.want {
			t.Errorf("SelectTier(%d) = %v, want %v", test.totalLen, got, test.want)
		}
	}
}

func TestPlanDirect(t *testing.T) {
	got := Plan(500, DefaultSizes())
	want := []Chunk{{Start: 0, End: 500, CoreEnd: 500, Tier: TierDirect}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Plan(500) = %+v, want %+v", got, want)
	}
}

func TestPlanMicroPartitionsCoreWithoutGapsOrOverlaps(t *testing.T) {
	const totalLen = 3_000_000
	chunks := Plan(totalLen, DefaultSizes())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d bp, got %d", totalLen, len(chunks))
	}
	if chunks[0].Start != 0 {
		t.Errorf("first chunk starts at %d, want 0", chunks[0].Start)
	}
	if last := chunks[len(chunks)-1]; last.End != totalLen || last.CoreEnd != totalLen {
		t.Errorf("last chunk = %+v, want End and CoreEnd = %d", last, totalLen)
	}
	for i, c := range chunks {
		if c.Start >= c.CoreEnd {
			t.Errorf("chunk %d: Start %d >= CoreEnd %d", i, c.Start, c.CoreEnd)
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		if c.Start != prev.CoreEnd {
			t.Errorf("chunk %d starts at %d, want previous chunk's CoreEnd %d (no gap/overlap in core coverage)", i, c.Start, prev.CoreEnd)
		}
	}
}

func TestPlanChunksOverlapNeighbours(t *testing.T) {
	sz := DefaultSizes()
	chunks := Plan(3_000_000, sz)
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Start >= prev.End {
			continue // final chunk may not overlap if it's the short remainder
		}
		if prev.End-cur.Start != sz.MicroOverlap && i != len(chunks)-1 {
			t.Errorf("chunk %d overlaps previous by %d bases, want %d", i, prev.End-cur.Start, sz.MicroOverlap)
		}
	}
}

func TestInCore(t *testing.T) {
	c := Chunk{Start: 100, End: 200, CoreEnd: 180}
	for _, pos := range []int{99, 100, 179, 180, 199} {
		want := pos >= 100 && pos < 180
		if got := c.InCore(pos); got != want {
			t.Errorf("InCore(%d) = %v, want %v", pos, got, want)
		}
	}
}

func TestBatchesGroupByOuterTier(t *testing.T) {
	sz := DefaultSizes()
	chunks := Plan(12_000_000, sz)
	batches := Batches(chunks, TierMesoMicro, sz)
	if len(batches) == 0 {
		t.Fatal("expected at least one batch")
	}
	var gotChunks int
	for _, b := range batches {
		gotChunks += len(b.Chunks)
		if b.End-b.Start > sz.MesoSize && b.Chunks[len(b.Chunks)-1].End != chunks[len(chunks)-1].End {
			t.Errorf("batch [%d,%d) exceeds meso size %d", b.Start, b.End, sz.MesoSize)
		}
	}
	if gotChunks != len(chunks) {
		t.Errorf("batches cover %d chunks, want %d", gotChunks, len(chunks))
	}
}

func TestBatchesMicroTierIsOneBatch(t *testing.T) {
	sz := DefaultSizes()
	chunks := Plan(3_000_000, sz)
	batches := Batches(chunks, TierMicro, sz)
	if len(batches) != 1 {
		t.Fatalf("TierMicro should yield a single batch, got %d", len(batches))
	}
	if len(batches[0].Chunks) != len(chunks) {
		t.Errorf("batch holds %d chunks, want %d", len(batches[0].Chunks), len(chunks))
	}
}

func TestPlanEmpty(t *testing.T) {
	if got := Plan(0, DefaultSizes()); got != nil {
		t.Errorf("Plan(0) = %v, want nil", got)
	}
}
