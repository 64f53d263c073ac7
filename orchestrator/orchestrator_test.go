// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vryella/nonbfinder/adapter"
	"github.com/vryella/nonbfinder/chunk"
	"github.com/vryella/nonbfinder/errs"
	"github.com/vryella/nonbfinder/internal/store"
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	return cfg
}

// testSequence builds a 2000 bp sequence of inert AACC filler with five
// motif islands placed mid-core for the chunk geometry used by the
// chunking-invariance test (chunk 500, overlap 120, core stride 380):
// a long A-tract, a telomeric G4 repeat, a pure (CG)n Z-DNA tract, a
// canonical i-motif, and a (GAA)n sticky tract. The filler itself
// matches none of the detectors enabled by testClasses.
func testSequence() []byte {
	const fill = "AACC"
	b := make([]byte, 0, 2000)
	place := func(at int, island string) {
		for len(b) < at {
			b = append(b, fill[len(b)%4])
		}
		b = append(b, island...)
	}
	place(100, "AAAAAAAA")
	place(300, strings.Repeat("TTAGGG", 4))
	place(500, strings.Repeat("CG", 10))
	place(900, "CCCCACCCCACCCCACCCC")
	place(1300, strings.Repeat("GAA", 6))
	place(2000, "")
	return b
}

var testClasses = []taxonomy.ClassID{
	taxonomy.CurvedDNA,
	taxonomy.GQuadruplex,
	taxonomy.IMotif,
	taxonomy.ZDNA,
	taxonomy.Triplex,
}

func newTestStore(t *testing.T) *store.ResultStore {
	t.Helper()
	s, err := store.Create(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func runPipeline(t *testing.T, cfg Config, seq []byte) (RunSummary, []motif.Candidate) {
	t.Helper()
	sink := newTestStore(t)
	o := New(cfg)
	seqs := adapter.NewMemorySequences(adapter.NewInMemorySource("chr1", seq))
	summary, err := o.Run(context.Background(), seqs, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := sink.Iter(0)
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}
	return summary, got
}

func TestRunEndToEndFindsPlantedMotifs(t *testing.T) {
	seq := testSequence()
	summary, got := runPipeline(t, quietConfig(), seq)

	if len(summary.Sequences) != 1 || summary.Sequences[0].Status != StatusOK {
		t.Fatalf("summary = %+v, want one ok sequence", summary.Sequences)
	}
	if summary.Sequences[0].Motifs != len(got) {
		t.Errorf("summary reports %d motifs, store holds %d", summary.Sequences[0].Motifs, len(got))
	}

	want := map[string]bool{
		"Local Curvature": false,
		"Telomeric":       false,
		"Z-DNA":           false,
		"Canonical":       false,
		"Sticky DNA":      false,
	}
	for _, c := range got {
		if _, ok := want[c.Subclass]; ok {
			want[c.Subclass] = true
		}
	}
	for sub, found := range want {
		if !found {
			t.Errorf("planted %s motif not reported", sub)
		}
	}
}

func TestRunOutputSatisfiesPipelineInvariants(t *testing.T) {
	seq := testSequence()
	_, got := runPipeline(t, quietConfig(), seq)
	if len(got) == 0 {
		t.Fatal("pipeline produced no motifs")
	}

	type key struct {
		class taxonomy.ClassID
		sub   string
	}
	lastEnd := make(map[key]int)
	for i, c := range got {
		if c.Start >= c.End || c.End > len(seq) {
			t.Errorf("record %d: invalid span [%d,%d) for length %d", i, c.Start, c.End, len(seq))
		}
		if c.NormalizedScore < 1.0 || c.NormalizedScore > 3.0 {
			t.Errorf("record %d (%s/%s): NormalizedScore = %v, want in [1,3]", i, taxonomy.CanonicalClass(c.Class), c.Subclass, c.NormalizedScore)
		}
		if c.Class == taxonomy.Hybrid || c.Class == taxonomy.Clusters {
			continue
		}
		// Within-subclass no-overlap: records come out sorted by start,
		// so it suffices that each starts at or after its group's
		// furthest end so far.
		k := key{c.Class, c.Subclass}
		if c.Start < lastEnd[k] {
			t.Errorf("record %d (%s/%s): overlaps earlier motif of same subclass", i, taxonomy.CanonicalClass(c.Class), c.Subclass)
		}
		if c.End > lastEnd[k] {
			lastEnd[k] = c.End
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	seq := testSequence()
	_, first := runPipeline(t, quietConfig(), seq)
	_, second := runPipeline(t, quietConfig(), seq)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two runs over the same input differ (-first +second):\n%s", diff)
	}
}

// planWith reproduces the micro-chunk geometry with explicit size and
// overlap, so the invariance test can chunk a sequence far below the
// tier thresholds.
func planWith(totalLen, size, overlap int) []chunk.Chunk {
	stride := size - overlap
	var out []chunk.Chunk
	for start := 0; start < totalLen; start += stride {
		end := start + size
		last := end >= totalLen
		if last {
			end = totalLen
		}
		coreEnd := end - overlap
		if last {
			coreEnd = end
		}
		out = append(out, chunk.Chunk{Start: start, End: end, CoreEnd: coreEnd, Tier: chunk.TierMicro})
		if last {
			break
		}
	}
	return out
}

func TestChunkingInvariance(t *testing.T) {
	seq := testSequence()
	cfg := quietConfig()
	cfg.EnabledClasses = testClasses
	o := New(cfg)
	src := adapter.NewInMemorySource("chr1", seq)

	direct := []chunk.Chunk{{Start: 0, End: len(seq), CoreEnd: len(seq), Tier: chunk.TierDirect}}
	chunked := planWith(len(seq), 500, 120)
	if len(chunked) < 4 {
		t.Fatalf("chunked plan has %d chunks, want several", len(chunked))
	}

	directCands, derr := o.processSequence(context.Background(), "chr1", src, direct)
	if derr != nil {
		t.Fatalf("direct processSequence: %v", derr)
	}
	chunkedCands, cerr := o.processSequence(context.Background(), "chr1", src, chunked)
	if cerr != nil {
		t.Fatalf("chunked processSequence: %v", cerr)
	}

	directFinal := o.postprocess(directCands)
	chunkedFinal := o.postprocess(chunkedCands)
	if diff := cmp.Diff(directFinal, chunkedFinal); diff != "" {
		t.Errorf("chunked result differs from direct (-direct +chunked):\n%s", diff)
	}
	if len(directFinal) == 0 {
		t.Error("invariance check vacuous: direct run found no motifs")
	}
}

func TestRunSkipsShortSequence(t *testing.T) {
	sink := newTestStore(t)
	o := New(quietConfig())
	seqs := adapter.NewMemorySequences(adapter.NewInMemorySource("tiny", []byte("ACGT")))
	summary, err := o.Run(context.Background(), seqs, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Sequences) != 1 || summary.Sequences[0].Status != StatusSkipped {
		t.Fatalf("summary = %+v, want one skipped sequence", summary.Sequences)
	}
	if summary.ErrorCounts[errs.InvalidSequence] != 1 {
		t.Errorf("ErrorCounts[InvalidSequence] = %d, want 1", summary.ErrorCounts[errs.InvalidSequence])
	}
}

// failSource always fails its range reads, exercising the
// ChunkReadFailed retry-then-abort path.
type failSource struct{}

func (failSource) SeqID() string { return "bad" }
func (failSource) Len() int      { return 1000 }
func (failSource) ReadRange(start, end int) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func TestRunRecordsChunkReadFailure(t *testing.T) {
	sink := newTestStore(t)
	o := New(quietConfig())
	seqs := adapter.NewMemorySequences(failSource{})
	summary, err := o.Run(context.Background(), seqs, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Sequences) != 1 || summary.Sequences[0].Status != StatusFailed {
		t.Fatalf("summary = %+v, want one failed sequence", summary.Sequences)
	}
	if summary.ErrorCounts[errs.ChunkReadFailed] != 1 {
		t.Errorf("ErrorCounts[ChunkReadFailed] = %d, want 1", summary.ErrorCounts[errs.ChunkReadFailed])
	}
}

func TestRunTimeoutMarksSequenceTimedOut(t *testing.T) {
	sink := newTestStore(t)
	cfg := quietConfig()
	cfg.PerSequenceTimeout = time.Nanosecond
	o := New(cfg)
	seqs := adapter.NewMemorySequences(adapter.NewInMemorySource("chr1", testSequence()))
	summary, err := o.Run(context.Background(), seqs, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Sequences) != 1 || summary.Sequences[0].Status != StatusTimedOut {
		t.Fatalf("summary = %+v, want one timed_out sequence", summary.Sequences)
	}
	if summary.ErrorCounts[errs.Timeout] != 1 {
		t.Errorf("ErrorCounts[Timeout] = %d, want 1", summary.ErrorCounts[errs.Timeout])
	}
}

func TestBuildDetectorsHonoursEnabledClasses(t *testing.T) {
	cfg := quietConfig()
	cfg.EnabledClasses = []taxonomy.ClassID{taxonomy.GQuadruplex, taxonomy.ZDNA}
	ds := buildDetectors(cfg)
	if len(ds) != 2 {
		t.Fatalf("buildDetectors returned %d detectors, want 2", len(ds))
	}
	for _, d := range ds {
		if c := d.ClassID(); c != taxonomy.GQuadruplex && c != taxonomy.ZDNA {
			t.Errorf("unexpected detector class %v", c)
		}
	}
}

func TestBuildDetectorsDefaultsToAllNine(t *testing.T) {
	ds := buildDetectors(quietConfig())
	if len(ds) != 9 {
		t.Fatalf("buildDetectors returned %d detectors, want 9", len(ds))
	}
	seen := make(map[taxonomy.ClassID]bool)
	for _, d := range ds {
		seen[d.ClassID()] = true
	}
	if len(seen) != 9 {
		t.Errorf("detectors cover %d distinct classes, want 9", len(seen))
	}
}
