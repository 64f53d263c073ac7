// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vryella/nonbfinder/adapter"
	"github.com/vryella/nonbfinder/chunk"
	"github.com/vryella/nonbfinder/errs"
	"github.com/vryella/nonbfinder/internal/store"
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/postprocess"
	"github.com/vryella/nonbfinder/sequence"
	"github.com/vryella/nonbfinder/taxonomy"
)

// readAttempts is how many times detectChunk retries a failed
// adapter.Source.ReadRange before giving up on the whole sequence (spec
// §7: ChunkReadFailed -> "retry the chunk read once; on a second failure,
// abort the sequence").
const readAttempts = 2

// Orchestrator runs the full detect -> normalize -> post-process ->
// store pipeline (spec §5) over a sequence of inputs. It owns the only
// mutable state in the pipeline (the result sink); every detector call it
// fans out is a pure function of (seq, parameters), so Orchestrator needs
// no locking of its own beyond the worker-count semaphore.
type Orchestrator struct {
	cfg       Config
	detectors []motif.Detector
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg, detectors: buildDetectors(cfg)}
}

// Run processes every sequence seqs yields, appending final records to
// sink, and returns a RunSummary describing each sequence's outcome.
// ctx's cancellation is polled between chunks, never (spec §5) inside a
// single detector call.
func (o *Orchestrator) Run(ctx context.Context, seqs adapter.Sequences, sink *store.ResultStore) (RunSummary, error) {
	summary := RunSummary{ErrorCounts: make(map[errs.Kind]int)}
	log := o.cfg.logger()

	for seqs.Next() {
		src := seqs.Source()
		seqID := src.SeqID()
		totalLen := src.Len()
		log.Printf("orchestrator: processing sequence %q (%d bp)", seqID, totalLen)

		if totalLen < sequence.MinSequenceLength {
			log.Printf("orchestrator: skipping sequence %q: length %d below minimum %d", seqID, totalLen, sequence.MinSequenceLength)
			summary.ErrorCounts[errs.InvalidSequence]++
			summary.Sequences = append(summary.Sequences, SeqSummary{SeqID: seqID, Status: StatusSkipped})
			continue
		}

		seqCtx := ctx
		var cancel context.CancelFunc
		if o.cfg.PerSequenceTimeout > 0 {
			seqCtx, cancel = context.WithTimeout(ctx, o.cfg.PerSequenceTimeout)
		}

		tier := chunk.SelectTier(totalLen)
		plan := chunk.Plan(totalLen, o.cfg.ChunkTierOverrides)
		log.Printf("orchestrator: sequence %q selected tier %v, %d chunks", seqID, tier, len(plan))

		cands, procErr := o.processSequence(seqCtx, seqID, src, plan)

		status := StatusOK
		switch {
		case seqCtx.Err() == context.DeadlineExceeded:
			status = StatusTimedOut
			summary.ErrorCounts[errs.Timeout]++
			log.Printf("orchestrator: sequence %q timed out after %v; emitting partial results", seqID, o.cfg.PerSequenceTimeout)
		case procErr != nil:
			summary.ErrorCounts[procErr.Kind]++
			if procErr.Kind == errs.InvalidSequence {
				status = StatusSkipped
			} else {
				status = StatusFailed
			}
			log.Printf("orchestrator: sequence %q: %v", seqID, procErr)
		}
		if cancel != nil {
			cancel()
		}

		if status == StatusFailed {
			summary.Sequences = append(summary.Sequences, SeqSummary{SeqID: seqID, Status: status})
			continue
		}

		final := o.postprocess(cands)
		for _, c := range final {
			if err := sink.Append(c); err != nil {
				return summary, fmt.Errorf("orchestrator: append %q: %w", seqID, err)
			}
		}
		if err := sink.Flush(); err != nil {
			return summary, fmt.Errorf("orchestrator: flush %q: %w", seqID, err)
		}

		summary.Sequences = append(summary.Sequences, SeqSummary{SeqID: seqID, Status: status, Motifs: len(final)})
	}
	if err := seqs.Err(); err != nil {
		return summary, fmt.Errorf("orchestrator: %w", err)
	}
	return summary, nil
}

// postprocess runs the three post-processing stages spec §4.10
// prescribes, in order: within-subclass dedup, then Hybrid annotation,
// then Cluster annotation, each over the full deduped candidate set for
// one sequence.
func (o *Orchestrator) postprocess(cands []motif.Candidate) []motif.Candidate {
	cands = consolidateSpanning(cands)
	cands = resolveClassPriorities(cands)
	deduped := postprocess.DedupAll(cands)
	hybrids := postprocess.HybridAnnotate(deduped, o.cfg.HybridMinOverlap, o.cfg.HybridMaxOverlap)
	clusters := postprocess.ClusterAnnotate(deduped, o.cfg.ClusterWindowSize, o.cfg.ClusterMinMotifs, o.cfg.ClusterMinClasses)

	final := make([]motif.Candidate, 0, len(deduped)+len(hybrids)+len(clusters))
	final = append(final, deduped...)
	final = append(final, hybrids...)
	final = append(final, clusters...)
	sort.Slice(final, func(i, j int) bool {
		a, b := final[i], final[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Subclass < b.Subclass
	})
	return final
}

// chunkResult is one worker's output for one chunk, tagged with whether
// it must be discarded because cancellation was observed before it was
// dispatched (spec §5: "In-flight detector calls run to completion for
// the chunk they started; their results are dropped").
type chunkResult struct {
	cands   []motif.Candidate
	err     *errs.Error
	dropped bool
}

// processSequence fans detectors out over plan's chunks with at most
// o.cfg.maxWorkers() concurrent chunk workers, polling ctx between each
// dispatch. It returns the raw, offset-translated, core-filtered
// candidate set for the whole sequence (pre-postprocessing) and the
// first error encountered, if any.
func (o *Orchestrator) processSequence(ctx context.Context, seqID string, src adapter.Source, plan []chunk.Chunk) ([]motif.Candidate, *errs.Error) {
	if len(plan) == 0 {
		return nil, nil
	}
	sem := make(chan struct{}, o.cfg.maxWorkers())
	resultsCh := make(chan chunkResult, len(plan))
	var wg sync.WaitGroup

	// Dispatch batch by batch at the outer tier's granularity: for the
	// meso and macro tiers this structures reads and progress logging at
	// the middle/outer chunk size while each leaf chunk buffer is still
	// owned by its own worker (spec §5 "Memory budget").
	batches := chunk.Batches(plan, plan[0].Tier, o.cfg.ChunkTierOverrides)
	cancelled := false
	for bi, batch := range batches {
		if len(batches) > 1 {
			o.cfg.logger().Printf("orchestrator: sequence %q batch %d/%d [%d,%d)", seqID, bi+1, len(batches), batch.Start, batch.End)
		}
		for _, ch := range batch.Chunks {
			if ctx.Err() != nil {
				cancelled = true
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(ch chunk.Chunk, dropped bool) {
				defer wg.Done()
				defer func() { <-sem }()
				cands, err := o.detectChunk(seqID, src, ch)
				resultsCh <- chunkResult{cands: cands, err: err, dropped: dropped}
			}(ch, cancelled)
		}
	}
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var all []motif.Candidate
	var firstErr *errs.Error
	for r := range resultsCh {
		if r.dropped {
			continue
		}
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		all = append(all, r.cands...)
	}
	// Chunks complete in any order (spec §5); canonicalize before the
	// post-processing stages so their tie-breaking is independent of
	// worker scheduling (spec §8 invariant 5, determinism).
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Subclass != b.Subclass {
			return a.Subclass < b.Subclass
		}
		return a.RawScore > b.RawScore
	})
	return all, firstErr
}

// detectChunk reads, cleans, and scans one chunk with every enabled
// detector, keeping only candidates whose Start falls in the chunk's
// core region (chunk.Chunk.InCore): spec §5's sole boundary-dedup
// mechanism. A panicking detector is logged and its candidates for this
// chunk alone are dropped (errs.InternalDetectorFailure), not treated as
// a chunk-read or sequence-level failure.
func (o *Orchestrator) detectChunk(seqID string, src adapter.Source, ch chunk.Chunk) ([]motif.Candidate, *errs.Error) {
	label := chunkLabel(ch)
	raw, err := readWithRetry(src, ch.Start, ch.End)
	if err != nil {
		return nil, errs.NewChunk(errs.ChunkReadFailed, seqID, label, err)
	}
	cleaned, err := sequence.CleanChunk(seqID, raw, ch.Start)
	if err != nil {
		return nil, errs.NewChunk(errs.InvalidSequence, seqID, label, err)
	}

	var cands []motif.Candidate
	for _, d := range o.detectors {
		cands = append(cands, o.runDetector(d, cleaned, seqID, ch)...)
	}
	return cands, nil
}

func (o *Orchestrator) runDetector(d motif.Detector, cleaned []byte, seqID string, ch chunk.Chunk) (out []motif.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			o.cfg.logger().Printf("orchestrator: detector %s panicked on sequence %q chunk %s: %v", taxonomy.CanonicalClass(d.ClassID()), seqID, chunkLabel(ch), r)
			out = nil
		}
	}()
	raw := d.Detect(cleaned, seqID, ch.Start)
	normalized := motif.NormalizeAll(d, raw)
	for _, c := range normalized {
		if err := c.Validate(); err != nil {
			o.cfg.logger().Printf("orchestrator: dropping invalid candidate from %s: %v", taxonomy.CanonicalClass(d.ClassID()), err)
			continue
		}
		if !ch.InCore(c.Start) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// readWithRetry calls src.ReadRange once, retrying readAttempts-1 more
// times on error before giving up.
func readWithRetry(src adapter.Source, start, end int) ([]byte, error) {
	var err error
	for attempt := 0; attempt < readAttempts; attempt++ {
		var out []byte
		out, err = src.ReadRange(start, end)
		if err == nil {
			return out, nil
		}
	}
	return nil, err
}

func chunkLabel(ch chunk.Chunk) string {
	return fmt.Sprintf("[%d,%d)", ch.Start, ch.End)
}
