// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunk implements the three-tier adaptive chunking strategy of
// spec §5: tier selection from sequence length, core-region computation,
// and the leaf-level chunk list the orchestrator fans detectors out
// over. It is grounded on ins/cmd/ins/fragment.go's split, which turns a
// FASTA stream into fixed-size, slightly overlapping windows with
// absolute-coordinate bookkeeping; Plan generalizes split's single-tier
// goal/max split into the spec's three nested tiers.
package chunk

// Tier names which of spec §5's four sequence-length bands applies.
type Tier int

const (
	// TierDirect is used below 1 Mbp: the whole sequence is one chunk.
	TierDirect Tier = iota
	// TierMicro is used 1-10 Mbp: 50 kb chunks, 2 kb overlap, thread-pool.
	TierMicro
	// TierMesoMicro is used 10-100 Mbp: 5 Mb outer batches of 50 kb
	// inner chunks.
	TierMesoMicro
	// TierMacroMesoMicro is used >=100 Mbp: 50 Mb outer, 5 Mb middle,
	// 50 kb inner, disk-backed.
	TierMacroMesoMicro
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierMicro:
		return "micro"
	case TierMesoMicro:
		return "meso→micro"
	case TierMacroMesoMicro:
		return "macro→meso→micro"
	default:
		return "unknown"
	}
}

// Length-band thresholds from spec §5's tier table.
const (
	microThreshold = 1_000_000
	mesoThreshold  = 10_000_000
	macroThreshold = 100_000_000
)

// SelectTier picks the tier spec §5 prescribes for a sequence of
// totalLen bases.
func SelectTier(totalLen int) Tier {
	switch {
	case totalLen < microThreshold:
		return TierDirect
	case totalLen < mesoThreshold:
		return TierMicro
	case totalLen < macroThreshold:
		return TierMesoMicro
	default:
		return TierMacroMesoMicro
	}
}

// Sizes holds the configurable chunk geometry for every tier (config
// option chunk_tier_overrides, spec §6). Defaults match spec §5's table
// exactly.
type Sizes struct {
	MicroSize    int
	MicroOverlap int
	MesoSize     int
	MacroSize    int
}

// DefaultSizes returns spec §5's default chunk geometry.
func DefaultSizes() Sizes {
	return Sizes{
		MicroSize:    50_000,
		MicroOverlap: 2_000,
		MesoSize:     5_000_000,
		MacroSize:    50_000_000,
	}
}

// Chunk is one leaf unit of detection work. Detectors run on
// source.ReadRange(Start, End); a candidate c is assigned to this chunk, and
// only this chunk, iff Start <= c.Start < CoreEnd — the sole mechanism
// spec §5 relies on to prevent boundary double-counting. [Start, End)
// chunks overlap their neighbour by MicroOverlap bases except CoreEnd,
// which never does (CoreEnd partitions the whole sequence with no gaps
// and no overlaps across the full Chunk list returned by Plan).
type Chunk struct {
	Start, End, CoreEnd int
	Tier                Tier
}

// Len returns End-Start, the number of bases a worker must read for this
// chunk.
func (c Chunk) Len() int { return c.End - c.Start }

// InCore reports whether absolute position pos falls in this chunk's
// authoritative core region.
func (c Chunk) InCore(pos int) bool { return pos >= c.Start && pos < c.CoreEnd }

// Plan generates the ordered, flat list of leaf chunks covering
// [0, totalLen) under sz's geometry. The tier macro/meso/micro
// distinction governs only how much of the sequence a worker reads into
// memory at once for logging and disk-read batching (§5 "Memory
// budget"); the leaf chunk list — and therefore the set of motifs
// detected — is the same regardless of tier, which is exactly spec §8
// invariant 6 ("chunking invariance: the set of emitted motifs is
// identical to the direct configuration"). A totalLen of 0 returns nil.
func Plan(totalLen int, sz Sizes) []Chunk {
	if totalLen <= 0 {
		return nil
	}
	tier := SelectTier(totalLen)
	if tier == TierDirect {
		return []Chunk{{Start: 0, End: totalLen, CoreEnd: totalLen, Tier: tier}}
	}
	return microChunks(totalLen, sz.MicroSize, sz.MicroOverlap, tier)
}

func microChunks(totalLen, size, overlap int, tier Tier) []Chunk {
	if size <= overlap {
		panic("chunk: micro chunk size must exceed its overlap")
	}
	stride := size - overlap
	var out []Chunk
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
		out = append(out, Chunk{Start: start, End: end, CoreEnd: coreEnd, Tier: tier})
		if last {
			break
		}
	}
	return out
}

// Batch groups a run of consecutive leaf Chunks that should be read from
// the backing source together, at the outer tier's granularity (meso or
// macro), purely to bound how much of a large sequence a worker reads at
// once (§5 "Memory budget"). Batch boundaries never affect which chunk a
// motif is assigned to — only Chunk.CoreEnd does that.
type Batch struct {
	Start, End int
	Chunks     []Chunk
}

// Batches groups chunks into read batches sized at the outer tier for
// the given tier: TierMacroMesoMicro groups at sz.MacroSize,
// TierMesoMicro at sz.MesoSize, and TierMicro/TierDirect return a single
// batch spanning every chunk (no outer tier to bound at).
func Batches(chunks []Chunk, tier Tier, sz Sizes) []Batch {
	if len(chunks) == 0 {
		return nil
	}
	groupSize := 0
	switch tier {
	case TierMacroMesoMicro:
		groupSize = sz.MacroSize
	case TierMesoMicro:
		groupSize = sz.MesoSize
	default:
		return []Batch{{Start: chunks[0].Start, End: chunks[len(chunks)-1].End, Chunks: chunks}}
	}
	var out []Batch
	var cur Batch
	for _, c := range chunks {
		if len(cur.Chunks) > 0 && c.End-cur.Start > groupSize {
			out = append(out, cur)
			cur = Batch{}
		}
		if len(cur.Chunks) == 0 {
			cur = Batch{Start: c.Start}
		}
		cur.Chunks = append(cur.Chunks, c)
		cur.End = c.End
	}
	if len(cur.Chunks) > 0 {
		out = append(out, cur)
	}
	return out
}
