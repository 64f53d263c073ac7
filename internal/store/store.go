// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store implements the two disk-backed collaborators spec §6
// defines: the streaming, append-only result store that accumulates
// MotifCandidate records, and the disk-backed sequence store used for
// inputs at or above the 5 Mbp threshold. Both are adapted from the
// teacher's kv-backed internal/store (MarshalBlastRecordKey /
// UnmarshalBlastRecordKey / a custom kv.Options.Compare), keeping its
// fixed-width-prefix-then-payload binary.BigEndian key layout and its
// batched-transaction commit pattern from cmd/ins/fragment.go's merge
// (begin/commit every 100 records), generalized from blast.Record to
// motif.Candidate.
package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/biogo/store/step"
	"modernc.org/kv"

	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

var order = binary.BigEndian

// MotifKey is the decoded form of a ResultStore key: the fields the
// store orders by (spec §5 "Ordering guarantees": within one seq_id,
// sorted by (start, end, class_id, subclass_id)).
type MotifKey struct {
	SeqID    string
	Start    int64
	End      int64
	Class    taxonomy.ClassID
	Subclass string
	Seq      int64 // monotonic tiebreaker for otherwise-identical keys
}

// MarshalMotifKey encodes c's ordering fields as a fixed-prefix-then-
// payload key, in the same style as the teacher's
// MarshalBlastRecordKey: a uint64 length prefix before every variable-
// length field.
func MarshalMotifKey(c motif.Candidate, seq int64) []byte {
	var buf bytes.Buffer
	writeString(&buf, c.SeqID)
	writeInt64(&buf, int64(c.Start))
	writeInt64(&buf, int64(c.End))
	writeInt64(&buf, int64(c.Class))
	writeString(&buf, c.Subclass)
	writeInt64(&buf, seq)
	return buf.Bytes()
}

// UnmarshalMotifKey decodes a key produced by MarshalMotifKey.
func UnmarshalMotifKey(data []byte) MotifKey {
	var k MotifKey
	k.SeqID, data = readString(data)
	k.Start, data = readInt64(data)
	k.End, data = readInt64(data)
	var class int64
	class, data = readInt64(data)
	k.Class = taxonomy.ClassID(class)
	k.Subclass, data = readString(data)
	k.Seq, _ = readInt64(data)
	return k
}

func writeString(buf *bytes.Buffer, s string) {
	var b [8]byte
	order.PutUint64(b[:], uint64(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}

func readString(data []byte) (string, []byte) {
	n := order.Uint64(data[:8])
	data = data[8:]
	s := string(data[:n])
	return s, data[n:]
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	order.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readInt64(data []byte) (int64, []byte) {
	v := int64(order.Uint64(data[:8]))
	return v, data[8:]
}

// ByGenomicPosition is the kv.DB compare function the result store uses:
// seq_id, then start, end, class, subclass, then the tiebreaker — the
// order spec §5 requires of the final per-seq_id output.
func ByGenomicPosition(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}
	kx, ky := UnmarshalMotifKey(x), UnmarshalMotifKey(y)
	switch {
	case kx.SeqID < ky.SeqID:
		return -1
	case kx.SeqID > ky.SeqID:
		return 1
	}
	switch {
	case kx.Start < ky.Start:
		return -1
	case kx.Start > ky.Start:
		return 1
	}
	switch {
	case kx.End < ky.End:
		return -1
	case kx.End > ky.End:
		return 1
	}
	switch {
	case kx.Class < ky.Class:
		return -1
	case kx.Class > ky.Class:
		return 1
	}
	switch {
	case kx.Subclass < ky.Subclass:
		return -1
	case kx.Subclass > ky.Subclass:
		return 1
	}
	switch {
	case kx.Seq < ky.Seq:
		return -1
	case kx.Seq > ky.Seq:
		return 1
	}
	panic("store: non-unique motif key")
}

// motifValue is the JSON-encoded payload carried alongside a MotifKey:
// everything MarshalMotifKey's fixed fields don't already cover. JSON is
// used here, rather than a bespoke binary layout like the teacher's
// fixed BLAST record, because Candidate.Features is an open key->value
// map (spec §3) whose shape varies per detector; encoding/json is the
// stdlib's own answer to that, not a third-party substitute for
// something the teacher already had a library for.
type motifValue struct {
	Strand           int8                   `json:"strand"`
	RawScore         float64                `json:"raw_score"`
	NormalizedScore  float64                `json:"normalized_score"`
	Features         map[string]interface{} `json:"features,omitempty"`
	ComponentClasses []taxonomy.ClassID     `json:"component_classes,omitempty"`
}

func marshalMotifValue(c motif.Candidate) ([]byte, error) {
	v := motifValue{
		Strand:           int8(c.Strand),
		RawScore:         c.RawScore,
		NormalizedScore:  c.NormalizedScore,
		Features:         c.Features,
		ComponentClasses: c.ComponentClasses,
	}
	return json.Marshal(v)
}

func unmarshalMotifValue(data []byte) (motifValue, error) {
	var v motifValue
	err := json.Unmarshal(data, &v)
	return v, err
}

// Summary is the per-run/per-sequence result summary spec §6 requires:
// "summary() -> {total_count, class_distribution, coverage_bp}",
// computed incrementally rather than by a full re-scan.
type Summary struct {
	TotalCount        int
	ClassDistribution map[string]int
	CoverageBP        int64
}

// covered is the step.Vector element type used to accumulate coverage_bp:
// a single boolean flag, identical in spirit to cmd/cmpint's pair type
// but trivial since coverage only needs "is this base annotated", not
// which annotation.
type covered bool

func (c covered) Equal(e step.Equaler) bool { return c == e.(covered) }

// ResultStore is the append-only streaming motif record store of spec §6:
// a kv.DB ordered by ByGenomicPosition, with an incrementally maintained
// Summary so summary() never needs a full iteration.
type ResultStore struct {
	mu       sync.Mutex
	db       *kv.DB
	path     string
	seq      int64
	inTx     bool
	nInTx    int
	total    int
	classes  map[string]int
	coverage map[string]*step.Vector
}

// BatchSize is how many Append calls accumulate inside one kv
// transaction before committing, mirroring cmd/ins/fragment.go's merge
// ("begin tx for %d" / "commit tx for %d" every 100 records).
const BatchSize = 100

// Create creates a new ResultStore backed by a kv.DB at path.
func Create(path string) (*ResultStore, error) {
	db, err := kv.Create(path, &kv.Options{Compare: ByGenomicPosition})
	if err != nil {
		return nil, fmt.Errorf("store: create %q: %w", path, err)
	}
	return &ResultStore{
		db:       db,
		path:     path,
		classes:  make(map[string]int),
		coverage: make(map[string]*step.Vector),
	}, nil
}

// Append adds one motif record to the store, batching writes into
// transactions of BatchSize, and updates the incremental summary
// counters.
func (s *ResultStore) Append(c motif.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nInTx%BatchSize == 0 {
		if err := s.db.BeginTransaction(); err != nil {
			return fmt.Errorf("store: begin tx: %w", err)
		}
		s.inTx = true
	}

	s.seq++
	key := MarshalMotifKey(c, s.seq)
	val, err := marshalMotifValue(c)
	if err != nil {
		return fmt.Errorf("store: marshal value: %w", err)
	}
	if err := s.db.Set(key, val); err != nil {
		return fmt.Errorf("store: set: %w", err)
	}
	s.nInTx++
	s.total++
	s.classes[taxonomy.CanonicalClass(c.Class)]++
	if err := s.accumulateCoverage(c); err != nil {
		return err
	}

	if s.nInTx%BatchSize == 0 {
		if err := s.db.Commit(); err != nil {
			return fmt.Errorf("store: commit tx: %w", err)
		}
		s.inTx = false
	}
	return nil
}

func (s *ResultStore) accumulateCoverage(c motif.Candidate) error {
	v, ok := s.coverage[c.SeqID]
	if !ok {
		var err error
		v, err = step.New(0, 1, covered(false))
		if err != nil {
			return fmt.Errorf("store: coverage vector: %w", err)
		}
		v.Relaxed = true
		s.coverage[c.SeqID] = v
	}
	return v.ApplyRange(c.Start, c.End, func(step.Equaler) step.Equaler {
		return covered(true)
	})
}

// Flush commits any open transaction, leaving the store safe to iterate
// or close.
func (s *ResultStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTx {
		if err := s.db.Commit(); err != nil {
			return fmt.Errorf("store: flush commit: %w", err)
		}
		s.inTx = false
	}
	return nil
}

// Close flushes and closes the underlying kv.DB.
func (s *ResultStore) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}

// Iter returns up to limit records in store order (spec §6:
// "iter(limit=None) -> records"); limit <= 0 means unlimited.
func (s *ResultStore) Iter(limit int) ([]motif.Candidate, error) {
	it, err := s.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("store: seek first: %w", err)
	}
	var out []motif.Candidate
	for limit <= 0 || len(out) < limit {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("store: iter: %w", err)
		}
		c, err := decodeCandidate(k, v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteExternal streams every stored record to w in the exported schema
// (spec §6): one tab-separated line per motif in canonical field order,
// coordinates translated to 1-based inclusive by motif.ToRecord. The
// records come out in store order, so per-seq_id output is already
// sorted by (start, end, class, subclass).
func (s *ResultStore) WriteExternal(w io.Writer) error {
	it, err := s.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("store: seek first: %w", err)
	}
	bw := bufio.NewWriter(w)
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("store: export iter: %w", err)
		}
		c, err := decodeCandidate(k, v)
		if err != nil {
			return err
		}
		rec, err := motif.ToRecord(c)
		if err != nil {
			return fmt.Errorf("store: export: %w", err)
		}
		if _, err := bw.WriteString(rec.MarshalLine()); err != nil {
			return fmt.Errorf("store: export write: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("store: export write: %w", err)
		}
	}
	return bw.Flush()
}

func decodeCandidate(k, v []byte) (motif.Candidate, error) {
	key := UnmarshalMotifKey(k)
	val, err := unmarshalMotifValue(v)
	if err != nil {
		return motif.Candidate{}, fmt.Errorf("store: decode: %w", err)
	}
	return motif.Candidate{
		Class:            key.Class,
		Subclass:         key.Subclass,
		SeqID:            key.SeqID,
		Start:            int(key.Start),
		End:              int(key.End),
		Strand:           motif.Strand(val.Strand),
		RawScore:         val.RawScore,
		NormalizedScore:  val.NormalizedScore,
		Features:         val.Features,
		ComponentClasses: val.ComponentClasses,
	}, nil
}

// Summary returns the incrementally accumulated run summary (spec §6).
func (s *ResultStore) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	classes := make(map[string]int, len(s.classes))
	for k, v := range s.classes {
		classes[k] = v
	}
	var coverage int64
	for _, v := range s.coverage {
		v.Do(func(start, end int, e step.Equaler) {
			if e.(covered) {
				coverage += int64(end - start)
			}
		})
	}
	return Summary{TotalCount: s.total, ClassDistribution: classes, CoverageBP: coverage}
}
