// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package motif

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vryella/nonbfinder/taxonomy"
)

// Record is the externally-exported form of a Candidate (spec §6):
// 1-based inclusive coordinates on both ends, canonical field order
//
//	seq_id, class_id, subclass_id, start_1based, end_inclusive, length,
//	strand, raw_score, normalized_score, method_tag, features_json
//
// Internally the pipeline is 0-based half-open throughout; the
// translation is start_ext = start_int + 1, end_ext = end_int, applied
// only here.
type Record struct {
	SeqID           string
	Class           taxonomy.ClassID
	Subclass        string
	Start1Based     int
	EndInclusive    int
	Length          int
	Strand          Strand
	RawScore        float64
	NormalizedScore float64
	MethodTag       string
	FeaturesJSON    string
}

// methodTag names the detection discipline that produced records of each
// class, emitted in the method_tag column.
var methodTag = map[taxonomy.ClassID]string{
	taxonomy.CurvedDNA:   "phased_tract",
	taxonomy.SlippedDNA:  "tandem_repeat",
	taxonomy.Cruciform:   "ir_seed_extend",
	taxonomy.RLoop:       "qmrlfs",
	taxonomy.Triplex:     "mirror_seed_extend",
	taxonomy.GQuadruplex: "g4hunter",
	taxonomy.IMotif:      "c_tract_grammar",
	taxonomy.ZDNA:        "zdna_10mer",
	taxonomy.APhilicDNA:  "aphilic_10mer",
	taxonomy.Hybrid:      "hybrid_overlap",
	taxonomy.Clusters:    "cluster_density",
}

// MethodTag returns the method_tag column value for a class.
func MethodTag(class taxonomy.ClassID) string { return methodTag[class] }

// ToRecord converts an internal Candidate to its external Record form.
func ToRecord(c Candidate) (Record, error) {
	features := c.Features
	if features == nil {
		features = map[string]interface{}{}
	}
	if len(c.ComponentClasses) != 0 {
		// Derived records carry their component classes as structured
		// data in features_json, never only as a display string (spec §9,
		// "tabular names that look dynamic").
		merged := make(map[string]interface{}, len(features)+1)
		for k, v := range features {
			merged[k] = v
		}
		names := make([]string, len(c.ComponentClasses))
		for i, cl := range c.ComponentClasses {
			names[i] = taxonomy.CanonicalClass(cl)
		}
		merged["component_classes"] = names
		features = merged
	}
	fj, err := json.Marshal(features)
	if err != nil {
		return Record{}, fmt.Errorf("motif: features of %s/%s: %w", taxonomy.CanonicalClass(c.Class), c.Subclass, err)
	}
	return Record{
		SeqID:           c.SeqID,
		Class:           c.Class,
		Subclass:        c.Subclass,
		Start1Based:     c.Start + 1,
		EndInclusive:    c.End,
		Length:          c.End - c.Start,
		Strand:          c.Strand,
		RawScore:        c.RawScore,
		NormalizedScore: c.NormalizedScore,
		MethodTag:       MethodTag(c.Class),
		FeaturesJSON:    string(fj),
	}, nil
}

// Candidate converts r back to the internal 0-based half-open form. The
// external-coordinate round trip is exact: Start = Start1Based - 1,
// End = EndInclusive.
func (r Record) Candidate() (Candidate, error) {
	var features map[string]interface{}
	if r.FeaturesJSON != "" {
		if err := json.Unmarshal([]byte(r.FeaturesJSON), &features); err != nil {
			return Candidate{}, fmt.Errorf("motif: features_json: %w", err)
		}
	}
	if len(features) == 0 {
		features = nil
	}
	return Candidate{
		Class:           r.Class,
		Subclass:        r.Subclass,
		SeqID:           r.SeqID,
		Start:           r.Start1Based - 1,
		End:             r.EndInclusive,
		Strand:          r.Strand,
		RawScore:        r.RawScore,
		NormalizedScore: r.NormalizedScore,
		Features:        features,
	}, nil
}

// MarshalLine renders r as one tab-separated line in the canonical field
// order, without a trailing newline.
func (r Record) MarshalLine() string {
	return strings.Join([]string{
		r.SeqID,
		strconv.Itoa(int(r.Class)),
		r.Subclass,
		strconv.Itoa(r.Start1Based),
		strconv.Itoa(r.EndInclusive),
		strconv.Itoa(r.Length),
		r.Strand.String(),
		strconv.FormatFloat(r.RawScore, 'g', -1, 64),
		strconv.FormatFloat(r.NormalizedScore, 'g', -1, 64),
		r.MethodTag,
		r.FeaturesJSON,
	}, "\t")
}

const recordFields = 11

// ParseLine parses one line produced by MarshalLine, field by field.
func ParseLine(line string) (Record, error) {
	fields := strings.SplitN(strings.TrimSuffix(line, "\n"), "\t", recordFields)
	if len(fields) != recordFields {
		return Record{}, fmt.Errorf("motif: record has %d fields, want %d", len(fields), recordFields)
	}
	var r Record
	var err error
	r.SeqID = fields[0]
	class, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("motif: class_id: %w", err)
	}
	r.Class = taxonomy.ClassID(class)
	if taxonomy.CanonicalClass(r.Class) == "" {
		return Record{}, fmt.Errorf("motif: unknown class_id %d", class)
	}
	r.Subclass = fields[2]
	if r.Start1Based, err = strconv.Atoi(fields[3]); err != nil {
		return Record{}, fmt.Errorf("motif: start_1based: %w", err)
	}
	if r.EndInclusive, err = strconv.Atoi(fields[4]); err != nil {
		return Record{}, fmt.Errorf("motif: end_inclusive: %w", err)
	}
	if r.Length, err = strconv.Atoi(fields[5]); err != nil {
		return Record{}, fmt.Errorf("motif: length: %w", err)
	}
	switch fields[6] {
	case "+":
		r.Strand = StrandPlus
	case "-":
		r.Strand = StrandMinus
	case ".":
		r.Strand = StrandUnknown
	default:
		return Record{}, fmt.Errorf("motif: unknown strand %q", fields[6])
	}
	if r.RawScore, err = strconv.ParseFloat(fields[7], 64); err != nil {
		return Record{}, fmt.Errorf("motif: raw_score: %w", err)
	}
	if r.NormalizedScore, err = strconv.ParseFloat(fields[8], 64); err != nil {
		return Record{}, fmt.Errorf("motif: normalized_score: %w", err)
	}
	r.MethodTag = fields[9]
	r.FeaturesJSON = fields[10]
	return r, nil
}
