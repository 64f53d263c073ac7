// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package motif

import (
	"strings"
	"testing"

	"github.com/vryella/nonbfinder/taxonomy"
)

func TestToRecordCoordinateTranslation(t *testing.T) {
	c := Candidate{
		Class:           taxonomy.GQuadruplex,
		Subclass:        "Canonical",
		SeqID:           "chr1",
		Start:           99,
		End:             120,
		Strand:          StrandPlus,
		RawScore:        0.48,
		NormalizedScore: 2.52,
	}
	rec, err := ToRecord(c)
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	if rec.Start1Based != 100 {
		t.Errorf("Start1Based = %d, want 100 (start_int + 1)", rec.Start1Based)
	}
	if rec.EndInclusive != 120 {
		t.Errorf("EndInclusive = %d, want 120 (end_int unchanged)", rec.EndInclusive)
	}
	if rec.Length != 21 {
		t.Errorf("Length = %d, want 21", rec.Length)
	}
	if rec.MethodTag != "g4hunter" {
		t.Errorf("MethodTag = %q, want %q", rec.MethodTag, "g4hunter")
	}
}

func TestExternalCoordinateRoundTrip(t *testing.T) {
	// 0-based half-open -> 1-based inclusive -> back yields the original.
	for _, span := range [][2]int{{0, 1}, {0, 10}, {99, 120}, {1234, 5678}} {
		c := Candidate{
			Class:    taxonomy.ZDNA,
			Subclass: "Z-DNA",
			SeqID:    "chr2",
			Start:    span[0],
			End:      span[1],
			Strand:   StrandMinus,
		}
		rec, err := ToRecord(c)
		if err != nil {
			t.Fatalf("ToRecord(%v): %v", span, err)
		}
		back, err := rec.Candidate()
		if err != nil {
			t.Fatalf("Candidate(%v): %v", span, err)
		}
		if back.Start != c.Start || back.End != c.End {
			t.Errorf("round trip of [%d,%d) = [%d,%d)", c.Start, c.End, back.Start, back.End)
		}
	}
}

func TestRecordLineRoundTrip(t *testing.T) {
	c := Candidate{
		Class:           taxonomy.Triplex,
		Subclass:        "Sticky DNA",
		SeqID:           "chr3",
		Start:           18,
		End:             36,
		Strand:          StrandUnknown,
		RawScore:        1.09,
		NormalizedScore: 1.09,
		Features:        map[string]interface{}{"repeat_unit": "GAA", "copy_number": 6},
	}
	rec, err := ToRecord(c)
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	line := rec.MarshalLine()
	if n := strings.Count(line, "\t"); n != 10 {
		t.Fatalf("line has %d tabs, want 10 (11 canonical fields)", n)
	}
	got, err := ParseLine(line + "\n")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if got != rec {
		t.Errorf("ParseLine round trip:\n got %+v\nwant %+v", got, rec)
	}
}

func TestToRecordDerivedCarriesComponentClasses(t *testing.T) {
	c := Candidate{
		Class:            taxonomy.Hybrid,
		Subclass:         taxonomy.DynamicHybridName(taxonomy.GQuadruplex, taxonomy.ZDNA),
		SeqID:            "chr1",
		Start:            100,
		End:              140,
		NormalizedScore:  2.2,
		RawScore:         2.2,
		ComponentClasses: []taxonomy.ClassID{taxonomy.GQuadruplex, taxonomy.ZDNA},
	}
	rec, err := ToRecord(c)
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	for _, want := range []string{"component_classes", "G-Quadruplex", "Z-DNA"} {
		if !strings.Contains(rec.FeaturesJSON, want) {
			t.Errorf("FeaturesJSON = %s, missing %q", rec.FeaturesJSON, want)
		}
	}
}

func TestParseLineRejectsMalformedRecords(t *testing.T) {
	tests := []string{
		"",
		"chr1\t6\tCanonical",
		"chr1\t99\tCanonical\t1\t10\t10\t+\t1\t2\tg4hunter\t{}",  // unknown class
		"chr1\t6\tCanonical\t1\t10\t10\t?\t1\t2\tg4hunter\t{}",   // bad strand
		"chr1\t6\tCanonical\tx\t10\t10\t+\t1\t2\tg4hunter\t{}",   // bad start
		"chr1\t6\tCanonical\t1\t10\t10\t+\tnope\t2\tg4hunter\t{}", // bad score
	}
	for _, line := range tests {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q): expected an error", line)
		}
	}
}
