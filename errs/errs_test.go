// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errs

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *Error
		want string
	}{
		{New(InvalidSequence, "chr1", cause), `InvalidSequence: seq "chr1": boom`},
		{NewChunk(ChunkReadFailed, "chr1", "[0,50000)", cause), `ChunkReadFailed: seq "chr1" chunk "[0,50000)": boom`},
	}
	for _, test := range tests {
		if got := test.err.Error(); got != test.want {
			t.Errorf("Error() = %q, want %q", got, test.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(Timeout, "chr1", cause)
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{InvalidSequence, "InvalidSequence"},
		{UnknownTaxonomy, "UnknownTaxonomy"},
		{ChunkReadFailed, "ChunkReadFailed"},
		{Timeout, "Timeout"},
		{InternalDetectorFailure, "InternalDetectorFailure"},
		{Kind(99), "Unknown"},
	}
	for _, test := range tests {
		if got := test.k.String(); got != test.want {
			t.Errorf("%d.String() = %q, want %q", test.k, got, test.want)
		}
	}
}
