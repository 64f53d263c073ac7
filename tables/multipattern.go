// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tables

import (
	"sort"

	"github.com/coregx/ahocorasick"
)

// zdnaAutomaton and aphilicAutomaton are built once over the two
// propensity tables' keys, per spec §4.4's suggestion that "a
// multi-pattern matcher over the 48 table keys accelerates scoring". A
// single automaton scan over a chunk locates every occurrence of every
// table 10-mer in one pass, instead of 48 (or 208) independent substring
// searches.
var (
	zdnaAutomaton    *ahocorasick.Automaton
	aphilicAutomaton *ahocorasick.Automaton
)

func init() {
	var err error
	zdnaAutomaton, err = ahocorasick.NewBuilder().AddStrings(ZDNAKeys()).Build()
	if err != nil {
		panic(err)
	}
	aphilicAutomaton, err = ahocorasick.NewBuilder().AddStrings(APhilicKeys()).Build()
	if err != nil {
		panic(err)
	}
}

// TableHit is one occurrence of a table 10-mer in a scanned sequence.
type TableHit struct {
	Start int
	Kmer  string
	Score float64
}

// ScanZDNA returns every occurrence of a ZDNATable key in seq, in
// ascending Start order.
func ScanZDNA(seq []byte) []TableHit {
	return scanTable(seq, zdnaAutomaton, ZDNATable)
}

// ScanAPhilic returns every occurrence of an APhilicTable key in seq, in
// ascending Start order.
func ScanAPhilic(seq []byte) []TableHit {
	return scanTable(seq, aphilicAutomaton, APhilicTable)
}

func scanTable(seq []byte, automaton *ahocorasick.Automaton, table map[string]float64) []TableHit {
	matches := automaton.FindAll(seq, -1)
	hits := make([]TableHit, 0, len(matches))
	for _, m := range matches {
		kmer := string(seq[m.Start:m.End])
		hits = append(hits, TableHit{Start: m.Start, Kmer: kmer, Score: table[kmer]})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
	return hits
}

func sortedKeys(t map[string]float64) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
