// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package taxonomy is the single source of truth for the canonical
// structural-motif class and subclass names used throughout nonbfinder,
// and the alias table that normalizes legacy or case-variant names onto
// them.
package taxonomy

import (
	"fmt"
	"strings"
)

// ClassID identifies one of the nine primary structural classes plus the
// two derived post-processing classes.
type ClassID int

const (
	CurvedDNA ClassID = iota + 1
	SlippedDNA
	Cruciform
	RLoop
	Triplex
	GQuadruplex
	IMotif
	ZDNA
	APhilicDNA
	Hybrid
	Clusters
)

// className holds the canonical display name for each class.
var className = map[ClassID]string{
	CurvedDNA:   "Curved_DNA",
	SlippedDNA:  "Slipped_DNA",
	Cruciform:   "Cruciform",
	RLoop:       "R-Loop",
	Triplex:     "Triplex",
	GQuadruplex: "G-Quadruplex",
	IMotif:      "i-Motif",
	ZDNA:        "Z-DNA",
	APhilicDNA:  "A-philic_DNA",
	Hybrid:      "Hybrid",
	Clusters:    "Clusters",
}

// subclasses holds the canonical subclass names defined for each class.
// Hybrid and Clusters subclass names are dynamic and are not enumerated
// here; see DynamicHybridName and DynamicClusterName.
var subclasses = map[ClassID][]string{
	CurvedDNA:   {"Global Curvature", "Local Curvature"},
	SlippedDNA:  {"Direct Repeat", "STR"},
	Cruciform:   {"Cruciform forming IRs"},
	RLoop:       {"R-loop formation sites (M1)", "R-loop formation sites (M2)"},
	Triplex:     {"Triplex", "Sticky DNA"},
	GQuadruplex: {"Telomeric", "Higher-order/G-wire", "Stacked", "Canonical", "Bulged", "Extended-loop", "G-triplex", "Weak PQS"},
	IMotif:      {"Canonical", "AC-motif (HUR)"},
	ZDNA:        {"Z-DNA", "eGZ"},
	APhilicDNA:  {"A-philic DNA"},
}

// aliases maps a lower-cased, whitespace-collapsed legacy or variant name
// to its canonical (class, subclass) pair.
var aliases = map[string]struct {
	class    ClassID
	subclass string
}{}

func registerAlias(alias string, class ClassID, subclass string) {
	aliases[normalizeKey(alias)] = struct {
		class    ClassID
		subclass string
	}{class, subclass}
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func init() {
	for class, names := range subclasses {
		for _, sub := range names {
			registerAlias(sub, class, sub)
			registerAlias(className[class]+" "+sub, class, sub)
		}
		registerAlias(className[class], class, names[0])
	}

	// Legacy / alternate spellings observed in prior exports.
	registerAlias("g-quadruplex", GQuadruplex, "Canonical")
	registerAlias("g4", GQuadruplex, "Canonical")
	registerAlias("gquad", GQuadruplex, "Canonical")
	registerAlias("g-wire", GQuadruplex, "Higher-order/G-wire")
	registerAlias("higher order g4", GQuadruplex, "Higher-order/G-wire")
	registerAlias("imotif", IMotif, "Canonical")
	registerAlias("ac-motif", IMotif, "AC-motif (HUR)")
	registerAlias("hur", IMotif, "AC-motif (HUR)")
	registerAlias("z-dna", ZDNA, "Z-DNA")
	registerAlias("extended gz", ZDNA, "eGZ")
	registerAlias("egz-motif", ZDNA, "eGZ")
	registerAlias("a-phased repeat", CurvedDNA, "Global Curvature")
	registerAlias("apr", CurvedDNA, "Global Curvature")
	registerAlias("bent dna", CurvedDNA, "Local Curvature")
	registerAlias("h-dna", Triplex, "Triplex")
	registerAlias("mirror repeat", Triplex, "Triplex")
	registerAlias("sticky dna", Triplex, "Sticky DNA")
	registerAlias("str", SlippedDNA, "STR")
	registerAlias("short tandem repeat", SlippedDNA, "STR")
	registerAlias("direct repeat", SlippedDNA, "Direct Repeat")
	registerAlias("r-loop", RLoop, "R-loop formation sites (M1)")
	registerAlias("rlfs", RLoop, "R-loop formation sites (M1)")
	registerAlias("qmrlfs-m1", RLoop, "R-loop formation sites (M1)")
	registerAlias("qmrlfs-m2", RLoop, "R-loop formation sites (M2)")
	registerAlias("a-philic", APhilicDNA, "A-philic DNA")
	registerAlias("a-philic dna", APhilicDNA, "A-philic DNA")
}

// ErrUnknownTaxonomy is returned by AliasFor when a name cannot be resolved
// to a canonical (class, subclass) pair.
type ErrUnknownTaxonomy struct {
	Name string
}

func (e *ErrUnknownTaxonomy) Error() string {
	return fmt.Sprintf("taxonomy: unknown class/subclass name %q", e.Name)
}

// CanonicalClass returns the canonical display name of a class, or "" if
// id is not a known class.
func CanonicalClass(id ClassID) string {
	return className[id]
}

// CanonicalSubclass returns the canonical subclass name for (class, id)
// where id is itself taken loosely (it is first run through AliasFor's
// normalization); it returns ("", false) if no such subclass is
// registered for class.
func CanonicalSubclass(class ClassID, name string) (string, bool) {
	for _, s := range subclasses[class] {
		if normalizeKey(s) == normalizeKey(name) {
			return s, true
		}
	}
	return "", false
}

// AliasFor resolves an arbitrary input name — canonical, legacy, or case
// variant — to its canonical (class, subclass) pair. Hybrid and Cluster
// names are matched structurally (see ParseHybridName / ParseClusterName)
// rather than through the alias table, since they are derived strings.
func AliasFor(name string) (class ClassID, subclass string, err error) {
	if hc, hb, ok := ParseHybridName(name); ok {
		return Hybrid, DynamicHybridName(hc, hb), nil
	}
	if n, ok := ParseClusterName(name); ok {
		return Clusters, DynamicClusterName(n), nil
	}
	if entry, ok := aliases[normalizeKey(name)]; ok {
		return entry.class, entry.subclass, nil
	}
	return 0, "", &ErrUnknownTaxonomy{Name: name}
}

// DynamicHybridName returns the derived display name for a Hybrid record
// spanning the two given component classes, in the order given.
func DynamicHybridName(a, b ClassID) string {
	return fmt.Sprintf("%s_%s_Overlap", className[a], className[b])
}

// ParseHybridName attempts to parse s as a "<ClassA>_<ClassB>_Overlap"
// derived name, returning the two component classes on success.
func ParseHybridName(s string) (a, b ClassID, ok bool) {
	if !strings.HasSuffix(s, "_Overlap") {
		return 0, 0, false
	}
	body := strings.TrimSuffix(s, "_Overlap")
	parts := splitTwoClassNames(body)
	if parts == nil {
		return 0, 0, false
	}
	ca, oka := classByName(parts[0])
	cb, okb := classByName(parts[1])
	if !oka || !okb {
		return 0, 0, false
	}
	return ca, cb, true
}

// splitTwoClassNames splits body on the single underscore that separates
// two known class names; class names themselves may contain underscores
// or hyphens (e.g. "G-Quadruplex", "A-philic_DNA"), so a plain Split is
// not sufficient.
func splitTwoClassNames(body string) []string {
	for i := 1; i < len(body); i++ {
		if body[i] != '_' {
			continue
		}
		left, right := body[:i], body[i+1:]
		if _, ok := classByName(left); ok {
			if _, ok := classByName(right); ok {
				return []string{left, right}
			}
		}
	}
	return nil
}

func classByName(name string) (ClassID, bool) {
	for id, n := range className {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// DynamicClusterName returns the derived display name for a Cluster record
// spanning n distinct component classes.
func DynamicClusterName(n int) string {
	return fmt.Sprintf("Mixed_Cluster_%d_classes", n)
}

// ParseClusterName attempts to parse s as a "Mixed_Cluster_N_classes"
// derived name, returning N on success.
func ParseClusterName(s string) (n int, ok bool) {
	const prefix, suffix = "Mixed_Cluster_", "_classes"
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return 0, false
	}
	mid := strings.TrimSuffix(strings.TrimPrefix(s, prefix), suffix)
	var v int
	if _, err := fmt.Sscanf(mid, "%d", &v); err != nil {
		return 0, false
	}
	return v, true
}

// DefaultSubclasses returns the registry-defined subclasses for a primary
// class, in priority/declaration order. Hybrid and Clusters return nil,
// since their subclass names are dynamic.
func DefaultSubclasses(class ClassID) []string {
	return append([]string(nil), subclasses[class]...)
}
