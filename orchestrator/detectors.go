// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"github.com/vryella/nonbfinder/detect"
	"github.com/vryella/nonbfinder/motif"
	"github.com/vryella/nonbfinder/taxonomy"
)

// buildDetectors constructs the nine detectors, wiring cfg's geometry
// options through to the three detectors that take them, and filters the
// result down to cfg.EnabledClasses when it is non-empty. Detector
// selection never dispatches on class name (spec §9): the orchestrator
// holds a []motif.Detector and calls every element's Detect uniformly.
func buildDetectors(cfg Config) []motif.Detector {
	all := []motif.Detector{
		detect.CurvedDetector{},
		detect.G4Detector{Window: cfg.G4WindowSize},
		detect.IMotifDetector{},
		detect.ZDNADetector{IncludeGCRepeats: cfg.EGZIncludesGCRepeats},
		detect.APhilicDetector{},
		detect.RLoopDetector{},
		detect.CruciformDetector{MinArm: cfg.CruciformMinArm, MaxArm: cfg.CruciformMaxArm, MaxLoop: cfg.CruciformMaxLoop},
		detect.TriplexDetector{},
		detect.SlippedDetector{},
	}
	if len(cfg.EnabledClasses) == 0 {
		return all
	}
	want := make(map[taxonomy.ClassID]bool, len(cfg.EnabledClasses))
	for _, c := range cfg.EnabledClasses {
		want[c] = true
	}
	out := all[:0]
	for _, d := range all {
		if want[d.ClassID()] {
			out = append(out, d)
		}
	}
	return out
}
