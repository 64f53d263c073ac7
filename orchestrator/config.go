// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package orchestrator dispatches the adaptive chunker (chunk) to the
// nine detectors (detect) and the three post-processing stages
// (postprocess), writing the result into a streaming store
// (internal/store), per spec §5's concurrency model: a single-threaded
// orchestrator owning the only mutable sink, fanning pure detector calls
// out over a bounded worker pool. Grounded on ins/cmd/ins/main.go's
// top-level control flow (split -> blast -> remap -> merge -> cull ->
// report -> mask) for the leaves-to-root dispatch shape, and on its
// search.Threads = runtime.NumCPU() default for Config.MaxWorkers.
package orchestrator

import (
	"log"
	"os"
	"runtime"
	"time"

	"github.com/vryella/nonbfinder/chunk"
	"github.com/vryella/nonbfinder/taxonomy"
)

// Config is the single plain options struct spec §6's "Configuration"
// table maps onto, following the teacher's plain-option-struct
// convention (blast.Nucleic, blast.MakeDB passed by value, no
// viper/koanf anywhere in the corpus's teacher-adjacent tools) and the
// wider bioinformatics corpus's Default$Thing() constructor idiom.
type Config struct {
	// EnabledClasses whitelists which detectors run; nil or empty means
	// all nine.
	EnabledClasses []taxonomy.ClassID

	// ChunkTierOverrides is the explicit chunk geometry per tier (spec
	// §5); DefaultConfig uses chunk.DefaultSizes().
	ChunkTierOverrides chunk.Sizes

	// MaxWorkers caps chunk-level concurrency; 0 means runtime.NumCPU().
	MaxWorkers int

	// G4WindowSize is the G4Hunter sliding-window width (spec §4.2);
	// 0 means the detector's own default of 25.
	G4WindowSize int

	// Cruciform geometry bounds (spec §4.8); 0 means the detector's own
	// defaults (8, 50, 12).
	CruciformMinArm  int
	CruciformMaxArm  int
	CruciformMaxLoop int

	// Cluster parameters (spec §4.10.3).
	ClusterWindowSize int
	ClusterMinMotifs  int
	ClusterMinClasses int

	// Hybrid overlap-fraction thresholds (spec §4.10.2); defaults 0.50,
	// 0.99. HybridAnnotate keeps a pair when HybridMinOverlap <= overlap
	// fraction < HybridMaxOverlap, so with the defaults fractions of 0.99
	// and above, full containment included, are rejected.
	HybridMinOverlap float64
	HybridMaxOverlap float64

	// PerSequenceTimeout optionally bounds wall-clock time spent on one
	// sequence (spec §5 "Timeouts"); zero means no timeout.
	PerSequenceTimeout time.Duration

	// EGZIncludesGCRepeats is the DESIGN.md Open Question flag
	// widening eGZ detection to (GC)_n repeats in addition to the base
	// CGG/GGC/CCG/GCC trinucleotide set; default false matches spec
	// §4.4/§9 exactly.
	EGZIncludesGCRepeats bool

	// Logger receives the orchestrator's terse, singular progress lines
	// ("processing sequence", "chunk plan selected", …), in the
	// teacher's plain *log.Logger style; default log.Default().
	Logger *log.Logger
}

// DefaultConfig returns spec §6's configuration defaults.
func DefaultConfig() Config {
	return Config{
		ChunkTierOverrides: chunk.DefaultSizes(),
		MaxWorkers:         runtime.NumCPU(),
		G4WindowSize:       25,
		CruciformMinArm:    8,
		CruciformMaxArm:    50,
		CruciformMaxLoop:   12,
		ClusterWindowSize:  300,
		ClusterMinMotifs:   4,
		ClusterMinClasses:  3,
		HybridMinOverlap:   0.50,
		HybridMaxOverlap:   0.99,
		Logger:             log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (c Config) maxWorkers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return runtime.NumCPU()
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
