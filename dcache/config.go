// File: config.go
// Role: LevelConfig, the per-level parameters orchestrator.Pipeline
// derives from one <CACHE type="dcache" level="L" .../> configuration tag
// plus the DCACHE pass's must/persistence/may flags.

package dcache

import "github.com/wcet-estimator/wcet/cachedom"

// LevelConfig describes one data-cache level's shape and which
// sub-analyses the configured DCACHE pass requested.
type LevelConfig struct {
	Level         int
	NSets         int
	LineSize      int
	Associativity int
	Policy        cachedom.ReplacementPolicy
	Latency       int
	Perfect       bool

	RunMust        bool
	RunPersistence bool
	RunMay         bool
}
