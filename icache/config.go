// File: config.go
// Role: LevelConfig, the per-level parameters orchestrator.Pipeline
// derives from one <CACHE type="icache" level="L" .../> configuration tag
// plus the ICACHE pass's must/persistence/may/keep_age flags.

package icache

import "github.com/wcet-estimator/wcet/cachedom"

// LevelConfig describes one instruction-cache level's shape and which
// sub-analyses the configured ICACHE pass requested.
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
	KeepAge        bool
}
