// File: options.go
// Role: Options, the knobs the configured IPET pass hands BuildLP/Run.

package ipet

import "github.com/wcet-estimator/wcet/solverio"

// CacheLevel is one cache level's cost shape as the objective sees it.
type CacheLevel struct {
	Latency int
	Perfect bool
}

// Options configures one IPET run.
type Options struct {
	// WithPipeline selects pipeline-timing coefficients (block times and
	// deltas from package timing) instead of the deterministic
	// cache-walk block cost.
	WithPipeline bool

	// ICache / DCache list the analysed cache levels 1..N in order;
	// empty slices mean the corresponding hierarchy was not analysed.
	ICache []CacheLevel
	DCache []CacheLevel

	MemoryLoadLatency  int
	MemoryStoreLatency int

	// NoCacheInstrCost is the per-instruction cost when no instruction
	// cache was analysed at all; defaults to 1.
	NoCacheInstrCost int

	// GenerateNodeFreq routes every solved n_* value back into a
	// per-context frequency attribute.
	GenerateNodeFreq bool

	// AttachWCET writes the solved objective onto the entry CFG.
	AttachWCET bool

	// SolverKind picks the LP text format Render emits.
	SolverKind solverio.Kind
}

func (o Options) instrCost() int64 {
	if o.NoCacheInstrCost > 0 {
		return int64(o.NoCacheInstrCost)
	}
	return 1
}
