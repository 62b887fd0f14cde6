// File: errors.go
// Role: sentinel errors for instruction-cache analysis configuration and
// internal invariant breaches.

package icache

import "errors"

var (
	// ErrUnsupportedPolicyForMay indicates the configured replacement
	// policy cannot support the MAY domain at the requested associativity.
	ErrUnsupportedPolicyForMay = errors.New("icache: replacement policy unsupported for the May domain")

	// ErrMissingContextList indicates a reachable CFG has no ContextList
	// attribute, meaning calltree.Initialise was not run before Analyze.
	ErrMissingContextList = errors.New("icache: cfg missing context list; run calltree.Initialise first")
)
