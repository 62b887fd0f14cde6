// File: errors.go
// Role: sentinel errors for data-cache analysis configuration and missing
// input attributes.

package dcache

import "errors"

var (
	// ErrPolicyNotLRU indicates the configured data cache uses a
	// replacement policy other than LRU, the only one the data-cache
	// domain supports.
	ErrPolicyNotLRU = errors.New("dcache: data-cache analysis supports LRU replacement only")

	// ErrMissingAddressSet indicates a reachable load has no candidate
	// block address set for one of its contexts; the DATAADDRESS pass
	// must run before the first DCACHE pass.
	ErrMissingAddressSet = errors.New("dcache: load has no candidate address set; run the data-address pass first")
)
