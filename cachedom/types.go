// File: types.go
// Role: CAC/CHMC classification enums, ReplacementPolicy, and the
// ACS-shortening width table.

package cachedom

import "errors"

var (
	// ErrUnsupportedPolicy indicates a (domain, policy, associativity)
	// combination the table marks unsupported (e.g. MAY under PLRU with
	// W>2, or MAY under Random at any associativity).
	ErrUnsupportedPolicy = errors.New("cachedom: replacement policy unsupported for this domain")

	// ErrInvalidAssociativity indicates a non-positive associativity.
	ErrInvalidAssociativity = errors.New("cachedom: associativity must be >= 1")
)

// CAC is the Cache Access Classification at one cache level: whether an
// access is Always made, Never made, Uncertain, or Uncertain-Never made.
type CAC uint8

const (
	// CACAlways means the access always reaches this cache level.
	CACAlways CAC = iota
	// CACNever means the access never reaches this cache level (a strict
	// cache update no-op).
	CACNever
	// CACUncertain means the access may or may not reach this level; a
	// weak (join-preserving) update is performed.
	CACUncertain
	// CACUncertainNever behaves like CACUncertain for update purposes but
	// is tracked separately because it propagates differently in the
	// next-level CAC table.
	CACUncertainNever
)

func (c CAC) String() string {
	switch c {
	case CACAlways:
		return "A"
	case CACNever:
		return "N"
	case CACUncertain:
		return "U"
	case CACUncertainNever:
		return "UN"
	default:
		return "?"
	}
}

// CHMC is the Cache Hit/Miss Classification produced for one instruction
// at one cache level.
type CHMC uint8

const (
	// CHMCAlwaysHit: the Must analysis proved the block is always present.
	CHMCAlwaysHit CHMC = iota
	// CHMCAlwaysMiss: the May analysis proved the block is never present.
	CHMCAlwaysMiss
	// CHMCFirstMiss: the Persistence analysis proved at most one miss per
	// enclosing loop iteration (present after the first access).
	CHMCFirstMiss
	// CHMCNotClassified: no pass could classify the access; treated as a
	// miss in cost computation but distinct from CHMCAlwaysMiss because it
	// is a conservative gap, not a proof.
	CHMCNotClassified
	// CHMCAlwaysUnused: the instruction never performs this kind of access
	// at this level (e.g. a store against the instruction cache, or any
	// instruction once CAC has propagated to N).
	CHMCAlwaysUnused
)

func (c CHMC) String() string {
	switch c {
	case CHMCAlwaysHit:
		return "AH"
	case CHMCAlwaysMiss:
		return "AM"
	case CHMCFirstMiss:
		return "FM"
	case CHMCNotClassified:
		return "NC"
	case CHMCAlwaysUnused:
		return "AU"
	default:
		return "?"
	}
}

// NextCAC implements the fixed (CHMC, CAC) -> next-level CAC propagation
// table. AU applies regardless of the current-level CAC and
// always propagates N.
func NextCAC(chmc CHMC, cac CAC) CAC {
	if chmc == CHMCAlwaysUnused {
		return CACNever
	}
	switch chmc {
	case CHMCAlwaysHit:
		return CACNever
	case CHMCAlwaysMiss:
		return cac // A->A, U->U, UN->UN
	case CHMCFirstMiss:
		return CACUncertainNever
	case CHMCNotClassified:
		if cac == CACUncertainNever {
			return CACUncertainNever
		}
		return CACUncertain
	default:
		return CACNever
	}
}

// ReplacementPolicy names one of the five supported cache replacement
// policies.
type ReplacementPolicy uint8

const (
	PolicyLRU ReplacementPolicy = iota
	PolicyPLRU
	PolicyMRU
	PolicyFIFO
	PolicyRandom
)

func (p ReplacementPolicy) String() string {
	switch p {
	case PolicyLRU:
		return "LRU"
	case PolicyPLRU:
		return "PLRU"
	case PolicyMRU:
		return "MRU"
	case PolicyFIFO:
		return "FIFO"
	case PolicyRandom:
		return "Random"
	default:
		return "?"
	}
}

// log2Ceil returns ceil(log2(n)) for n >= 1.
func log2Ceil(n int) int {
	bits := 0
	v := 1
	for v < n {
		v <<= 1
		bits++
	}
	return bits
}

// MustWidth returns the narrowed associativity used by the Must and PS
// domains for the given policy and true associativity w, per the ACS
// shortening table. LRU is never narrowed.
func MustWidth(policy ReplacementPolicy, w int) (wUsed int, err error) {
	if w < 1 {
		return 0, ErrInvalidAssociativity
	}
	switch policy {
	case PolicyLRU:
		return w, nil
	case PolicyPLRU:
		return log2Ceil(w) + 1, nil
	case PolicyMRU:
		if w > 1 {
			return 2, nil
		}
		return 1, nil
	case PolicyFIFO:
		return 1, nil
	case PolicyRandom:
		return 1, nil
	default:
		return 0, ErrUnsupportedPolicy
	}
}

// MayWidth returns the narrowed associativity used by the May domain for
// the given policy and true associativity w, or ErrUnsupportedPolicy for
// combinations the table marks unsupported (PLRU with w>2, Random).
func MayWidth(policy ReplacementPolicy, w int) (wUsed int, err error) {
	if w < 1 {
		return 0, ErrInvalidAssociativity
	}
	switch policy {
	case PolicyLRU:
		return w, nil
	case PolicyPLRU:
		if w <= 2 {
			return w, nil
		}
		return 0, ErrUnsupportedPolicy
	case PolicyMRU:
		if w*2-2 < 1 {
			return 1, nil
		}
		return 2*w - 2, nil
	case PolicyFIFO:
		return 2*w - 1, nil
	case PolicyRandom:
		return 0, ErrUnsupportedPolicy
	default:
		return 0, ErrUnsupportedPolicy
	}
}

// PolicyWidths returns both the narrowed width and the removed slack
// (w - wUsed) that cachedom's Age functions add back on absence.
func PolicyWidths(policy ReplacementPolicy, w int, forMay bool) (wUsed, wRemoved int, err error) {
	if forMay {
		wUsed, err = MayWidth(policy, w)
	} else {
		wUsed, err = MustWidth(policy, w)
	}
	if err != nil {
		return 0, 0, err
	}
	return wUsed, w - wUsed, nil
}
