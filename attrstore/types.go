// File: types.go
// Role: Entity identifiers, the Value tagged variant, and sentinel errors.
// Concurrency:
//   - EntityID is a plain comparable key; Value variants are immutable once built.
// AI-HINT (file):
//   - Construct Values with the IntValue/StringValue/... constructors, never struct literals,
//     so the internal `kind` tag stays consistent with the payload.

package attrstore

import "errors"

// Sentinel errors returned by Store operations.
var (
	// ErrNotFound indicates Get was called for a key with no stored value.
	ErrNotFound = errors.New("attrstore: attribute not found")

	// ErrNilHandleMap indicates Clone was called on a store containing
	// HandleValue entries without a handle map to re-point them through.
	ErrNilHandleMap = errors.New("attrstore: handle map required to clone handle-valued attributes")

	// ErrDanglingHandle indicates a HandleValue referenced an EntityID that
	// is absent from the supplied handle map during Clone.
	ErrDanglingHandle = errors.New("attrstore: handle has no counterpart in clone handle map")
)

// EntityKind distinguishes the six entity classes the design allows to
// carry attributes: program, CFG, node, edge, instruction, loop.
type EntityKind uint8

const (
	KindProgram EntityKind = iota
	KindCFG
	KindNode
	KindEdge
	KindInstruction
	KindLoop
)

// EntityID names one attribute-bearing entity. CFGID/NodeID/EdgeID/InstrID
// are small program-local arena indices (see package program); Program-level
// attributes use Local == 0 by convention.
type EntityID struct {
	Kind  EntityKind
	CFG   int32 // owning CFG index; unused (0) for Kind==KindProgram
	Local int32 // node/edge/instruction/loop index within CFG; unused for KindProgram/KindCFG
}

// kind tags the payload carried by a Value.
type kind uint8

const (
	kindInt kind = iota
	kindString
	kindFloat
	kindHandle
	kindBool
	kindACS
	kindAddrSet
)

// Value is a small closed tagged-variant carried by the store. Construct
// with the typed constructors below; inspect with the Xxx() accessors,
// which report ok=false on a kind mismatch rather than panicking.
type Value struct {
	k   kind
	i   int64
	s   string
	f   float64
	b   bool
	h   EntityID
	acs interface{} // holds *cachedom.MustSet / *cachedom.MaySet / *cachedom.PSSet; opaque here to avoid an import cycle
	a   []uint64
}

// IntValue wraps an integer attribute (addresses, maxiter, frequencies).
func IntValue(v int64) Value { return Value{k: kindInt, i: v} }

// StringValue wraps a string attribute (opcodes, CHMC/CAC labels).
func StringValue(v string) Value { return Value{k: kindString, s: v} }

// FloatValue wraps a floating-point attribute (latencies, flow values).
func FloatValue(v float64) Value { return Value{k: kindFloat, f: v} }

// BoolValue wraps a boolean attribute (isolatedNop, external, empty).
func BoolValue(v bool) Value { return Value{k: kindBool, b: v} }

// HandleValue wraps a reference to another entity. Clone rewrites handles
// through the supplied handle map so clones never alias the source program.
func HandleValue(id EntityID) Value { return Value{k: kindHandle, h: id} }

// ACSValue wraps an ephemeral abstract-cache-state payload (Must/May/PS ACS).
// These are the "ephemeral (non-serializable)" attributes the store contract
// requires supporting alongside serializable ones.
func ACSValue(payload interface{}) Value { return Value{k: kindACS, acs: payload} }

// AddrSetValue wraps a load instruction's per-context candidate block
// address set, as produced by the data-address pass and consumed by
// dcache.
func AddrSetValue(addrs []uint64) Value { return Value{k: kindAddrSet, a: addrs} }

// Int returns the wrapped integer and true, or (0,false) on a kind mismatch.
func (v Value) Int() (int64, bool) {
	if v.k != kindInt {
		return 0, false
	}
	return v.i, true
}

// String returns the wrapped string and true, or ("",false) on a kind mismatch.
func (v Value) String() (string, bool) {
	if v.k != kindString {
		return "", false
	}
	return v.s, true
}

// Float returns the wrapped float and true, or (0,false) on a kind mismatch.
func (v Value) Float() (float64, bool) {
	if v.k != kindFloat {
		return 0, false
	}
	return v.f, true
}

// Bool returns the wrapped bool and true, or (false,false) on a kind mismatch.
func (v Value) Bool() (bool, bool) {
	if v.k != kindBool {
		return false, false
	}
	return v.b, true
}

// Handle returns the wrapped EntityID and true, or (zero,false) on a mismatch.
func (v Value) Handle() (EntityID, bool) {
	if v.k != kindHandle {
		return EntityID{}, false
	}
	return v.h, true
}

// ACS returns the wrapped ephemeral payload and true, or (nil,false) on a mismatch.
func (v Value) ACS() (interface{}, bool) {
	if v.k != kindACS {
		return nil, false
	}
	return v.acs, true
}

// AddrSet returns the wrapped candidate block addresses and true, or
// (nil,false) on a kind mismatch. The caller must not mutate the slice.
func (v Value) AddrSet() ([]uint64, bool) {
	if v.k != kindAddrSet {
		return nil, false
	}
	return v.a, true
}
