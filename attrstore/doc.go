// Package attrstore implements the typed, named, per-entity attribute
// dictionary shared by every analysis pass (C1 in the design).
//
// # Why a separate store instead of fields on Node/Edge/Instruction?
//
// Most attributes are contextual: the same instruction carries one CHMC per
// (context, cache level), one CAC per (context, level), and so on. Rather
// than growing the CFG types with level/context-indexed slices, every pass
// writes into a single flat dictionary keyed by (entity, name), where
// contextuality is folded into the name via the "#<ctxStringID>" suffix
// (see CtxName). The store does not interpret names; it is a dumb,
// deterministic map with a clone hook.
package attrstore
