// File: entities.go
// Role: Conversions from program-local indices to attrstore.EntityID keys.
package program

import "github.com/wcet-estimator/wcet/attrstore"

// ProgramEntity returns the single program-level entity id (Attrs keyed by
// KindProgram carry things like the resolved architecture name).
func ProgramEntity() attrstore.EntityID {
	return attrstore.EntityID{Kind: attrstore.KindProgram}
}

// CFGEntity returns the entity id for CFG cfg's own attributes (e.g. ContextList).
func CFGEntity(cfg CFGID) attrstore.EntityID {
	return attrstore.EntityID{Kind: attrstore.KindCFG, CFG: int32(cfg)}
}

// NodeEntity returns the entity id for node n of cfg.
func NodeEntity(cfg CFGID, n NodeID) attrstore.EntityID {
	return attrstore.EntityID{Kind: attrstore.KindNode, CFG: int32(cfg), Local: int32(n)}
}

// EdgeEntity returns the entity id for edge e of cfg.
func EdgeEntity(cfg CFGID, e EdgeID) attrstore.EntityID {
	return attrstore.EntityID{Kind: attrstore.KindEdge, CFG: int32(cfg), Local: int32(e)}
}

// InstrEntity returns the entity id for instruction i of cfg.
func InstrEntity(cfg CFGID, i InstrID) attrstore.EntityID {
	return attrstore.EntityID{Kind: attrstore.KindInstruction, CFG: int32(cfg), Local: int32(i)}
}

// LoopEntity returns the entity id for loop l of cfg.
func LoopEntity(cfg CFGID, l LoopID) attrstore.EntityID {
	return attrstore.EntityID{Kind: attrstore.KindLoop, CFG: int32(cfg), Local: int32(l)}
}
