// File: node.go
// Role: ContextualNode, the (context, node) pair every later pass iterates
// over, plus its conversion to an attrstore-contextual attribute name.

package ctxwalk

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
)

// ContextualNode is the pair (context, node) with node.cfg == context's
// current function.
type ContextualNode struct {
	Ctx  calltree.ContextID
	Node program.NodeID
}

// Entity returns the attrstore entity id for cn's node, keyed within the
// CFG that owns it. Contextual attributes on this entity should use
// attrstore.CtxName(base, ctx.StringID()) as their name.
func (cn ContextualNode) Entity(cfg program.CFGID) attrstore.EntityID {
	return program.NodeEntity(cfg, cn.Node)
}
