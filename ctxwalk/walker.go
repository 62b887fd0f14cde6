// File: walker.go
// Role: contextualSuccessors/Predecessors and InitWork, the
// seed work-item for every fixed-point analysis.

package ctxwalk

import (
	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
)

// Successors returns cn's contextual successors:
//   - a call node with a non-external callee yields the callee's entry in
//     its freshly-entered context;
//   - an end node with a caller yields every intra-CFG successor of the
//     caller's call node, back in the predecessor context;
//   - otherwise, the intra-CFG successors in the same context.
func Successors(p *program.Program, tree *calltree.Tree, cn ContextualNode) ([]ContextualNode, error) {
	ctx, err := tree.Get(cn.Ctx)
	if err != nil {
		return nil, err
	}
	cfg := p.CFG(ctx.Function)
	if cfg == nil {
		return nil, program.ErrCFGNotFound
	}
	node := &cfg.Nodes[cn.Node]

	if node.Kind == program.KindCall {
		if callee := p.CFG(node.Callee); callee != nil && !callee.External {
			calleeCtx, err := tree.GetCalleeContext(cn.Ctx, cn.Node)
			if err != nil {
				return nil, err
			}
			return []ContextualNode{{Ctx: calleeCtx, Node: callee.Start}}, nil
		}
	}

	if cfg.IsEnd(cn.Node) && ctx.HasCaller {
		callerCtx, err := tree.Get(ctx.Predecessor)
		if err != nil {
			return nil, err
		}
		callerCFG := p.CFG(callerCtx.Function)
		if callerCFG == nil {
			return nil, program.ErrCFGNotFound
		}
		out := make([]ContextualNode, 0, len(callerCFG.Successors(ctx.CallerNode)))
		for _, s := range callerCFG.Successors(ctx.CallerNode) {
			out = append(out, ContextualNode{Ctx: ctx.Predecessor, Node: s})
		}
		return out, nil
	}

	out := make([]ContextualNode, 0, len(cfg.Successors(cn.Node)))
	for _, s := range cfg.Successors(cn.Node) {
		out = append(out, ContextualNode{Ctx: cn.Ctx, Node: s})
	}
	return out, nil
}

// Predecessors returns cn's contextual predecessors: the dual of
// Successors.
func Predecessors(p *program.Program, tree *calltree.Tree, cn ContextualNode) ([]ContextualNode, error) {
	ctx, err := tree.Get(cn.Ctx)
	if err != nil {
		return nil, err
	}
	cfg := p.CFG(ctx.Function)
	if cfg == nil {
		return nil, program.ErrCFGNotFound
	}

	var out []ContextualNode

	if cn.Node == cfg.Start && ctx.HasCaller {
		out = append(out, ContextualNode{Ctx: ctx.Predecessor, Node: ctx.CallerNode})
	}

	for _, k := range cfg.Predecessors(cn.Node) {
		kNode := &cfg.Nodes[k]
		if kNode.Kind == program.KindCall {
			if callee := p.CFG(kNode.Callee); callee != nil && !callee.External {
				calleeCtx, err := tree.GetCalleeContext(cn.Ctx, k)
				if err != nil {
					return nil, err
				}
				for _, e := range callee.Ends {
					out = append(out, ContextualNode{Ctx: calleeCtx, Node: e})
				}
				continue
			}
		}
		out = append(out, ContextualNode{Ctx: cn.Ctx, Node: k})
	}
	return out, nil
}

// FilterBackedge reports whether the intra-CFG edge pred->cur should fire
// in the back-edge-excluding phase of a fixed point: false iff pred->cur is a registered back-edge of cur's CFG.
// Cross-context (call/return) edges are never back-edges.
func FilterBackedge(p *program.Program, tree *calltree.Tree, cur, pred ContextualNode, backedges callcheck.BackedgeSet) (bool, error) {
	if cur.Ctx != pred.Ctx {
		return true, nil
	}
	ctx, err := tree.Get(cur.Ctx)
	if err != nil {
		return false, err
	}
	cfg := p.CFG(ctx.Function)
	if cfg == nil {
		return false, program.ErrCFGNotFound
	}
	for ei, e := range cfg.Edges {
		if e.Src == pred.Node && e.Dst == cur.Node {
			if backedges.IsBackEdge(ctx.Function, program.EdgeID(ei)) {
				return false, nil
			}
		}
	}
	return true, nil
}

// InitWork returns the single seed work-item {(rootCtx, entry.Start)}.
func InitWork(p *program.Program, tree *calltree.Tree) (ContextualNode, error) {
	rootCtx, err := tree.Get(calltree.RootContext)
	if err != nil {
		return ContextualNode{}, err
	}
	entry := p.CFG(rootCtx.Function)
	if entry == nil {
		return ContextualNode{}, program.ErrCFGNotFound
	}
	return ContextualNode{Ctx: calltree.RootContext, Node: entry.Start}, nil
}
