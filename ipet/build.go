// File: build.go
// Role: BuildLP, the constraint and objective emitter. Iteration is in
// (context id, arena index) order everywhere so the same program always
// renders to byte-identical LP text.

package ipet

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
	"github.com/wcet-estimator/wcet/timing"
)

// BuildLP emits the ILP for p's entry point over tree's contexts.
func BuildLP(p *program.Program, tree *calltree.Tree, opts Options) (*Model, error) {
	m := &Model{}

	for _, ctx := range tree.Contexts {
		cfgObj := p.CFG(ctx.Function)
		if cfgObj == nil || cfgObj.External || len(cfgObj.Nodes) == 0 {
			continue
		}
		if err := buildContext(p, tree, m, ctx, cfgObj, opts); err != nil {
			return nil, err
		}
	}
	if len(m.NodeVars) == 0 {
		return nil, ErrNoNodes
	}

	// Entry constraint: the entry block executes exactly once.
	rootCtx, err := tree.Get(calltree.RootContext)
	if err != nil {
		return nil, err
	}
	entryCFG := p.CFG(rootCtx.Function)
	m.Constraints = append(m.Constraints, Constraint{
		Terms: []Term{{Coeff: 1, Var: nodeVar(entryCFG.Start, calltree.RootContext)}},
		Op:    OpEq, RHS: 1,
	})

	return m, nil
}

// buildContext emits one context's variables, constraints and objective
// terms.
func buildContext(p *program.Program, tree *calltree.Tree, m *Model, ctx calltree.Context, cfgObj *program.CFG, opts Options) error {
	ctxStr := ctx.StringID()

	for ni := range cfgObj.Nodes {
		node := &cfgObj.Nodes[ni]
		if node.IsolatedNop {
			continue
		}
		nid := program.NodeID(ni)

		nVar := nodeVar(nid, ctx.ID)
		nfVar := nodeFirstVar(nid, ctx.ID)
		nnVar := nodeNextVar(nid, ctx.ID)
		m.addVar(nVar)
		m.addVar(nfVar)
		m.addVar(nnVar)
		m.NodeVars = append(m.NodeVars, NodeVar{Name: nVar, CFG: ctx.Function, Node: nid, Ctx: ctx.ID})

		// n = nf + nn; a block's first iteration happens at most once.
		m.Constraints = append(m.Constraints,
			Constraint{Terms: []Term{{1, nfVar}, {1, nnVar}, {-1, nVar}}, Op: OpEq, RHS: 0},
			Constraint{Terms: []Term{{1, nfVar}}, Op: OpLe, RHS: 1},
		)

		first, next, err := nodeCoefficients(p, tree, ctx, cfgObj, nid, node, ctxStr, opts)
		if err != nil {
			return err
		}
		if first != 0 {
			m.Objective = append(m.Objective, Term{Coeff: first, Var: nfVar})
		}
		if next != 0 {
			m.Objective = append(m.Objective, Term{Coeff: next, Var: nnVar})
		}

		// Call coupling: the call node executes exactly as often as the
		// callee's entry block does in the callee's context.
		if node.Kind == program.KindCall {
			callee := p.CFG(node.Callee)
			if callee != nil && !callee.External && len(callee.Nodes) > 0 {
				calleeCtx, err := tree.GetCalleeContext(ctx.ID, nid)
				if err != nil {
					return err
				}
				m.Constraints = append(m.Constraints, Constraint{
					Terms: []Term{{1, nVar}, {-1, nodeVar(callee.Start, calleeCtx)}},
					Op:    OpEq, RHS: 0,
				})
			}
		}
	}

	// Edge variables and flow balance.
	for ei := range cfgObj.Edges {
		e := &cfgObj.Edges[ei]
		if cfgObj.Nodes[e.Src].IsolatedNop || cfgObj.Nodes[e.Dst].IsolatedNop {
			continue
		}
		eVar := edgeVar(e.Src, e.Dst, ctx.ID)
		m.addVar(eVar)
		if opts.WithPipeline {
			if err := edgeOccSplit(p, m, ctx, program.EdgeID(ei), e, eVar); err != nil {
				return err
			}
		}
	}
	for ni := range cfgObj.Nodes {
		node := &cfgObj.Nodes[ni]
		if node.IsolatedNop {
			continue
		}
		nid := program.NodeID(ni)
		nVar := nodeVar(nid, ctx.ID)

		if nid != cfgObj.Start {
			ins := flowTerms(cfgObj, nid, ctx.ID, true)
			if len(ins) > 0 {
				m.Constraints = append(m.Constraints, Constraint{
					Terms: append(ins, Term{Coeff: -1, Var: nVar}), Op: OpEq, RHS: 0,
				})
			}
		}
		if !cfgObj.IsEnd(nid) {
			outs := flowTerms(cfgObj, nid, ctx.ID, false)
			if len(outs) > 0 {
				m.Constraints = append(m.Constraints, Constraint{
					Terms: append(outs, Term{Coeff: -1, Var: nVar}), Op: OpEq, RHS: 0,
				})
			}
		}
	}

	// Loop bounds: every non-nested loop node is bounded by maxiter
	// times the flow entering the loop, the head itself excepted unless
	// it is the loop's only node.
	for li := range cfgObj.Loops {
		loop := &cfgObj.Loops[li]
		entry := loopEntryTerms(cfgObj, loop, ctx.ID)
		if len(entry) == 0 {
			continue
		}
		for ni := range cfgObj.Nodes {
			nid := program.NodeID(ni)
			if _, ok := loop.Nodes[nid]; !ok {
				continue
			}
			if cfgObj.Nodes[ni].IsolatedNop || inSubloop(cfgObj, loop, li, nid) {
				continue
			}
			if nid == loop.Head && len(loop.Nodes) > 1 {
				continue
			}
			terms := []Term{{Coeff: 1, Var: nodeVar(nid, ctx.ID)}}
			for _, t := range entry {
				terms = append(terms, Term{Coeff: -int64(loop.MaxIter) * t.Coeff, Var: t.Var})
			}
			m.Constraints = append(m.Constraints, Constraint{Terms: terms, Op: OpLe, RHS: 0})
		}
	}
	return nil
}

// flowTerms returns the unit terms over a node's intra-CFG in- or
// out-edge variables, in edge-arena order.
func flowTerms(cfgObj *program.CFG, n program.NodeID, ctx calltree.ContextID, inbound bool) []Term {
	var terms []Term
	for ei := range cfgObj.Edges {
		e := &cfgObj.Edges[ei]
		if cfgObj.Nodes[e.Src].IsolatedNop || cfgObj.Nodes[e.Dst].IsolatedNop {
			continue
		}
		if (inbound && e.Dst == n) || (!inbound && e.Src == n) {
			terms = append(terms, Term{Coeff: 1, Var: edgeVar(e.Src, e.Dst, ctx)})
		}
	}
	return terms
}

// loopEntryTerms returns unit terms over the loop's entry edges: inbound
// edges of the head whose source lies outside the loop.
func loopEntryTerms(cfgObj *program.CFG, loop *program.Loop, ctx calltree.ContextID) []Term {
	var terms []Term
	for ei := range cfgObj.Edges {
		e := &cfgObj.Edges[ei]
		if e.Dst != loop.Head {
			continue
		}
		if _, inside := loop.Nodes[e.Src]; inside {
			continue
		}
		terms = append(terms, Term{Coeff: 1, Var: edgeVar(e.Src, e.Dst, ctx)})
	}
	return terms
}

// inSubloop reports whether n belongs to a loop strictly nested in loop.
func inSubloop(cfgObj *program.CFG, loop *program.Loop, loopIdx int, n program.NodeID) bool {
	for li := range cfgObj.Loops {
		if li == loopIdx {
			continue
		}
		other := &cfgObj.Loops[li]
		if !other.IsNestedIn(loop) || len(other.Nodes) == len(loop.Nodes) {
			continue
		}
		if _, ok := other.Nodes[n]; ok {
			return true
		}
	}
	return false
}

// nodeCoefficients resolves one block's objective coefficients: the
// deterministic cache-walk cost, or in pipeline mode the simulated block
// times plus call/return deltas.
func nodeCoefficients(p *program.Program, tree *calltree.Tree, ctx calltree.Context, cfgObj *program.CFG, nid program.NodeID, node *program.Node, ctxStr string, opts Options) (int64, int64, error) {
	if !opts.WithPipeline {
		first, next := blockCost(p, cfgObj, ctx.Function, node, ctxStr, opts, freqBoundOf(cfgObj, nid))
		return first, next, nil
	}

	entity := program.NodeEntity(ctx.Function, nid)
	first, err := intAttr(p, entity, attrstore.CtxName(timing.AttrNodeExecTimeFirst, ctxStr))
	if err != nil {
		return 0, 0, ErrMissingNodeTime
	}
	next, err := intAttr(p, entity, attrstore.CtxName(timing.AttrNodeExecTimeNext, ctxStr))
	if err != nil {
		return 0, 0, ErrMissingNodeTime
	}

	if node.Kind == program.KindCall {
		for name, into := range map[string]*int64{
			timing.AttrCallDeltaFirst:   &first,
			timing.AttrReturnDeltaFirst: &first,
			timing.AttrCallDeltaNext:    &next,
			timing.AttrReturnDeltaNext:  &next,
		} {
			if v, err := intAttr(p, entity, attrstore.CtxName(name, ctxStr)); err == nil {
				*into += v
			}
		}
	}
	return first, next, nil
}

// edgeOccSplit emits the four first/next occurrence variables of an edge,
// their coupling to the edge total, and their delta objective terms.
func edgeOccSplit(p *program.Program, m *Model, ctx calltree.Context, eid program.EdgeID, e *program.Edge, eVar string) error {
	ctxStr := ctx.StringID()
	entity := program.EdgeEntity(ctx.Function, eid)

	kinds := []struct {
		prefix, attr string
	}{
		{"eff", timing.AttrDeltaFF},
		{"efn", timing.AttrDeltaFN},
		{"enf", timing.AttrDeltaNF},
		{"enn", timing.AttrDeltaNN},
	}
	coupling := Constraint{Op: OpEq, RHS: 0}
	var ffVar, fnVar, nfVar string
	for _, k := range kinds {
		v := edgeOccVar(k.prefix, e.Src, e.Dst, ctx.ID)
		m.addVar(v)
		coupling.Terms = append(coupling.Terms, Term{Coeff: 1, Var: v})
		switch k.prefix {
		case "eff":
			ffVar = v
		case "efn":
			fnVar = v
		case "enf":
			nfVar = v
		}
		if delta, err := intAttr(p, entity, attrstore.CtxName(k.attr, ctxStr)); err == nil && delta != 0 {
			m.Objective = append(m.Objective, Term{Coeff: delta, Var: v})
		}
	}
	coupling.Terms = append(coupling.Terms, Term{Coeff: -1, Var: eVar})
	m.Constraints = append(m.Constraints, coupling)

	// A source's first iteration leaves at most once; a target's first
	// iteration is entered at most once.
	m.Constraints = append(m.Constraints,
		Constraint{Terms: []Term{{1, ffVar}, {1, fnVar}}, Op: OpLe, RHS: 1},
		Constraint{Terms: []Term{{1, ffVar}, {1, nfVar}}, Op: OpLe, RHS: 1},
	)
	return nil
}

func intAttr(p *program.Program, entity attrstore.EntityID, name string) (int64, error) {
	v, err := p.Attrs.Get(entity, name)
	if err != nil {
		return 0, err
	}
	n, _ := v.Int()
	return n, nil
}
