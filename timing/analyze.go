// File: analyze.go
// Role: Simulate, the pass entry point: per-context block times, per-edge
// deltas, call/return deltas.

package timing

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/ctxwalk"
	"github.com/wcet-estimator/wcet/program"
)

// Simulate computes NodeExecTimeFirst/NodeExecTimeNext for every
// contextual block, the four {FF,FN,NF,NN} deltas for every intra-CFG
// edge, and call/return deltas for every call node.
func Simulate(p *program.Program, tree *calltree.Tree, cfg Config) error {
	if cfg.Depth < 4 {
		return ErrBadDepth
	}
	hasMem := cfg.Depth >= 5

	seed, err := ctxwalk.InitWork(p, tree)
	if err != nil {
		return err
	}
	universe, err := ctxwalk.Discover(seed, func(cn ctxwalk.ContextualNode) ([]ctxwalk.ContextualNode, error) {
		return ctxwalk.Successors(p, tree, cn)
	})
	if err != nil {
		return err
	}

	// Per-node block times.
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgObj := p.CFG(ctx.Function)
		node := &cfgObj.Nodes[cn.Node]
		if node.IsolatedNop {
			continue
		}
		entity := program.NodeEntity(ctx.Function, cn.Node)

		for _, first := range []bool{true, false} {
			instrs, err := blockTimings(p, cfgObj, ctx.Function, node, ctx.StringID(), cfg, first)
			if err != nil {
				return err
			}
			total := blockTime(instrs, hasMem)
			name := AttrNodeExecTimeNext
			if first {
				name = AttrNodeExecTimeFirst
			}
			p.Attrs.Set(entity, attrstore.CtxName(name, ctx.StringID()), attrstore.IntValue(int64(total)))
		}
	}

	// Per-edge deltas within each context's CFG.
	seen := make(map[calltree.ContextID]bool)
	for _, cn := range universe {
		if seen[cn.Ctx] {
			continue
		}
		seen[cn.Ctx] = true
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgObj := p.CFG(ctx.Function)
		for ei := range cfgObj.Edges {
			e := &cfgObj.Edges[ei]
			if err := edgeDeltas(p, cfgObj, ctx, program.EdgeID(ei), e, cfg, hasMem); err != nil {
				return err
			}
		}
	}

	// Call/return deltas on call nodes.
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgObj := p.CFG(ctx.Function)
		node := &cfgObj.Nodes[cn.Node]
		if node.Kind != program.KindCall {
			continue
		}
		if err := callDeltas(p, tree, ctx, cfgObj, cn.Node, node, cfg, hasMem); err != nil {
			return err
		}
	}
	return nil
}

// fetchLatency resolves one instruction's fetch cost from its per-level
// cache classifications: each level reached costs its access latency; a
// miss through the last level additionally pays the memory load latency.
func fetchLatency(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, cfg Config, first bool) (int, error) {
	if len(cfg.ICacheLatency) == 0 {
		if cfg.DefaultFetchLatency > 0 {
			return cfg.DefaultFetchLatency, nil
		}
		return 1, nil
	}

	cost := 0
	nLevels := len(cfg.ICacheLatency)
	for l := 1; l <= nLevels; l++ {
		name := attrstore.CtxName(cachedom.ICacheCHMCBase(l), ctxStr)
		v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), name)
		if err != nil {
			if l == 1 {
				return 0, ErrMissingCHMC
			}
			break
		}
		raw, _ := v.Int()
		chmc := cachedom.CHMC(raw)

		cost += cfg.ICacheLatency[l-1]
		switch chmc {
		case cachedom.CHMCAlwaysHit, cachedom.CHMCAlwaysUnused:
			return cost, nil
		case cachedom.CHMCFirstMiss:
			if !first {
				return cost, nil
			}
			if l == nLevels {
				cost += cfg.MemoryLoadLatency
			}
		case cachedom.CHMCAlwaysMiss, cachedom.CHMCNotClassified:
			if l == nLevels {
				cost += cfg.MemoryLoadLatency
			}
		}
	}
	return cost, nil
}

// blockTimings resolves the (fetch, exec) latency pairs of a block's code
// instructions for one occurrence kind.
func blockTimings(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, cfg Config, first bool) ([]instrTiming, error) {
	var out []instrTiming
	for _, instrID := range node.Instrs {
		instr := &cfgObj.Instrs[instrID]
		if !instr.IsCode {
			continue
		}
		fetch, err := fetchLatency(p, cfgID, instrID, ctxStr, cfg, first)
		if err != nil {
			return nil, err
		}
		out = append(out, instrTiming{fetchLat: fetch, execLat: cfg.execLatency(instr.Opcode), memLat: 1})
	}
	return out, nil
}

// edgeDeltas writes the four pairwise deltas for one intra-CFG edge in one
// context: delta_XY = T(src[X] then dst[Y]) - (T(src,X) + T(dst,Y)).
func edgeDeltas(p *program.Program, cfgObj *program.CFG, ctx calltree.Context, eid program.EdgeID, e *program.Edge, cfg Config, hasMem bool) error {
	src := &cfgObj.Nodes[e.Src]
	dst := &cfgObj.Nodes[e.Dst]
	if src.IsolatedNop || dst.IsolatedNop {
		return nil
	}
	entity := program.EdgeEntity(ctx.Function, eid)
	ctxStr := ctx.StringID()

	kinds := []struct {
		name               string
		srcFirst, dstFirst bool
	}{
		{AttrDeltaFF, true, true},
		{AttrDeltaFN, true, false},
		{AttrDeltaNF, false, true},
		{AttrDeltaNN, false, false},
	}
	for _, k := range kinds {
		srcT, err := blockTimings(p, cfgObj, ctx.Function, src, ctxStr, cfg, k.srcFirst)
		if err != nil {
			return err
		}
		dstT, err := blockTimings(p, cfgObj, ctx.Function, dst, ctxStr, cfg, k.dstFirst)
		if err != nil {
			return err
		}
		delta := concatTime(srcT, dstT, hasMem) - (blockTime(srcT, hasMem) + blockTime(dstT, hasMem))
		p.Attrs.Set(entity, attrstore.CtxName(k.name, ctxStr), attrstore.IntValue(int64(delta)))
	}
	return nil
}

// callDeltas writes CallDelta{First,Next} (call block into callee start)
// and ReturnDelta{First,Next} (callee end back into the post-call block;
// maximum over end nodes) on the call node.
func callDeltas(p *program.Program, tree *calltree.Tree, ctx calltree.Context, callerCFG *program.CFG, callNodeID program.NodeID, callNode *program.Node, cfg Config, hasMem bool) error {
	callee := p.CFG(callNode.Callee)
	if callee == nil || callee.External || len(callee.Nodes) == 0 {
		return nil
	}
	calleeCtxID, err := tree.GetCalleeContext(ctx.ID, callNodeID)
	if err != nil {
		return err
	}
	calleeCtx, err := tree.Get(calleeCtxID)
	if err != nil {
		return err
	}

	entity := program.NodeEntity(ctx.Function, callNodeID)
	ctxStr := ctx.StringID()
	calleeStr := calleeCtx.StringID()

	for _, first := range []bool{true, false} {
		callT, err := blockTimings(p, callerCFG, ctx.Function, callNode, ctxStr, cfg, first)
		if err != nil {
			return err
		}
		startT, err := blockTimings(p, callee, callNode.Callee, &callee.Nodes[callee.Start], calleeStr, cfg, first)
		if err != nil {
			return err
		}
		callDelta := concatTime(callT, startT, hasMem) - (blockTime(callT, hasMem) + blockTime(startT, hasMem))

		retDelta := 0
		haveRet := false
		for _, endID := range callee.Ends {
			endT, err := blockTimings(p, callee, callNode.Callee, &callee.Nodes[endID], calleeStr, cfg, first)
			if err != nil {
				return err
			}
			for _, succ := range callerCFG.Successors(callNodeID) {
				succNode := &callerCFG.Nodes[succ]
				if succNode.IsolatedNop {
					continue
				}
				succT, err := blockTimings(p, callerCFG, ctx.Function, succNode, ctxStr, cfg, first)
				if err != nil {
					return err
				}
				d := concatTime(endT, succT, hasMem) - (blockTime(endT, hasMem) + blockTime(succT, hasMem))
				if !haveRet || d > retDelta {
					retDelta = d
					haveRet = true
				}
			}
		}

		callName, retName := AttrCallDeltaNext, AttrReturnDeltaNext
		if first {
			callName, retName = AttrCallDeltaFirst, AttrReturnDeltaFirst
		}
		p.Attrs.Set(entity, attrstore.CtxName(callName, ctxStr), attrstore.IntValue(int64(callDelta)))
		if haveRet {
			p.Attrs.Set(entity, attrstore.CtxName(retName, ctxStr), attrstore.IntValue(int64(retDelta)))
		}
	}
	return nil
}
