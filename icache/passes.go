// File: passes.go
// Role: the Must/PS/May fixed points and the classification steps that sit
// between them.

package icache

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/ctxwalk"
	"github.com/wcet-estimator/wcet/program"
)

// instrAddr returns instr's resolved address, or 0 if unresolved. Code
// instructions reachable in the call graph always have one by the time
// Analyze runs (callcheck.CheckProgram's invariant 2).
func instrAddr(instr *program.Instruction) uint64 {
	if instr.Address == nil {
		return 0
	}
	return *instr.Address
}

func getMustCache(p *program.Program, entity attrstore.EntityID, name string) *cachedom.MustCache {
	v, err := p.Attrs.Get(entity, name)
	if err != nil {
		return nil
	}
	acs, _ := v.ACS()
	c, _ := acs.(*cachedom.MustCache)
	return c
}

func getMayCache(p *program.Program, entity attrstore.EntityID, name string) *cachedom.MayCache {
	v, err := p.Attrs.Get(entity, name)
	if err != nil {
		return nil
	}
	acs, _ := v.ACS()
	c, _ := acs.(*cachedom.MayCache)
	return c
}

func getPSCache(p *program.Program, entity attrstore.EntityID, name string) *cachedom.PSCache {
	v, err := p.Attrs.Get(entity, name)
	if err != nil {
		return nil
	}
	acs, _ := v.ACS()
	c, _ := acs.(*cachedom.PSCache)
	return c
}

// simulateMust runs in sequentially through a node's code instructions,
// reading each one's current-level CAC, and returns the resulting cache
// state (a fresh clone; in is never mutated in place).
func simulateMust(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, level int, in *cachedom.MustCache) *cachedom.MustCache {
	out := in.Clone()
	if node.IsolatedNop {
		return out
	}
	for _, instrID := range node.Instrs {
		instr := &cfgObj.Instrs[instrID]
		if !instr.IsCode {
			continue
		}
		cac := readCAC(p, cfgID, instrID, ctxStr, level)
		out.Update(instrAddr(instr), cac)
	}
	return out
}

func simulateMay(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, level int, in *cachedom.MayCache) *cachedom.MayCache {
	out := in.Clone()
	if node.IsolatedNop {
		return out
	}
	for _, instrID := range node.Instrs {
		instr := &cfgObj.Instrs[instrID]
		if !instr.IsCode {
			continue
		}
		cac := readCAC(p, cfgID, instrID, ctxStr, level)
		out.Update(instrAddr(instr), cac)
	}
	return out
}

func simulatePS(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, level int, in *cachedom.PSCache) *cachedom.PSCache {
	out := in.Clone()
	if node.IsolatedNop {
		return out
	}
	for _, instrID := range node.Instrs {
		instr := &cfgObj.Instrs[instrID]
		if !instr.IsCode {
			continue
		}
		cac := readCAC(p, cfgID, instrID, ctxStr, level)
		out.Update(instrAddr(instr), cac)
	}
	return out
}

// mustPhase runs one Must fixed point over universe: phase 1 excludes
// back-edges (allEdges=false), phase 2 re-runs over every edge
// (allEdges=true), reusing whatever In/Out the other phase already left
// in the store as the starting point.
func mustPhase(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, backedges callcheck.BackedgeSet, cfg LevelConfig, allEdges bool) error {
	inName := cachedom.MustACSInBase(prefix, cfg.Level)
	outName := cachedom.MustACSOutBase(prefix, cfg.Level)

	for changed := true; changed; {
		changed = false
		for _, cn := range universe {
			ctx, err := tree.Get(cn.Ctx)
			if err != nil {
				return err
			}
			cfgID := ctx.Function
			cfgObj := p.CFG(cfgID)
			node := &cfgObj.Nodes[cn.Node]
			entity := program.NodeEntity(cfgID, cn.Node)
			ctxStr := ctx.StringID()

			preds, err := ctxwalk.Predecessors(p, tree, cn)
			if err != nil {
				return err
			}

			var joined *cachedom.MustCache
			for _, pred := range preds {
				if !allEdges {
					ok, err := ctxwalk.FilterBackedge(p, tree, cn, pred, backedges)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
				}
				predCtx, err := tree.Get(pred.Ctx)
				if err != nil {
					return err
				}
				predEntity := program.NodeEntity(predCtx.Function, pred.Node)
				predCache := getMustCache(p, predEntity, attrstore.CtxName(outName, predCtx.StringID()))
				if predCache == nil {
					continue
				}
				if joined == nil {
					joined = predCache.Clone()
				} else {
					joined = joined.Join(predCache)
				}
			}

			in := getMustCache(p, entity, attrstore.CtxName(inName, ctxStr))
			if joined != nil {
				in = joined
				p.Attrs.Set(entity, attrstore.CtxName(inName, ctxStr), attrstore.ACSValue(in))
			}

			out := simulateMust(p, cfgObj, cfgID, node, ctxStr, cfg.Level, in)
			prevOut := getMustCache(p, entity, attrstore.CtxName(outName, ctxStr))
			if prevOut == nil || !out.Equal(prevOut) {
				changed = true
			}
			p.Attrs.Set(entity, attrstore.CtxName(outName, ctxStr), attrstore.ACSValue(out))
		}
	}
	return nil
}

// mustClassify walks the converged Must state once more, writing AH on
// every code instruction the in-node running state already holds present
// before the access.
func mustClassify(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
	inName := cachedom.MustACSInBase(prefix, cfg.Level)
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgID := ctx.Function
		cfgObj := p.CFG(cfgID)
		node := &cfgObj.Nodes[cn.Node]
		ctxStr := ctx.StringID()
		entity := program.NodeEntity(cfgID, cn.Node)

		running := getMustCache(p, entity, attrstore.CtxName(inName, ctxStr))
		if running == nil {
			continue
		}
		if node.IsolatedNop {
			continue
		}
		running = running.Clone()
		for _, instrID := range node.Instrs {
			instr := &cfgObj.Instrs[instrID]
			if !instr.IsCode {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				continue
			}
			addr := instrAddr(instr)
			if !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) && running.Present(addr) {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysHit)
				if cfg.KeepAge {
					idx := cachedom.SetIndex(addr, running.LineSize, len(running.Sets))
					age := running.Sets[idx].Age(addr)
					name := attrstore.CtxName(cachedom.AgeAtClassificationBase(prefix, cfg.Level), ctxStr)
					p.Attrs.Set(program.InstrEntity(cfgID, instrID), name, attrstore.IntValue(int64(age)))
				}
			}
			running.Update(addr, cac)
		}
	}
	return nil
}

// psPass runs the persistence fixed point restricted to nodes attached to a
// loop, classifying FM wherever
// the converged state proves a block stays live (never saturates its
// conflict set) through the loop.
func psPass(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, backedges callcheck.BackedgeSet, cfg LevelConfig) error {
	psWidth, _, err := cachedom.PolicyWidths(cfg.Policy, cfg.Associativity, false)
	if err != nil {
		return err
	}

	attached := make(map[ctxwalk.ContextualNode]bool, len(universe))
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgObj := p.CFG(ctx.Function)
		_, inLoop := cfgObj.LoopContaining(cn.Node)
		attached[cn] = inLoop || tree.CallerInLoop(cn.Ctx)
	}

	inName := cachedom.PSACSInBase(prefix, cfg.Level)
	outName := cachedom.PSACSOutBase(prefix, cfg.Level)

	for _, cn := range universe {
		if !attached[cn] {
			continue
		}
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		entity := program.NodeEntity(ctx.Function, cn.Node)
		fresh := cachedom.NewPSCache(cfg.NSets, cfg.LineSize, psWidth)
		p.Attrs.Set(entity, attrstore.CtxName(inName, ctx.StringID()), attrstore.ACSValue(fresh))
		p.Attrs.Set(entity, attrstore.CtxName(outName, ctx.StringID()), attrstore.ACSValue(fresh.Clone()))
	}

	for changed := true; changed; {
		changed = false
		for _, cn := range universe {
			if !attached[cn] {
				continue
			}
			ctx, err := tree.Get(cn.Ctx)
			if err != nil {
				return err
			}
			cfgID := ctx.Function
			cfgObj := p.CFG(cfgID)
			node := &cfgObj.Nodes[cn.Node]
			entity := program.NodeEntity(cfgID, cn.Node)
			ctxStr := ctx.StringID()

			preds, err := ctxwalk.Predecessors(p, tree, cn)
			if err != nil {
				return err
			}
			var joined *cachedom.PSCache
			for _, pred := range preds {
				if !attached[pred] {
					continue
				}
				predCtx, err := tree.Get(pred.Ctx)
				if err != nil {
					return err
				}
				predEntity := program.NodeEntity(predCtx.Function, pred.Node)
				predCache := getPSCache(p, predEntity, attrstore.CtxName(outName, predCtx.StringID()))
				if predCache == nil {
					continue
				}
				if joined == nil {
					joined = predCache.Clone()
				} else {
					joined = joined.Join(predCache)
				}
			}

			in := getPSCache(p, entity, attrstore.CtxName(inName, ctxStr))
			if joined != nil {
				in = joined
				p.Attrs.Set(entity, attrstore.CtxName(inName, ctxStr), attrstore.ACSValue(in))
			}
			if in == nil {
				continue
			}

			out := simulatePS(p, cfgObj, cfgID, node, ctxStr, cfg.Level, in)
			prevOut := getPSCache(p, entity, attrstore.CtxName(outName, ctxStr))
			if prevOut == nil || !out.Equal(prevOut) {
				changed = true
			}
			p.Attrs.Set(entity, attrstore.CtxName(outName, ctxStr), attrstore.ACSValue(out))
		}
	}

	for _, cn := range universe {
		if !attached[cn] {
			continue
		}
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgID := ctx.Function
		cfgObj := p.CFG(cfgID)
		node := &cfgObj.Nodes[cn.Node]
		ctxStr := ctx.StringID()
		entity := program.NodeEntity(cfgID, cn.Node)

		running := getPSCache(p, entity, attrstore.CtxName(inName, ctxStr))
		if running == nil {
			continue
		}
		if node.IsolatedNop {
			continue
		}
		running = running.Clone()
		for _, instrID := range node.Instrs {
			instr := &cfgObj.Instrs[instrID]
			if !instr.IsCode {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				continue
			}
			addr := instrAddr(instr)
			if !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) && !running.Absent(addr) {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCFirstMiss)
			}
			running.Update(addr, cac)
		}
	}
	return nil
}

// mayPass runs the May fixed point over every node, classifying AM
// wherever the converged state proves a block is absent before the access.
func mayPass(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, backedges callcheck.BackedgeSet, cfg LevelConfig) error {
	inName := cachedom.MayACSInBase(prefix, cfg.Level)
	outName := cachedom.MayACSOutBase(prefix, cfg.Level)

	for changed := true; changed; {
		changed = false
		for _, cn := range universe {
			ctx, err := tree.Get(cn.Ctx)
			if err != nil {
				return err
			}
			cfgID := ctx.Function
			cfgObj := p.CFG(cfgID)
			node := &cfgObj.Nodes[cn.Node]
			entity := program.NodeEntity(cfgID, cn.Node)
			ctxStr := ctx.StringID()

			preds, err := ctxwalk.Predecessors(p, tree, cn)
			if err != nil {
				return err
			}
			var joined *cachedom.MayCache
			for _, pred := range preds {
				predCtx, err := tree.Get(pred.Ctx)
				if err != nil {
					return err
				}
				predEntity := program.NodeEntity(predCtx.Function, pred.Node)
				predCache := getMayCache(p, predEntity, attrstore.CtxName(outName, predCtx.StringID()))
				if predCache == nil {
					continue
				}
				if joined == nil {
					joined = predCache.Clone()
				} else {
					joined = joined.Join(predCache)
				}
			}

			in := getMayCache(p, entity, attrstore.CtxName(inName, ctxStr))
			if joined != nil {
				in = joined
				p.Attrs.Set(entity, attrstore.CtxName(inName, ctxStr), attrstore.ACSValue(in))
			}
			if in == nil {
				continue
			}

			out := simulateMay(p, cfgObj, cfgID, node, ctxStr, cfg.Level, in)
			prevOut := getMayCache(p, entity, attrstore.CtxName(outName, ctxStr))
			if prevOut == nil || !out.Equal(prevOut) {
				changed = true
			}
			p.Attrs.Set(entity, attrstore.CtxName(outName, ctxStr), attrstore.ACSValue(out))
		}
	}

	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgID := ctx.Function
		cfgObj := p.CFG(cfgID)
		node := &cfgObj.Nodes[cn.Node]
		ctxStr := ctx.StringID()
		entity := program.NodeEntity(cfgID, cn.Node)

		running := getMayCache(p, entity, attrstore.CtxName(inName, ctxStr))
		if running == nil {
			continue
		}
		if node.IsolatedNop {
			continue
		}
		running = running.Clone()
		for _, instrID := range node.Instrs {
			instr := &cfgObj.Instrs[instrID]
			if !instr.IsCode {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				continue
			}
			addr := instrAddr(instr)
			if !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) && running.Absent(addr) {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysMiss)
			}
			running.Update(addr, cac)
		}
	}
	return nil
}

// leftovers assigns every still-unclassified code instruction its default
// classification: AU if this level's CAC proved the
// access never reaches it, NC otherwise (a conservative gap, not a proof).
func leftovers(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgID := ctx.Function
		cfgObj := p.CFG(cfgID)
		node := &cfgObj.Nodes[cn.Node]
		if node.IsolatedNop {
			continue
		}
		ctxStr := ctx.StringID()
		for _, instrID := range node.Instrs {
			instr := &cfgObj.Instrs[instrID]
			if !instr.IsCode {
				continue
			}
			if hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysUnused)
			} else {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCNotClassified)
			}
		}
	}
	return nil
}

// nextLevelCAC propagates every instruction's CHMC at this level into the
// next level's CAC via the fixed propagation table.
func nextLevelCAC(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgID := ctx.Function
		cfgObj := p.CFG(cfgID)
		node := &cfgObj.Nodes[cn.Node]
		if node.IsolatedNop {
			continue
		}
		ctxStr := ctx.StringID()
		for _, instrID := range node.Instrs {
			instr := &cfgObj.Instrs[instrID]
			if !instr.IsCode {
				continue
			}
			chmcName := attrstore.CtxName(cachedom.ICacheCHMCBase(cfg.Level), ctxStr)
			v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), chmcName)
			if err != nil {
				continue
			}
			chmcRaw, _ := v.Int()
			chmc := cachedom.CHMC(chmcRaw)
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			nextCAC := cachedom.NextCAC(chmc, cac)

			nextName := attrstore.CtxName(cachedom.ICacheCACBase(cfg.Level+1), ctxStr)
			p.Attrs.Set(program.InstrEntity(cfgID, instrID), nextName, attrstore.IntValue(int64(nextCAC)))
		}
	}
	return nil
}
