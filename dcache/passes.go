// File: passes.go
// Role: the Must/PS/May fixed points over set-valued load accesses and the
// classification steps between them.

package dcache

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/ctxwalk"
	"github.com/wcet-estimator/wcet/program"
)

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

// simulateMust runs the node's loads in order through the MUST domain,
// applying each load's set-valued update under its current-level CAC.
// Returns a fresh clone; in is never mutated in place.
func simulateMust(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, level int, in *cachedom.MustCache) *cachedom.MustCache {
	out := in.Clone()
	if node.IsolatedNop {
		return out
	}
	for _, instrID := range node.Instrs {
		if !cfgObj.Instrs[instrID].IsLoad {
			continue
		}
		cac := readCAC(p, cfgID, instrID, ctxStr, level)
		out.UpdateBlocks(loadAddrs(p, cfgID, instrID, ctxStr), cac)
	}
	return out
}

func simulateMay(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, level int, in *cachedom.MayCache) *cachedom.MayCache {
	out := in.Clone()
	if node.IsolatedNop {
		return out
	}
	for _, instrID := range node.Instrs {
		if !cfgObj.Instrs[instrID].IsLoad {
			continue
		}
		cac := readCAC(p, cfgID, instrID, ctxStr, level)
		out.UpdateBlocks(loadAddrs(p, cfgID, instrID, ctxStr), cac)
	}
	return out
}

func simulatePS(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, level int, in *cachedom.PSCache) *cachedom.PSCache {
	out := in.Clone()
	if node.IsolatedNop {
		return out
	}
	for _, instrID := range node.Instrs {
		if !cfgObj.Instrs[instrID].IsLoad {
			continue
		}
		cac := readCAC(p, cfgID, instrID, ctxStr, level)
		out.UpdateBlocks(loadAddrs(p, cfgID, instrID, ctxStr), cac)
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

// mustClassify writes AH on every load whose entire candidate block set is
// already present in the in-node running MUST state before the access.
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
			if !cfgObj.Instrs[instrID].IsLoad {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				continue
			}
			addrs := loadAddrs(p, cfgID, instrID, ctxStr)
			if len(addrs) > 0 && !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) && allPresent(running, addrs) {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysHit)
			}
			running.UpdateBlocks(addrs, cac)
		}
	}
	return nil
}

func allPresent(c *cachedom.MustCache, addrs []uint64) bool {
	for _, a := range addrs {
		if !c.Present(a) {
			return false
		}
	}
	return true
}

func nonePSAbsent(c *cachedom.PSCache, addrs []uint64) bool {
	for _, a := range addrs {
		if c.Absent(a) {
			return false
		}
	}
	return true
}

func allMayAbsent(c *cachedom.MayCache, addrs []uint64) bool {
	for _, a := range addrs {
		if !c.Absent(a) {
			return false
		}
	}
	return true
}

// psPass runs the persistence fixed point restricted to nodes attached to
// a loop, classifying FM wherever every candidate block of a load stays
// live through the loop.
func psPass(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
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
		fresh := cachedom.NewPSCache(cfg.NSets, cfg.LineSize, cfg.Associativity)
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
			if !cfgObj.Instrs[instrID].IsLoad {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				continue
			}
			addrs := loadAddrs(p, cfgID, instrID, ctxStr)
			if len(addrs) > 0 && !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) && nonePSAbsent(running, addrs) {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCFirstMiss)
			}
			running.UpdateBlocks(addrs, cac)
		}
	}
	return nil
}

// mayPass runs the May fixed point over every node, classifying AM
// wherever every candidate block is provably absent before the access.
func mayPass(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
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
			if !cfgObj.Instrs[instrID].IsLoad {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			if cac == cachedom.CACNever {
				continue
			}
			addrs := loadAddrs(p, cfgID, instrID, ctxStr)
			if len(addrs) > 0 && !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) && allMayAbsent(running, addrs) {
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysMiss)
			}
			running.UpdateBlocks(addrs, cac)
		}
	}
	return nil
}

// leftovers assigns defaults to everything still unclassified: AU for
// every non-load and for loads whose CAC proved the access never reaches
// this level, NC otherwise. It also records each load's touched-block
// count for the IPET builder.
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
			if !instr.IsLoad {
				if !hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) {
					writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysUnused)
				}
				continue
			}

			addrs := loadAddrs(p, cfgID, instrID, ctxStr)
			countName := attrstore.CtxName(cachedom.DataBlockCountBase(cfg.Level), ctxStr)
			p.Attrs.Set(program.InstrEntity(cfgID, instrID), countName, attrstore.IntValue(int64(len(addrs))))

			if hasCHMC(p, cfgID, instrID, ctxStr, cfg.Level) {
				continue
			}
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			switch {
			case cac == cachedom.CACNever:
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysUnused)
			case cfg.Perfect:
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCAlwaysHit)
			default:
				writeCHMC(p, cfgID, instrID, ctxStr, cfg.Level, cachedom.CHMCNotClassified)
			}
		}
	}
	return nil
}

// nextLevelCAC propagates every load's CHMC at this level into the next
// level's CAC via the fixed propagation table shared with icache.
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
			if !cfgObj.Instrs[instrID].IsLoad {
				continue
			}
			chmcName := attrstore.CtxName(cachedom.DCacheCHMCBase(cfg.Level), ctxStr)
			v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), chmcName)
			if err != nil {
				continue
			}
			chmcRaw, _ := v.Int()
			chmc := cachedom.CHMC(chmcRaw)
			cac := readCAC(p, cfgID, instrID, ctxStr, cfg.Level)
			nextCAC := cachedom.NextCAC(chmc, cac)

			nextName := attrstore.CtxName(cachedom.DCacheCACBase(cfg.Level+1), ctxStr)
			p.Attrs.Set(program.InstrEntity(cfgID, instrID), nextName, attrstore.IntValue(int64(nextCAC)))
		}
	}
	return nil
}
