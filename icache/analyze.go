// File: analyze.go
// Role: Analyze, the eight-step instruction-cache analysis pipeline.

package icache

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/ctxwalk"
	"github.com/wcet-estimator/wcet/program"
)

const prefix = "i"

// PrivateAttrs lists the ephemeral Must/May/PS ACS attribute base names
// Analyze leaves on the nodes; the caller removes them after the pass.
func PrivateAttrs(level int) []string {
	return []string{
		cachedom.MustACSInBase(prefix, level), cachedom.MustACSOutBase(prefix, level),
		cachedom.MayACSInBase(prefix, level), cachedom.MayACSOutBase(prefix, level),
		cachedom.PSACSInBase(prefix, level), cachedom.PSACSOutBase(prefix, level),
	}
}

// Analyze runs the instruction-cache analysis for one cache level over
// every context reachable from the program's entry point.
func Analyze(p *program.Program, tree *calltree.Tree, backedges callcheck.BackedgeSet, cfg LevelConfig) error {
	if cfg.RunMay {
		if _, err := cachedom.MayWidth(cfg.Policy, cfg.Associativity); err != nil {
			return ErrUnsupportedPolicyForMay
		}
	}

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

	if err := step1Init(p, tree, universe, cfg); err != nil {
		return err
	}
	if cfg.Perfect {
		return stepPerfectCache(p, tree, universe, cfg)
	}

	if cfg.RunMust {
		if err := mustPhase(p, tree, universe, backedges, cfg, false); err != nil {
			return err
		}
		if err := mustPhase(p, tree, universe, backedges, cfg, true); err != nil {
			return err
		}
		if err := mustClassify(p, tree, universe, cfg); err != nil {
			return err
		}
	}
	if cfg.RunPersistence {
		if err := psPass(p, tree, universe, backedges, cfg); err != nil {
			return err
		}
	}
	if cfg.RunMay {
		if err := mayPass(p, tree, universe, backedges, cfg); err != nil {
			return err
		}
	}
	if err := leftovers(p, tree, universe, cfg); err != nil {
		return err
	}
	return nextLevelCAC(p, tree, universe, cfg)
}

// step1Init writes CAC=A at level 1 and attaches empty Must/May ACS to
// every discovered node.
func step1Init(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
	mustWidth, mustRemoved, err := cachedom.PolicyWidths(cfg.Policy, cfg.Associativity, false)
	if err != nil {
		return err
	}
	var mayWidth, mayRemoved int
	if cfg.RunMay {
		mayWidth, mayRemoved, err = cachedom.PolicyWidths(cfg.Policy, cfg.Associativity, true)
		if err != nil {
			return err
		}
	}

	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgID := ctx.Function
		entity := program.NodeEntity(cfgID, cn.Node)

		if cfg.Level == 1 {
			cfgObj := p.CFG(cfgID)
			for _, instrID := range cfgObj.Nodes[cn.Node].Instrs {
				if !cfgObj.Instrs[instrID].IsCode {
					continue
				}
				name := attrstore.CtxName(cachedom.ICacheCACBase(1), ctx.StringID())
				p.Attrs.Set(program.InstrEntity(cfgID, instrID), name, attrstore.IntValue(int64(cachedom.CACAlways)))
			}
		}

		mustCache := cachedom.NewMustCache(cfg.NSets, cfg.LineSize, mustWidth, mustRemoved)
		p.Attrs.Set(entity, attrstore.CtxName(cachedom.MustACSInBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mustCache))
		p.Attrs.Set(entity, attrstore.CtxName(cachedom.MustACSOutBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mustCache.Clone()))

		if cfg.RunMay {
			mayCache := cachedom.NewMayCache(cfg.NSets, cfg.LineSize, mayWidth, mayRemoved)
			p.Attrs.Set(entity, attrstore.CtxName(cachedom.MayACSInBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mayCache))
			p.Attrs.Set(entity, attrstore.CtxName(cachedom.MayACSOutBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mayCache.Clone()))
		}
	}
	return nil
}

// readCAC returns the CAC of instrID in ctx at cfg.Level (always A at
// level 1, written by step1Init; otherwise read from the previous level's
// next-level output).
func readCAC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int) cachedom.CAC {
	name := attrstore.CtxName(cachedom.ICacheCACBase(level), ctxStr)
	v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), name)
	if err != nil {
		return cachedom.CACNever
	}
	i, _ := v.Int()
	return cachedom.CAC(i)
}

func writeCHMC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int, chmc cachedom.CHMC) {
	name := attrstore.CtxName(cachedom.ICacheCHMCBase(level), ctxStr)
	p.Attrs.Set(program.InstrEntity(cfgID, instrID), name, attrstore.IntValue(int64(chmc)))
}

func hasCHMC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int) bool {
	name := attrstore.CtxName(cachedom.ICacheCHMCBase(level), ctxStr)
	return p.Attrs.Has(program.InstrEntity(cfgID, instrID), name)
}

func stepPerfectCache(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
	for _, cn := range universe {
		ctx, err := tree.Get(cn.Ctx)
		if err != nil {
			return err
		}
		cfgObj := p.CFG(ctx.Function)
		for _, instrID := range cfgObj.Nodes[cn.Node].Instrs {
			if !cfgObj.Instrs[instrID].IsCode {
				continue
			}
			writeCHMC(p, ctx.Function, instrID, ctx.StringID(), cfg.Level, cachedom.CHMCAlwaysHit)
		}
	}
	return nextLevelCAC(p, tree, universe, cfg)
}
