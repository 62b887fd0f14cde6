// File: analyze.go
// Role: Analyze, the per-level data-cache fixed point: initialisation,
// Must (two phases) + classification, PS, May, leftover classification,
// block-count attributes, next-level CAC.

package dcache

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/ctxwalk"
	"github.com/wcet-estimator/wcet/program"
)

const prefix = "d"

// PrivateAttrs lists the ephemeral Must/May/PS ACS attribute base names
// Analyze leaves on the nodes; the caller removes them after the pass.
func PrivateAttrs(level int) []string {
	return []string{
		cachedom.MustACSInBase(prefix, level), cachedom.MustACSOutBase(prefix, level),
		cachedom.MayACSInBase(prefix, level), cachedom.MayACSOutBase(prefix, level),
		cachedom.PSACSInBase(prefix, level), cachedom.PSACSOutBase(prefix, level),
	}
}

// Analyze runs the data-cache analysis for one cache level over every
// context reachable from the program's entry point.
func Analyze(p *program.Program, tree *calltree.Tree, backedges callcheck.BackedgeSet, cfg LevelConfig) error {
	if cfg.Policy != cachedom.PolicyLRU {
		return ErrPolicyNotLRU
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
		if err := psPass(p, tree, universe, cfg); err != nil {
			return err
		}
	}
	if cfg.RunMay {
		if err := mayPass(p, tree, universe, cfg); err != nil {
			return err
		}
	}
	if err := leftovers(p, tree, universe, cfg); err != nil {
		return err
	}
	return nextLevelCAC(p, tree, universe, cfg)
}

// step1Init writes CAC=A at level 1 on every load and attaches empty
// Must/May ACS to every discovered node. Under LRU the Must/PS width is
// never narrowed, so the full associativity is used directly.
func step1Init(p *program.Program, tree *calltree.Tree, universe []ctxwalk.ContextualNode, cfg LevelConfig) error {
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
				if !cfgObj.Instrs[instrID].IsLoad {
					continue
				}
				name := attrstore.CtxName(cachedom.DCacheCACBase(1), ctx.StringID())
				p.Attrs.Set(program.InstrEntity(cfgID, instrID), name, attrstore.IntValue(int64(cachedom.CACAlways)))
			}
		}

		mustCache := cachedom.NewMustCache(cfg.NSets, cfg.LineSize, cfg.Associativity, 0)
		p.Attrs.Set(entity, attrstore.CtxName(cachedom.MustACSInBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mustCache))
		p.Attrs.Set(entity, attrstore.CtxName(cachedom.MustACSOutBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mustCache.Clone()))

		if cfg.RunMay {
			mayCache := cachedom.NewMayCache(cfg.NSets, cfg.LineSize, cfg.Associativity, 0)
			p.Attrs.Set(entity, attrstore.CtxName(cachedom.MayACSInBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mayCache))
			p.Attrs.Set(entity, attrstore.CtxName(cachedom.MayACSOutBase(prefix, cfg.Level), ctx.StringID()), attrstore.ACSValue(mayCache.Clone()))
		}
	}
	return nil
}

// loadAddrs returns instrID's candidate block addresses in ctxStr, or nil
// when the DATAADDRESS pass recorded none for this context.
func loadAddrs(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string) []uint64 {
	name := attrstore.CtxName(cachedom.DataAddressBase(), ctxStr)
	v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), name)
	if err != nil {
		return nil
	}
	addrs, _ := v.AddrSet()
	return addrs
}

// readCAC returns the data-cache CAC of instrID in ctx at cfg.Level.
func readCAC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int) cachedom.CAC {
	name := attrstore.CtxName(cachedom.DCacheCACBase(level), ctxStr)
	v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), name)
	if err != nil {
		return cachedom.CACNever
	}
	i, _ := v.Int()
	return cachedom.CAC(i)
}

func writeCHMC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int, chmc cachedom.CHMC) {
	name := attrstore.CtxName(cachedom.DCacheCHMCBase(level), ctxStr)
	p.Attrs.Set(program.InstrEntity(cfgID, instrID), name, attrstore.IntValue(int64(chmc)))
}

func hasCHMC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int) bool {
	name := attrstore.CtxName(cachedom.DCacheCHMCBase(level), ctxStr)
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
			if !cfgObj.Instrs[instrID].IsLoad {
				continue
			}
			writeCHMC(p, ctx.Function, instrID, ctx.StringID(), cfg.Level, cachedom.CHMCAlwaysHit)
		}
	}
	if err := leftovers(p, tree, universe, cfg); err != nil {
		return err
	}
	return nextLevelCAC(p, tree, universe, cfg)
}
