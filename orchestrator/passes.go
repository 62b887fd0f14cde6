// File: passes.go
// Role: the per-kind executors: each pass kind maps to a
// check/perform/removePrivate capability triple the pipeline dispatches
// explicitly.

package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wcet-estimator/wcet/addrline"
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/dcache"
	"github.com/wcet-estimator/wcet/icache"
	"github.com/wcet-estimator/wcet/ipet"
	"github.com/wcet-estimator/wcet/printers"
	"github.com/wcet-estimator/wcet/program"
	"github.com/wcet-estimator/wcet/solverio"
	"github.com/wcet-estimator/wcet/stats"
	"github.com/wcet-estimator/wcet/timing"
	"github.com/wcet-estimator/wcet/xmlio"
)

// passExec is one pass's capability triple. check and removePrivate may
// be nil for passes with nothing to verify or scrub.
type passExec struct {
	check         func() error
	perform       func() error
	removePrivate func() error
}

func attrListValue(ids []string) attrstore.Value {
	return attrstore.StringValue(strings.Join(ids, " "))
}

// executor builds the capability triple for one configured pass.
func (pl *Pipeline) executor(ctx context.Context, st *state, pass xmlio.Pass) (passExec, error) {
	switch pass.Kind {
	case "ICACHE":
		return pl.cacheExec(st, pass, true)
	case "DCACHE":
		return pl.cacheExec(st, pass, false)
	case "DATAADDRESS":
		return pl.dataAddressExec(st, pass)
	case "PIPELINE":
		return pl.pipelineExec(st)
	case "IPET":
		return pl.ipetExec(ctx, st, pass)
	case "DOTPRINT", "SIMPLEPRINT", "HTMLPRINT":
		return pl.printExec(st, pass)
	case "CODELINE":
		return pl.codeLineExec(ctx, st, pass)
	case "CACHESTATISTICS":
		return pl.statsExec(st, pass)
	case "DUMMYANALYSIS":
		return passExec{perform: func() error {
			pl.Log.Info("dummy analysis", "cfgs", len(st.prog.CFGs))
			return nil
		}}, nil
	default:
		return passExec{}, xmlio.ErrUnknownPass
	}
}

// needTree is the common check of every analysis pass: an ENTRYPOINT
// pass must already have built the contextual substrate.
func (st *state) needTree() error {
	if st.tree == nil {
		return ErrNoContextTree
	}
	return nil
}

func (pl *Pipeline) cacheDecl(level int, instruction bool) (xmlio.Cache, error) {
	for _, c := range pl.Config.CachesFor(instruction) {
		if c.Level == level {
			return c, nil
		}
	}
	return xmlio.Cache{}, ErrCacheLevelNotDeclared
}

func (pl *Pipeline) cacheExec(st *state, pass xmlio.Pass, instruction bool) (passExec, error) {
	decl, err := pl.cacheDecl(pass.Level, instruction)
	if err != nil {
		return passExec{}, err
	}
	policy, err := xmlio.PolicyOf(decl)
	if err != nil {
		return passExec{}, err
	}

	if instruction {
		lcfg := icache.LevelConfig{
			Level: decl.Level, NSets: decl.NbSets, LineSize: decl.LineSize,
			Associativity: decl.NbWays, Policy: policy, Latency: decl.Latency,
			Perfect:        decl.Perfect(),
			RunMust:        xmlio.On(pass.Must),
			RunPersistence: xmlio.On(pass.Persistence),
			RunMay:         xmlio.On(pass.May),
			KeepAge:        xmlio.On(pass.KeepAge),
		}
		return passExec{
			check:   st.needTree,
			perform: func() error { return icache.Analyze(st.prog, st.tree, st.backedges, lcfg) },
			removePrivate: func() error {
				removeNodeAttrs(st.prog, icache.PrivateAttrs(lcfg.Level))
				return nil
			},
		}, nil
	}

	lcfg := dcache.LevelConfig{
		Level: decl.Level, NSets: decl.NbSets, LineSize: decl.LineSize,
		Associativity: decl.NbWays, Policy: policy, Latency: decl.Latency,
		Perfect:        decl.Perfect(),
		RunMust:        xmlio.On(pass.Must),
		RunPersistence: xmlio.On(pass.Persistence),
		RunMay:         xmlio.On(pass.May),
	}
	return passExec{
		check:   st.needTree,
		perform: func() error { return dcache.Analyze(st.prog, st.tree, st.backedges, lcfg) },
		removePrivate: func() error {
			removeNodeAttrs(st.prog, dcache.PrivateAttrs(lcfg.Level))
			return nil
		},
	}, nil
}

// removeNodeAttrs scrubs the given private attribute bases (every
// contextual instance included) from every node of every CFG.
func removeNodeAttrs(p *program.Program, bases []string) {
	for ci := range p.CFGs {
		for ni := range p.CFGs[ci].Nodes {
			entity := program.NodeEntity(program.CFGID(ci), program.NodeID(ni))
			for _, base := range bases {
				p.Attrs.RemovePrefixed(entity, base)
			}
		}
	}
}

// dataAddressExec attaches each load's candidate block address set for
// every context: the loader-provided address range clipped and quantised
// to the L1 data-cache line size, falling back to the configured stack
// pointer block for loads without a range.
func (pl *Pipeline) dataAddressExec(st *state, pass xmlio.Pass) (passExec, error) {
	dcaches := pl.Config.CachesFor(false)
	if len(dcaches) == 0 {
		return passExec{perform: func() error {
			pl.Log.Warn("data-address pass configured without a data cache; skipping")
			return nil
		}}, nil
	}
	lineSize := dcaches[0].LineSize
	if lineSize <= 0 {
		lineSize = 4
	}
	sp, _ := strconv.ParseUint(strings.TrimPrefix(pass.SP, "0x"), 16, 64)

	return passExec{
		check: st.needTree,
		perform: func() error {
			for ci := range st.prog.CFGs {
				cfgID := program.CFGID(ci)
				cfgObj := st.prog.CFG(cfgID)
				ctxs := st.tree.ContextList(cfgID)
				if len(ctxs) == 0 {
					continue
				}
				for ii := range cfgObj.Instrs {
					instr := &cfgObj.Instrs[ii]
					if !instr.IsLoad {
						continue
					}
					addrs := candidateBlocks(st.prog, cfgID, program.InstrID(ii), sp, uint64(lineSize))
					for _, c := range ctxs {
						cctx, err := st.tree.Get(c)
						if err != nil {
							return err
						}
						name := attrstore.CtxName(cachedom.DataAddressBase(), cctx.StringID())
						st.prog.Attrs.Set(program.InstrEntity(cfgID, program.InstrID(ii)), name, attrstore.AddrSetValue(addrs))
					}
				}
			}
			return nil
		},
	}, nil
}

// candidateBlocks derives a load's touched cache-line addresses from its
// daddr_min/daddr_max range attributes, or the stack-pointer block when
// the loader attached no range.
func candidateBlocks(p *program.Program, cfgID program.CFGID, instrID program.InstrID, sp, lineSize uint64) []uint64 {
	entity := program.InstrEntity(cfgID, instrID)
	minV, errMin := p.Attrs.Get(entity, "daddr_min")
	maxV, errMax := p.Attrs.Get(entity, "daddr_max")
	if errMin != nil || errMax != nil {
		return []uint64{(sp / lineSize) * lineSize}
	}
	lo, _ := minV.Int()
	hi, _ := maxV.Int()
	if hi < lo {
		lo, hi = hi, lo
	}
	var out []uint64
	for block := (uint64(lo) / lineSize) * lineSize; block <= uint64(hi); block += lineSize {
		out = append(out, block)
	}
	return out
}

func (pl *Pipeline) pipelineExec(st *state) (passExec, error) {
	depth := 5
	if pl.Config.Architecture.Target.Name == "ARM" {
		depth = 4
	}
	var icacheLat []int
	for _, c := range pl.Config.CachesFor(true) {
		icacheLat = append(icacheLat, c.Latency)
	}
	tcfg := timing.Config{
		Depth:               depth,
		DefaultLatency:      1,
		ICacheLatency:       icacheLat,
		DefaultFetchLatency: 1,
		MemoryLoadLatency:   pl.Config.Architecture.Memory[0].LoadLatency,
	}
	return passExec{
		check:   st.needTree,
		perform: func() error { return timing.Simulate(st.prog, st.tree, tcfg) },
	}, nil
}

func (pl *Pipeline) ipetExec(ctx context.Context, st *state, pass xmlio.Pass) (passExec, error) {
	opts := ipet.Options{
		WithPipeline:       xmlio.On(pass.Pipeline),
		MemoryLoadLatency:  pl.Config.Architecture.Memory[0].LoadLatency,
		MemoryStoreLatency: pl.Config.Architecture.Memory[0].StoreLatency,
		GenerateNodeFreq:   xmlio.On(pass.GenerateNodeFreq),
		AttachWCET:         xmlio.On(pass.AttachWCETInfo),
	}
	for _, c := range pl.Config.CachesFor(true) {
		opts.ICache = append(opts.ICache, ipet.CacheLevel{Latency: c.Latency, Perfect: c.Perfect()})
	}
	for _, c := range pl.Config.CachesFor(false) {
		opts.DCache = append(opts.DCache, ipet.CacheLevel{Latency: c.Latency, Perfect: c.Perfect()})
	}
	if pass.Solver == "cplex" {
		opts.SolverKind = solverio.KindCPLEX
	}

	solver := pl.Solver
	if solver == nil {
		solver = solverio.New(opts.SolverKind, "")
	}

	return passExec{
		check: st.needTree,
		perform: func() error {
			wcet, err := ipet.Run(ctx, st.prog, st.tree, solver, opts)
			if err != nil {
				return err
			}
			pl.Log.Info("wcet", "bound", wcet)
			return nil
		},
	}, nil
}

// printExec routes a printer pass to its writer: output_file (html_file
// for HTMLPRINT) under the configured directory, or stdout when none is
// configured.
func (pl *Pipeline) printExec(st *state, pass xmlio.Pass) (passExec, error) {
	return passExec{perform: func() error {
		out := pass.OutputFile
		if pass.Kind == "HTMLPRINT" && pass.HTMLFile != "" {
			out = pass.HTMLFile
		}
		w := os.Stdout
		if out != "" {
			f, err := os.Create(pl.resolvePath(out))
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		switch pass.Kind {
		case "DOTPRINT":
			return printers.DOTPrint(w, st.prog)
		case "SIMPLEPRINT":
			return printers.SimplePrint(w, st.prog)
		default:
			return printers.HTMLPrint(w, st.prog, xmlio.On(pass.Colorize))
		}
	}}, nil
}

// codeLineExec resolves every addressed instruction to file:line through
// addr2line and stores the result as a codeline attribute.
func (pl *Pipeline) codeLineExec(ctx context.Context, st *state, pass xmlio.Pass) (passExec, error) {
	return passExec{perform: func() error {
		type site struct {
			cfg   program.CFGID
			instr program.InstrID
		}
		var sites []site
		var addrs []uint64
		for ci := range st.prog.CFGs {
			cfgObj := &st.prog.CFGs[ci]
			for ii := range cfgObj.Instrs {
				if a := cfgObj.Instrs[ii].Address; a != nil {
					sites = append(sites, site{cfg: program.CFGID(ci), instr: program.InstrID(ii)})
					addrs = append(addrs, *a)
				}
			}
		}
		if len(addrs) == 0 {
			return nil
		}
		lines, err := addrline.Resolve(ctx, pass.Addr2LineCmd, pl.resolvePath(pass.BinaryFile), addrs)
		if err != nil {
			return err
		}
		for i, s := range sites {
			st.prog.Attrs.Set(program.InstrEntity(s.cfg, s.instr), "codeline",
				attrstore.StringValue(fmt.Sprintf("%s:%d", lines[i].File, lines[i].Line)))
		}
		return nil
	}}, nil
}

func (pl *Pipeline) statsExec(st *state, pass xmlio.Pass) (passExec, error) {
	return passExec{
		check: st.needTree,
		perform: func() error {
			rep := stats.Collect(st.prog, st.tree, len(pl.Config.CachesFor(true)), len(pl.Config.CachesFor(false)))
			w := os.Stdout
			if pass.OutputFile != "" {
				f, err := os.Create(pl.resolvePath(pass.OutputFile))
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return rep.Write(w)
		},
	}, nil
}
