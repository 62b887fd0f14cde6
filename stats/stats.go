// File: stats.go
// Role: Collect and Report, the classification aggregation over every
// (instruction, context) pair reachable from the entry point.

package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
)

// LevelStats counts classifications at one cache level of one hierarchy.
type LevelStats struct {
	Level  int
	Counts map[cachedom.CHMC]int
}

// Report is the collected statistics: instruction-cache levels then
// data-cache levels, each in level order.
type Report struct {
	ICache []LevelStats
	DCache []LevelStats
}

// Collect tallies every context's classification attributes for levels
// 1..nLevels of both hierarchies.
func Collect(p *program.Program, tree *calltree.Tree, nICache, nDCache int) *Report {
	rep := &Report{}
	for l := 1; l <= nICache; l++ {
		rep.ICache = append(rep.ICache, collectLevel(p, tree, cachedom.ICacheCHMCBase(l), l))
	}
	for l := 1; l <= nDCache; l++ {
		rep.DCache = append(rep.DCache, collectLevel(p, tree, cachedom.DCacheCHMCBase(l), l))
	}
	return rep
}

func collectLevel(p *program.Program, tree *calltree.Tree, base string, level int) LevelStats {
	ls := LevelStats{Level: level, Counts: make(map[cachedom.CHMC]int)}
	for _, ctx := range tree.Contexts {
		cfgObj := p.CFG(ctx.Function)
		if cfgObj == nil || cfgObj.External {
			continue
		}
		name := attrstore.CtxName(base, ctx.StringID())
		for ii := range cfgObj.Instrs {
			v, err := p.Attrs.Get(program.InstrEntity(ctx.Function, program.InstrID(ii)), name)
			if err != nil {
				continue
			}
			raw, _ := v.Int()
			ls.Counts[cachedom.CHMC(raw)]++
		}
	}
	return ls
}

// Write renders the report as one line per (hierarchy, level,
// classification), in a fixed order.
func (r *Report) Write(w io.Writer) error {
	write := func(kind string, levels []LevelStats) error {
		for _, ls := range levels {
			chmcs := make([]int, 0, len(ls.Counts))
			for c := range ls.Counts {
				chmcs = append(chmcs, int(c))
			}
			sort.Ints(chmcs)
			for _, c := range chmcs {
				if _, err := fmt.Fprintf(w, "%s L%d %s: %d\n", kind, ls.Level, cachedom.CHMC(c), ls.Counts[cachedom.CHMC(c)]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := write("icache", r.ICache); err != nil {
		return err
	}
	return write("dcache", r.DCache)
}
