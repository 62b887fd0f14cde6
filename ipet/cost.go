// File: cost.go
// Role: the deterministic block-cost walk used when pipeline timing is
// off: per instruction, per cache level, sum the access latency a
// hit/miss at that level implies, with the data walk additionally bounded
// by the load's touched-block counts.

package ipet

import (
	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/program"
)

func readCHMC(p *program.Program, cfgID program.CFGID, instrID program.InstrID, base, ctxStr string) (cachedom.CHMC, bool) {
	v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), attrstore.CtxName(base, ctxStr))
	if err != nil {
		return 0, false
	}
	raw, _ := v.Int()
	return cachedom.CHMC(raw), true
}

func readBlockCount(p *program.Program, cfgID program.CFGID, instrID program.InstrID, level int, ctxStr string) int64 {
	v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), attrstore.CtxName(cachedom.DataBlockCountBase(level), ctxStr))
	if err != nil {
		return 0
	}
	n, _ := v.Int()
	return n
}

// instrFetchCost accumulates the instruction-cache walk for one
// instruction into (first, next): each level reached costs its latency; a
// miss through the last level pays the memory load latency; AH (and AU)
// stop the walk, FM stops only the subsequent-iteration walk.
func instrFetchCost(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, opts Options, first, next *int64) {
	if len(opts.ICache) == 0 {
		*first += opts.instrCost()
		*next += opts.instrCost()
		return
	}

	countFirst, countNext := true, true
	last := len(opts.ICache)
	for l := 1; l <= last && (countFirst || countNext); l++ {
		chmc, ok := readCHMC(p, cfgID, instrID, cachedom.ICacheCHMCBase(l), ctxStr)
		if !ok {
			break
		}
		lat := int64(opts.ICache[l-1].Latency)
		if countFirst {
			*first += lat
		}
		if countNext {
			*next += lat
		}
		switch chmc {
		case cachedom.CHMCAlwaysHit, cachedom.CHMCAlwaysUnused:
			countFirst, countNext = false, false
		case cachedom.CHMCAlwaysMiss, cachedom.CHMCNotClassified:
			if l == last {
				if countFirst {
					*first += int64(opts.MemoryLoadLatency)
				}
				if countNext {
					*next += int64(opts.MemoryLoadLatency)
				}
			}
		case cachedom.CHMCFirstMiss:
			if l == last && countFirst {
				*first += int64(opts.MemoryLoadLatency)
			}
			countNext = false
		}
	}
}

// instrDataCost accumulates the data-cache walk of one load. The
// occurrence bound tracks how many distinct blocks can still reach each
// deeper level (capped by the load's block count and the block's
// execution-frequency bound), mirroring the classification pipeline's
// next-level CAC narrowing.
func instrDataCost(p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, opts Options, freqBound int64, first, next *int64) {
	last := len(opts.DCache)
	if last == 0 {
		return
	}

	never := false
	always := true
	occBound := int64(1)

	for l := 1; l <= last; l++ {
		chmc, ok := readCHMC(p, cfgID, instrID, cachedom.DCacheCHMCBase(l), ctxStr)
		if !ok || chmc == cachedom.CHMCAlwaysUnused {
			return
		}

		lat := int64(opts.DCache[l-1].Latency)
		if always {
			*first += lat
			*next += lat
		} else if !never {
			*first += lat * occBound
		}

		memBlock := readBlockCount(p, cfgID, instrID, l, ctxStr)
		if chmc == cachedom.CHMCAlwaysHit {
			never = true
		}
		always = always && (chmc == cachedom.CHMCAlwaysMiss || chmc == cachedom.CHMCNotClassified)
		switch {
		case never:
			occBound = 0
		case always:
			occBound = minInt64(memBlock, freqBound)
		case chmc == cachedom.CHMCFirstMiss:
			occBound = minInt64(memBlock, occBound)
		}

		if l == last {
			mem := int64(opts.MemoryLoadLatency)
			if always {
				*first += mem
				if chmc == cachedom.CHMCAlwaysMiss || chmc == cachedom.CHMCNotClassified {
					*next += mem
				}
			} else if !never {
				*first += mem * occBound
			}
		}
	}
}

// blockCost walks every code instruction of node and returns the block's
// first- and subsequent-iteration cost. freqBound bounds how often the
// block can execute (product of enclosing loop bounds), read by the data
// walk's occurrence narrowing.
func blockCost(p *program.Program, cfgObj *program.CFG, cfgID program.CFGID, node *program.Node, ctxStr string, opts Options, freqBound int64) (int64, int64) {
	var first, next int64
	for _, instrID := range node.Instrs {
		instr := &cfgObj.Instrs[instrID]
		if !instr.IsCode {
			continue
		}
		if instr.IsStore && len(opts.DCache) > 0 {
			first += int64(opts.MemoryStoreLatency)
			next += int64(opts.MemoryStoreLatency)
		}
		instrFetchCost(p, cfgID, instrID, ctxStr, opts, &first, &next)
		if instr.IsLoad {
			instrDataCost(p, cfgID, instrID, ctxStr, opts, freqBound, &first, &next)
		}
	}
	return first, next
}

// freqBoundOf returns the product of MaxIter over every loop containing
// n in its CFG, floored at 1.
func freqBoundOf(cfgObj *program.CFG, n program.NodeID) int64 {
	bound := int64(1)
	for i := range cfgObj.Loops {
		l := &cfgObj.Loops[i]
		if _, ok := l.Nodes[n]; ok && l.MaxIter > 0 {
			bound *= int64(l.MaxIter)
		}
	}
	return bound
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
