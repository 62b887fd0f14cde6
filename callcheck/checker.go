// File: checker.go
// Role: CheckProgram validates the preconditions C6/C7/C9 depend on, and
// BuildBackedgeSet computes the cross-program back-edge set used by the
// contextual walker (ctxwalk.FilterBackedge).

package callcheck

import (
	"fmt"

	"github.com/wcet-estimator/wcet/program"
)

// CheckProgram walks every CFG reachable from p.Entry (via the call graph)
// and rejects the first fatal input defect it finds: a missing instruction
// address, a loop without maxiter, or two loops sharing a node without
// either nesting the other.
//
// Complexity: O(total nodes + instructions + loops^2 per CFG).
func CheckProgram(p *program.Program) error {
	cg, err := BuildCallGraph(p)
	if err != nil {
		return err
	}
	for id := range cg.Reachable {
		cfg := p.CFG(id)
		if cfg == nil || cfg.External {
			continue
		}
		if err := checkInstructions(id, cfg); err != nil {
			return err
		}
		if err := checkLoops(id, cfg); err != nil {
			return err
		}
	}
	return nil
}

func checkInstructions(id program.CFGID, cfg *program.CFG) error {
	for i, instr := range cfg.Instrs {
		if instr.IsCode && instr.Address == nil {
			return fmt.Errorf("%w: cfg %q instruction %d", ErrMissingAddress, cfg.Name, i)
		}
	}
	_ = id
	return nil
}

func checkLoops(id program.CFGID, cfg *program.CFG) error {
	for i := range cfg.Loops {
		l := &cfg.Loops[i]
		if l.MaxIter <= 0 {
			return fmt.Errorf("%w: cfg %q loop %d (head node %d)", ErrMissingMaxIter, cfg.Name, i, l.Head)
		}
	}
	for i := range cfg.Loops {
		for j := i + 1; j < len(cfg.Loops); j++ {
			a, b := &cfg.Loops[i], &cfg.Loops[j]
			if !sharesNode(a, b) {
				continue
			}
			if a.IsNestedIn(b) || b.IsNestedIn(a) {
				continue
			}
			return fmt.Errorf("%w: cfg %q loops %d and %d", ErrLoopsNotNested, cfg.Name, i, j)
		}
	}
	_ = id
	return nil
}

func sharesNode(a, b *program.Loop) bool {
	small, big := a, b
	if len(big.Nodes) < len(small.Nodes) {
		small, big = big, small
	}
	for n := range small.Nodes {
		if _, ok := big.Nodes[n]; ok {
			return true
		}
	}
	return false
}

// BackedgeSet is the union of back-edges over all loops in all non-dead
// CFGs, keyed by (CFG, EdgeID) so callers can test membership without
// re-scanning every loop.
type BackedgeSet map[program.CFGID]map[program.EdgeID]struct{}

// IsBackEdge reports whether e of cfg is a back-edge of some loop.
func (bs BackedgeSet) IsBackEdge(cfg program.CFGID, e program.EdgeID) bool {
	m, ok := bs[cfg]
	if !ok {
		return false
	}
	_, ok = m[e]
	return ok
}

// BuildBackedgeSet unions the back-edges of every loop in every CFG
// reachable in cg; dead (unreachable) CFGs are excluded.
//
// Complexity: O(total loops * avg back-edges per loop).
func BuildBackedgeSet(p *program.Program, cg *CallGraph) BackedgeSet {
	bs := make(BackedgeSet)
	for id := range cg.Reachable {
		cfg := p.CFG(id)
		if cfg == nil {
			continue
		}
		for _, l := range cfg.Loops {
			for _, be := range l.BackEdges {
				if bs[id] == nil {
					bs[id] = make(map[program.EdgeID]struct{})
				}
				bs[id][be] = struct{}{}
			}
		}
	}
	return bs
}
