// File: callgraph.go
// Role: Call-graph construction (BuildCallGraph) and cycle rejection,
// adapted from core's BFS/DFS traversal helpers (algorithms/bfs.go,
// algorithms/dfs.go) but walking program.CFG call nodes instead of a
// generic adjacency list.

package callcheck

import (
	"fmt"

	"github.com/wcet-estimator/wcet/program"
)

// CallGraph is the set of CFGs reachable from the entry point and the
// caller->callee edges discovered while reaching them.
type CallGraph struct {
	Reachable map[program.CFGID]struct{}
	Edges     map[program.CFGID][]program.CFGID
}

// IsReachable reports whether cfg was discovered during BuildCallGraph.
func (cg *CallGraph) IsReachable(cfg program.CFGID) bool {
	_, ok := cg.Reachable[cfg]
	return ok
}

// visitState tracks DFS coloring for cycle detection: unvisited CFGs are
// absent from the map, in-progress ones are false, finished ones are true.
type visitState map[program.CFGID]bool

// BuildCallGraph walks call nodes reachable from p.Entry and returns the
// call graph, or ErrRecursiveCallGraph if any CFG calls itself transitively.
//
// Complexity: O(V+E) over CFGs and call edges.
func BuildCallGraph(p *program.Program) (*CallGraph, error) {
	if !p.HasCFG(p.Entry) {
		return nil, ErrUnknownEntry
	}

	cg := &CallGraph{
		Reachable: make(map[program.CFGID]struct{}),
		Edges:     make(map[program.CFGID][]program.CFGID),
	}
	state := make(visitState)

	if err := visit(p, p.Entry, cg, state); err != nil {
		return nil, err
	}
	return cg, nil
}

func visit(p *program.Program, id program.CFGID, cg *CallGraph, state visitState) error {
	if done, seen := state[id]; seen {
		if !done {
			return fmt.Errorf("%w: cfg %d", ErrRecursiveCallGraph, id)
		}
		return nil
	}
	state[id] = false
	cg.Reachable[id] = struct{}{}

	cfg := p.CFG(id)
	if cfg == nil {
		return fmt.Errorf("%w: cfg %d", ErrUnknownEntry, id)
	}
	if !cfg.External {
		for _, n := range cfg.Nodes {
			if n.Kind != program.KindCall {
				continue
			}
			cg.Edges[id] = append(cg.Edges[id], n.Callee)
			if err := visit(p, n.Callee, cg, state); err != nil {
				return err
			}
		}
	}

	state[id] = true
	return nil
}
