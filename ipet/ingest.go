// File: ingest.go
// Role: Run and Apply: drive the solver over a rendered model and route
// the solution back into program attributes.

package ipet

import (
	"context"

	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
	"github.com/wcet-estimator/wcet/solverio"
)

// Run builds, renders, solves and ingests in one step: the usual shape
// the orchestrator's IPET pass takes.
func Run(ctx context.Context, p *program.Program, tree *calltree.Tree, solver solverio.Solver, opts Options) (int64, error) {
	m, err := BuildLP(p, tree, opts)
	if err != nil {
		return 0, err
	}
	sol, err := solver.Solve(ctx, Render(m, opts.SolverKind))
	if err != nil {
		return 0, err
	}
	if err := Apply(p, m, sol, opts); err != nil {
		return 0, err
	}
	return sol.Objective, nil
}

// Apply writes the solved objective (the WCET bound) onto the entry CFG
// and, when requested, each block's per-context frequency attribute.
func Apply(p *program.Program, m *Model, sol solverio.Solution, opts Options) error {
	if opts.AttachWCET {
		p.Attrs.Set(program.CFGEntity(p.Entry), AttrWCET, attrstore.IntValue(sol.Objective))
	}
	if !opts.GenerateNodeFreq {
		return nil
	}
	for _, nv := range m.NodeVars {
		freq, ok := sol.Values[nv.Name]
		if !ok {
			continue
		}
		p.Attrs.Set(program.NodeEntity(nv.CFG, nv.Node), FrequencyAttr(nv.Ctx), attrstore.IntValue(freq))
	}
	return nil
}

// Frequency reads back a block's solved per-context frequency, if any.
func Frequency(p *program.Program, cfgID program.CFGID, n program.NodeID, ctx calltree.ContextID) (int64, bool) {
	v, err := p.Attrs.Get(program.NodeEntity(cfgID, n), FrequencyAttr(ctx))
	if err != nil {
		return 0, false
	}
	freq, _ := v.Int()
	return freq, true
}
