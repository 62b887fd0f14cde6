// File: model.go
// Role: the LP model value (terms, constraints, variable registry) and
// CheckSolution, the constraint validator the tests drive candidate
// solutions through.

package ipet

import (
	"errors"
	"fmt"

	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
	"github.com/wcet-estimator/wcet/solverio"
)

var (
	// ErrNoNodes indicates the entry point reaches no basic block, so
	// there is nothing to enumerate paths over.
	ErrNoNodes = errors.New("ipet: entry point reaches no basic block")

	// ErrUnsatisfied indicates a candidate solution violates one of the
	// model's constraints.
	ErrUnsatisfied = errors.New("ipet: solution violates a model constraint")

	// ErrMissingNodeTime indicates pipeline mode was requested but a
	// block lacks its execution-time attributes; run the pipeline pass
	// before IPET with pipeline=on.
	ErrMissingNodeTime = errors.New("ipet: block missing execution time; run the pipeline pass first")
)

// Term is one coefficient*variable product.
type Term struct {
	Coeff int64
	Var   string
}

// ConstraintOp is the comparison of a linear constraint.
type ConstraintOp uint8

const (
	OpEq ConstraintOp = iota
	OpLe
)

// Constraint is sum(Terms) Op RHS.
type Constraint struct {
	Terms []Term
	Op    ConstraintOp
	RHS   int64
}

// NodeVar remembers which contextual block a total-frequency variable
// stands for, so Apply can route solved values back to attributes.
type NodeVar struct {
	Name string
	CFG  program.CFGID
	Node program.NodeID
	Ctx  calltree.ContextID
}

// Model is a maximisation ILP: objective terms, constraints, and the
// ordered list of integer variables to declare.
type Model struct {
	Objective   []Term
	Constraints []Constraint
	IntVars     []string
	NodeVars    []NodeVar
}

// addVar registers name as an integer variable, preserving first-add
// order so renders of the same model are byte-identical.
func (m *Model) addVar(name string) {
	m.IntVars = append(m.IntVars, name)
}

// CheckSolution verifies values against every constraint and returns the
// objective the assignment achieves. Used by tests to validate solver
// results (or hand-built candidates) without re-running the solver.
func (m *Model) CheckSolution(sol solverio.Solution) (int64, error) {
	for _, c := range m.Constraints {
		var sum int64
		for _, t := range c.Terms {
			sum += t.Coeff * sol.Values[t.Var]
		}
		switch c.Op {
		case OpEq:
			if sum != c.RHS {
				return 0, fmt.Errorf("%w: wanted = %d, got %d", ErrUnsatisfied, c.RHS, sum)
			}
		case OpLe:
			if sum > c.RHS {
				return 0, fmt.Errorf("%w: wanted <= %d, got %d", ErrUnsatisfied, c.RHS, sum)
			}
		}
	}
	var obj int64
	for _, t := range m.Objective {
		obj += t.Coeff * sol.Values[t.Var]
	}
	return obj, nil
}
