// File: simple.go
// Role: SimplePrint, a terse per-CFG text dump with the solved WCET when
// present.

package printers

import (
	"fmt"
	"io"

	"github.com/wcet-estimator/wcet/ipet"
	"github.com/wcet-estimator/wcet/program"
)

// SimplePrint writes one line per CFG and one per node. When the IPET
// pass attached a WCET to the entry CFG it is printed first; a failed or
// skipped analysis prints the -1 marker instead.
func SimplePrint(w io.Writer, p *program.Program) error {
	wcet := int64(-1)
	if v, err := p.Attrs.Get(program.CFGEntity(p.Entry), ipet.AttrWCET); err == nil {
		wcet, _ = v.Int()
	}
	if _, err := fmt.Fprintf(w, "WCET: %d\n", wcet); err != nil {
		return err
	}

	for ci := range p.CFGs {
		cfg := &p.CFGs[ci]
		marker := ""
		if program.CFGID(ci) == p.Entry {
			marker = " (entry)"
		}
		fmt.Fprintf(w, "cfg %s%s: %d nodes, %d edges, %d loops\n", cfg.Name, marker, len(cfg.Nodes), len(cfg.Edges), len(cfg.Loops))
		for ni := range cfg.Nodes {
			node := &cfg.Nodes[ni]
			kind := "block"
			if node.Kind == program.KindCall {
				kind = "call -> " + p.CFGs[node.Callee].Name
			}
			fmt.Fprintf(w, "  node %d (%s): %d instrs\n", ni, kind, len(node.Instrs))
		}
	}
	return nil
}
