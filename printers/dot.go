// File: dot.go
// Role: DOTPrint, one digraph cluster per CFG with call edges across
// clusters.

package printers

import (
	"fmt"
	"io"

	"github.com/wcet-estimator/wcet/program"
)

func nodeName(cfg int, n program.NodeID) string {
	return fmt.Sprintf("n%d_%d", cfg, n)
}

// DOTPrint writes p as a Graphviz digraph: intra-CFG edges solid, call
// edges dashed.
func DOTPrint(w io.Writer, p *program.Program) error {
	if _, err := fmt.Fprintln(w, "digraph program {"); err != nil {
		return err
	}
	for ci := range p.CFGs {
		cfg := &p.CFGs[ci]
		fmt.Fprintf(w, "  subgraph cluster_%d {\n    label=%q;\n", ci, cfg.Name)
		for ni := range cfg.Nodes {
			label := fmt.Sprintf("%s:%d", cfg.Name, ni)
			shape := "box"
			if cfg.Nodes[ni].Kind == program.KindCall {
				shape = "ellipse"
			}
			fmt.Fprintf(w, "    %s [label=%q shape=%s];\n", nodeName(ci, program.NodeID(ni)), label, shape)
		}
		for _, e := range cfg.Edges {
			fmt.Fprintf(w, "    %s -> %s;\n", nodeName(ci, e.Src), nodeName(ci, e.Dst))
		}
		fmt.Fprintln(w, "  }")
	}
	for ci := range p.CFGs {
		cfg := &p.CFGs[ci]
		for ni := range cfg.Nodes {
			node := &cfg.Nodes[ni]
			if node.Kind != program.KindCall || !p.HasCFG(node.Callee) {
				continue
			}
			callee := p.CFG(node.Callee)
			if callee.External || len(callee.Nodes) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s -> %s [style=dashed];\n",
				nodeName(ci, program.NodeID(ni)), nodeName(int(node.Callee), callee.Start))
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
