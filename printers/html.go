// File: html.go
// Role: HTMLPrint, a self-contained report page; colorize shades blocks
// by their solved root-context frequency.

package printers

import (
	"fmt"
	"html"
	"io"

	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/ipet"
	"github.com/wcet-estimator/wcet/program"
)

// HTMLPrint writes a single-page report of every CFG. With colorize set,
// blocks that executed more often in the solved path get a warmer
// background.
func HTMLPrint(w io.Writer, p *program.Program, colorize bool) error {
	if _, err := fmt.Fprintln(w, "<!DOCTYPE html><html><head><title>WCET report</title></head><body>"); err != nil {
		return err
	}

	wcet := int64(-1)
	if v, err := p.Attrs.Get(program.CFGEntity(p.Entry), ipet.AttrWCET); err == nil {
		wcet, _ = v.Int()
	}
	fmt.Fprintf(w, "<h1>WCET: %d</h1>\n", wcet)

	var maxFreq int64 = 1
	if colorize {
		for ci := range p.CFGs {
			for ni := range p.CFGs[ci].Nodes {
				if f, ok := ipet.Frequency(p, program.CFGID(ci), program.NodeID(ni), calltree.RootContext); ok && f > maxFreq {
					maxFreq = f
				}
			}
		}
	}

	for ci := range p.CFGs {
		cfg := &p.CFGs[ci]
		fmt.Fprintf(w, "<h2>%s</h2>\n<table border=\"1\">\n", html.EscapeString(cfg.Name))
		for ni := range cfg.Nodes {
			node := &cfg.Nodes[ni]
			style := ""
			freqCell := ""
			if f, ok := ipet.Frequency(p, program.CFGID(ci), program.NodeID(ni), calltree.RootContext); ok {
				freqCell = fmt.Sprintf("%d", f)
				if colorize && f > 0 {
					heat := 255 - int(155*f/maxFreq)
					style = fmt.Sprintf(" style=\"background-color:rgb(255,%d,%d)\"", heat, heat)
				}
			}
			kind := "block"
			if node.Kind == program.KindCall {
				kind = "call " + html.EscapeString(p.CFGs[node.Callee].Name)
			}
			fmt.Fprintf(w, "<tr%s><td>%d</td><td>%s</td><td>%d instrs</td><td>%s</td></tr>\n",
				style, ni, kind, len(node.Instrs), freqCell)
		}
		fmt.Fprintln(w, "</table>")
	}
	_, err := fmt.Fprintln(w, "</body></html>")
	return err
}
