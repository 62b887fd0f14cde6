package program_test

import (
	"fmt"

	"github.com/wcet-estimator/wcet/program"
)

// ExampleSynthLoop shows the synthetic-topology builder producing a
// bounded loop ready for analysis fixtures.
func ExampleSynthLoop() {
	p, err := program.SynthLoop(5, program.WithInstrsPerBlock(2))
	if err != nil {
		fmt.Println(err)
		return
	}
	cfg := p.CFG(p.Entry)
	fmt.Println("nodes:", len(cfg.Nodes))
	fmt.Println("maxiter:", cfg.Loops[0].MaxIter)
	// Output:
	// nodes: 4
	// maxiter: 5
}
