package program

import (
	"testing"

	"github.com/wcet-estimator/wcet/attrstore"
)

func buildLoopCFG() CFG {
	c := NewCFG("f")
	h := c.AddNode(Node{Kind: KindBlock})
	b := c.AddNode(Node{Kind: KindBlock})
	x := c.AddNode(Node{Kind: KindBlock})
	c.SetStart(h)
	c.AddEnd(x)
	c.AddEdge(h, b)
	back, _ := c.AddEdge(b, h)
	c.AddEdge(h, x)

	nodes := map[NodeID]struct{}{h: {}, b: {}}
	loopID := c.AddLoop(h, nodes)
	c.Loops[loopID].BackEdges = []EdgeID{back}
	c.Loops[loopID].MaxIter = 5
	return c
}

func TestCFG_SuccessorsPredecessorsOrder(t *testing.T) {
	c := buildLoopCFG()
	succ := c.Successors(0) // h
	if len(succ) != 2 || succ[0] != 1 || succ[1] != 2 {
		t.Fatalf("Successors(h) = %v; want [b x]", succ)
	}
	pred := c.Predecessors(0) // h
	if len(pred) != 1 || pred[0] != 1 {
		t.Fatalf("Predecessors(h) = %v; want [b]", pred)
	}
}

func TestCFG_IsBackEdge(t *testing.T) {
	c := buildLoopCFG()
	if !c.IsBackEdge(1) {
		t.Fatalf("edge 1 (b->h) should be a back-edge")
	}
	if c.IsBackEdge(0) {
		t.Fatalf("edge 0 (h->b) should not be a back-edge")
	}
}

func TestCFG_IsEnd(t *testing.T) {
	c := buildLoopCFG()
	if !c.IsEnd(2) {
		t.Fatalf("node x should be an end node")
	}
	if c.IsEnd(0) {
		t.Fatalf("node h should not be an end node")
	}
}

func TestLoop_IsNestedIn(t *testing.T) {
	outer := Loop{Nodes: map[NodeID]struct{}{0: {}, 1: {}, 2: {}}}
	inner := Loop{Nodes: map[NodeID]struct{}{1: {}}}
	if !inner.IsNestedIn(&outer) {
		t.Fatalf("inner should nest in outer")
	}
	if outer.IsNestedIn(&inner) {
		t.Fatalf("outer should not nest in inner")
	}
}

func TestProgram_CloneIsIndependent(t *testing.T) {
	p := NewProgram()
	cfgID := p.AddCFG(buildLoopCFG())
	p.Entry = cfgID

	addr := uint64(0x1000)
	p.CFGs[cfgID].Instrs = append(p.CFGs[cfgID].Instrs, Instruction{Opcode: "add", IsCode: true, Address: &addr})
	p.Attrs.Set(NodeEntity(cfgID, 0), "frequency", attrstore.IntValue(7))

	clone, err := p.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	// Mutate the clone; the source must be unaffected.
	*clone.CFGs[0].Instrs[0].Address = 0xDEAD
	if *p.CFGs[0].Instrs[0].Address != 0x1000 {
		t.Fatalf("source instruction address leaked clone mutation")
	}

	v, err := clone.Attrs.Get(NodeEntity(cfgID, 0), "frequency")
	if err != nil {
		t.Fatalf("cloned attribute missing: %v", err)
	}
	if got, _ := v.Int(); got != 7 {
		t.Fatalf("cloned frequency = %d; want 7", got)
	}
}
