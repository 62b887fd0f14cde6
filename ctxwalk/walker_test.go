package ctxwalk

import (
	"testing"

	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
)

func addr(a uint64) *uint64 { return &a }

func buildMainCallsF() (*program.Program, *calltree.Tree, program.NodeID, program.NodeID) {
	p := program.NewProgram()

	f := program.NewCFG("f")
	fi := f.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0x100)})
	fn := f.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{fi}})
	f.SetStart(fn)
	f.AddEnd(fn)
	fID := p.AddCFG(f)

	main := program.NewCFG("main")
	ci := main.AddInstruction(program.Instruction{Opcode: "call", IsCode: true, Address: addr(0x200)})
	callNode := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{ci}, Callee: fID})
	ri := main.AddInstruction(program.Instruction{Opcode: "ret", IsCode: true, Address: addr(0x204)})
	retNode := main.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{ri}})
	main.SetStart(callNode)
	main.AddEnd(retNode)
	if _, err := main.AddEdge(callNode, retNode); err != nil {
		panic(err)
	}
	mainID := p.AddCFG(main)
	p.Entry = mainID

	tree := calltree.NewTree(p)
	if err := tree.Initialise(mainID); err != nil {
		panic(err)
	}
	return p, tree, callNode, retNode
}

func TestSuccessors_CallEntersCallee(t *testing.T) {
	p, tree, callNode, _ := buildMainCallsF()
	succs, err := Successors(p, tree, ContextualNode{Ctx: calltree.RootContext, Node: callNode})
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if len(succs) != 1 {
		t.Fatalf("expected exactly one successor into the callee, got %d", len(succs))
	}
	if succs[0].Ctx == calltree.RootContext {
		t.Fatalf("expected a callee context distinct from root")
	}
}

func TestSuccessors_ReturnCrossesBack(t *testing.T) {
	p, tree, callNode, retNode := buildMainCallsF()
	calleeCtx, err := tree.GetCalleeContext(calltree.RootContext, callNode)
	if err != nil {
		t.Fatalf("GetCalleeContext: %v", err)
	}
	fCFG := p.CFG(program.CFGID(0))
	succs, err := Successors(p, tree, ContextualNode{Ctx: calleeCtx, Node: fCFG.Start})
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if len(succs) != 1 || succs[0].Ctx != calltree.RootContext || succs[0].Node != retNode {
		t.Fatalf("expected return to main's post-call node, got %+v", succs)
	}
}

func TestPredecessors_IsDualOfSuccessors(t *testing.T) {
	p, tree, callNode, retNode := buildMainCallsF()
	preds, err := Predecessors(p, tree, ContextualNode{Ctx: calltree.RootContext, Node: retNode})
	if err != nil {
		t.Fatalf("Predecessors: %v", err)
	}
	found := false
	calleeCtx, _ := tree.GetCalleeContext(calltree.RootContext, callNode)
	for _, pr := range preds {
		if pr.Ctx == calleeCtx {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a predecessor back from the callee's end node, got %+v", preds)
	}
}

func TestDiscover_ReachesCalleeAndReturnsToCaller(t *testing.T) {
	p, tree, callNode, retNode := buildMainCallsF()
	seed, err := InitWork(p, tree)
	if err != nil {
		t.Fatalf("InitWork: %v", err)
	}
	reached, err := Discover(seed, func(cn ContextualNode) ([]ContextualNode, error) {
		return Successors(p, tree, cn)
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	wantSeed := ContextualNode{Ctx: calltree.RootContext, Node: callNode}
	wantRet := ContextualNode{Ctx: calltree.RootContext, Node: retNode}
	seenSeed, seenRet := false, false
	for _, r := range reached {
		if r == wantSeed {
			seenSeed = true
		}
		if r == wantRet {
			seenRet = true
		}
	}
	if !seenSeed || !seenRet {
		t.Fatalf("expected to discover both the call node and the post-call node, got %v", reached)
	}
}
