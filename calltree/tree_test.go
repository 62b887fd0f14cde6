package calltree

import (
	"testing"

	"github.com/wcet-estimator/wcet/program"
)

func addr(a uint64) *uint64 { return &a }

func buildMainCallsFTwice() *program.Program {
	p := program.NewProgram()

	f := program.NewCFG("f")
	fi := f.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0x100)})
	fn := f.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{fi}})
	f.SetStart(fn)
	f.AddEnd(fn)
	fID := p.AddCFG(f)

	main := program.NewCFG("main")
	c1i := main.AddInstruction(program.Instruction{Opcode: "call", IsCode: true, Address: addr(0x200)})
	c1 := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{c1i}, Callee: fID})
	c2i := main.AddInstruction(program.Instruction{Opcode: "call", IsCode: true, Address: addr(0x204)})
	c2 := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{c2i}, Callee: fID})
	main.SetStart(c1)
	main.AddEnd(c2)
	if _, err := main.AddEdge(c1, c2); err != nil {
		panic(err)
	}
	mainID := p.AddCFG(main)
	p.Entry = mainID
	return p
}

func TestInitialise_TwoCallSitesTwoContexts(t *testing.T) {
	p := buildMainCallsFTwice()
	tree := NewTree(p)
	if err := tree.Initialise(p.Entry); err != nil {
		t.Fatalf("Initialise: %v", err)
	}

	fID := program.CFGID(0)
	ctxs := tree.ContextList(fID)
	if len(ctxs) != 2 {
		t.Fatalf("expected 2 contexts for f, got %d", len(ctxs))
	}

	mainCtxs := tree.ContextList(p.Entry)
	if len(mainCtxs) != 1 || mainCtxs[0] != RootContext {
		t.Fatalf("expected exactly the root context for main, got %v", mainCtxs)
	}

	mainCFG := p.CFG(p.Entry)
	c1 := program.NodeID(0)
	c2 := program.NodeID(1)
	ctx1, err := tree.GetCalleeContext(RootContext, c1)
	if err != nil {
		t.Fatalf("GetCalleeContext(c1): %v", err)
	}
	ctx2, err := tree.GetCalleeContext(RootContext, c2)
	if err != nil {
		t.Fatalf("GetCalleeContext(c2): %v", err)
	}
	if ctx1 == ctx2 {
		t.Fatalf("expected distinct contexts per call site")
	}
	_ = mainCFG
}

func TestCallerInLoop(t *testing.T) {
	p := program.NewProgram()

	f := program.NewCFG("f")
	fi := f.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0x300)})
	fn := f.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{fi}})
	f.SetStart(fn)
	f.AddEnd(fn)
	fID := p.AddCFG(f)

	main := program.NewCFG("main")
	ci := main.AddInstruction(program.Instruction{Opcode: "call", IsCode: true, Address: addr(0x400)})
	callNode := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{ci}, Callee: fID})
	main.SetStart(callNode)
	main.AddEnd(callNode)
	if _, err := main.AddEdge(callNode, callNode); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	lid := main.AddLoop(callNode, map[program.NodeID]struct{}{callNode: {}})
	main.Loop(lid).MaxIter = 4
	mainID := p.AddCFG(main)
	p.Entry = mainID

	tree := NewTree(p)
	if err := tree.Initialise(p.Entry); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	fCtx, err := tree.GetCalleeContext(RootContext, callNode)
	if err != nil {
		t.Fatalf("GetCalleeContext: %v", err)
	}
	if !tree.CallerInLoop(fCtx) {
		t.Fatalf("expected f's context to report its caller in a loop")
	}
	if tree.CallerInLoop(RootContext) {
		t.Fatalf("root context has no caller, expected false")
	}
}
