package callcheck

import (
	"errors"
	"testing"

	"github.com/wcet-estimator/wcet/program"
)

func addr(a uint64) *uint64 { return &a }

func oneBlockCFG(name string, opAddr uint64) (program.CFG, program.CFGID) {
	cfg := program.NewCFG(name)
	i := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(opAddr)})
	n := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{i}})
	cfg.SetStart(n)
	cfg.AddEnd(n)
	return cfg, 0
}

func TestBuildCallGraph_Acyclic(t *testing.T) {
	p := program.NewProgram()
	fCFG, _ := oneBlockCFG("f", 0x1000)
	fID := p.AddCFG(fCFG)

	mainCFG := program.NewCFG("main")
	callIdx := mainCFG.AddInstruction(program.Instruction{Opcode: "call", IsCode: true, Address: addr(0x2000)})
	callNode := mainCFG.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{callIdx}, Callee: fID})
	mainCFG.SetStart(callNode)
	mainCFG.AddEnd(callNode)
	mainID := p.AddCFG(mainCFG)
	p.Entry = mainID

	cg, err := BuildCallGraph(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cg.IsReachable(fID) || !cg.IsReachable(mainID) {
		t.Fatalf("expected both CFGs reachable")
	}
}

func TestBuildCallGraph_RejectsRecursion(t *testing.T) {
	p := program.NewProgram()

	fCFG := program.NewCFG("f")
	callIdx := fCFG.AddInstruction(program.Instruction{Opcode: "call", IsCode: true, Address: addr(0x3000)})
	fID := program.CFGID(0)
	callNode := fCFG.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{callIdx}, Callee: fID})
	fCFG.SetStart(callNode)
	fCFG.AddEnd(callNode)
	p.AddCFG(fCFG)
	p.Entry = fID

	_, err := BuildCallGraph(p)
	if !errors.Is(err, ErrRecursiveCallGraph) {
		t.Fatalf("expected ErrRecursiveCallGraph, got %v", err)
	}
}

func TestCheckProgram_RejectsMissingAddress(t *testing.T) {
	p := program.NewProgram()
	cfg := program.NewCFG("f")
	i := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true})
	n := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{i}})
	cfg.SetStart(n)
	cfg.AddEnd(n)
	p.AddCFG(cfg)
	p.Entry = 0

	err := CheckProgram(p)
	if !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("expected ErrMissingAddress, got %v", err)
	}
}

func TestCheckProgram_RejectsMissingMaxIter(t *testing.T) {
	p := program.NewProgram()
	cfg := program.NewCFG("f")
	i := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0x10)})
	n := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{i}})
	cfg.SetStart(n)
	cfg.AddEnd(n)
	if _, err := cfg.AddEdge(n, n); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	cfg.AddLoop(n, map[program.NodeID]struct{}{n: {}})
	p.AddCFG(cfg)
	p.Entry = 0

	err := CheckProgram(p)
	if !errors.Is(err, ErrMissingMaxIter) {
		t.Fatalf("expected ErrMissingMaxIter, got %v", err)
	}
}

func TestBuildBackedgeSet_ExcludesDeadCFGs(t *testing.T) {
	p := program.NewProgram()

	live := program.NewCFG("live")
	i := live.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0x20)})
	n := live.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{i}})
	live.SetStart(n)
	live.AddEnd(n)
	eid, _ := live.AddEdge(n, n)
	lid := live.AddLoop(n, map[program.NodeID]struct{}{n: {}})
	live.Loop(lid).BackEdges = []program.EdgeID{eid}
	live.Loop(lid).MaxIter = 3
	liveID := p.AddCFG(live)
	p.Entry = liveID

	dead := program.NewCFG("dead")
	di := dead.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0x30)})
	dn := dead.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{di}})
	dead.SetStart(dn)
	dead.AddEnd(dn)
	deid, _ := dead.AddEdge(dn, dn)
	dlid := dead.AddLoop(dn, map[program.NodeID]struct{}{dn: {}})
	dead.Loop(dlid).BackEdges = []program.EdgeID{deid}
	dead.Loop(dlid).MaxIter = 3
	p.AddCFG(dead)

	cg, err := BuildCallGraph(p)
	if err != nil {
		t.Fatalf("BuildCallGraph: %v", err)
	}
	bs := BuildBackedgeSet(p, cg)
	if !bs.IsBackEdge(liveID, eid) {
		t.Fatalf("expected live back-edge to be in the set")
	}
	if len(bs) != 1 {
		t.Fatalf("expected only the live CFG's back-edges, got %d entries", len(bs))
	}
}
