package icache

import (
	"testing"

	"github.com/wcet-estimator/wcet/attrstore"
	"github.com/wcet-estimator/wcet/cachedom"
	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
)

func addr(a uint64) *uint64 { return &a }

// straightLineCFG builds a single basic block with one code instruction per
// given address, in order; addresses may repeat.
func straightLineCFG(addrs []uint64) (program.CFG, program.NodeID) {
	cfg := program.NewCFG("f")
	var instrs []program.InstrID
	for _, a := range addrs {
		i := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(a)})
		instrs = append(instrs, i)
	}
	n := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: instrs})
	cfg.SetStart(n)
	cfg.AddEnd(n)
	return cfg, n
}

func buildProgram(addrs []uint64) (*program.Program, program.CFGID, program.NodeID) {
	p := program.NewProgram()
	cfg, n := straightLineCFG(addrs)
	id := p.AddCFG(cfg)
	p.Entry = id
	return p, id, n
}

func analyzeOneLevel(t *testing.T, p *program.Program, cfg LevelConfig) (*calltree.Tree, []program.InstrID) {
	t.Helper()
	if err := callcheck.CheckProgram(p); err != nil {
		t.Fatalf("CheckProgram: %v", err)
	}
	cg, err := callcheck.BuildCallGraph(p)
	if err != nil {
		t.Fatalf("BuildCallGraph: %v", err)
	}
	backedges := callcheck.BuildBackedgeSet(p, cg)

	tree := calltree.NewTree(p)
	if err := tree.Initialise(p.Entry); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	if err := Analyze(p, tree, backedges, cfg); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return tree, p.CFG(p.Entry).Nodes[p.CFG(p.Entry).Start].Instrs
}

func chmcOf(t *testing.T, p *program.Program, cfgID program.CFGID, instrID program.InstrID, ctxStr string, level int) cachedom.CHMC {
	t.Helper()
	name := attrstore.CtxName(cachedom.ICacheCHMCBase(level), ctxStr)
	v, err := p.Attrs.Get(program.InstrEntity(cfgID, instrID), name)
	if err != nil {
		t.Fatalf("missing CHMC for instr %d: %v", instrID, err)
	}
	i, _ := v.Int()
	return cachedom.CHMC(i)
}

// TestAnalyze_StraightLineDistinctBlocksAllUnclassified: four distinct cache
// lines accessed once each in a fully-associative one-set cache. With no
// repeat access, Must never proves presence and every instruction ends up
// unclassified (NC), not a proof of either hit or miss.
func TestAnalyze_StraightLineDistinctBlocksAllUnclassified(t *testing.T) {
	lineSize := 16
	addrs := []uint64{0, uint64(lineSize), uint64(2 * lineSize), uint64(3 * lineSize)}
	p, entry, _ := buildProgram(addrs)

	cfg := LevelConfig{
		Level: 1, NSets: 1, LineSize: lineSize, Associativity: 4,
		Policy: cachedom.PolicyLRU, RunMust: true,
	}
	tree, instrs := analyzeOneLevel(t, p, cfg)
	rootCtx, _ := tree.Get(calltree.RootContext)

	for _, instrID := range instrs {
		got := chmcOf(t, p, entry, instrID, rootCtx.StringID(), 1)
		if got != cachedom.CHMCNotClassified {
			t.Errorf("instr %d: expected NC (first access to each block), got %v", instrID, got)
		}
	}
}

// TestAnalyze_RepeatedAccessHitsAfterFirst exercises the "miss then hits"
// shape directly: the same address accessed twice in sequence. Must proves
// the second access present, so it classifies AH; the first access has no
// prior state to prove presence from and is left NC.
func TestAnalyze_RepeatedAccessHitsAfterFirst(t *testing.T) {
	lineSize := 16
	p, entry, _ := buildProgram([]uint64{0, 0})

	cfg := LevelConfig{
		Level: 1, NSets: 1, LineSize: lineSize, Associativity: 2,
		Policy: cachedom.PolicyLRU, RunMust: true,
	}
	tree, instrs := analyzeOneLevel(t, p, cfg)
	rootCtx, _ := tree.Get(calltree.RootContext)

	if len(instrs) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(instrs))
	}
	if got := chmcOf(t, p, entry, instrs[0], rootCtx.StringID(), 1); got != cachedom.CHMCNotClassified {
		t.Errorf("first access: expected NC, got %v", got)
	}
	if got := chmcOf(t, p, entry, instrs[1], rootCtx.StringID(), 1); got != cachedom.CHMCAlwaysHit {
		t.Errorf("second access: expected AH, got %v", got)
	}
}

// TestAnalyze_PerfectCacheMarksEveryAccessAlwaysHit exercises the Perfect
// shortcut: every code instruction is AH regardless of address pattern, and
// next-level CAC is entirely N.
func TestAnalyze_PerfectCacheMarksEveryAccessAlwaysHit(t *testing.T) {
	p, entry, _ := buildProgram([]uint64{0, 16, 32})
	cfg := LevelConfig{Level: 1, NSets: 1, LineSize: 16, Associativity: 1, Policy: cachedom.PolicyLRU, Perfect: true}
	tree, instrs := analyzeOneLevel(t, p, cfg)
	rootCtx, _ := tree.Get(calltree.RootContext)

	for _, instrID := range instrs {
		if got := chmcOf(t, p, entry, instrID, rootCtx.StringID(), 1); got != cachedom.CHMCAlwaysHit {
			t.Errorf("instr %d: expected AH under a perfect cache, got %v", instrID, got)
		}
		name := attrstore.CtxName(cachedom.ICacheCACBase(2), rootCtx.StringID())
		v, err := p.Attrs.Get(program.InstrEntity(entry, instrID), name)
		if err != nil {
			t.Fatalf("missing level-2 CAC: %v", err)
		}
		i, _ := v.Int()
		if cachedom.CAC(i) != cachedom.CACNever {
			t.Errorf("instr %d: expected level-2 CAC=N, got %v", instrID, cachedom.CAC(i))
		}
	}
}

// TestAnalyze_MayProvesAlwaysMissOnCapacityOverflow exercises the May
// domain: two distinct blocks alternate (0, 16, 0) in the same one-slot set
// of a one-way cache, so the May analysis proves the third access (block 0
// again) can never find its block present.
func TestAnalyze_MayProvesAlwaysMissOnCapacityOverflow(t *testing.T) {
	lineSize := 16
	p, entry, _ := buildProgram([]uint64{0, uint64(lineSize), 0})
	cfg := LevelConfig{
		Level: 1, NSets: 1, LineSize: lineSize, Associativity: 1,
		Policy: cachedom.PolicyLRU, RunMust: true, RunMay: true,
	}
	tree, instrs := analyzeOneLevel(t, p, cfg)
	rootCtx, _ := tree.Get(calltree.RootContext)

	if got := chmcOf(t, p, entry, instrs[2], rootCtx.StringID(), 1); got != cachedom.CHMCAlwaysMiss {
		t.Errorf("third access: expected AM once May proves block 0 evicted, got %v", got)
	}
}

// loopProgram builds pre -> h -> b -> h (back-edge), h -> x, with loop
// {h, b} bounded at maxiter. Instruction addresses are per node so tests
// control which blocks share a cache line.
func loopProgram(t *testing.T, addrs [4]uint64, maxiter int) (*program.Program, program.CFGID, [4]program.NodeID) {
	t.Helper()
	p := program.NewProgram()
	cfg := program.NewCFG("main")
	var nodes [4]program.NodeID
	for i, a := range addrs {
		id := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(a)})
		nodes[i] = cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{id}})
	}
	pre, h, b, x := nodes[0], nodes[1], nodes[2], nodes[3]
	if _, err := cfg.AddEdge(pre, h); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if _, err := cfg.AddEdge(h, b); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	back, err := cfg.AddEdge(b, h)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if _, err := cfg.AddEdge(h, x); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	cfg.SetStart(pre)
	cfg.AddEnd(x)
	lid := cfg.AddLoop(h, map[program.NodeID]struct{}{h: {}, b: {}})
	cfg.Loop(lid).BackEdges = []program.EdgeID{back}
	cfg.Loop(lid).MaxIter = maxiter

	id := p.AddCFG(cfg)
	p.Entry = id
	return p, id, nodes
}

// TestAnalyze_LoopBodyEvictionDefeatsMustProof: the pre-header fetches
// line A and the loop head refetches it, but the loop body touches line B
// in the same one-way set. Once the back-edge joins in (phase 2), the
// head's in-state is the intersection of {A} (from the pre-header) and
// {B} (around the loop), so A must NOT classify as always-hit.
func TestAnalyze_LoopBodyEvictionDefeatsMustProof(t *testing.T) {
	lineSize := 16
	p, entry, nodes := loopProgram(t, [4]uint64{0, 0, uint64(lineSize), uint64(lineSize)}, 5)

	cfg := LevelConfig{
		Level: 1, NSets: 1, LineSize: lineSize, Associativity: 1,
		Policy: cachedom.PolicyLRU, RunMust: true,
	}
	tree, _ := analyzeOneLevel(t, p, cfg)
	rootCtx, _ := tree.Get(calltree.RootContext)

	hInstr := p.CFG(entry).Nodes[nodes[1]].Instrs[0]
	if got := chmcOf(t, p, entry, hInstr, rootCtx.StringID(), 1); got == cachedom.CHMCAlwaysHit {
		t.Fatalf("loop head's fetch of line A classified AH although the body evicts A every iteration")
	}
}

// TestAnalyze_PersistenceProvesFirstMissInLoop: a single-block self-loop
// refetching one line. Must cannot prove a hit (the back-edge join meets
// the pre-header's state, which holds only the other line) but persistence
// proves the line is never
// evicted while the loop runs, so the classification is first-miss.
func TestAnalyze_PersistenceProvesFirstMissInLoop(t *testing.T) {
	lineSize := 16
	p := program.NewProgram()
	cfg := program.NewCFG("main")
	preI := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(uint64(lineSize))})
	sI := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(0)})
	xI := cfg.AddInstruction(program.Instruction{Opcode: "nop", IsCode: true, Address: addr(uint64(lineSize))})
	pre := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{preI}})
	s := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{sI}})
	x := cfg.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{xI}})
	if _, err := cfg.AddEdge(pre, s); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	back, err := cfg.AddEdge(s, s)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if _, err := cfg.AddEdge(s, x); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	cfg.SetStart(pre)
	cfg.AddEnd(x)
	lid := cfg.AddLoop(s, map[program.NodeID]struct{}{s: {}})
	cfg.Loop(lid).BackEdges = []program.EdgeID{back}
	cfg.Loop(lid).MaxIter = 10
	entry := p.AddCFG(cfg)
	p.Entry = entry

	lcfg := LevelConfig{
		Level: 1, NSets: 1, LineSize: lineSize, Associativity: 1,
		Policy: cachedom.PolicyLRU, RunMust: true, RunPersistence: true,
	}
	tree, _ := analyzeOneLevel(t, p, lcfg)
	rootCtx, _ := tree.Get(calltree.RootContext)

	if got := chmcOf(t, p, entry, sI, rootCtx.StringID(), 1); got != cachedom.CHMCFirstMiss {
		t.Fatalf("loop block's only line should classify FM, got %v", got)
	}
}

// TestAnalyze_RejectsUnsupportedMayPolicy exercises the fail-fast rule for
// a May request under Random, which the ACS-shortening table marks
// unsupported at any associativity.
func TestAnalyze_RejectsUnsupportedMayPolicy(t *testing.T) {
	p, _, _ := buildProgram([]uint64{0})
	if err := callcheck.CheckProgram(p); err != nil {
		t.Fatalf("CheckProgram: %v", err)
	}
	cg, _ := callcheck.BuildCallGraph(p)
	backedges := callcheck.BuildBackedgeSet(p, cg)
	tree := calltree.NewTree(p)
	if err := tree.Initialise(p.Entry); err != nil {
		t.Fatalf("Initialise: %v", err)
	}

	cfg := LevelConfig{Level: 1, NSets: 1, LineSize: 16, Associativity: 2, Policy: cachedom.PolicyRandom, RunMay: true}
	err := Analyze(p, tree, backedges, cfg)
	if err != ErrUnsupportedPolicyForMay {
		t.Fatalf("expected ErrUnsupportedPolicyForMay, got %v", err)
	}
}
