package ipet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
	"github.com/wcet-estimator/wcet/solverio"
)

func addr(a uint64) *uint64 { return &a }

func oneInstrNode(cfg *program.CFG, a uint64, kind program.NodeKind) program.NodeID {
	i := cfg.AddInstruction(program.Instruction{Opcode: "addi", IsCode: true, Address: addr(a)})
	return cfg.AddNode(program.Node{Kind: kind, Instrs: []program.InstrID{i}})
}

// loopProgram builds s -> h -> b -> h (back), h -> x with loop {h,b}
// bounded at maxiter.
func loopProgram(t *testing.T, maxiter int) (*program.Program, *calltree.Tree, program.CFGID, [4]program.NodeID) {
	t.Helper()
	p := program.NewProgram()
	cfg := program.NewCFG("main")
	s := oneInstrNode(&cfg, 0, program.KindBlock)
	h := oneInstrNode(&cfg, 4, program.KindBlock)
	b := oneInstrNode(&cfg, 8, program.KindBlock)
	x := oneInstrNode(&cfg, 12, program.KindBlock)
	_, err := cfg.AddEdge(s, h)
	require.NoError(t, err)
	_, err = cfg.AddEdge(h, b)
	require.NoError(t, err)
	back, err := cfg.AddEdge(b, h)
	require.NoError(t, err)
	_, err = cfg.AddEdge(h, x)
	require.NoError(t, err)
	cfg.SetStart(s)
	cfg.AddEnd(x)
	loop := cfg.AddLoop(h, map[program.NodeID]struct{}{h: {}, b: {}})
	cfg.Loop(loop).BackEdges = []program.EdgeID{back}
	cfg.Loop(loop).MaxIter = maxiter

	id := p.AddCFG(cfg)
	p.Entry = id
	tree := calltree.NewTree(p)
	require.NoError(t, tree.Initialise(id))
	return p, tree, id, [4]program.NodeID{s, h, b, x}
}

func firstNextSplit(vals map[string]int64, n program.NodeID, ctx calltree.ContextID, total int64) {
	vals[nodeVar(n, ctx)] = total
	if total > 0 {
		vals[nodeFirstVar(n, ctx)] = 1
		vals[nodeNextVar(n, ctx)] = total - 1
	}
}

// TestBuildLP_LoopBoundAdmitsExactIterationCount: the classic bounded
// loop. The frequency assignment h=6, b=5, x=1 satisfies every
// constraint and yields objective 13 (one unit per instruction, four
// blocks including the pre-header).
func TestBuildLP_LoopBoundAdmitsExactIterationCount(t *testing.T) {
	p, tree, _, nodes := loopProgram(t, 5)
	m, err := BuildLP(p, tree, Options{})
	require.NoError(t, err)

	vals := map[string]int64{
		edgeVar(nodes[0], nodes[1], calltree.RootContext): 1,
		edgeVar(nodes[1], nodes[2], calltree.RootContext): 5,
		edgeVar(nodes[2], nodes[1], calltree.RootContext): 5,
		edgeVar(nodes[1], nodes[3], calltree.RootContext): 1,
	}
	firstNextSplit(vals, nodes[0], calltree.RootContext, 1)
	firstNextSplit(vals, nodes[1], calltree.RootContext, 6)
	firstNextSplit(vals, nodes[2], calltree.RootContext, 5)
	firstNextSplit(vals, nodes[3], calltree.RootContext, 1)

	obj, err := m.CheckSolution(solverio.Solution{Values: vals})
	require.NoError(t, err)
	assert.Equal(t, int64(13), obj)
}

// TestBuildLP_LoopBoundRejectsOverrun: pushing the body to six
// iterations breaks the maxiter constraint.
func TestBuildLP_LoopBoundRejectsOverrun(t *testing.T) {
	p, tree, _, nodes := loopProgram(t, 5)
	m, err := BuildLP(p, tree, Options{})
	require.NoError(t, err)

	vals := map[string]int64{
		edgeVar(nodes[0], nodes[1], calltree.RootContext): 1,
		edgeVar(nodes[1], nodes[2], calltree.RootContext): 6,
		edgeVar(nodes[2], nodes[1], calltree.RootContext): 6,
		edgeVar(nodes[1], nodes[3], calltree.RootContext): 1,
	}
	firstNextSplit(vals, nodes[0], calltree.RootContext, 1)
	firstNextSplit(vals, nodes[1], calltree.RootContext, 7)
	firstNextSplit(vals, nodes[2], calltree.RootContext, 6)
	firstNextSplit(vals, nodes[3], calltree.RootContext, 1)

	_, err = m.CheckSolution(solverio.Solution{Values: vals})
	assert.ErrorIs(t, err, ErrUnsatisfied)
}

// callProgram: main is k1 -> k2, both call nodes invoking f (one block
// of three instructions), giving f two contexts.
func callProgram(t *testing.T) (*program.Program, *calltree.Tree, program.CFGID, program.CFGID, [2]program.NodeID) {
	t.Helper()
	p := program.NewProgram()

	f := program.NewCFG("f")
	var instrs []program.InstrID
	for i := 0; i < 3; i++ {
		instrs = append(instrs, f.AddInstruction(program.Instruction{Opcode: "addi", IsCode: true, Address: addr(uint64(0x100 + i*4))}))
	}
	fn := f.AddNode(program.Node{Kind: program.KindBlock, Instrs: instrs})
	f.SetStart(fn)
	f.AddEnd(fn)
	fid := p.AddCFG(f)

	main := program.NewCFG("main")
	i1 := main.AddInstruction(program.Instruction{Opcode: "jal", IsCode: true, Address: addr(0)})
	i2 := main.AddInstruction(program.Instruction{Opcode: "jal", IsCode: true, Address: addr(4)})
	k1 := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{i1}, Callee: fid})
	k2 := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{i2}, Callee: fid})
	_, err := main.AddEdge(k1, k2)
	require.NoError(t, err)
	main.SetStart(k1)
	main.AddEnd(k2)
	mid := p.AddCFG(main)
	p.Entry = mid

	tree := calltree.NewTree(p)
	require.NoError(t, tree.Initialise(mid))
	return p, tree, mid, fid, [2]program.NodeID{k1, k2}
}

// TestBuildLP_CallCouplingTiesCallerAndCallee: each call site executes
// once, so f's block executes once per context, and the objective counts
// f's three instructions twice on top of main's two call instructions.
func TestBuildLP_CallCouplingTiesCallerAndCallee(t *testing.T) {
	p, tree, _, fid, ks := callProgram(t)
	m, err := BuildLP(p, tree, Options{})
	require.NoError(t, err)

	fStart := p.CFG(fid).Start
	ctxs := tree.ContextList(fid)
	require.Len(t, ctxs, 2)

	vals := map[string]int64{
		edgeVar(ks[0], ks[1], calltree.RootContext): 1,
	}
	firstNextSplit(vals, ks[0], calltree.RootContext, 1)
	firstNextSplit(vals, ks[1], calltree.RootContext, 1)
	for _, c := range ctxs {
		firstNextSplit(vals, fStart, c, 1)
	}

	obj, err := m.CheckSolution(solverio.Solution{Values: vals})
	require.NoError(t, err)
	assert.Equal(t, int64(8), obj)

	// Dropping one callee execution must violate call coupling.
	vals[nodeVar(fStart, ctxs[1])] = 0
	vals[nodeFirstVar(fStart, ctxs[1])] = 0
	_, err = m.CheckSolution(solverio.Solution{Values: vals})
	assert.ErrorIs(t, err, ErrUnsatisfied)
}

// TestRender_Deterministic: rendering the same model twice is
// byte-identical, in both formats.
func TestRender_Deterministic(t *testing.T) {
	p, tree, _, _ := loopProgram(t, 5)
	m, err := BuildLP(p, tree, Options{})
	require.NoError(t, err)

	assert.Equal(t, Render(m, solverio.KindLPSolve), Render(m, solverio.KindLPSolve))
	assert.Equal(t, Render(m, solverio.KindCPLEX), Render(m, solverio.KindCPLEX))
	assert.Contains(t, Render(m, solverio.KindLPSolve), "MAX:")
	assert.Contains(t, Render(m, solverio.KindCPLEX), "Subject To")
}

// TestApply_WritesWCETAndFrequencies: the solved objective lands on the
// entry CFG and frequencies use the "_c<ctx>" attribute suffix.
func TestApply_WritesWCETAndFrequencies(t *testing.T) {
	p, tree, id, nodes := loopProgram(t, 5)
	m, err := BuildLP(p, tree, Options{GenerateNodeFreq: true, AttachWCET: true})
	require.NoError(t, err)

	sol := solverio.Solution{Objective: 13, Values: map[string]int64{
		nodeVar(nodes[1], calltree.RootContext): 6,
	}}
	require.NoError(t, Apply(p, m, sol, Options{GenerateNodeFreq: true, AttachWCET: true}))

	v, err := p.Attrs.Get(program.CFGEntity(id), AttrWCET)
	require.NoError(t, err)
	w, _ := v.Int()
	assert.Equal(t, int64(13), w)

	freq, ok := Frequency(p, id, nodes[1], calltree.RootContext)
	require.True(t, ok)
	assert.Equal(t, int64(6), freq)
	assert.Equal(t, "frequency_c0", FrequencyAttr(calltree.RootContext))
}
