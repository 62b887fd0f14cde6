// File: synth.go
// Role: synthetic CFG constructors for tests and benchmarks: functional
// options (address scheme, opcode scheme, block width) feeding small
// topology builders (straight line, bounded loop, call chain).
// Determinism:
//   - Node/edge/instruction emission order is by increasing index, so the
//     same options always produce an identical program.
// AI-HINT (file):
//   - Option constructors validate and panic on meaningless inputs;
//     builders themselves return sentinel errors and never panic.

package program

import (
	"errors"
	"strconv"
)

// ErrSynthTooSmall indicates a synthetic topology was asked for with
// fewer blocks than its shape needs.
var ErrSynthTooSmall = errors.New("program: synthetic topology needs more blocks")

// synthConfig collects the knobs SynthOption constructors set.
type synthConfig struct {
	addrBase  uint64
	addrStep  uint64
	opcodeFn  func(i int) string
	instrsPer int
}

// SynthOption customizes a synthetic program before construction begins.
type SynthOption func(*synthConfig)

// WithAddressScheme sets the base address and stride instructions are
// laid out with. Panics on a zero step: overlapping addresses would
// break every cache analysis invariant downstream.
func WithAddressScheme(base, step uint64) SynthOption {
	if step == 0 {
		panic("program: WithAddressScheme(step=0)")
	}
	return func(c *synthConfig) {
		c.addrBase = base
		c.addrStep = step
	}
}

// WithOpcodeScheme sets the opcode generator: instruction index -> opcode.
// Panics on nil.
func WithOpcodeScheme(fn func(int) string) SynthOption {
	if fn == nil {
		panic("program: WithOpcodeScheme(nil)")
	}
	return func(c *synthConfig) {
		c.opcodeFn = fn
	}
}

// WithInstrsPerBlock sets how many instructions each synthetic block
// carries. Panics on n < 1: analyses skip empty blocks and the fixture
// would test nothing.
func WithInstrsPerBlock(n int) SynthOption {
	if n < 1 {
		panic("program: WithInstrsPerBlock(<1)")
	}
	return func(c *synthConfig) {
		c.instrsPer = n
	}
}

func newSynthConfig(opts []SynthOption) *synthConfig {
	cfg := &synthConfig{
		addrStep:  4,
		opcodeFn:  func(int) string { return "addi" },
		instrsPer: 1,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// nextBlock appends one basic block of cfg.instrsPer code instructions at
// consecutive addresses.
func (c *synthConfig) nextBlock(cfg *CFG, instrIdx *int) NodeID {
	var instrs []InstrID
	for i := 0; i < c.instrsPer; i++ {
		a := c.addrBase + uint64(*instrIdx)*c.addrStep
		instrs = append(instrs, cfg.AddInstruction(Instruction{
			Opcode: c.opcodeFn(*instrIdx), IsCode: true, Address: &a,
		}))
		*instrIdx++
	}
	return cfg.AddNode(Node{Kind: KindBlock, Instrs: instrs})
}

// SynthStraightLine builds a program whose entry CFG is a chain of n
// blocks.
func SynthStraightLine(n int, opts ...SynthOption) (*Program, error) {
	if n < 1 {
		return nil, ErrSynthTooSmall
	}
	c := newSynthConfig(opts)

	p := NewProgram()
	cfg := NewCFG("main")
	idx := 0
	prev := c.nextBlock(&cfg, &idx)
	cfg.SetStart(prev)
	for i := 1; i < n; i++ {
		cur := c.nextBlock(&cfg, &idx)
		if _, err := cfg.AddEdge(prev, cur); err != nil {
			return nil, err
		}
		prev = cur
	}
	cfg.AddEnd(prev)
	p.Entry = p.AddCFG(cfg)
	return p, nil
}

// SynthLoop builds pre -> head -> body -> head (back-edge), head -> exit
// with the loop bounded at maxiter.
func SynthLoop(maxiter int, opts ...SynthOption) (*Program, error) {
	if maxiter < 1 {
		return nil, ErrSynthTooSmall
	}
	c := newSynthConfig(opts)

	p := NewProgram()
	cfg := NewCFG("main")
	idx := 0
	pre := c.nextBlock(&cfg, &idx)
	head := c.nextBlock(&cfg, &idx)
	body := c.nextBlock(&cfg, &idx)
	exit := c.nextBlock(&cfg, &idx)

	if _, err := cfg.AddEdge(pre, head); err != nil {
		return nil, err
	}
	if _, err := cfg.AddEdge(head, body); err != nil {
		return nil, err
	}
	back, err := cfg.AddEdge(body, head)
	if err != nil {
		return nil, err
	}
	if _, err := cfg.AddEdge(head, exit); err != nil {
		return nil, err
	}
	cfg.SetStart(pre)
	cfg.AddEnd(exit)

	lid := cfg.AddLoop(head, map[NodeID]struct{}{head: {}, body: {}})
	cfg.Loop(lid).BackEdges = []EdgeID{back}
	cfg.Loop(lid).MaxIter = maxiter

	p.Entry = p.AddCFG(cfg)
	return p, nil
}

// SynthCallChain builds main -> f1 -> ... -> fdepth, each callee a single
// block, each caller a single call node.
func SynthCallChain(depth int, opts ...SynthOption) (*Program, error) {
	if depth < 1 {
		return nil, ErrSynthTooSmall
	}
	c := newSynthConfig(opts)

	p := NewProgram()
	idx := 0

	// Leaf first so every caller can reference an existing callee id.
	var callee CFGID
	for level := depth; level >= 0; level-- {
		name := "main"
		if level > 0 {
			name = "f" + strconv.Itoa(level)
		}
		cfg := NewCFG(name)
		var n NodeID
		if level == depth {
			n = c.nextBlock(&cfg, &idx)
		} else {
			var instrs []InstrID
			a := c.addrBase + uint64(idx)*c.addrStep
			idx++
			instrs = append(instrs, cfg.AddInstruction(Instruction{Opcode: "jal", IsCode: true, Address: &a}))
			n = cfg.AddNode(Node{Kind: KindCall, Instrs: instrs, Callee: callee})
		}
		cfg.SetStart(n)
		cfg.AddEnd(n)
		callee = p.AddCFG(cfg)
	}
	p.Entry = callee
	return p, nil
}
