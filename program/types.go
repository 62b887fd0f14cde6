// File: types.go
// Role: Core arena-indexed entity types (CFGID/NodeID/EdgeID/InstrID/LoopID,
// Instruction, Node, Edge, Loop, CFG, Program) and sentinel errors.
// AI-HINT (file):
//   - Node is a tagged union: check Node.Kind before reading Node.Callee or Node.Instrs.
//   - NodeID/EdgeID/InstrID/LoopID are indices into their owning CFG's arena, not global ids.

package program

import (
	"errors"

	"github.com/wcet-estimator/wcet/attrstore"
)

// Sentinel errors surfaced by program construction and query helpers.
var (
	ErrVertexNotFound      = errors.New("program: node not found")
	ErrEdgeNotFound        = errors.New("program: edge not found")
	ErrCFGNotFound         = errors.New("program: cfg not found")
	ErrInstructionNotFound = errors.New("program: instruction not found")
	ErrLoopNotFound        = errors.New("program: loop not found")
	ErrNotACallNode        = errors.New("program: node is not a call node")
	ErrNoEntryPoint        = errors.New("program: entry point not set")
)

// CFGID indexes Program.CFGs.
type CFGID int32

// NodeID indexes CFG.Nodes.
type NodeID int32

// EdgeID indexes CFG.Edges.
type EdgeID int32

// InstrID indexes CFG.Instrs.
type InstrID int32

// LoopID indexes CFG.Loops.
type LoopID int32

// NodeKind distinguishes basic-block nodes from call nodes.
type NodeKind uint8

const (
	KindBlock NodeKind = iota
	KindCall
)

// Instruction is one machine instruction belonging to a basic block.
//
// Address is nil until the external loader (or a test fixture) assigns it;
// callcheck.CheckProgram rejects any CFG reachable in the call graph that
// still has a nil Address on an executed instruction.
type Instruction struct {
	Opcode  string
	IsCode  bool
	IsLoad  bool
	IsStore bool
	Address *uint64
}

// Node is a CFG vertex: either a non-empty ordered basic block, or a call
// node that additionally names a Callee CFG and otherwise behaves as a
// degenerate basic block for its caller.
//
// IsolatedNop marks a node whose body is a single architecture no-op; such
// nodes are skipped by the cache/timing analyses.
type Node struct {
	Kind        NodeKind
	Instrs      []InstrID // order matters: simulated in sequence by icache/dcache/timing
	Callee      CFGID     // meaningful only when Kind == KindCall
	IsolatedNop bool
}

// Edge is a directed (source, target) pair within one CFG.
type Edge struct {
	Src NodeID
	Dst NodeID
}

// Loop is a subset of a CFG's nodes with a distinguished head, a non-empty
// set of back-edges, and a required maxiter bound.
type Loop struct {
	Head      NodeID
	Nodes     map[NodeID]struct{}
	BackEdges []EdgeID
	MaxIter   int // 0 means "unset"; callcheck.CheckProgram rejects unset loops
	nestedIn  LoopID
	hasParent bool
}

// IsNestedIn reports whether l is nested inside other, i.e. l's node set
// is a (non-strict, in the |L|==1 self-loop edge case) subset of other's.
//
// Complexity: O(|l.Nodes|).
func (l *Loop) IsNestedIn(other *Loop) bool {
	if other == nil || len(l.Nodes) > len(other.Nodes) {
		return false
	}
	for n := range l.Nodes {
		if _, ok := other.Nodes[n]; !ok {
			return false
		}
	}
	return true
}

// CFG is an ordered set of nodes/edges/loops belonging to one function.
//
// External CFGs have no body (no Nodes); Empty CFGs have a body that
// performs no observable work. Both flags are read by callcheck and the
// cache/timing analyses to short-circuit work on them.
type CFG struct {
	Name     string
	Nodes    []Node
	Edges    []Edge
	Loops    []Loop
	Instrs   []Instruction
	Start    NodeID
	Ends     []NodeID
	External bool
	Empty    bool

	// succ/pred cache intra-CFG adjacency for O(1) traversal; AddEdge
	// appends to them and reindex() rebuilds them for Clone.
	succ map[NodeID][]NodeID
	pred map[NodeID][]NodeID
}

// Program is the top-level container: a set of CFGs, one designated entry
// CFG, and the shared attribute store.
type Program struct {
	CFGs  []CFG
	Entry CFGID
	Attrs *attrstore.Store
}
