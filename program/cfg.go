// File: cfg.go
// Role: CFG construction (AddInstruction/AddNode/AddEdge/AddLoop) and
// deterministic adjacency queries (Successors/Predecessors).
// Determinism:
//   - Successors/Predecessors return nodes in edge-arena order (the order
//     edges were added), so every walk over the same CFG visits neighbors
//     identically.
// AI-HINT (file):
//   - AddEdge keeps succ/pred up to date itself; reindex() rebuilds them
//     for Clone(), which copies Edges instead of calling AddEdge per-edge.

package program

import "github.com/wcet-estimator/wcet/attrstore"

// NewCFG returns an empty CFG named name. Start/Ends are left zero-valued
// until the caller adds nodes and sets them explicitly (SetStart/AddEnd).
func NewCFG(name string) CFG {
	return CFG{
		Name: name,
		succ: make(map[NodeID][]NodeID),
		pred: make(map[NodeID][]NodeID),
	}
}

// AddInstruction appends instr to the CFG's instruction arena and returns
// its InstrID.
//
// Complexity: O(1) amortized.
func (c *CFG) AddInstruction(instr Instruction) InstrID {
	c.Instrs = append(c.Instrs, instr)
	return InstrID(len(c.Instrs) - 1)
}

// AddNode appends n to the node arena and returns its NodeID.
//
// Complexity: O(1) amortized.
func (c *CFG) AddNode(n Node) NodeID {
	id := NodeID(len(c.Nodes))
	c.Nodes = append(c.Nodes, n)
	return id
}

// AddEdge appends a (src,dst) edge and updates adjacency. src/dst must
// already exist in the node arena.
//
// Complexity: O(1) amortized.
func (c *CFG) AddEdge(src, dst NodeID) (EdgeID, error) {
	if int(src) >= len(c.Nodes) || int(dst) >= len(c.Nodes) {
		return 0, ErrVertexNotFound
	}
	id := EdgeID(len(c.Edges))
	c.Edges = append(c.Edges, Edge{Src: src, Dst: dst})
	if c.succ == nil {
		c.succ = make(map[NodeID][]NodeID)
	}
	if c.pred == nil {
		c.pred = make(map[NodeID][]NodeID)
	}
	c.succ[src] = append(c.succ[src], dst)
	c.pred[dst] = append(c.pred[dst], src)
	return id, nil
}

// SetStart designates start as the CFG's single entry node.
func (c *CFG) SetStart(start NodeID) { c.Start = start }

// AddEnd appends end to the CFG's set of end (exit) nodes.
func (c *CFG) AddEnd(end NodeID) { c.Ends = append(c.Ends, end) }

// Successors returns n's intra-CFG successors in edge-insertion order.
//
// Complexity: O(outdegree(n)).
func (c *CFG) Successors(n NodeID) []NodeID {
	return c.succ[n]
}

// Predecessors returns n's intra-CFG predecessors in edge-insertion order.
//
// Complexity: O(indegree(n)).
func (c *CFG) Predecessors(n NodeID) []NodeID {
	return c.pred[n]
}

// IsEnd reports whether n is one of the CFG's designated end nodes.
//
// Complexity: O(|Ends|).
func (c *CFG) IsEnd(n NodeID) bool {
	for _, e := range c.Ends {
		if e == n {
			return true
		}
	}
	return false
}

// reindex rebuilds succ/pred from Edges. Used by Clone, which copies the
// Edges slice directly instead of replaying AddEdge calls.
func (c *CFG) reindex() {
	c.succ = make(map[NodeID][]NodeID, len(c.Nodes))
	c.pred = make(map[NodeID][]NodeID, len(c.Nodes))
	for _, e := range c.Edges {
		c.succ[e.Src] = append(c.succ[e.Src], e.Dst)
		c.pred[e.Dst] = append(c.pred[e.Dst], e.Src)
	}
}

// AddCFG appends cfg to the program's CFG arena and returns its CFGID.
//
// Complexity: O(1) amortized.
func (p *Program) AddCFG(cfg CFG) CFGID {
	id := CFGID(len(p.CFGs))
	p.CFGs = append(p.CFGs, cfg)
	return id
}

// CFG returns a pointer to the CFG at id, or nil if id is out of range.
// Callers within this module trust id came from a prior AddCFG/lookup and
// use the pointer directly; external callers should check CFGID bounds
// first via Program.HasCFG.
func (p *Program) CFG(id CFGID) *CFG {
	if int(id) < 0 || int(id) >= len(p.CFGs) {
		return nil
	}
	return &p.CFGs[id]
}

// HasCFG reports whether id names a valid CFG in p.
func (p *Program) HasCFG(id CFGID) bool {
	return int(id) >= 0 && int(id) < len(p.CFGs)
}

// NewProgram returns an empty Program with a fresh attribute store.
func NewProgram() *Program {
	return &Program{Attrs: attrstore.NewStore()}
}
