// File: clone.go
// Role: deep copy of a Program for orchestrator passes with
// keep_results=false: an arena-level copy plus a handle-rewriting pass
// so the clone never aliases the source.
//
// AI-HINT (file):
//   - The handle map built here is also handed to attrstore.Store.Clone so
//     HandleValue attributes (e.g. a call node's resolved callee) follow
//     the same renumbering as the arenas themselves.

package program

import "github.com/wcet-estimator/wcet/attrstore"

// Clone returns a deep copy of p: every CFG's node/edge/instruction/loop
// arenas are duplicated, and the attribute store is cloned through the
// resulting identity handle map (CFG/Node/Edge/Instruction/Loop ids are
// preserved 1:1 by this clone, so the handle map is the identity, but
// building it explicitly keeps Clone's contract the same as a future
// compacting clone that renumbers entities).
//
// Complexity: O(total arena size) for the CFGs, plus O(attribute count)
// for the store.
func (p *Program) Clone() (*Program, error) {
	out := &Program{Entry: p.Entry}
	handleMap := make(map[attrstore.EntityID]attrstore.EntityID)

	out.CFGs = make([]CFG, len(p.CFGs))
	for ci := range p.CFGs {
		src := &p.CFGs[ci]
		dst := &out.CFGs[ci]

		dst.Name = src.Name
		dst.Start = src.Start
		dst.External = src.External
		dst.Empty = src.Empty

		dst.Ends = append([]NodeID(nil), src.Ends...)

		dst.Nodes = make([]Node, len(src.Nodes))
		for ni, n := range src.Nodes {
			dst.Nodes[ni] = Node{
				Kind:        n.Kind,
				Instrs:      append([]InstrID(nil), n.Instrs...),
				Callee:      n.Callee,
				IsolatedNop: n.IsolatedNop,
			}
			handleMap[NodeEntity(CFGID(ci), NodeID(ni))] = NodeEntity(CFGID(ci), NodeID(ni))
		}

		dst.Edges = append([]Edge(nil), src.Edges...)
		for ei := range src.Edges {
			handleMap[EdgeEntity(CFGID(ci), EdgeID(ei))] = EdgeEntity(CFGID(ci), EdgeID(ei))
		}

		dst.Instrs = make([]Instruction, len(src.Instrs))
		for ii, instr := range src.Instrs {
			cp := instr
			if instr.Address != nil {
				addr := *instr.Address
				cp.Address = &addr
			}
			dst.Instrs[ii] = cp
			handleMap[InstrEntity(CFGID(ci), InstrID(ii))] = InstrEntity(CFGID(ci), InstrID(ii))
		}

		dst.Loops = make([]Loop, len(src.Loops))
		for li, l := range src.Loops {
			nodesCopy := make(map[NodeID]struct{}, len(l.Nodes))
			for n := range l.Nodes {
				nodesCopy[n] = struct{}{}
			}
			dst.Loops[li] = Loop{
				Head:      l.Head,
				Nodes:     nodesCopy,
				BackEdges: append([]EdgeID(nil), l.BackEdges...),
				MaxIter:   l.MaxIter,
				nestedIn:  l.nestedIn,
				hasParent: l.hasParent,
			}
			handleMap[LoopEntity(CFGID(ci), LoopID(li))] = LoopEntity(CFGID(ci), LoopID(li))
		}

		handleMap[CFGEntity(CFGID(ci))] = CFGEntity(CFGID(ci))
		dst.reindex()
	}

	clonedAttrs, err := p.Attrs.Clone(handleMap)
	if err != nil {
		return nil, err
	}
	out.Attrs = clonedAttrs

	return out, nil
}
