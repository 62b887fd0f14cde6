// File: tree.go
// Role: Tree construction (Initialise) and the context/callsite queries
// built on top of it.

package calltree

import (
	"github.com/wcet-estimator/wcet/program"
)

// callSiteKey identifies one (context, call node) pair during Initialise.
type callSiteKey struct {
	ctx  ContextID
	node program.NodeID
}

// Tree is the enumerated set of call-string contexts reachable from a
// program's entry point.
type Tree struct {
	prog     *program.Program
	Contexts []Context

	children    map[callSiteKey]ContextID
	cfgContexts map[program.CFGID][]ContextID
}

// NewTree returns an uninitialised Tree bound to p. Call Initialise before
// using any query.
func NewTree(p *program.Program) *Tree {
	return &Tree{prog: p}
}

// Initialise builds the context tree rooted at entry by breadth-first
// enumeration of (context, call node) pairs in source order. Re-running Initialise discards any previously built tree,
// matching the orchestrator's resetContext-before-ENTRYPOINT contract.
//
// Complexity: O(total contexts * avg call nodes per function).
func (t *Tree) Initialise(entry program.CFGID) error {
	if !t.prog.HasCFG(entry) {
		return ErrUnknownContext
	}

	t.Contexts = nil
	t.children = make(map[callSiteKey]ContextID)
	t.cfgContexts = make(map[program.CFGID][]ContextID)

	root := Context{ID: RootContext, Function: entry, HasCaller: false, CallerNode: noCaller}
	t.Contexts = append(t.Contexts, root)
	t.cfgContexts[entry] = append(t.cfgContexts[entry], RootContext)

	queue := []ContextID{RootContext}
	for len(queue) > 0 {
		curID := queue[0]
		queue = queue[1:]
		cur := t.Contexts[curID]

		cfg := t.prog.CFG(cur.Function)
		if cfg == nil || cfg.External {
			continue
		}
		for ni := range cfg.Nodes {
			node := &cfg.Nodes[ni]
			if node.Kind != program.KindCall {
				continue
			}
			callNode := program.NodeID(ni)
			childID := ContextID(len(t.Contexts))
			child := Context{
				ID:          childID,
				Function:    node.Callee,
				HasCaller:   true,
				CallerNode:  callNode,
				Predecessor: curID,
				CallerCFG:   cur.Function,
			}
			t.Contexts = append(t.Contexts, child)
			t.children[callSiteKey{ctx: curID, node: callNode}] = childID
			t.cfgContexts[node.Callee] = append(t.cfgContexts[node.Callee], childID)
			queue = append(queue, childID)
		}
	}
	return nil
}

// Get returns the context at id, or ErrUnknownContext if out of range.
func (t *Tree) Get(id ContextID) (Context, error) {
	if int(id) < 0 || int(id) >= len(t.Contexts) {
		return Context{}, ErrUnknownContext
	}
	return t.Contexts[id], nil
}

// ContextList returns the contexts in which cfg executes, in the order
// Initialise created them.
func (t *Tree) ContextList(cfg program.CFGID) []ContextID {
	return t.cfgContexts[cfg]
}

// GetCalleeContext returns the context Initialise created for call node n
// invoked from context c, or ErrNoSuchCallSite if n is not a call node of
// c's function.
func (t *Tree) GetCalleeContext(c ContextID, n program.NodeID) (ContextID, error) {
	id, ok := t.children[callSiteKey{ctx: c, node: n}]
	if !ok {
		return 0, ErrNoSuchCallSite
	}
	return id, nil
}

// CallerInLoop reports whether any ancestor context's caller node lies
// inside a loop of that ancestor's own CFG.
// It is used by icache's PS-attachment rule.
//
// Complexity: O(context depth).
func (t *Tree) CallerInLoop(c ContextID) bool {
	cur := c
	for {
		ctx := t.Contexts[cur]
		if !ctx.HasCaller {
			return false
		}
		callerCFG := t.prog.CFG(ctx.CallerCFG)
		if callerCFG != nil {
			if _, inLoop := callerCFG.LoopContaining(ctx.CallerNode); inLoop {
				return true
			}
		}
		cur = ctx.Predecessor
	}
}
