// Package calltree builds the context tree of a program: the enumeration
// of every call-string reachable from the entry point.
//
// A Context is a node of this tree; ContextualNode = (Context, Node) pairs
// (package ctxwalk) are the unit every later analysis pass (icache, dcache,
// timing, ipet) iterates over. The tree is rebuilt once per chosen entry
// point (orchestrator.Pipeline calls Initialise again after an ENTRYPOINT
// pass selects a new entry point).
package calltree
