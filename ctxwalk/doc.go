// Package ctxwalk provides the contextual CFG walker: iteration over (context, node) pairs with successors and
// predecessors that cross into callees on call nodes and back to the
// caller on returns, respecting the context tree built by calltree.
//
// Every fixed-point analysis (icache, dcache, timing) drives its work-list
// from WorkList/Successors/Predecessors rather than walking program.CFG
// directly, so the call/return crossing logic is written exactly once.
package ctxwalk
