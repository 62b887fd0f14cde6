// Package ipet implements the Implicit Path Enumeration Technique
// (component C9): block and edge execution frequencies become integer
// variables of a linear program whose flow-balance, call-coupling and
// loop-bound constraints describe every feasible path, and whose
// maximised objective (cost times frequency, summed over every
// contextual block) is the WCET bound.
//
// BuildLP emits the model from the classification attributes the cache
// analyses wrote (and, in pipeline mode, the block times and deltas
// package timing wrote). Render serialises the model to lp_solve or
// CPLEX LP text; a solverio.Solver runs it; Apply ingests the solution
// back into the program as a WCET attribute on the entry CFG and, when
// requested, per-context frequency attributes on every block.
//
// Frequency attributes deliberately use the "_c<ctx>" name suffix of the
// LP variables themselves rather than the "#<ctx>" convention the other
// contextual attributes use, so attribute names and LP variable names
// stay mechanically linked.
package ipet
