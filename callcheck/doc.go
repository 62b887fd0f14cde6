// Package callcheck builds the call graph of a program and validates it
// against the preconditions every later analysis pass relies on: the call
// graph must be acyclic, every loop must carry a maxiter bound, every
// instruction must carry an address, and loops within one CFG must nest
// properly.
//
// BuildCallGraph and CheckProgram are meant to run once, early, in the
// orchestrator pipeline (orchestrator.Pipeline), before any contextual
// attribute is written. Both fail fatally (by contract, not by panicking):
// callers surface the returned error and abort the whole analysis.
package callcheck
