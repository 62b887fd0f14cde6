// Package program defines the Program/CFG/Node/Edge/Instruction/Loop
// arena model that every analysis pass operates on.
//
// # Arenas, not pointers
//
// Node↔CFG↔Program cross-references are a classic case for re-architecture
// in a systems language (see the design notes): rather than owning
// pointers, a CFG owns four arenas (nodes, edges, instructions, loops) addressed
// by small int32 indices, and Program owns the CFG arena. This keeps
// ownership single (Program owns everything reachable from it) and makes
// Clone (for keep_results=false passes) a cheap arena-level copy plus a
// handle-rewriting pass (see clone.go).
//
// # Concurrency
//
// A Program is owned exclusively by one orchestrator pass at a time; the
// pipeline is single-threaded and sequential. Program/CFG arenas therefore
// carry no internal locks. attrstore.Store keeps its own RWMutex so
// read-heavy helpers (printers, tests) stay safe regardless.
package program
