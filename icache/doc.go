// Package icache implements the instruction-cache analysis (component
// C6): a per-level fixed point over the contextual CFG
// that classifies every code instruction's CHMC and derives the next
// cache level's CAC.
//
// Analyze runs the eight steps in order (initialisation, Must phase 1
// (back-edges excluded), Must phase 2 (all edges), Must classification,
// PS pass, May pass, leftover classification, next-level CAC) exactly
// once per configured cache level, driven by the orchestrator
// (orchestrator.Pipeline) in increasing level order so level L+1 can read
// level L's CAC output.
package icache
