// Package orchestrator reads an analysis configuration and runs its
// ordered pass sequence over the program (component C10).
//
// Each configured pass goes through the same protocol: optional reload
// of a fresh program from the pass's input file (with program checks
// re-run), an optional throwaway clone when keepresults is off, then
// CheckInputAttributes, PerformAnalysis and RemovePrivateAttributes in
// order, any failure aborting the whole pipeline. An ENTRYPOINT pass
// additionally purges every contextual attribute before rebuilding the
// context tree, so results from a previous entry point never leak into
// the next.
//
// The pipeline logs pass starts, durations, warnings and the fatal
// diagnostic (if any) through one structured logger; no partial WCET is
// ever reported on failure.
package orchestrator
