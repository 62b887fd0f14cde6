// File: sim.go
// Role: the in-order scalar pipeline model. A block is simulated as a
// sequence of (fetchLat, execLat) pairs flowing through
// fetch -> decode -> execute [-> memory] -> write-back, each stage
// processing one instruction at a time, write-back strictly in order.

package timing

// instrTiming is one instruction's resolved latencies for one simulated
// occurrence (first or next iteration).
type instrTiming struct {
	fetchLat int
	execLat  int
	memLat   int // memory-stage occupancy for loads/stores; 1 when the stage exists
}

// pipeState is the stage clock after the last retired instruction:
// the cycle each stage becomes free again. Chaining two blocks is just
// continuing the simulation from the predecessor's final state.
type pipeState struct {
	fetchFree  int
	decodeFree int
	execFree   int
	memFree    int
	wbFree     int
}

// run pushes instrs through the pipeline starting from state s and
// returns the updated state. hasMem selects the five-stage variant.
func run(s pipeState, instrs []instrTiming, hasMem bool) pipeState {
	for _, it := range instrs {
		fetchDone := max(s.fetchFree, 0) + it.fetchLat
		s.fetchFree = fetchDone

		decodeDone := max(fetchDone, s.decodeFree) + 1
		s.decodeFree = decodeDone

		execDone := max(decodeDone, s.execFree) + it.execLat
		s.execFree = execDone

		wbReady := execDone
		if hasMem {
			memDone := max(execDone, s.memFree) + max(it.memLat, 1)
			s.memFree = memDone
			wbReady = memDone
		}

		wbDone := max(wbReady, s.wbFree) + 1
		s.wbFree = wbDone
	}
	return s
}

// blockTime returns the makespan of instrs started on an empty pipeline.
func blockTime(instrs []instrTiming, hasMem bool) int {
	return run(pipeState{}, instrs, hasMem).wbFree
}

// concatTime returns the makespan of a followed by b on one pipeline.
func concatTime(a, b []instrTiming, hasMem bool) int {
	return run(run(pipeState{}, a, hasMem), b, hasMem).wbFree
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
