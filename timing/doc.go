// Package timing implements the optional pipeline-timing analysis
// (component C8): per contextual node it computes the execution time of
// the block's first and subsequent iterations on an in-order scalar
// pipeline, and per intra-CFG edge the four pairwise delta corrections
// {FF, FN, NF, NN} that capture how much two adjacent blocks overlap in
// the pipeline.
//
// Fetch latency is derived from the instruction-cache CHMC attributes
// written by package icache: a hit at level L costs the sum of level
// latencies up to L, a miss through every level additionally pays the
// memory load latency. The first-iteration simulation treats FM, AM and
// NC as misses; subsequent iterations miss only on AM and NC.
//
// Call edges get CallDelta{First,Next} and ReturnDelta{First,Next}
// attributes on the call node; the return delta over multiple callee end
// nodes takes the maximum. Deltas may be zero or negative (pipeline
// overlap); block times themselves never undercut the sum of minimum
// instruction latencies.
package timing
