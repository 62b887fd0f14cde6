// File: errors.go
// Role: sentinel errors for configuration/program mismatches the pipeline
// detects between passes.

package orchestrator

import "errors"

var (
	// ErrUnknownEntryPoint indicates an ENTRYPOINT pass named a CFG the
	// program does not contain.
	ErrUnknownEntryPoint = errors.New("orchestrator: entry point names no cfg in the program")

	// ErrNoProgram indicates a pass ran before any program was loaded
	// (no input_file on the first pass and no program handed to Run).
	ErrNoProgram = errors.New("orchestrator: no program loaded")

	// ErrNoContextTree indicates an analysis pass ran before any
	// ENTRYPOINT pass built the context tree.
	ErrNoContextTree = errors.New("orchestrator: no entry point selected; add an ENTRYPOINT pass first")

	// ErrCacheLevelNotDeclared indicates an ICACHE/DCACHE pass asked for
	// a level the architecture section does not declare.
	ErrCacheLevelNotDeclared = errors.New("orchestrator: analysis pass references an undeclared cache level")
)
