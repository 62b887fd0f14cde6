// File: errors.go
// Role: sentinel errors for call-graph construction and program checking.
//
// Error policy: only sentinel variables are exported; callers branch with
// errors.Is. Positional context (which CFG/loop/instruction) is attached by
// wrapping with fmt.Errorf("...: %w", ...) at the call site.

package callcheck

import "errors"

var (
	// ErrRecursiveCallGraph indicates the call graph contains a cycle,
	// which the analyses cannot handle (a recursive program has no finite
	// context tree).
	ErrRecursiveCallGraph = errors.New("callcheck: call graph is recursive")

	// ErrMissingAddress indicates a reachable instruction has no Address.
	ErrMissingAddress = errors.New("callcheck: instruction missing address")

	// ErrMissingMaxIter indicates a loop has MaxIter <= 0.
	ErrMissingMaxIter = errors.New("callcheck: loop missing maxiter")

	// ErrLoopsNotNested indicates two loops in one CFG share a node without
	// either nesting the other.
	ErrLoopsNotNested = errors.New("callcheck: loops improperly nested")

	// ErrUnknownEntry indicates Program.Entry does not name a valid CFG.
	ErrUnknownEntry = errors.New("callcheck: entry CFG not found")
)
