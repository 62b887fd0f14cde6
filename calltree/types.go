// File: types.go
// Role: ContextID, Context, and the sentinel errors Tree operations return.

package calltree

import (
	"errors"
	"strconv"

	"github.com/wcet-estimator/wcet/program"
)

var (
	// ErrUnknownContext indicates a ContextID outside the tree's range.
	ErrUnknownContext = errors.New("calltree: unknown context")

	// ErrNoSuchCallSite indicates GetCalleeContext was asked about a call
	// node the context's function does not own, or that was never visited
	// during Initialise.
	ErrNoSuchCallSite = errors.New("calltree: call node has no child context")

	// ErrNotInitialised indicates a query ran before Initialise.
	ErrNotInitialised = errors.New("calltree: tree not initialised")
)

// ContextID is a stable index into Tree.Contexts.
type ContextID int32

// RootContext is the context created for the program's entry point.
const RootContext ContextID = 0

// noCaller is the sentinel NodeID stored for contexts with no caller (the
// root context). Node zero is a legitimate node id elsewhere, so the root
// is additionally marked by HasCaller=false; CallerNode is never read
// without checking it first.
const noCaller = program.NodeID(-1)

// Context is one node of the call-string tree: the function it runs in,
// and (unless it is the root) the call node that invoked it and the
// context it was invoked from.
type Context struct {
	ID          ContextID
	Function    program.CFGID
	HasCaller   bool
	CallerNode  program.NodeID // call node in Predecessor's function, valid iff HasCaller
	Predecessor ContextID      // context this one was called from, valid iff HasCaller
	CallerCFG   program.CFGID  // Predecessor's Function, cached for convenience
}

// StringID returns the stable string form ("c0", "c1", ...) used to build
// contextual attribute names (attrstore.CtxName).
func (c Context) StringID() string {
	return "c" + strconv.Itoa(int(c.ID))
}
