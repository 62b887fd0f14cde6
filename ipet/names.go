// File: names.go
// Role: LP variable and frequency-attribute naming. Context ids are
// globally unique, so a node's local id plus the context suffix uniquely
// names every contextual block and edge.

package ipet

import (
	"strconv"

	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
)

func ctxSuffix(ctx calltree.ContextID) string {
	return "_c" + strconv.Itoa(int(ctx))
}

// nodeVar names a block's total frequency: n_<id>_c<ctx>.
func nodeVar(n program.NodeID, ctx calltree.ContextID) string {
	return "n_" + strconv.Itoa(int(n)) + ctxSuffix(ctx)
}

// nodeFirstVar / nodeNextVar name the first- and subsequent-iteration
// frequency split of a block.
func nodeFirstVar(n program.NodeID, ctx calltree.ContextID) string {
	return "nf_" + strconv.Itoa(int(n)) + ctxSuffix(ctx)
}

func nodeNextVar(n program.NodeID, ctx calltree.ContextID) string {
	return "nn_" + strconv.Itoa(int(n)) + ctxSuffix(ctx)
}

// edgeVar names an intra-CFG edge's frequency: e_<src>_<dst>_c<ctx>.
func edgeVar(src, dst program.NodeID, ctx calltree.ContextID) string {
	return "e_" + strconv.Itoa(int(src)) + "_" + strconv.Itoa(int(dst)) + ctxSuffix(ctx)
}

// edgeOccVar names one of the four first/next occurrence splits of an
// edge (prefix one of "eff", "efn", "enf", "enn").
func edgeOccVar(prefix string, src, dst program.NodeID, ctx calltree.ContextID) string {
	return prefix + "_" + strconv.Itoa(int(src)) + "_" + strconv.Itoa(int(dst)) + ctxSuffix(ctx)
}

// FrequencyAttr is the attribute name a solved block frequency is stored
// under: "frequency" plus the LP variable's own "_c<ctx>" suffix, NOT the
// "#<ctx>" convention: the divergence keeps attribute names identical to
// the tail of the variable names the solver reported.
func FrequencyAttr(ctx calltree.ContextID) string {
	return "frequency" + ctxSuffix(ctx)
}

// AttrWCET is the attribute the solved objective is stored under on the
// entry CFG.
const AttrWCET = "WCET"
