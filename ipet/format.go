// File: format.go
// Role: Render, the LP text serializers for the two supported solver
// input formats.

package ipet

import (
	"strconv"
	"strings"

	"github.com/wcet-estimator/wcet/solverio"
)

// Render serialises m to the LP text format kind's solver accepts.
func Render(m *Model, kind solverio.Kind) string {
	if kind == solverio.KindCPLEX {
		return renderCPLEX(m)
	}
	return renderLPSolve(m)
}

// writeSum writes terms as a signed sum ("a + 2 b - c" with sep between
// magnitude and variable: "*" for lp_solve, " " for CPLEX).
func writeSum(sb *strings.Builder, terms []Term, sep string) {
	for i, t := range terms {
		coeff := t.Coeff
		switch {
		case i == 0 && coeff < 0:
			sb.WriteString("-")
			coeff = -coeff
		case i > 0 && coeff < 0:
			sb.WriteString(" - ")
			coeff = -coeff
		case i > 0:
			sb.WriteString(" + ")
		}
		if coeff != 1 {
			sb.WriteString(strconv.FormatInt(coeff, 10))
			sb.WriteString(sep)
		}
		sb.WriteString(t.Var)
	}
}

func writeConstraint(sb *strings.Builder, c Constraint, sep, terminator string) {
	writeSum(sb, c.Terms, sep)
	if c.Op == OpEq {
		sb.WriteString(" = ")
	} else {
		sb.WriteString(" <= ")
	}
	sb.WriteString(strconv.FormatInt(c.RHS, 10))
	sb.WriteString(terminator)
	sb.WriteString("\n")
}

func renderLPSolve(m *Model) string {
	var sb strings.Builder
	sb.WriteString("MAX: ")
	writeSum(&sb, m.Objective, "*")
	sb.WriteString(";\n")

	for _, c := range m.Constraints {
		writeConstraint(&sb, c, "*", ";")
	}

	sb.WriteString("int ")
	for i, v := range m.IntVars {
		if i > 0 {
			sb.WriteString(", ")
			if i%10 == 0 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(v)
	}
	sb.WriteString(";\n")
	return sb.String()
}

func renderCPLEX(m *Model) string {
	var sb strings.Builder
	sb.WriteString("enter wcet\n\nMaximize\nobj: ")
	writeSum(&sb, m.Objective, " ")
	sb.WriteString("\n\nSubject To\n")

	for _, c := range m.Constraints {
		sb.WriteString(" ")
		writeConstraint(&sb, c, " ", "")
	}

	sb.WriteString("General\n")
	for _, v := range m.IntVars {
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	sb.WriteString("End\n\noptimize\n")
	return sb.String()
}
