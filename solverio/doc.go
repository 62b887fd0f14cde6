// Package solverio drives an external integer linear programming solver
// as a child process: it feeds the solver an LP text payload, captures
// its output under a process-private temporary directory, and parses the
// objective value and variable assignments back into a Solution.
//
// Two drivers are provided. LPSolveDriver speaks the lp_solve text
// format and scrapes the "Value of objective function" / "Actual values
// of the variables" sections of its stdout. CPLEXDriver speaks the CPLEX
// interactive format and reads the XML solution dump the appended
// "write ... sol" command produces. Both treat a non-zero solver exit,
// an unparseable objective, or an infeasible model as a fatal error for
// the caller to surface.
package solverio
