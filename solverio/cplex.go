// File: cplex.go
// Role: CPLEXDriver, the CPLEX interactive-mode driver and its XML
// solution-dump parser.

package solverio

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CPLEXDriver invokes the cplex binary in interactive mode: the model
// text already ends with "optimize"; the driver appends a "write ... sol"
// command so the solution lands in an XML dump it then parses.
type CPLEXDriver struct {
	Path string
}

// Solve runs cplex over lp. Temporary files live in a process-private
// directory removed before returning.
func (d *CPLEXDriver) Solve(ctx context.Context, lp string) (Solution, error) {
	dir, err := os.MkdirTemp("", "wcet-cplex-")
	if err != nil {
		return Solution{}, err
	}
	defer os.RemoveAll(dir)

	solPath := filepath.Join(dir, "model.sol")
	payload := lp + "write " + solPath + " sol\n"

	inPath := filepath.Join(dir, "model.lp")
	if err := os.WriteFile(inPath, []byte(payload), 0o600); err != nil {
		return Solution{}, err
	}
	in, err := os.Open(inPath)
	if err != nil {
		return Solution{}, err
	}
	defer in.Close()

	cmd := exec.CommandContext(ctx, d.Path)
	cmd.Stdin = in
	if _, err := cmd.Output(); err != nil {
		return Solution{}, fmt.Errorf("%w: %v", ErrSolverExit, err)
	}

	solOut, err := os.ReadFile(solPath)
	if err != nil {
		return Solution{}, ErrNoObjective
	}
	return parseCPLEXSolution(string(solOut))
}

// extractQuoted returns the first double-quoted substring of line.
func extractQuoted(line string) string {
	i := strings.IndexByte(line, '"')
	if i < 0 {
		return ""
	}
	j := strings.IndexByte(line[i+1:], '"')
	if j < 0 {
		return ""
	}
	return line[i+1 : i+1+j]
}

// parseCPLEXSolution reads the XML solution dump: the header's
// solutionStatusString and objectiveValue attributes, then every
// <variable name="..." value="..."/> entry.
func parseCPLEXSolution(out string) (Solution, error) {
	sol := Solution{Values: make(map[string]int64)}
	foundObjective := false
	statusOK := false

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, "solutionStatusString"):
			if strings.Contains(line, "integer optimal") {
				statusOK = true
			}
		case strings.Contains(line, "objectiveValue"):
			raw := extractQuoted(line[strings.Index(line, "objectiveValue"):])
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Solution{}, ErrNoObjective
			}
			sol.Objective = int64(math.Round(f))
			foundObjective = true
		case strings.Contains(line, "<variable name="):
			fields := strings.Fields(strings.TrimSpace(line))
			var name string
			var value int64
			for _, f := range fields {
				if strings.HasPrefix(f, "name=") {
					name = extractQuoted(f)
				}
				if strings.HasPrefix(f, "value=") {
					fv, err := strconv.ParseFloat(strings.TrimSuffix(extractQuoted(f), "/>"), 64)
					if err == nil {
						value = int64(math.Round(fv))
					}
				}
			}
			if name != "" {
				sol.Values[name] = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return Solution{}, err
	}
	if !statusOK {
		return Solution{}, ErrNotOptimal
	}
	if !foundObjective {
		return Solution{}, ErrNoObjective
	}
	return sol, nil
}
