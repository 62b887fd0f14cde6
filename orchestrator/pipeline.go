// File: pipeline.go
// Role: Pipeline.Run, the pass loop: reload, clone, check/perform/remove,
// serialize, with structured logging around each pass.

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wcet-estimator/wcet/callcheck"
	"github.com/wcet-estimator/wcet/calltree"
	"github.com/wcet-estimator/wcet/program"
	"github.com/wcet-estimator/wcet/solverio"
	"github.com/wcet-estimator/wcet/xmlio"
)

// Pipeline runs one configuration's pass sequence.
type Pipeline struct {
	Config *xmlio.Config
	Log    *log.Logger

	// NoTiming suppresses per-pass duration log lines (the CLI's -t).
	NoTiming bool

	// Solver overrides the external solver the IPET pass spawns; nil
	// selects the binary the configuration names.
	Solver solverio.Solver
}

// state is the mutable inter-pass carrier: the live program and the
// contextual substrate built for its current entry point.
type state struct {
	prog      *program.Program
	tree      *calltree.Tree
	backedges callcheck.BackedgeSet
}

// New returns a Pipeline over cfg logging through logger.
func New(cfg *xmlio.Config, logger *log.Logger) *Pipeline {
	return &Pipeline{Config: cfg, Log: logger}
}

// Run executes every configured pass in order. The first failure aborts
// with that pass's diagnostic; nothing after it runs.
func (pl *Pipeline) Run(ctx context.Context, initial *program.Program) error {
	st := &state{prog: initial}

	for _, pass := range pl.Config.Analysis.Passes {
		start := time.Now()
		pl.Log.Info("pass", "kind", pass.Kind)

		if err := pl.runPass(ctx, st, pass); err != nil {
			pl.Log.Error("pass failed", "kind", pass.Kind, "err", err)
			return err
		}
		if !pl.NoTiming {
			pl.Log.Info("pass done", "kind", pass.Kind, "elapsed", time.Since(start))
		}
	}
	return nil
}

// resolvePath resolves a configured file name against INPUTOUTPUTDIR.
func (pl *Pipeline) resolvePath(name string) string {
	dir := pl.Config.InputOutput.Name
	if dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// loadProgram deserializes a fresh program and re-runs the program
// checks, as every pass with an input_file requires.
func (pl *Pipeline) loadProgram(path string) (*program.Program, error) {
	f, err := os.Open(pl.resolvePath(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := xmlio.LoadProgram(f)
	if err != nil {
		return nil, err
	}
	if err := callcheck.CheckProgram(p); err != nil {
		return nil, err
	}
	return p, nil
}

// rebuildContexts purges every contextual attribute, then rebuilds the
// contextual substrate: the reset an ENTRYPOINT pass forces so results
// from a previous entry point cannot collide with reused context ids.
func (st *state) rebuildContexts() error {
	st.prog.Attrs.RemoveMatching(func(name string) bool {
		return strings.Contains(name, "#") || strings.HasPrefix(name, "frequency_c")
	})
	return st.initContexts()
}

// initContexts builds the context tree for the current entry and
// refreshes the back-edge set, leaving existing attributes alone (the
// clone path relies on this: a throwaway copy keeps the classification
// attributes already computed for the same entry point).
func (st *state) initContexts() error {
	st.tree = calltree.NewTree(st.prog)
	if err := st.tree.Initialise(st.prog.Entry); err != nil {
		return err
	}

	cg, err := callcheck.BuildCallGraph(st.prog)
	if err != nil {
		return err
	}
	st.backedges = callcheck.BuildBackedgeSet(st.prog, cg)

	// Every reachable CFG records the contexts it executes in.
	for ci := range st.prog.CFGs {
		ctxs := st.tree.ContextList(program.CFGID(ci))
		if len(ctxs) == 0 {
			continue
		}
		ids := make([]string, len(ctxs))
		for i, c := range ctxs {
			ctx, err := st.tree.Get(c)
			if err != nil {
				return err
			}
			ids[i] = ctx.StringID()
		}
		st.prog.Attrs.Set(program.CFGEntity(program.CFGID(ci)), "ContextList",
			attrListValue(ids))
	}
	return nil
}

// runPass drives one pass through the reload / clone / check-perform-
// remove / serialize protocol.
func (pl *Pipeline) runPass(ctx context.Context, st *state, pass xmlio.Pass) error {
	if pass.InputFile != "" {
		p, err := pl.loadProgram(pass.InputFile)
		if err != nil {
			return err
		}
		st.prog = p
		st.tree = nil
		st.backedges = nil
	}

	if pass.Kind == "ENTRYPOINT" {
		if st.prog == nil {
			return ErrNoProgram
		}
		return pl.runEntryPoint(st, pass)
	}

	if st.prog == nil {
		return ErrNoProgram
	}

	// A throwaway clone isolates the pass when its results must not
	// leak; the clone gets its own contextual substrate (context ids
	// are deterministic, so the clone's tree matches the original's).
	target := st
	if !pass.Keep() {
		cloned, err := st.prog.Clone()
		if err != nil {
			return err
		}
		target = &state{prog: cloned}
		if st.tree != nil {
			if err := target.initContexts(); err != nil {
				return err
			}
		}
	}

	exec, err := pl.executor(ctx, target, pass)
	if err != nil {
		return err
	}
	if exec.check != nil {
		if err := exec.check(); err != nil {
			return err
		}
	}
	if err := exec.perform(); err != nil {
		return err
	}
	if exec.removePrivate != nil {
		if err := exec.removePrivate(); err != nil {
			return err
		}
	}

	if pass.OutputFile != "" && !isPrinter(pass.Kind) {
		f, err := os.Create(pl.resolvePath(pass.OutputFile))
		if err != nil {
			return err
		}
		defer f.Close()
		if err := xmlio.SaveProgram(f, target.prog); err != nil {
			return err
		}
	}
	return nil
}

// runEntryPoint selects the named CFG as entry and rebuilds the
// contextual substrate from scratch.
func (pl *Pipeline) runEntryPoint(st *state, pass xmlio.Pass) error {
	found := false
	for ci := range st.prog.CFGs {
		if st.prog.CFGs[ci].Name == pass.EntryPointName {
			st.prog.Entry = program.CFGID(ci)
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownEntryPoint
	}
	return st.rebuildContexts()
}

func isPrinter(kind string) bool {
	switch kind {
	case "DOTPRINT", "SIMPLEPRINT", "HTMLPRINT", "CACHESTATISTICS":
		return true
	}
	return false
}
