package xmlio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wcet-estimator/wcet/program"
)

const sampleConfig = `
<CONFIGURATION>
  <INPUTOUTPUTDIR name="./work"/>
  <ARCHITECTURE>
    <TARGET NAME="MIPS" ENDIANNESS="BIG"/>
    <CACHE type="icache" level="1" nbsets="8" nbways="2" cachelinesize="16" replacement_policy="LRU" latency="1"/>
    <CACHE type="dcache" level="1" nbsets="8" nbways="2" cachelinesize="16" replacement_policy="LRU" latency="1"/>
    <MEMORY load_latency="100" store_latency="100"/>
  </ARCHITECTURE>
  <ANALYSIS>
    <ENTRYPOINT entrypointname="main"/>
    <ICACHE level="1" must="on" persistence="on" may="on"/>
    <DCACHE level="1" must="on"/>
    <IPET solver="lp_solve" attach_WCET_info="on" generate_node_freq="on"/>
  </ANALYSIS>
</CONFIGURATION>`

func TestLoadConfig_OrderedPassList(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	kinds := make([]string, len(cfg.Analysis.Passes))
	for i, p := range cfg.Analysis.Passes {
		kinds[i] = p.Kind
	}
	want := []string{"ENTRYPOINT", "ICACHE", "DCACHE", "IPET"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d passes, got %v", len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("pass %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
	if !On(cfg.Analysis.Passes[1].Must) || !On(cfg.Analysis.Passes[1].May) {
		t.Errorf("ICACHE flags not parsed: %+v", cfg.Analysis.Passes[1])
	}
	if cfg.Analysis.Passes[0].EntryPointName != "main" {
		t.Errorf("entry point name not parsed")
	}
}

func TestLoadConfig_RejectsUnknownTarget(t *testing.T) {
	bad := strings.Replace(sampleConfig, `NAME="MIPS"`, `NAME="RISCV"`, 1)
	if _, err := LoadConfig(strings.NewReader(bad)); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

func TestLoadConfig_RejectsDuplicateMemory(t *testing.T) {
	bad := strings.Replace(sampleConfig,
		`<MEMORY load_latency="100" store_latency="100"/>`,
		`<MEMORY load_latency="100" store_latency="100"/><MEMORY load_latency="1" store_latency="1"/>`, 1)
	if _, err := LoadConfig(strings.NewReader(bad)); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

func TestLoadConfig_RejectsGappedCacheLevels(t *testing.T) {
	bad := strings.Replace(sampleConfig, `type="icache" level="1"`, `type="icache" level="2"`, 1)
	if _, err := LoadConfig(strings.NewReader(bad)); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

func TestLoadConfig_RejectsUnknownPass(t *testing.T) {
	bad := strings.Replace(sampleConfig, `<ENTRYPOINT entrypointname="main"/>`, `<FOO/>`, 1)
	if _, err := LoadConfig(strings.NewReader(bad)); !errors.Is(err, ErrUnknownPass) {
		t.Fatalf("expected ErrUnknownPass, got %v", err)
	}
}

func addr(a uint64) *uint64 { return &a }

func sampleProgram() *program.Program {
	p := program.NewProgram()

	f := program.NewCFG("f")
	fi := f.AddInstruction(program.Instruction{Opcode: "addi", IsCode: true, Address: addr(0x100)})
	fn := f.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{fi}})
	f.SetStart(fn)
	f.AddEnd(fn)
	fid := p.AddCFG(f)

	main := program.NewCFG("main")
	i0 := main.AddInstruction(program.Instruction{Opcode: "jal", IsCode: true, Address: addr(0)})
	i1 := main.AddInstruction(program.Instruction{Opcode: "lw", IsCode: true, IsLoad: true, Address: addr(4)})
	k := main.AddNode(program.Node{Kind: program.KindCall, Instrs: []program.InstrID{i0}, Callee: fid})
	b := main.AddNode(program.Node{Kind: program.KindBlock, Instrs: []program.InstrID{i1}})
	_, _ = main.AddEdge(k, b)
	eBack, _ := main.AddEdge(b, b)
	main.SetStart(k)
	main.AddEnd(b)
	lid := main.AddLoop(b, map[program.NodeID]struct{}{b: {}})
	main.Loop(lid).BackEdges = []program.EdgeID{eBack}
	main.Loop(lid).MaxIter = 7
	mid := p.AddCFG(main)
	p.Entry = mid
	return p
}

// TestProgramRoundTrip: save then load reproduces structure, handles and
// loop bounds.
func TestProgramRoundTrip(t *testing.T) {
	p := sampleProgram()
	var buf bytes.Buffer
	if err := SaveProgram(&buf, p); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}
	got, err := LoadProgram(&buf)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	if len(got.CFGs) != 2 {
		t.Fatalf("expected 2 CFGs, got %d", len(got.CFGs))
	}
	if got.CFGs[got.Entry].Name != "main" {
		t.Errorf("entry handle not resolved: %q", got.CFGs[got.Entry].Name)
	}
	mainCFG := got.CFG(got.Entry)
	callNode := &mainCFG.Nodes[mainCFG.Start]
	if callNode.Kind != program.KindCall || got.CFGs[callNode.Callee].Name != "f" {
		t.Errorf("callee handle not resolved")
	}
	if len(mainCFG.Loops) != 1 || mainCFG.Loops[0].MaxIter != 7 {
		t.Errorf("loop bound lost in round trip: %+v", mainCFG.Loops)
	}
	instr := &mainCFG.Instrs[1]
	if instr.Address == nil || *instr.Address != 4 || !instr.IsLoad {
		t.Errorf("instruction attributes lost: %+v", instr)
	}
}

// TestLoadProgram_UnknownCalleeIsFatal: a dangling handle must fail the
// resolution pass, not silently bind to the zero CFG.
func TestLoadProgram_UnknownCalleeIsFatal(t *testing.T) {
	doc := `<PROGRAM entry="main">
  <CFG name="main" start="0" ends="0">
    <NODE id="0" kind="call" callee="ghost">
      <INSTRUCTION opcode="jal" iscode="true"/>
    </NODE>
  </CFG>
</PROGRAM>`
	if _, err := LoadProgram(strings.NewReader(doc)); !errors.Is(err, ErrUnresolvedHandle) {
		t.Fatalf("expected ErrUnresolvedHandle, got %v", err)
	}
}
