// File: programxml.go
// Role: LoadProgram/SaveProgram, the structural program XML round-trip.
// Entity references (a call node's callee, the entry CFG) serialize as
// CFG name strings and resolve in a second pass once every CFG is known.

package xmlio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wcet-estimator/wcet/program"
)

var (
	// ErrBadProgram wraps every program-document decoding failure.
	ErrBadProgram = errors.New("xmlio: invalid program document")

	// ErrUnresolvedHandle indicates a serialized reference (callee or
	// entry name) matches no CFG in the document.
	ErrUnresolvedHandle = errors.New("xmlio: reference to unknown cfg")
)

type xmlProgram struct {
	XMLName xml.Name `xml:"PROGRAM"`
	Entry   string   `xml:"entry,attr"`
	CFGs    []xmlCFG `xml:"CFG"`
}

type xmlCFG struct {
	Name     string    `xml:"name,attr"`
	External bool      `xml:"external,attr,omitempty"`
	Empty    bool      `xml:"empty,attr,omitempty"`
	Start    int       `xml:"start,attr"`
	Ends     string    `xml:"ends,attr"`
	Nodes    []xmlNode `xml:"NODE"`
	Edges    []xmlEdge `xml:"EDGE"`
	Loops    []xmlLoop `xml:"LOOP"`
}

type xmlNode struct {
	ID          int        `xml:"id,attr"`
	Kind        string     `xml:"kind,attr"`
	Callee      string     `xml:"callee,attr,omitempty"`
	IsolatedNop bool       `xml:"isolatednop,attr,omitempty"`
	Instrs      []xmlInstr `xml:"INSTRUCTION"`
}

type xmlInstr struct {
	Opcode  string    `xml:"opcode,attr"`
	IsCode  bool      `xml:"iscode,attr,omitempty"`
	IsLoad  bool      `xml:"isload,attr,omitempty"`
	IsStore bool      `xml:"isstore,attr,omitempty"`
	Attrs   []xmlAttr `xml:"ATTRS_LIST>ATTR"`
}

type xmlAttr struct {
	Type  string `xml:"type,attr"`
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlEdge struct {
	Src int `xml:"src,attr"`
	Dst int `xml:"dst,attr"`
}

type xmlLoop struct {
	Head      int    `xml:"head,attr"`
	MaxIter   int    `xml:"maxiter,attr"`
	Nodes     string `xml:"nodes,attr"`
	BackEdges string `xml:"backedges,attr"`
}

func intList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields := strings.Fields(s)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// LoadProgram decodes a program document and resolves its name handles.
func LoadProgram(r io.Reader) (*program.Program, error) {
	var doc xmlProgram
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProgram, err)
	}

	p := program.NewProgram()
	byName := make(map[string]program.CFGID, len(doc.CFGs))

	// First pass: build every CFG structurally, leaving callee handles
	// unresolved.
	type pendingCall struct {
		cfg  program.CFGID
		node program.NodeID
		name string
	}
	var pending []pendingCall

	for _, xc := range doc.CFGs {
		cfg := program.NewCFG(xc.Name)
		cfg.External = xc.External
		cfg.Empty = xc.Empty

		for _, xn := range xc.Nodes {
			node := program.Node{IsolatedNop: xn.IsolatedNop}
			if xn.Kind == "call" {
				node.Kind = program.KindCall
			}
			for _, xi := range xn.Instrs {
				instr := program.Instruction{
					Opcode:  xi.Opcode,
					IsCode:  xi.IsCode,
					IsLoad:  xi.IsLoad,
					IsStore: xi.IsStore,
				}
				for _, a := range xi.Attrs {
					if a.Name == "address" && a.Type == "hexa" {
						v, err := strconv.ParseUint(strings.TrimPrefix(a.Value, "0x"), 16, 64)
						if err != nil {
							return nil, fmt.Errorf("%w: bad address %q", ErrBadProgram, a.Value)
						}
						addr := v
						instr.Address = &addr
					}
				}
				node.Instrs = append(node.Instrs, cfg.AddInstruction(instr))
			}
			id := cfg.AddNode(node)
			if int(id) != xn.ID {
				return nil, fmt.Errorf("%w: non-contiguous node ids in cfg %q", ErrBadProgram, xc.Name)
			}
		}

		for _, xe := range xc.Edges {
			if _, err := cfg.AddEdge(program.NodeID(xe.Src), program.NodeID(xe.Dst)); err != nil {
				return nil, fmt.Errorf("%w: edge %d->%d in cfg %q", ErrBadProgram, xe.Src, xe.Dst, xc.Name)
			}
		}

		for _, xl := range xc.Loops {
			nodeIDs, err := intList(xl.Nodes)
			if err != nil {
				return nil, fmt.Errorf("%w: bad loop node list", ErrBadProgram)
			}
			nodes := make(map[program.NodeID]struct{}, len(nodeIDs))
			for _, n := range nodeIDs {
				nodes[program.NodeID(n)] = struct{}{}
			}
			lid := cfg.AddLoop(program.NodeID(xl.Head), nodes)
			backs, err := intList(xl.BackEdges)
			if err != nil {
				return nil, fmt.Errorf("%w: bad loop back-edge list", ErrBadProgram)
			}
			for _, b := range backs {
				cfg.Loop(lid).BackEdges = append(cfg.Loop(lid).BackEdges, program.EdgeID(b))
			}
			cfg.Loop(lid).MaxIter = xl.MaxIter
		}

		cfg.SetStart(program.NodeID(xc.Start))
		ends, err := intList(xc.Ends)
		if err != nil {
			return nil, fmt.Errorf("%w: bad end list", ErrBadProgram)
		}
		for _, e := range ends {
			cfg.AddEnd(program.NodeID(e))
		}

		id := p.AddCFG(cfg)
		byName[xc.Name] = id
		for ni, xn := range xc.Nodes {
			if xn.Kind == "call" {
				pending = append(pending, pendingCall{cfg: id, node: program.NodeID(ni), name: xn.Callee})
			}
		}
	}

	// Second pass: resolve handles now that every CFG has an id.
	for _, pc := range pending {
		callee, ok := byName[pc.name]
		if !ok {
			return nil, fmt.Errorf("%w: callee %q", ErrUnresolvedHandle, pc.name)
		}
		p.CFG(pc.cfg).Nodes[pc.node].Callee = callee
	}
	entry, ok := byName[doc.Entry]
	if !ok {
		return nil, fmt.Errorf("%w: entry %q", ErrUnresolvedHandle, doc.Entry)
	}
	p.Entry = entry
	return p, nil
}

// SaveProgram encodes p so LoadProgram reconstructs an equal program.
func SaveProgram(w io.Writer, p *program.Program) error {
	doc := xmlProgram{Entry: p.CFGs[p.Entry].Name}

	for ci := range p.CFGs {
		cfg := &p.CFGs[ci]
		xc := xmlCFG{
			Name:     cfg.Name,
			External: cfg.External,
			Empty:    cfg.Empty,
			Start:    int(cfg.Start),
		}
		ends := make([]int, len(cfg.Ends))
		for i, e := range cfg.Ends {
			ends[i] = int(e)
		}
		xc.Ends = joinInts(ends)

		for ni := range cfg.Nodes {
			node := &cfg.Nodes[ni]
			xn := xmlNode{ID: ni, Kind: "block", IsolatedNop: node.IsolatedNop}
			if node.Kind == program.KindCall {
				xn.Kind = "call"
				xn.Callee = p.CFGs[node.Callee].Name
			}
			for _, instrID := range node.Instrs {
				instr := &cfg.Instrs[instrID]
				xi := xmlInstr{
					Opcode:  instr.Opcode,
					IsCode:  instr.IsCode,
					IsLoad:  instr.IsLoad,
					IsStore: instr.IsStore,
				}
				if instr.Address != nil {
					xi.Attrs = append(xi.Attrs, xmlAttr{
						Type: "hexa", Name: "address",
						Value: "0x" + strconv.FormatUint(*instr.Address, 16),
					})
				}
				xn.Instrs = append(xn.Instrs, xi)
			}
			xc.Nodes = append(xc.Nodes, xn)
		}

		for _, e := range cfg.Edges {
			xc.Edges = append(xc.Edges, xmlEdge{Src: int(e.Src), Dst: int(e.Dst)})
		}

		for li := range cfg.Loops {
			loop := &cfg.Loops[li]
			nodes := make([]int, 0, len(loop.Nodes))
			for n := range loop.Nodes {
				nodes = append(nodes, int(n))
			}
			sort.Ints(nodes)
			backs := make([]int, len(loop.BackEdges))
			for i, b := range loop.BackEdges {
				backs[i] = int(b)
			}
			xc.Loops = append(xc.Loops, xmlLoop{
				Head:      int(loop.Head),
				MaxIter:   loop.MaxIter,
				Nodes:     joinInts(nodes),
				BackEdges: joinInts(backs),
			})
		}

		doc.CFGs = append(doc.CFGs, xc)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
