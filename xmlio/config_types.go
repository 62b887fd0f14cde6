// File: config_types.go
// Role: configuration XML shapes. The <ANALYSIS> element is an ordered
// pass list, so it carries a custom unmarshaller that preserves document
// order instead of grouping by element name.

package xmlio

import (
	"encoding/xml"
	"errors"
	"io"
)

var (
	// ErrUnknownPass indicates an <ANALYSIS> child tag outside the known
	// pass vocabulary.
	ErrUnknownPass = errors.New("xmlio: unknown analysis pass tag")

	// ErrBadConfig wraps every configuration validation failure.
	ErrBadConfig = errors.New("xmlio: invalid configuration")
)

// Config is the root <CONFIGURATION> document.
type Config struct {
	XMLName      xml.Name       `xml:"CONFIGURATION"`
	InputOutput  InputOutputDir `xml:"INPUTOUTPUTDIR"`
	Architecture Architecture   `xml:"ARCHITECTURE" validate:"required"`
	Analysis     AnalysisList   `xml:"ANALYSIS"`
}

// InputOutputDir names the directory input/output file names resolve
// against.
type InputOutputDir struct {
	Name string `xml:"name,attr"`
}

// Architecture describes the target, its cache hierarchy and memory.
type Architecture struct {
	Target Target   `xml:"TARGET" validate:"required"`
	Caches []Cache  `xml:"CACHE" validate:"dive"`
	Memory []Memory `xml:"MEMORY" validate:"len=1"`
}

// Target is the instruction-set and endianness selection.
type Target struct {
	Name       string `xml:"NAME,attr" validate:"required,oneof=MIPS ARM"`
	Endianness string `xml:"ENDIANNESS,attr" validate:"required,oneof=BIG LITTLE"`
}

// Cache is one cache level declaration. Type "picache"/"pdcache" declare
// perfect levels.
type Cache struct {
	Type     string `xml:"type,attr" validate:"required,oneof=icache dcache picache pdcache"`
	Level    int    `xml:"level,attr" validate:"required,min=1"`
	NbSets   int    `xml:"nbsets,attr"`
	NbWays   int    `xml:"nbways,attr"`
	LineSize int    `xml:"cachelinesize,attr"`
	Policy   string `xml:"replacement_policy,attr" validate:"omitempty,oneof=LRU PLRU MRU FIFO RANDOM"`
	Latency  int    `xml:"latency,attr"`
}

// Perfect reports whether the declared level never misses.
func (c Cache) Perfect() bool { return c.Type == "picache" || c.Type == "pdcache" }

// Instruction reports whether the declaration belongs to the
// instruction-cache hierarchy.
func (c Cache) Instruction() bool { return c.Type == "icache" || c.Type == "picache" }

// Memory is the main-memory latency pair.
type Memory struct {
	LoadLatency  int `xml:"load_latency,attr" validate:"min=0"`
	StoreLatency int `xml:"store_latency,attr" validate:"min=0"`
}

// Pass is one entry of the ordered analysis sequence. Kind is the tag
// name; the remaining fields are the union of every pass's attributes,
// zero-valued where a pass does not use them.
type Pass struct {
	Kind string

	InputFile   string `xml:"input_file,attr"`
	OutputFile  string `xml:"output_file,attr"`
	KeepResults string `xml:"keepresults,attr"`

	EntryPointName string `xml:"entrypointname,attr"`

	Level       int    `xml:"level,attr"`
	Must        string `xml:"must,attr"`
	Persistence string `xml:"persistence,attr"`
	May         string `xml:"may,attr"`
	KeepAge     string `xml:"keep_age,attr"`

	SP string `xml:"sp,attr"`

	Solver           string `xml:"solver,attr"`
	Pipeline         string `xml:"pipeline,attr"`
	AttachWCETInfo   string `xml:"attach_WCET_info,attr"`
	GenerateNodeFreq string `xml:"generate_node_freq,attr"`

	HTMLFile     string `xml:"html_file,attr"`
	Colorize     string `xml:"colorize,attr"`
	BinaryFile   string `xml:"binaryfile,attr"`
	Addr2LineCmd string `xml:"addr2lineCommand,attr"`
}

// On reports whether an on/off attribute value is "on"; the empty string
// is off.
func On(v string) bool { return v == "on" }

// KeepResults defaults to on: a pass mutates the live program unless the
// configuration explicitly asked for a throwaway clone.
func (p Pass) Keep() bool { return p.KeepResults != "off" }

// knownPasses is the <ANALYSIS> child vocabulary.
var knownPasses = map[string]struct{}{
	"ENTRYPOINT": {}, "ICACHE": {}, "DCACHE": {}, "DATAADDRESS": {},
	"PIPELINE": {}, "IPET": {}, "DOTPRINT": {}, "SIMPLEPRINT": {},
	"HTMLPRINT": {}, "CODELINE": {}, "CACHESTATISTICS": {}, "DUMMYANALYSIS": {},
}

// AnalysisList is the ordered pass sequence.
type AnalysisList struct {
	Passes []Pass
}

// UnmarshalXML collects every child element of <ANALYSIS> in document
// order, tagging each pass with its element name.
func (a *AnalysisList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if _, ok := knownPasses[t.Name.Local]; !ok {
				return ErrUnknownPass
			}
			var p Pass
			if err := d.DecodeElement(&p, &t); err != nil {
				return err
			}
			p.Kind = t.Name.Local
			a.Passes = append(a.Passes, p)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}
