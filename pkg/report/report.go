// Package report renders a decoded Mach-O model as fixed-column text or
// as a stable JSON document. The package never re-reads the input file;
// everything it prints comes from the already-decoded model.
package report

import (
	"strings"

	"github.com/moscope/moscope/pkg/macho"
	"github.com/moscope/moscope/pkg/macho/types"
)

// Config selects which sections of the report to produce. The zero value
// produces nothing; callers flip on what they asked for.
type Config struct {
	Header     bool
	Loads      bool
	Segments   bool
	Dylibs     bool
	Rpaths     bool
	Symbols    bool
	Strings    bool
	MaxSymbols int
}

// All returns a Config with every section enabled.
func All() Config {
	return Config{
		Header:   true,
		Loads:    true,
		Segments: true,
		Dylibs:   true,
		Rpaths:   true,
		Symbols:  true,
		Strings:  true,
	}
}

// Report is the top-level serializable document: one element per decoded
// architecture slice, with the fat wrapper reduced to a flag.
type Report struct {
	IsFat         bool           `json:"is_fat"`
	Architectures []Architecture `json:"architectures"`
}

type Architecture struct {
	CPUType    string `json:"cpu_type"`
	CPUSubtype string `json:"cpu_subtype"`

	Header       *Header       `json:"header,omitempty"`
	LoadCommands []LoadCommand `json:"load_commands,omitempty"`
	Segments     []Segment     `json:"segments,omitempty"`
	Dylibs       []Dylib       `json:"dylibs,omitempty"`
	Rpaths       []Rpath       `json:"rpaths,omitempty"`
	Symbols      []Symbol      `json:"symbols,omitempty"`
	Strings      []String      `json:"strings,omitempty"`
	Anomalies    []string      `json:"anomalies,omitempty"`
}

type Header struct {
	Magic      string   `json:"magic"`
	FileType   string   `json:"file_type"`
	CPUType    string   `json:"cpu_type"`
	CPUSubtype string   `json:"cpu_subtype"`
	NCmds      uint32   `json:"ncmds"`
	SizeOfCmds uint32   `json:"sizeofcmds"`
	Flags      []string `json:"flags"`
}

type LoadCommand struct {
	Command string `json:"command"`
	Cmd     uint32 `json:"cmd"`
	Size    uint32 `json:"size"`
}

type Segment struct {
	Name     string    `json:"name"`
	VMAddr   uint64    `json:"vmaddr"`
	VMSize   uint64    `json:"vmsize"`
	FileOff  uint64    `json:"fileoff"`
	FileSize uint64    `json:"filesize"`
	MaxProt  string    `json:"maxprot"`
	InitProt string    `json:"initprot"`
	Sections []Section `json:"sections"`
}

type Section struct {
	Name    string `json:"name"`
	Segment string `json:"segment"`
	Kind    string `json:"kind"`
	Addr    uint64 `json:"addr"`
	Size    uint64 `json:"size"`
}

type Dylib struct {
	Path          string `json:"path"`
	Timestamp     uint32 `json:"timestamp"`
	CurrentVer    string `json:"current_version"`
	CompatVer     string `json:"compatibility_version"`
	Kind          string `json:"kind"`
	SourceCommand string `json:"load_command"`
}

type Rpath struct {
	SourceLC string `json:"source_lc"`
	Path     string `json:"path"`
}

type Symbol struct {
	Name     string `json:"name"`
	Value    uint64 `json:"value"`
	Kind     string `json:"kind"`
	Section  string `json:"section,omitempty"`
	External bool   `json:"external"`
	Debug    bool   `json:"debug"`
}

type String struct {
	Value    string `json:"value"`
	SegName  string `json:"segname"`
	SectName string `json:"sectname"`
}

// FromFile projects one decoded slice into its serializable form,
// honoring the Config's section toggles. Extracted strings are passed in
// because extraction runs with its own filter configuration.
func FromFile(f *macho.File, strs []macho.ExtractedString, cfg Config) Architecture {
	arch := Architecture{
		CPUType:    f.Header.CPU.String(),
		CPUSubtype: f.Header.SubCPU.String(f.Header.CPU),
	}

	if cfg.Header {
		arch.Header = &Header{
			Magic:      f.Header.Magic.String(),
			FileType:   f.Header.Type.String(),
			CPUType:    f.Header.CPU.String(),
			CPUSubtype: f.Header.SubCPU.String(f.Header.CPU),
			NCmds:      f.Header.NCommands,
			SizeOfCmds: f.Header.SizeCommands,
			Flags:      f.Header.Flags.List(),
		}
	}

	if cfg.Loads {
		for _, l := range f.Loads {
			arch.LoadCommands = append(arch.LoadCommands, LoadCommand{
				Command: l.Command().String(),
				Cmd:     uint32(l.Command()),
				Size:    l.LoadSize(),
			})
		}
	}

	if cfg.Segments {
		for _, seg := range f.Segments {
			s := Segment{
				Name:     seg.Name,
				VMAddr:   seg.Addr,
				VMSize:   seg.Memsz,
				FileOff:  seg.FileOff,
				FileSize: seg.Filesz,
				MaxProt:  seg.Maxprot.String(),
				InitProt: seg.Prot.String(),
				Sections: []Section{},
			}
			for _, sec := range seg.Sections {
				s.Sections = append(s.Sections, Section{
					Name:    sec.Name,
					Segment: sec.Seg,
					Kind:    sec.Kind.String(),
					Addr:    sec.Addr,
					Size:    sec.Size,
				})
			}
			arch.Segments = append(arch.Segments, s)
		}
	}

	if cfg.Dylibs {
		for _, d := range f.Dylibs() {
			arch.Dylibs = append(arch.Dylibs, Dylib{
				Path:          d.Name,
				Timestamp:     d.Timestamp,
				CurrentVer:    d.CurrentVersion.String(),
				CompatVer:     d.CompatVersion.String(),
				Kind:          d.Kind.String(),
				SourceCommand: d.Command().String(),
			})
		}
	}

	if cfg.Rpaths {
		for _, r := range f.Rpaths() {
			arch.Rpaths = append(arch.Rpaths, Rpath{
				SourceLC: r.Command().String(),
				Path:     r.Path,
			})
		}
	}

	if cfg.Symbols {
		for i, sym := range f.Symbols {
			if cfg.MaxSymbols > 0 && i >= cfg.MaxSymbols {
				break
			}
			s := Symbol{
				Name:     sym.Name,
				Value:    sym.Value,
				Kind:     sym.Kind.String(),
				External: sym.External,
				Debug:    sym.Debug,
			}
			if sec := f.SectionForSymbol(sym); sec != nil {
				s.Section = sec.Seg + "." + sec.Name
			}
			arch.Symbols = append(arch.Symbols, s)
		}
	}

	if cfg.Strings {
		for _, es := range strs {
			arch.Strings = append(arch.Strings, String{
				Value:    es.Value,
				SegName:  es.SegName,
				SectName: es.SectName,
			})
		}
	}

	for _, a := range f.Anomalies {
		arch.Anomalies = append(arch.Anomalies, a.String())
	}

	return arch
}

// ArchLabel is the short "cpu/subtype" form used in slice tables and
// prompts ("x86_64/x86_64" or a bare "arm64e").
func ArchLabel(cpu types.CPU, sub types.CPUSubtype) string {
	c := cpu.String()
	s := strings.TrimSpace(sub.String(cpu))
	if s == "" || s == c {
		return c
	}
	return c + "/" + s
}
