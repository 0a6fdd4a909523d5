package report

import (
	"encoding/json"
	"testing"
)

func TestReportJSONShape(t *testing.T) {
	rep := Report{
		IsFat: true,
		Architectures: []Architecture{{
			CPUType:    "ARM64",
			CPUSubtype: "arm64e",
			Header: &Header{
				Magic:      "64-bit MachO",
				FileType:   "MH_EXECUTE",
				CPUType:    "ARM64",
				CPUSubtype: "arm64e",
				NCmds:      18,
				SizeOfCmds: 1234,
				Flags:      []string{"NOUNDEFS", "PIE"},
			},
			LoadCommands: []LoadCommand{{Command: "LC_SYMTAB", Cmd: 0x2, Size: 24}},
			Segments: []Segment{{
				Name: "__TEXT", VMAddr: 0x100000000, VMSize: 0x4000,
				MaxProt: "r-x", InitProt: "r-x",
				Sections: []Section{{Name: "__text", Segment: "__TEXT", Kind: "Code", Addr: 0x100001000, Size: 0x100}},
			}},
			Dylibs: []Dylib{{
				Path: "/usr/lib/libSystem.B.dylib", Timestamp: 2,
				CurrentVer: "1.2.3", CompatVer: "1.0.0",
				Kind: "LOAD", SourceCommand: "LC_LOAD_DYLIB",
			}},
			Rpaths:  []Rpath{{SourceLC: "LC_RPATH", Path: "@loader_path/../Frameworks"}},
			Symbols: []Symbol{{Name: "_main", Value: 0x100001000, Kind: "section-relative", Section: "__TEXT.__text", External: true}},
			Strings: []String{{Value: "hello", SegName: "__TEXT", SectName: "__cstring"}},
		}},
	}

	raw, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if _, ok := doc["is_fat"]; !ok {
		t.Error("missing top-level key is_fat")
	}
	archesAny, ok := doc["architectures"].([]any)
	if !ok || len(archesAny) != 1 {
		t.Fatalf("architectures = %v", doc["architectures"])
	}
	arch := archesAny[0].(map[string]any)

	for _, key := range []string{"cpu_type", "cpu_subtype", "header", "load_commands", "segments", "dylibs", "rpaths", "symbols", "strings"} {
		if _, ok := arch[key]; !ok {
			t.Errorf("missing architecture key %q", key)
		}
	}

	hdr := arch["header"].(map[string]any)
	for _, key := range []string{"magic", "file_type", "cpu_type", "cpu_subtype", "ncmds", "sizeofcmds", "flags"} {
		if _, ok := hdr[key]; !ok {
			t.Errorf("missing header key %q", key)
		}
	}

	lc := arch["load_commands"].([]any)[0].(map[string]any)
	for _, key := range []string{"command", "cmd", "size"} {
		if _, ok := lc[key]; !ok {
			t.Errorf("missing load_commands key %q", key)
		}
	}

	seg := arch["segments"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "vmaddr", "vmsize", "fileoff", "filesize", "maxprot", "initprot", "sections"} {
		if _, ok := seg[key]; !ok {
			t.Errorf("missing segments key %q", key)
		}
	}
	sec := seg["sections"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "segment", "kind", "addr", "size"} {
		if _, ok := sec[key]; !ok {
			t.Errorf("missing sections key %q", key)
		}
	}

	dylib := arch["dylibs"].([]any)[0].(map[string]any)
	for _, key := range []string{"path", "timestamp", "current_version", "compatibility_version", "kind", "load_command"} {
		if _, ok := dylib[key]; !ok {
			t.Errorf("missing dylibs key %q", key)
		}
	}

	rpath := arch["rpaths"].([]any)[0].(map[string]any)
	for _, key := range []string{"source_lc", "path"} {
		if _, ok := rpath[key]; !ok {
			t.Errorf("missing rpaths key %q", key)
		}
	}

	sym := arch["symbols"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "value", "kind", "section", "external", "debug"} {
		if _, ok := sym[key]; !ok {
			t.Errorf("missing symbols key %q", key)
		}
	}

	str := arch["strings"].([]any)[0].(map[string]any)
	for _, key := range []string{"value", "segname", "sectname"} {
		if _, ok := str[key]; !ok {
			t.Errorf("missing strings key %q", key)
		}
	}
}

func TestConfigAll(t *testing.T) {
	cfg := All()
	if !cfg.Header || !cfg.Loads || !cfg.Segments || !cfg.Dylibs || !cfg.Rpaths || !cfg.Symbols || !cfg.Strings {
		t.Errorf("All() left a section disabled: %+v", cfg)
	}
	if cfg.MaxSymbols != 0 {
		t.Errorf("All() set MaxSymbols = %d, want 0", cfg.MaxSymbols)
	}
}
