package macho

import (
	"encoding/binary"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/moscope/moscope/pkg/macho/types"
)

// testBin assembles a little-endian 64-bit Mach-O in memory. Layout:
// header and load commands at 0, cstring payload at 0x2000, nlist array
// at 0x3000, string table at 0x3100. The whole file is covered by one
// __TEXT segment so VM-image reads resolve.
type testBin struct {
	buf []byte
}

func (b *testBin) u32(v uint32) {
	var w [4]byte
	binary.LittleEndian.PutUint32(w[:], v)
	b.buf = append(b.buf, w[:]...)
}

func (b *testBin) u64(v uint64) {
	var w [8]byte
	binary.LittleEndian.PutUint64(w[:], v)
	b.buf = append(b.buf, w[:]...)
}

func (b *testBin) name16(s string) {
	var w [16]byte
	copy(w[:], s)
	b.buf = append(b.buf, w[:]...)
}

func (b *testBin) pad(to int) {
	for len(b.buf)%to != 0 {
		b.buf = append(b.buf, 0)
	}
}

const (
	testCStrings = "hello world\x00https://example.com\x00ab\x00halfway\x01cutoff\x00"
	testTextStr  = "stack_chk_fail\x00"
	testStrtab   = "\x00_main\x00_helper\x00"
)

type binOpts struct {
	ncmds        uint32 // 0 means the real count
	extraCmd     []byte // appended verbatim after the known commands
	symStrx0     uint32 // string offset of the first symbol, default 1
	headerFlags  uint32
	deltaSizeCmd int32 // added to the computed sizeofcmds
}

// buildTestBin produces the standard fixture: one __TEXT segment with
// __text and __cstring, LC_LOAD_DYLIB, LC_RPATH, LC_SYMTAB, and an
// unrecognized command id.
func buildTestBin(opts binOpts) []byte {
	var cmds testBin

	// LC_SEGMENT_64 __TEXT (2 sections)
	cmds.u32(uint32(types.LC_SEGMENT_64))
	cmds.u32(72 + 2*80)
	cmds.name16("__TEXT")
	cmds.u64(0x100000000) // vmaddr
	cmds.u64(0x4000)      // vmsize
	cmds.u64(0)           // fileoff
	cmds.u64(0x4000)      // filesz
	cmds.u32(5)           // maxprot r-x
	cmds.u32(5)           // initprot r-x
	cmds.u32(2)           // nsects
	cmds.u32(0)           // flags

	cmds.name16("__text")
	cmds.name16("__TEXT")
	cmds.u64(0x100001000)
	cmds.u64(0x100)
	cmds.u32(0x1000)
	cmds.u32(4)
	cmds.u32(0)
	cmds.u32(0)
	cmds.u32(uint32(types.S_ATTR_PURE_INSTRUCTIONS | types.S_ATTR_SOME_INSTRUCTIONS))
	cmds.u32(0)
	cmds.u32(0)
	cmds.u32(0)

	cmds.name16("__cstring")
	cmds.name16("__TEXT")
	cmds.u64(0x100002000)
	cmds.u64(uint64(len(testCStrings)))
	cmds.u32(0x2000)
	cmds.u32(0)
	cmds.u32(0)
	cmds.u32(0)
	cmds.u32(uint32(types.S_CSTRING_LITERALS))
	cmds.u32(0)
	cmds.u32(0)
	cmds.u32(0)

	// LC_LOAD_DYLIB /usr/lib/libSystem.B.dylib
	path := "/usr/lib/libSystem.B.dylib"
	dylibSize := uint32(24 + len(path) + 1)
	dylibSize = (dylibSize + 7) &^ 7
	cmds.u32(uint32(types.LC_LOAD_DYLIB))
	cmds.u32(dylibSize)
	cmds.u32(24)         // lc_str offset
	cmds.u32(2)          // timestamp
	cmds.u32(0x00010203) // current version 1.2.3
	cmds.u32(0x00010000) // compat version 1.0.0
	cmds.buf = append(cmds.buf, path...)
	cmds.buf = append(cmds.buf, 0)
	cmds.pad(8)

	// LC_RPATH @loader_path/../Frameworks
	rpath := "@loader_path/../Frameworks"
	rpathSize := uint32(12 + len(rpath) + 1)
	rpathSize = (rpathSize + 7) &^ 7
	cmds.u32(uint32(types.LC_RPATH))
	cmds.u32(rpathSize)
	cmds.u32(12)
	cmds.buf = append(cmds.buf, rpath...)
	cmds.buf = append(cmds.buf, 0)
	cmds.pad(8)

	// LC_SYMTAB
	cmds.u32(uint32(types.LC_SYMTAB))
	cmds.u32(24)
	cmds.u32(0x3000) // symoff
	cmds.u32(2)      // nsyms
	cmds.u32(0x3100) // stroff
	cmds.u32(uint32(len(testStrtab)))

	// an id nothing recognizes
	cmds.u32(0x12345678)
	cmds.u32(40)
	cmds.buf = append(cmds.buf, make([]byte, 32)...)

	ncmds := uint32(5)

	cmds.buf = append(cmds.buf, opts.extraCmd...)

	sizeofcmds := uint32(int32(len(cmds.buf)) + opts.deltaSizeCmd)
	if opts.ncmds != 0 {
		ncmds = opts.ncmds
	}

	var hdr testBin
	hdr.u32(uint32(types.Magic64))
	hdr.u32(uint32(types.CPUArm64))
	hdr.u32(0x80000002) // arm64e
	hdr.u32(uint32(types.MH_EXECUTE))
	hdr.u32(ncmds)
	hdr.u32(sizeofcmds)
	hdr.u32(opts.headerFlags)
	hdr.u32(0)

	out := make([]byte, 0x4000)
	copy(out, hdr.buf)
	copy(out[32:], cmds.buf)
	copy(out[0x1001:], testTextStr)
	copy(out[0x2000:], testCStrings)

	// nlist64 entries
	var syms testBin
	strx0 := uint32(1)
	if opts.symStrx0 != 0 {
		strx0 = opts.symStrx0
	}
	syms.u32(strx0)
	syms.buf = append(syms.buf, 0x0f, 1) // N_SECT|N_EXT in __text
	syms.buf = append(syms.buf, 0, 0)    // desc
	syms.u64(0x100001000)
	syms.u32(7)                          // "_helper"
	syms.buf = append(syms.buf, 0x0e, 2) // N_SECT in __cstring
	syms.buf = append(syms.buf, 0, 0)
	syms.u64(0x100002000)
	copy(out[0x3000:], syms.buf)
	copy(out[0x3100:], testStrtab)

	return out
}

func TestParse(t *testing.T) {
	data := buildTestBin(binOpts{headerFlags: 0x00210085})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if f.Header.NCommands != 5 {
		t.Errorf("NCommands = %d, want 5", f.Header.NCommands)
	}
	if got := len(f.Loads); got != 5 {
		t.Fatalf("len(Loads) = %d, want 5", got)
	}
	if len(f.Anomalies) != 0 {
		t.Errorf("unexpected anomalies: %v", f.Anomalies)
	}
	if f.Header.CPU != types.CPUArm64 || !f.Header.SubCPU.IsPtrAuth() {
		t.Errorf("cpu = %s/%s, want ARM64/arm64e", f.Header.CPU, f.Header.SubCPU.String(f.Header.CPU))
	}
	want := []string{"NOUNDEFS", "DYLDLINK", "TWOLEVEL", "BINDS_TO_WEAK", "PIE"}
	if got := f.Header.Flags.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flags.List() = %v, want %v", got, want)
	}
}

func TestParseSegments(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(f.Segments) != 1 {
		t.Fatalf("len(Segments) = %d, want 1", len(f.Segments))
	}
	seg := f.Segments[0]
	if seg.Name != "__TEXT" || seg.Addr != 0x100000000 || seg.Nsect != 2 {
		t.Errorf("segment = %+v", seg)
	}
	if got := seg.Prot.String(); got != "r-x" {
		t.Errorf("initprot = %q, want r-x", got)
	}

	if len(f.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(f.Sections))
	}
	tests := []struct {
		idx  int
		name string
		kind Kind
	}{
		{1, "__text", KindCode},
		{2, "__cstring", KindCString},
	}
	for _, tt := range tests {
		sec := f.Sections[tt.idx-1]
		if sec.Index != tt.idx {
			t.Errorf("section %s Index = %d, want %d", sec.Name, sec.Index, tt.idx)
		}
		if sec.Name != tt.name || sec.Kind != tt.kind {
			t.Errorf("section[%d] = %s (%s), want %s (%s)", tt.idx, sec.Name, sec.Kind, tt.name, tt.kind)
		}
	}

	if sec := f.Section("__TEXT", "__cstring"); sec == nil || sec.Kind != KindCString {
		t.Errorf("Section(__TEXT, __cstring) = %v", sec)
	}
}

func TestParseDylibsAndRpaths(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	dylibs := f.Dylibs()
	if len(dylibs) != 1 {
		t.Fatalf("len(Dylibs) = %d, want 1", len(dylibs))
	}
	d := dylibs[0]
	if d.Name != "/usr/lib/libSystem.B.dylib" {
		t.Errorf("dylib name = %q", d.Name)
	}
	if d.Kind != DylibLoad {
		t.Errorf("dylib kind = %s, want LOAD", d.Kind)
	}
	if got := d.CurrentVersion.String(); got != "1.2.3" {
		t.Errorf("current version = %q, want 1.2.3", got)
	}
	if got := d.CompatVersion.String(); got != "1.0.0" {
		t.Errorf("compat version = %q, want 1.0.0", got)
	}

	rpaths := f.Rpaths()
	if len(rpaths) != 1 || rpaths[0].Path != "@loader_path/../Frameworks" {
		t.Errorf("rpaths = %v", rpaths)
	}
}

func TestParseSymbols(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(f.Symbols) != 2 {
		t.Fatalf("len(Symbols) = %d, want 2", len(f.Symbols))
	}
	s0 := f.Symbols[0]
	if s0.Name != "_main" || s0.Kind != SymSection || !s0.External {
		t.Errorf("symbol[0] = %+v", s0)
	}
	if sec := f.SectionForSymbol(s0); sec == nil || sec.Name != "__text" {
		t.Errorf("SectionForSymbol(_main) = %v, want __text", sec)
	}
	s1 := f.Symbols[1]
	if s1.Name != "_helper" || s1.External {
		t.Errorf("symbol[1] = %+v", s1)
	}
	if sec := f.SectionForSymbol(s1); sec == nil || sec.Name != "__cstring" {
		t.Errorf("SectionForSymbol(_helper) = %v, want __cstring", sec)
	}
}

func TestParseSymbolStrxOutOfRange(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{symStrx0: 0x500}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(f.Symbols) != 2 {
		t.Fatalf("len(Symbols) = %d, want 2 (bad name must not drop the entry)", len(f.Symbols))
	}
	s0 := f.Symbols[0]
	if s0.NameAnomaly == nil {
		t.Fatal("symbol[0].NameAnomaly = nil, want set")
	}
	if s0.Name != "<string table index out of range>" {
		t.Errorf("symbol[0].Name = %q", s0.Name)
	}
	if f.Symbols[1].Name != "_helper" {
		t.Errorf("symbol[1].Name = %q, want _helper (walk must continue)", f.Symbols[1].Name)
	}
	if len(f.Anomalies) == 0 {
		t.Error("expected a file-level anomaly for the bad string index")
	}
}

func TestParseUnknownCommand(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	last := f.Loads[len(f.Loads)-1]
	u, ok := last.(*UnknownCommand)
	if !ok {
		t.Fatalf("last load = %T, want *UnknownCommand", last)
	}
	if uint32(u.Command()) != 0x12345678 {
		t.Errorf("unknown cmd = %#x, want 0x12345678", uint32(u.Command()))
	}
	if u.LoadSize() != 40 || len(u.Raw) != 40 {
		t.Errorf("unknown size = %d raw = %d, want 40/40", u.LoadSize(), len(u.Raw))
	}
}

func TestParseSizeofcmdsMismatch(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{deltaSizeCmd: 8}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Anomalies) == 0 {
		t.Error("expected a sizeofcmds mismatch anomaly")
	}
}

func TestParseCommandPastSizeofcmds(t *testing.T) {
	_, err := Parse(buildTestBin(binOpts{deltaSizeCmd: -8}))
	if err == nil {
		t.Fatal("Parse() with a command escaping sizeofcmds succeeded, want error")
	}
	if _, ok := err.(*TruncatedFileError); !ok {
		t.Errorf("error = %T (%v), want *TruncatedFileError", err, err)
	}
}

func TestHeaderSizeFollowsMagic(t *testing.T) {
	h := Header{Magic: types.Magic64, CPU: types.CPUI386}
	if got := h.Size(); got != headerSize64 {
		t.Errorf("Size() with a 64-bit magic = %d, want %d", got, headerSize64)
	}
	h = Header{Magic: types.Magic32, CPU: types.CPUArm64}
	if got := h.Size(); got != headerSize32 {
		t.Errorf("Size() with a 32-bit magic = %d, want %d", got, headerSize32)
	}
}

func TestParseTruncatedCommands(t *testing.T) {
	data := buildTestBin(binOpts{})
	_, err := Parse(data[:40])
	if err == nil {
		t.Fatal("Parse() of truncated buffer succeeded, want error")
	}
	if _, ok := err.(*TruncatedFileError); !ok {
		t.Errorf("error = %T (%v), want *TruncatedFileError", err, err)
	}
}

func TestParseIdempotent(t *testing.T) {
	data := buildTestBin(binOpts{})
	f1, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f2, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(f1.Symbols, f2.Symbols) {
		t.Error("symbol lists differ across identical parses")
	}
	if !reflect.DeepEqual(f1.Header, f2.Header) {
		t.Error("headers differ across identical parses")
	}
}

func TestExtractStrings(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name string
		cfg  StringConfig
		want []string
	}{
		{
			name: "defaults scan every section",
			cfg:  StringConfig{},
			want: []string{"stack_chk_fail", "hello world", "https://example.com", "cutoff"},
		},
		{
			name: "min length",
			cfg:  StringConfig{MinLen: 12},
			want: []string{"stack_chk_fail", "https://example.com"},
		},
		{
			name: "pattern",
			cfg:  StringConfig{Pattern: regexp.MustCompile(`^https?://`)},
			want: []string{"https://example.com"},
		},
		{
			name: "max count",
			cfg:  StringConfig{MaxCount: 1},
			want: []string{"stack_chk_fail"},
		},
		{
			name: "include by qualified name",
			cfg:  StringConfig{Include: []string{"__TEXT.__cstring"}},
			want: []string{"hello world", "https://example.com", "cutoff"},
		},
		{
			name: "exclude wins",
			cfg:  StringConfig{Exclude: []string{"__cstring"}},
			want: []string{"stack_chk_fail"},
		},
		{
			name: "run cut by a control byte is dropped",
			cfg:  StringConfig{Pattern: regexp.MustCompile(`halfway|cutoff`)},
			want: []string{"cutoff"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ExtractStrings(tt.cfg)
			if err != nil {
				t.Fatalf("ExtractStrings() error = %v", err)
			}
			var vals []string
			for _, s := range got {
				vals = append(vals, s.Value)
			}
			if !reflect.DeepEqual(vals, tt.want) {
				t.Errorf("ExtractStrings() = %v, want %v", vals, tt.want)
			}
		})
	}
}

func TestExtractStringsProvenance(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	strs, err := f.ExtractStrings(StringConfig{})
	if err != nil {
		t.Fatalf("ExtractStrings() error = %v", err)
	}
	byVal := make(map[string]ExtractedString)
	for _, s := range strs {
		byVal[s.Value] = s
	}
	if s, ok := byVal["stack_chk_fail"]; !ok || s.SectName != "__text" || s.Addr != 0x100001001 {
		t.Errorf("stack_chk_fail = %+v, want __text @ 0x100001001", s)
	}
	if s, ok := byVal["hello world"]; !ok || s.SegName != "__TEXT" || s.SectName != "__cstring" || s.Addr != 0x100002000 {
		t.Errorf("hello world = %+v, want __TEXT.__cstring @ 0x100002000", s)
	}
}

func TestParseMisalignedCmdsize(t *testing.T) {
	var extra testBin
	extra.u32(0x3f3f3f3f)
	extra.u32(12) // 4-aligned but not 8-aligned
	extra.u32(0)
	f, err := Parse(buildTestBin(binOpts{extraCmd: extra.buf, ncmds: 6}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Loads) != 6 {
		t.Errorf("len(Loads) = %d, want 6 (misalignment must not halt the walk)", len(f.Loads))
	}
	found := false
	for _, a := range f.Anomalies {
		if strings.Contains(a.Detail, "not a multiple") {
			found = true
		}
	}
	if !found {
		t.Errorf("no misalignment anomaly recorded: %v", f.Anomalies)
	}
}

func TestImageZerofillReadsZeroed(t *testing.T) {
	img := &Image{Base: 0x1000, Mem: make([]byte, 0x100)}
	sec := &Section{Name: "__bss", Seg: "__DATA", Addr: 0x1080, Size: 0x20, Flags: types.S_ZEROFILL}
	b := img.ReadSection(sec)
	if len(b) != 0x20 {
		t.Fatalf("len(ReadSection) = %d, want 0x20", len(b))
	}
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, c)
		}
	}
}

func TestVMImage(t *testing.T) {
	f, err := Parse(buildTestBin(binOpts{}))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	img, err := f.VMImage()
	if err != nil {
		t.Fatalf("VMImage() error = %v", err)
	}
	if img.Base != 0x100000000 {
		t.Errorf("Base = %#x, want 0x100000000", img.Base)
	}
	sec := f.Section("__TEXT", "__cstring")
	got := img.ReadSection(sec)
	if string(got) != testCStrings {
		t.Errorf("ReadSection(__cstring) = %q", got)
	}
	// windows past the mapped range clamp instead of failing
	if b := img.ReadAt(0x100003f00, 0x1000); len(b) != 0x100 {
		t.Errorf("clamped read = %d bytes, want 0x100", len(b))
	}
	if b := img.ReadAt(0x200000000, 16); b != nil {
		t.Errorf("out-of-image read = %v, want nil", b)
	}
}
