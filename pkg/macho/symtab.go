package macho

import (
	"bytes"
	"fmt"

	"github.com/moscope/moscope/pkg/macho/types"
)

const (
	nlist32Size = 12
	nlist64Size = 16
)

// SymKind is the base classification of an nlist entry's type byte.
type SymKind uint8

const (
	SymUndefined SymKind = iota
	SymAbsolute
	SymSection
	SymIndirect
	SymPrebound
	SymDebug
)

func (k SymKind) String() string {
	switch k {
	case SymUndefined:
		return "undefined"
	case SymAbsolute:
		return "absolute"
	case SymSection:
		return "section-relative"
	case SymIndirect:
		return "indirect"
	case SymPrebound:
		return "prebound-undefined"
	case SymDebug:
		return "debug"
	}
	return "unknown"
}

// A Symbol is one resolved symbol table entry. SectionIndex is the
// 1-based index into the flattened section list when Kind is SymSection
// (0 otherwise); the link is by index, never by pointer, so the model
// stays cycle-free.
type Symbol struct {
	Name         string
	Type         types.NLType
	Kind         SymKind
	SectionIndex int
	Desc         uint16
	Value        uint64
	External     bool
	Debug        bool

	// NameAnomaly is set when the entry's string table offset fell
	// outside the table; Name then holds a placeholder.
	NameAnomaly *Anomaly
}

func (s Symbol) String() string {
	if s.Value == 0 {
		return fmt.Sprintf("            %-10s %s", s.Kind, s.Name)
	}
	return fmt.Sprintf("%#011x: %-10s %s", s.Value, s.Kind, s.Name)
}

func symKind(t types.NLType) SymKind {
	if t.IsDebugSym() {
		return SymDebug
	}
	switch {
	case t.IsAbsoluteSym():
		return SymAbsolute
	case t.IsDefinedInSection():
		return SymSection
	case t.IsIndirectSym():
		return SymIndirect
	case t.IsPreboundUndefinedSym():
		return SymPrebound
	}
	return SymUndefined
}

// parseSymtab walks the nlist array located by the LC_SYMTAB command and
// resolves each entry's name out of the string table. A name offset past
// strsize fails only that entry; enumeration continues with a placeholder
// name and the anomaly attached.
func (f *File) parseSymtab(cmd *SymtabCommand) error {
	entrySize := uint64(nlist32Size)
	if f.is64 {
		entrySize = nlist64Size
	}

	symEnd := uint64(cmd.Symoff) + uint64(cmd.Nsyms)*entrySize
	if symEnd > uint64(len(f.data)) {
		return &TruncatedFileError{
			Offset: uint64(cmd.Symoff),
			Want:   uint64(cmd.Nsyms) * entrySize,
			Have:   uint64(len(f.data)) - min(uint64(cmd.Symoff), uint64(len(f.data))),
			What:   "symbol table",
		}
	}
	strEnd := uint64(cmd.Stroff) + uint64(cmd.Strsize)
	if strEnd > uint64(len(f.data)) {
		return &TruncatedFileError{
			Offset: uint64(cmd.Stroff),
			Want:   uint64(cmd.Strsize),
			Have:   uint64(len(f.data)) - min(uint64(cmd.Stroff), uint64(len(f.data))),
			What:   "string table",
		}
	}
	strtab := f.data[cmd.Stroff:strEnd]

	for i := uint32(0); i < cmd.Nsyms; i++ {
		off := uint64(cmd.Symoff) + uint64(i)*entrySize
		b := f.data[off:]

		var sym Symbol
		strx := f.bo.Uint32(b[0:4])
		sym.Type = types.NLType(b[4])
		sect := b[5]
		if f.is64 {
			sym.Desc = f.bo.Uint16(b[6:8])
			sym.Value = f.bo.Uint64(b[8:16])
		} else {
			sym.Desc = f.bo.Uint16(b[6:8])
			sym.Value = uint64(f.bo.Uint32(b[8:12]))
		}

		sym.Kind = symKind(sym.Type)
		sym.External = sym.Type.IsExternalSym()
		sym.Debug = sym.Type.IsDebugSym()
		if sym.Kind == SymSection && sect != types.NO_SECT {
			sym.SectionIndex = int(sect)
			if int(sect) > len(f.Sections) {
				f.Anomalies = append(f.Anomalies, Anomaly{
					Offset: off,
					Detail: fmt.Sprintf("symbol %d references section %d of %d", i, sect, len(f.Sections)),
				})
			}
		}

		if uint64(strx) >= uint64(len(strtab)) {
			sym.Name = "<string table index out of range>"
			sym.NameAnomaly = &Anomaly{
				Offset: off,
				Detail: fmt.Sprintf("symbol %d string table offset %#x exceeds strsize %#x", i, strx, cmd.Strsize),
			}
			f.Anomalies = append(f.Anomalies, *sym.NameAnomaly)
		} else if strx != 0 {
			rest := strtab[strx:]
			if end := bytes.IndexByte(rest, 0); end >= 0 {
				sym.Name = string(rest[:end])
			} else {
				// unterminated tail still yields the printable run
				sym.Name = string(rest)
			}
		}

		f.Symbols = append(f.Symbols, sym)
	}

	return nil
}

// SectionForSymbol returns the section a section-relative symbol refers
// to, or nil when the symbol carries no (or a bogus) section index.
func (f *File) SectionForSymbol(sym Symbol) *Section {
	if sym.Kind != SymSection || sym.SectionIndex <= 0 || sym.SectionIndex > len(f.Sections) {
		return nil
	}
	return f.Sections[sym.SectionIndex-1]
}
