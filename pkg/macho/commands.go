package macho

import (
	"encoding/binary"
	"fmt"

	"github.com/moscope/moscope/pkg/macho/types"
)

// A Load is one decoded load command. Concrete variants are closed over
// the known command set; anything unrecognized is preserved losslessly as
// *UnknownCommand. Each variant owns its decoded payload.
type Load interface {
	Command() types.LoadCmd
	LoadSize() uint32
	String() string
}

// LoadCmdInfo carries the size-prefixed envelope shared by every load
// command, plus any anomalies recorded while decoding it.
type LoadCmdInfo struct {
	LoadCmd types.LoadCmd
	Len     uint32
	// Offset of the command from the start of the slice.
	Offset uint64
	// Anomalies are non-fatal malformations found inside this command.
	Anomalies []Anomaly
}

func (l LoadCmdInfo) Command() types.LoadCmd { return l.LoadCmd }
func (l LoadCmdInfo) LoadSize() uint32       { return l.Len }

func (l LoadCmdInfo) commandAnomalies() []Anomaly { return l.Anomalies }

func (l LoadCmdInfo) String() string {
	return fmt.Sprintf("%s cmd=0x%08x size=%d", l.LoadCmd, uint32(l.LoadCmd), l.Len)
}

// UnknownCommand preserves an unrecognized command id verbatim: raw id,
// declared size, and payload bytes. Its presence never interrupts
// enumeration of the commands after it.
type UnknownCommand struct {
	LoadCmdInfo
	Raw []byte
}

// SymtabCommand locates the nlist array and string table (LC_SYMTAB).
type SymtabCommand struct {
	LoadCmdInfo
	Symoff  uint32
	Nsyms   uint32
	Stroff  uint32
	Strsize uint32
}

func (s *SymtabCommand) String() string {
	return fmt.Sprintf("%s: %d symbols at %#x, strings at %#x (%d bytes)",
		s.LoadCmdInfo, s.Nsyms, s.Symoff, s.Stroff, s.Strsize)
}

// DysymtabCommand is the dynamic symbol table layout (LC_DYSYMTAB).
type DysymtabCommand struct {
	LoadCmdInfo
	Ilocalsym      uint32
	Nlocalsym      uint32
	Iextdefsym     uint32
	Nextdefsym     uint32
	Iundefsym      uint32
	Nundefsym      uint32
	Tocoffset      uint32
	Ntoc           uint32
	Modtaboff      uint32
	Nmodtab        uint32
	Extrefsymoff   uint32
	Nextrefsyms    uint32
	Indirectsymoff uint32
	Nindirectsyms  uint32
	Extreloff      uint32
	Nextrel        uint32
	Locreloff      uint32
	Nlocrel        uint32
}

// DylinkerCommand names the dynamic linker (LC_LOAD_DYLINKER and kin).
type DylinkerCommand struct {
	LoadCmdInfo
	Name string
}

func (d *DylinkerCommand) String() string {
	return fmt.Sprintf("%s: %s", d.LoadCmdInfo, d.Name)
}

// UUIDCommand is the image's build UUID (LC_UUID).
type UUIDCommand struct {
	LoadCmdInfo
	UUID [16]byte
}

func (u *UUIDCommand) String() string {
	b := u.UUID
	return fmt.Sprintf("%s: %02X%02X%02X%02X-%02X%02X-%02X%02X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		u.LoadCmdInfo,
		b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7],
		b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15])
}

// BuildTool is one tool entry trailing an LC_BUILD_VERSION payload.
type BuildTool struct {
	Tool    uint32
	Version types.Version
}

// BuildVersionCommand is the target platform and SDK (LC_BUILD_VERSION).
type BuildVersionCommand struct {
	LoadCmdInfo
	Platform types.Platform
	Minos    types.Version
	Sdk      types.Version
	NTools   uint32
	Tools    []BuildTool
}

func (b *BuildVersionCommand) String() string {
	return fmt.Sprintf("%s: %s minos=%s sdk=%s", b.LoadCmdInfo, b.Platform, b.Minos, b.Sdk)
}

// SourceVersionCommand is the source tree version (LC_SOURCE_VERSION).
type SourceVersionCommand struct {
	LoadCmdInfo
	Version types.SrcVersion
}

func (s *SourceVersionCommand) String() string {
	return fmt.Sprintf("%s: %s", s.LoadCmdInfo, s.Version)
}

// EntryPointCommand is the main entry (LC_MAIN).
type EntryPointCommand struct {
	LoadCmdInfo
	EntryOffset uint64
	StackSize   uint64
}

func (e *EntryPointCommand) String() string {
	return fmt.Sprintf("%s: entry=%#x", e.LoadCmdInfo, e.EntryOffset)
}

// UnixThreadCommand is a legacy LC_THREAD/LC_UNIXTHREAD register state,
// retained raw.
type UnixThreadCommand struct {
	LoadCmdInfo
	Raw []byte
}

// DylibKind classifies the dylib-family load commands.
type DylibKind uint8

const (
	DylibLoad DylibKind = iota
	DylibWeakLoad
	DylibReExport
	DylibLazyLoad
	DylibID
	DylibUpward
)

func (k DylibKind) String() string {
	switch k {
	case DylibLoad:
		return "LOAD"
	case DylibWeakLoad:
		return "WEAK"
	case DylibReExport:
		return "REEXPORT"
	case DylibLazyLoad:
		return "LAZY"
	case DylibID:
		return "ID"
	case DylibUpward:
		return "UPWARD"
	}
	return "UNKNOWN"
}

// DylibCommand records one linked dynamic library (the LC_LOAD_DYLIB
// family). Name is the null-terminated path stored inline in the command
// payload; nothing is validated against the filesystem.
type DylibCommand struct {
	LoadCmdInfo
	Kind           DylibKind
	Name           string
	Timestamp      uint32
	CurrentVersion types.Version
	CompatVersion  types.Version
}

func (d *DylibCommand) String() string {
	return fmt.Sprintf("%s: [%s] %s (%s)", d.LoadCmdInfo, d.Kind, d.Name, d.CurrentVersion)
}

// RpathCommand is one runtime search path (LC_RPATH).
type RpathCommand struct {
	LoadCmdInfo
	Path string
}

func (r *RpathCommand) String() string {
	return fmt.Sprintf("%s: %s", r.LoadCmdInfo, r.Path)
}

// LinkEditDataCommand points at a blob in __LINKEDIT (LC_FUNCTION_STARTS,
// LC_DATA_IN_CODE, LC_CODE_SIGNATURE, LC_DYLD_CHAINED_FIXUPS,
// LC_DYLD_EXPORTS_TRIE, ...).
type LinkEditDataCommand struct {
	LoadCmdInfo
	DataOff  uint32
	DataSize uint32
}

func (l *LinkEditDataCommand) String() string {
	return fmt.Sprintf("%s: off=%#x size=%d", l.LoadCmdInfo, l.DataOff, l.DataSize)
}

// decodeState is everything a per-command decoder needs: the command's
// payload, the slice's byte order and word size, and the full slice for
// commands that reference data outside themselves.
type decodeState struct {
	bo    binary.ByteOrder
	is64  bool
	slice []byte
}

type decoderFunc func(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error)

// commandDecoders dispatches per command id. Adding a command type means
// adding an entry here; the enumerator loop never changes.
var commandDecoders = map[types.LoadCmd]decoderFunc{
	types.LC_SEGMENT:                  decodeSegment,
	types.LC_SEGMENT_64:               decodeSegment,
	types.LC_SYMTAB:                   decodeSymtab,
	types.LC_DYSYMTAB:                 decodeDysymtab,
	types.LC_LOAD_DYLINKER:            decodeDylinker,
	types.LC_ID_DYLINKER:              decodeDylinker,
	types.LC_DYLD_ENVIRONMENT:         decodeDylinker,
	types.LC_UUID:                     decodeUUID,
	types.LC_BUILD_VERSION:            decodeBuildVersion,
	types.LC_SOURCE_VERSION:           decodeSourceVersion,
	types.LC_MAIN:                     decodeEntryPoint,
	types.LC_THREAD:                   decodeUnixThread,
	types.LC_UNIXTHREAD:               decodeUnixThread,
	types.LC_LOAD_DYLIB:               decodeDylib,
	types.LC_LOAD_WEAK_DYLIB:          decodeDylib,
	types.LC_REEXPORT_DYLIB:           decodeDylib,
	types.LC_LAZY_LOAD_DYLIB:          decodeDylib,
	types.LC_ID_DYLIB:                 decodeDylib,
	types.LC_LOAD_UPWARD_DYLIB:        decodeDylib,
	types.LC_RPATH:                    decodeRpath,
	types.LC_FUNCTION_STARTS:          decodeLinkEditData,
	types.LC_DATA_IN_CODE:             decodeLinkEditData,
	types.LC_CODE_SIGNATURE:           decodeLinkEditData,
	types.LC_SEGMENT_SPLIT_INFO:       decodeLinkEditData,
	types.LC_DYLD_CHAINED_FIXUPS:      decodeLinkEditData,
	types.LC_DYLD_EXPORTS_TRIE:        decodeLinkEditData,
	types.LC_LINKER_OPTIMIZATION_HINT: decodeLinkEditData,
	types.LC_DYLIB_CODE_SIGN_DRS:      decodeLinkEditData,
}

func decodeSymtab(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 24 {
		return nil, fmt.Errorf("LC_SYMTAB payload too small: %d bytes", len(payload))
	}
	return &SymtabCommand{
		LoadCmdInfo: info,
		Symoff:      st.bo.Uint32(payload[8:]),
		Nsyms:       st.bo.Uint32(payload[12:]),
		Stroff:      st.bo.Uint32(payload[16:]),
		Strsize:     st.bo.Uint32(payload[20:]),
	}, nil
}

func decodeDysymtab(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 80 {
		return nil, fmt.Errorf("LC_DYSYMTAB payload too small: %d bytes", len(payload))
	}
	d := &DysymtabCommand{LoadCmdInfo: info}
	fields := []*uint32{
		&d.Ilocalsym, &d.Nlocalsym, &d.Iextdefsym, &d.Nextdefsym,
		&d.Iundefsym, &d.Nundefsym, &d.Tocoffset, &d.Ntoc,
		&d.Modtaboff, &d.Nmodtab, &d.Extrefsymoff, &d.Nextrefsyms,
		&d.Indirectsymoff, &d.Nindirectsyms, &d.Extreloff, &d.Nextrel,
		&d.Locreloff, &d.Nlocrel,
	}
	for i, f := range fields {
		*f = st.bo.Uint32(payload[8+4*i:])
	}
	return d, nil
}

// lcString reads an inline lc_str payload string: a 4-byte offset from the
// start of the command followed, somewhere inside the command, by a
// null-terminated path.
func lcString(bo binary.ByteOrder, payload []byte, at int) (string, error) {
	if len(payload) < at+4 {
		return "", fmt.Errorf("lc_str offset field out of bounds")
	}
	strOff := int(bo.Uint32(payload[at:]))
	if strOff >= len(payload) {
		return "", fmt.Errorf("lc_str offset %d exceeds cmdsize %d", strOff, len(payload))
	}
	b := payload[strOff:]
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return "", fmt.Errorf("unterminated lc_str")
}

func decodeDylinker(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	name, err := lcString(st.bo, payload, 8)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.LoadCmd, err)
	}
	return &DylinkerCommand{LoadCmdInfo: info, Name: name}, nil
}

func decodeUUID(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 24 {
		return nil, fmt.Errorf("LC_UUID payload too small: %d bytes", len(payload))
	}
	u := &UUIDCommand{LoadCmdInfo: info}
	copy(u.UUID[:], payload[8:24])
	return u, nil
}

func decodeBuildVersion(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 24 {
		return nil, fmt.Errorf("LC_BUILD_VERSION payload too small: %d bytes", len(payload))
	}
	b := &BuildVersionCommand{
		LoadCmdInfo: info,
		Platform:    types.Platform(st.bo.Uint32(payload[8:])),
		Minos:       types.Version(st.bo.Uint32(payload[12:])),
		Sdk:         types.Version(st.bo.Uint32(payload[16:])),
		NTools:      st.bo.Uint32(payload[20:]),
	}
	for i := uint32(0); i < b.NTools; i++ {
		off := 24 + 8*int(i)
		if off+8 > len(payload) {
			b.Anomalies = append(b.Anomalies, Anomaly{
				Offset: info.Offset + uint64(off),
				Detail: fmt.Sprintf("LC_BUILD_VERSION declares %d tools but payload holds %d", b.NTools, i),
			})
			break
		}
		b.Tools = append(b.Tools, BuildTool{
			Tool:    st.bo.Uint32(payload[off:]),
			Version: types.Version(st.bo.Uint32(payload[off+4:])),
		})
	}
	return b, nil
}

func decodeSourceVersion(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 16 {
		return nil, fmt.Errorf("LC_SOURCE_VERSION payload too small: %d bytes", len(payload))
	}
	return &SourceVersionCommand{
		LoadCmdInfo: info,
		Version:     types.SrcVersion(st.bo.Uint64(payload[8:])),
	}, nil
}

func decodeEntryPoint(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 24 {
		return nil, fmt.Errorf("LC_MAIN payload too small: %d bytes", len(payload))
	}
	return &EntryPointCommand{
		LoadCmdInfo: info,
		EntryOffset: st.bo.Uint64(payload[8:]),
		StackSize:   st.bo.Uint64(payload[16:]),
	}, nil
}

func decodeUnixThread(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	raw := make([]byte, len(payload)-8)
	copy(raw, payload[8:])
	return &UnixThreadCommand{LoadCmdInfo: info, Raw: raw}, nil
}

func decodeDylib(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 24 {
		return nil, fmt.Errorf("%s payload too small: %d bytes", info.LoadCmd, len(payload))
	}
	name, err := lcString(st.bo, payload, 8)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.LoadCmd, err)
	}
	var kind DylibKind
	switch info.LoadCmd {
	case types.LC_LOAD_DYLIB:
		kind = DylibLoad
	case types.LC_LOAD_WEAK_DYLIB:
		kind = DylibWeakLoad
	case types.LC_REEXPORT_DYLIB:
		kind = DylibReExport
	case types.LC_LAZY_LOAD_DYLIB:
		kind = DylibLazyLoad
	case types.LC_ID_DYLIB:
		kind = DylibID
	case types.LC_LOAD_UPWARD_DYLIB:
		kind = DylibUpward
	}
	return &DylibCommand{
		LoadCmdInfo:    info,
		Kind:           kind,
		Name:           name,
		Timestamp:      st.bo.Uint32(payload[12:]),
		CurrentVersion: types.Version(st.bo.Uint32(payload[16:])),
		CompatVersion:  types.Version(st.bo.Uint32(payload[20:])),
	}, nil
}

func decodeRpath(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	path, err := lcString(st.bo, payload, 8)
	if err != nil {
		return nil, fmt.Errorf("LC_RPATH: %w", err)
	}
	return &RpathCommand{LoadCmdInfo: info, Path: path}, nil
}

func decodeLinkEditData(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	if len(payload) < 16 {
		return nil, fmt.Errorf("%s payload too small: %d bytes", info.LoadCmd, len(payload))
	}
	return &LinkEditDataCommand{
		LoadCmdInfo: info,
		DataOff:     st.bo.Uint32(payload[8:]),
		DataSize:    st.bo.Uint32(payload[12:]),
	}, nil
}
