package macho

import (
	"fmt"
	"strings"

	"github.com/moscope/moscope/pkg/macho/types"
)

const (
	headerSize32 = 28
	headerSize64 = 32
)

// Header is the fixed-size header of one thin Mach-O slice. Magic alone
// determines the slice's word size and byte order; every later numeric
// read of the slice uses the order resolved from it.
type Header struct {
	Magic        types.Magic
	CPU          types.CPU
	SubCPU       types.CPUSubtype
	Type         types.HeaderFileType
	NCommands    uint32
	SizeCommands uint32
	Flags        types.HeaderFlag
	Reserved     uint32
}

func parseHeader(data []byte) (Header, Format, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return Header{}, FormatUnknown, err
	}
	if format.IsFat() {
		return Header{}, FormatUnknown, fmt.Errorf("fat magic where a thin slice was expected: %w", ErrNotFat)
	}

	size := uint64(headerSize32)
	if format.Is64() {
		size = headerSize64
	}
	if uint64(len(data)) < size {
		return Header{}, format, &TruncatedFileError{Offset: 0, Want: size, Have: uint64(len(data)), What: "mach header"}
	}

	bo := format.ByteOrder()
	h := Header{
		Magic:        types.Magic(bo.Uint32(data[0:4])),
		CPU:          types.CPU(bo.Uint32(data[4:8])),
		SubCPU:       types.CPUSubtype(bo.Uint32(data[8:12])),
		Type:         types.HeaderFileType(bo.Uint32(data[12:16])),
		NCommands:    bo.Uint32(data[16:20]),
		SizeCommands: bo.Uint32(data[20:24]),
		Flags:        types.HeaderFlag(bo.Uint32(data[24:28])),
	}
	if format.Is64() {
		h.Reserved = bo.Uint32(data[28:32])
	}
	return h, format, nil
}

// Size returns the on-disk header size for the slice's word width. The
// magic decides, never the cputype, so a slice whose cputype lies about
// its width still walks its commands from the right offset.
func (h Header) Size() uint32 {
	switch h.Magic {
	case types.Magic64, types.Cigam64:
		return headerSize64
	}
	return headerSize32
}

func (h Header) String() string {
	return fmt.Sprintf(
		"Magic         = %s\n"+
			"Type          = %s (%s)\n"+
			"CPU           = %s, %s %s\n"+
			"Commands      = %d (Size: %d)\n"+
			"Flags         = %s\n",
		h.Magic,
		h.Type, h.Type.Description(),
		h.CPU, strings.TrimSpace(h.SubCPU.String(h.CPU)), h.SubCPU.Caps(h.CPU),
		h.NCommands,
		h.SizeCommands,
		h.Flags,
	)
}
