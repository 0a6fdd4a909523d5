// Package macho statically decodes Mach-O executables, including universal
// (fat) containers, into an immutable, semantically classified model. The
// whole input is read into memory before parsing; all decoding is pure
// computation over that buffer and everything is produced in on-disk order.
package macho

import (
	"encoding/binary"

	"github.com/moscope/moscope/pkg/macho/types"
)

// Format classifies the leading magic of a buffer: thin vs fat, 32 vs
// 64-bit, and whether multi-byte fields were written in the opposite byte
// order from the reader.
type Format uint8

const (
	FormatUnknown Format = iota
	Thin32
	Thin64
	Thin32Swapped
	Thin64Swapped
	Fat32
	Fat64
	Fat32Swapped
	Fat64Swapped
)

// IsFat reports whether the buffer is a universal container.
func (f Format) IsFat() bool {
	switch f {
	case Fat32, Fat64, Fat32Swapped, Fat64Swapped:
		return true
	}
	return false
}

// Is64 reports the word size implied by the magic. For fat formats this is
// the width of the fat_arch offset/size fields, not of any contained slice.
func (f Format) Is64() bool {
	switch f {
	case Thin64, Thin64Swapped, Fat64, Fat64Swapped:
		return true
	}
	return false
}

// Swapped reports whether the image's fields are byte-swapped relative to
// big-endian as read. Fat headers are defined big-endian on disk, so a
// "swapped" fat magic means the table is little-endian.
func (f Format) Swapped() bool {
	switch f {
	case Thin32Swapped, Thin64Swapped, Fat32Swapped, Fat64Swapped:
		return true
	}
	return false
}

func (f Format) String() string {
	switch f {
	case Thin32:
		return "32-bit MachO"
	case Thin64:
		return "64-bit MachO"
	case Thin32Swapped:
		return "32-bit MachO (byte-swapped)"
	case Thin64Swapped:
		return "64-bit MachO (byte-swapped)"
	case Fat32:
		return "Fat MachO"
	case Fat64:
		return "Fat64 MachO"
	case Fat32Swapped:
		return "Fat MachO (byte-swapped)"
	case Fat64Swapped:
		return "Fat64 MachO (byte-swapped)"
	}
	return "unknown"
}

// DetectFormat classifies the first four bytes of data. Thin Mach-O magics
// are written in the target's own byte order, so the value read big-endian
// distinguishes native from foreign images; fat magics are always written
// big-endian but are still checked in both orders for tolerance of
// pre-swapped buffers.
func DetectFormat(data []byte) (Format, error) {
	if len(data) < 4 {
		return FormatUnknown, &TruncatedFileError{Offset: 0, Want: 4, Have: uint64(len(data)), What: "magic"}
	}
	switch types.Magic(binary.BigEndian.Uint32(data)) {
	case types.Magic32:
		return Thin32, nil
	case types.Cigam32:
		return Thin32Swapped, nil
	case types.Magic64:
		return Thin64, nil
	case types.Cigam64:
		return Thin64Swapped, nil
	case types.MagicFat:
		return Fat32, nil
	case types.CigamFat:
		return Fat32Swapped, nil
	case types.MagicFat64:
		return Fat64, nil
	case types.CigamFat64:
		return Fat64Swapped, nil
	}
	return FormatUnknown, &UnrecognizedMagicError{Magic: binary.BigEndian.Uint32(data)}
}

// ByteOrder returns the byte order to use for all subsequent numeric reads
// of an image with this format, as observed from a big-endian framing of
// the magic.
func (f Format) ByteOrder() binary.ByteOrder {
	if f.Swapped() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
