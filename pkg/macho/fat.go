package macho

import (
	"fmt"

	"github.com/moscope/moscope/pkg/macho/types"
)

const (
	fatHeaderSize = 8
	fatArch32Size = 20
	fatArch64Size = 32
)

// FatHeader is the fixed 8-byte header of a universal container.
type FatHeader struct {
	Magic types.Magic
	NArch uint32
}

// FatArch is one entry of the fat architecture table, widened to 64 bits
// so the 32- and 64-bit table layouts share a representation. Index is the
// entry's position in on-disk order; it is the value architecture
// selection operates on.
type FatArch struct {
	Index    int
	CPU      types.CPU
	SubCPU   types.CPUSubtype
	Offset   uint64
	Size     uint64
	Align    uint32
	Reserved uint32
}

// FatFile is a parsed universal container. The slice data itself is not
// retained per entry; SliceData re-slices the original buffer on demand.
type FatFile struct {
	Header FatHeader
	Arches []FatArch

	data []byte
}

// ParseFat decodes the fat header and architecture table of data. It
// returns ErrNotFat when the magic identifies a thin Mach-O, so callers
// can fall through to Parse directly. Fat header fields are big-endian on
// disk regardless of host order; the byte-swapped magics are honored by
// reading the table little-endian instead.
func ParseFat(data []byte) (*FatFile, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	if !format.IsFat() {
		return nil, ErrNotFat
	}
	bo := format.ByteOrder()

	if len(data) < fatHeaderSize {
		return nil, &TruncatedFileError{Offset: 0, Want: fatHeaderSize, Have: uint64(len(data)), What: "fat header"}
	}

	ff := &FatFile{
		Header: FatHeader{
			Magic: types.Magic(bo.Uint32(data[0:4])),
			NArch: bo.Uint32(data[4:8]),
		},
		data: data,
	}

	entrySize := uint64(fatArch32Size)
	if format.Is64() {
		entrySize = fatArch64Size
	}

	offset := uint64(fatHeaderSize)
	for i := uint32(0); i < ff.Header.NArch; i++ {
		if offset+entrySize > uint64(len(data)) {
			return nil, &TruncatedFileError{
				Offset: offset,
				Want:   entrySize,
				Have:   uint64(len(data)) - offset,
				What:   fmt.Sprintf("fat_arch[%d]", i),
			}
		}
		fa := FatArch{
			Index:  int(i),
			CPU:    types.CPU(bo.Uint32(data[offset:])),
			SubCPU: types.CPUSubtype(bo.Uint32(data[offset+4:])),
		}
		if format.Is64() {
			fa.Offset = bo.Uint64(data[offset+8:])
			fa.Size = bo.Uint64(data[offset+16:])
			fa.Align = bo.Uint32(data[offset+24:])
			fa.Reserved = bo.Uint32(data[offset+28:])
		} else {
			fa.Offset = uint64(bo.Uint32(data[offset+8:]))
			fa.Size = uint64(bo.Uint32(data[offset+12:]))
			fa.Align = bo.Uint32(data[offset+16:])
		}
		// each bound checked on its own so a huge fat64 offset cannot
		// wrap the sum back into range
		if fa.Offset > uint64(len(data)) || fa.Size > uint64(len(data))-fa.Offset {
			return nil, &TruncatedFileError{
				Offset: fa.Offset,
				Want:   fa.Size,
				Have:   uint64(len(data)) - min(fa.Offset, uint64(len(data))),
				What:   fmt.Sprintf("fat_arch[%d] slice", i),
			}
		}
		ff.Arches = append(ff.Arches, fa)
		offset += entrySize
	}

	return ff, nil
}

// SelectArch validates an architecture index against the table size. It is
// the only gate between external index input and slice parsing.
func SelectArch(index, narch int) error {
	if index < 0 || index >= narch {
		return &InvalidArchitectureIndexError{Index: index, Count: narch}
	}
	return nil
}

// SliceData returns the byte range of the architecture at index, verified
// against both the table and the buffer length.
func (ff *FatFile) SliceData(index int) ([]byte, error) {
	if err := SelectArch(index, len(ff.Arches)); err != nil {
		return nil, err
	}
	fa := ff.Arches[index]
	if fa.Offset > uint64(len(ff.data)) || fa.Size > uint64(len(ff.data))-fa.Offset {
		return nil, &TruncatedFileError{
			Offset: fa.Offset,
			Want:   fa.Size,
			Have:   uint64(len(ff.data)) - min(fa.Offset, uint64(len(ff.data))),
			What:   fmt.Sprintf("fat_arch[%d] slice", index),
		}
	}
	return ff.data[fa.Offset : fa.Offset+fa.Size], nil
}

func (fa FatArch) String() string {
	return fmt.Sprintf("%s, %s offset=%#x size=%#x align=2^%d",
		fa.CPU, fa.SubCPU.String(fa.CPU), fa.Offset, fa.Size, fa.Align)
}
