package macho

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/moscope/moscope/pkg/macho/types"
)

// buildFat assembles a 32-bit fat container. The table is big-endian on
// disk regardless of what the host or the slices use.
func buildFat(entries ...[5]uint32) []byte {
	buf := make([]byte, fatHeaderSize+len(entries)*fatArch32Size)
	binary.BigEndian.PutUint32(buf[0:], uint32(types.MagicFat))
	binary.BigEndian.PutUint32(buf[4:], uint32(len(entries)))
	off := fatHeaderSize
	for _, e := range entries {
		for i, v := range e {
			binary.BigEndian.PutUint32(buf[off+4*i:], v)
		}
		off += fatArch32Size
	}
	// grow the buffer to cover the declared slices
	max := 0
	for _, e := range entries {
		if end := int(e[2] + e[3]); end > max {
			max = end
		}
	}
	if max > len(buf) {
		buf = append(buf, make([]byte, max-len(buf))...)
	}
	return buf
}

func TestParseFat(t *testing.T) {
	data := buildFat(
		[5]uint32{uint32(types.CPUX86_64), 3, 0x1000, 0x100, 12},
		[5]uint32{uint32(types.CPUArm64), 0x80000002, 0x2000, 0x100, 14},
	)

	ff, err := ParseFat(data)
	if err != nil {
		t.Fatalf("ParseFat() error = %v", err)
	}
	if int(ff.Header.NArch) != len(ff.Arches) {
		t.Errorf("NArch = %d, len(Arches) = %d", ff.Header.NArch, len(ff.Arches))
	}

	a0 := ff.Arches[0]
	if a0.Index != 0 || a0.CPU != types.CPUX86_64 || a0.Offset != 0x1000 {
		t.Errorf("arch[0] = %+v", a0)
	}
	if got := a0.SubCPU.String(a0.CPU); got != "x86_64" {
		t.Errorf("arch[0] subtype = %q, want x86_64", got)
	}

	a1 := ff.Arches[1]
	if a1.Index != 1 || a1.CPU != types.CPUArm64 {
		t.Errorf("arch[1] = %+v", a1)
	}
	if got := a1.SubCPU.String(a1.CPU); got != "arm64e" {
		t.Errorf("arch[1] subtype = %q, want arm64e", got)
	}

	sd, err := ff.SliceData(1)
	if err != nil {
		t.Fatalf("SliceData(1) error = %v", err)
	}
	if len(sd) != 0x100 {
		t.Errorf("len(SliceData(1)) = %d, want 0x100", len(sd))
	}
}

func TestParseFatOffsetOverflow(t *testing.T) {
	// fat64 entry whose offset+size wraps back under the buffer length
	buf := make([]byte, fatHeaderSize+fatArch64Size)
	binary.BigEndian.PutUint32(buf[0:], uint32(types.MagicFat64))
	binary.BigEndian.PutUint32(buf[4:], 1)
	binary.BigEndian.PutUint32(buf[8:], uint32(types.CPUArm64))
	binary.BigEndian.PutUint32(buf[12:], 0x80000002)
	binary.BigEndian.PutUint64(buf[16:], 0xffffffffffffff00)
	binary.BigEndian.PutUint64(buf[24:], 0x200)
	binary.BigEndian.PutUint32(buf[32:], 14)

	_, err := ParseFat(buf)
	if err == nil {
		t.Fatal("ParseFat() accepted a wrapping offset/size pair, want error")
	}
	if _, ok := err.(*TruncatedFileError); !ok {
		t.Errorf("error = %T (%v), want *TruncatedFileError", err, err)
	}
}

func TestSliceDataOffsetOverflow(t *testing.T) {
	ff := &FatFile{
		Arches: []FatArch{{CPU: types.CPUArm64, Offset: 0xffffffffffffff00, Size: 0x200}},
		data:   make([]byte, 0x1000),
	}
	if _, err := ff.SliceData(0); err == nil {
		t.Fatal("SliceData() with a wrapping range succeeded, want error")
	}
}

func TestParseFatNotFat(t *testing.T) {
	thin := make([]byte, 32)
	binary.BigEndian.PutUint32(thin, uint32(types.Magic64))
	_, err := ParseFat(thin)
	if !errors.Is(err, ErrNotFat) {
		t.Errorf("ParseFat(thin) error = %v, want ErrNotFat", err)
	}
}

func TestParseFatTruncatedTable(t *testing.T) {
	data := buildFat([5]uint32{uint32(types.CPUX86_64), 3, 0x100, 0x10, 12})
	_, err := ParseFat(data[:fatHeaderSize+4])
	if err == nil {
		t.Fatal("ParseFat() of a truncated table succeeded, want error")
	}
	if _, ok := err.(*TruncatedFileError); !ok {
		t.Errorf("error = %T, want *TruncatedFileError", err)
	}
}

func TestParseFatSliceBeyondEOF(t *testing.T) {
	data := buildFat([5]uint32{uint32(types.CPUX86_64), 3, 0x1000, 0x100, 12})
	_, err := ParseFat(data[:0x1000])
	if err == nil {
		t.Fatal("ParseFat() with a slice past EOF succeeded, want error")
	}
	if _, ok := err.(*TruncatedFileError); !ok {
		t.Errorf("error = %T, want *TruncatedFileError", err)
	}
}

func TestSelectArch(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		narch   int
		wantErr bool
	}{
		{"first", 0, 2, false},
		{"last", 1, 2, false},
		{"past the end", 2, 2, true},
		{"negative", -1, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SelectArch(tt.index, tt.narch)
			if (err != nil) != tt.wantErr {
				t.Errorf("SelectArch(%d, %d) error = %v, wantErr %v", tt.index, tt.narch, err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*InvalidArchitectureIndexError); !ok {
					t.Errorf("error = %T, want *InvalidArchitectureIndexError", err)
				}
			}
		})
	}
}
