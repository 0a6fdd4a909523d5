package macho

import (
	"encoding/binary"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	be := func(v uint32) []byte {
		var b [8]byte
		binary.BigEndian.PutUint32(b[:4], v)
		return b[:]
	}
	tests := []struct {
		name    string
		data    []byte
		want    Format
		fat     bool
		is64    bool
		swapped bool
	}{
		{"thin 32 BE", be(0xfeedface), Thin32, false, false, false},
		{"thin 32 LE", be(0xcefaedfe), Thin32Swapped, false, false, true},
		{"thin 64 BE", be(0xfeedfacf), Thin64, false, true, false},
		{"thin 64 LE", be(0xcffaedfe), Thin64Swapped, false, true, true},
		{"fat 32", be(0xcafebabe), Fat32, true, false, false},
		{"fat 32 swapped", be(0xbebafeca), Fat32Swapped, true, false, true},
		{"fat 64", be(0xcafebabf), Fat64, true, true, false},
		{"fat 64 swapped", be(0xbfbafeca), Fat64Swapped, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
			if got.IsFat() != tt.fat || got.Is64() != tt.is64 || got.Swapped() != tt.swapped {
				t.Errorf("props = fat:%v is64:%v swapped:%v, want fat:%v is64:%v swapped:%v",
					got.IsFat(), got.Is64(), got.Swapped(), tt.fat, tt.is64, tt.swapped)
			}
			wantOrder := binary.ByteOrder(binary.BigEndian)
			if tt.swapped {
				wantOrder = binary.LittleEndian
			}
			if got.ByteOrder() != wantOrder {
				t.Errorf("ByteOrder() = %v, want %v", got.ByteOrder(), wantOrder)
			}
		})
	}
}

func TestDetectFormatUnrecognized(t *testing.T) {
	_, err := DetectFormat([]byte{0x7f, 'E', 'L', 'F'})
	if err == nil {
		t.Fatal("DetectFormat() of an ELF magic succeeded, want error")
	}
	me, ok := err.(*UnrecognizedMagicError)
	if !ok {
		t.Fatalf("error = %T, want *UnrecognizedMagicError", err)
	}
	if me.Magic != 0x7f454c46 {
		t.Errorf("Magic = %#x, want 0x7f454c46", me.Magic)
	}
}

func TestDetectFormatShort(t *testing.T) {
	_, err := DetectFormat([]byte{0xfe, 0xed})
	if err == nil {
		t.Fatal("DetectFormat() of a 2-byte buffer succeeded, want error")
	}
	if _, ok := err.(*TruncatedFileError); !ok {
		t.Errorf("error = %T, want *TruncatedFileError", err)
	}
}
