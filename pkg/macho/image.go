package macho

import (
	"errors"
	"fmt"
)

var ErrNoMappedSegments = errors.New("no file-backed segments to map")

// An Image is a flat reconstruction of the slice's VM layout: one buffer
// spanning from the lowest to the highest mapped address, with each
// file-backed segment copied to its vmaddr-relative position. Gaps
// between segments stay zeroed, which matches what the loader leaves
// there before fixups run.
type Image struct {
	Base uint64
	Mem  []byte
}

// maxImageSpan caps the reconstructed address range so a corrupt vmaddr
// cannot demand an absurd allocation.
const maxImageSpan = 1 << 32

// VMImage lays the slice's file-backed segments out at their virtual
// addresses. Segments with no file content (__PAGEZERO, pure zerofill)
// contribute nothing and do not widen the span.
func (f *File) VMImage() (*Image, error) {
	var base, top uint64
	found := false
	for _, seg := range f.Segments {
		if seg.Filesz == 0 {
			continue
		}
		if !found || seg.Addr < base {
			base = seg.Addr
		}
		if end := seg.Addr + seg.Memsz; end > top {
			top = end
		}
		found = true
	}
	if !found {
		return nil, ErrNoMappedSegments
	}
	span := top - base
	if span > maxImageSpan {
		return nil, fmt.Errorf("mapped range %#x-%#x spans %s, over the %s limit",
			base, top, humanSize(span), humanSize(maxImageSpan))
	}

	img := &Image{Base: base, Mem: make([]byte, span)}
	for _, seg := range f.Segments {
		if seg.Filesz == 0 {
			continue
		}
		// clamp the copy to what the file actually holds
		off, size := seg.FileOff, seg.Filesz
		if off > uint64(len(f.data)) {
			continue
		}
		if off+size > uint64(len(f.data)) {
			size = uint64(len(f.data)) - off
		}
		copy(img.Mem[seg.Addr-base:], f.data[off:off+size])
	}
	return img, nil
}

// ReadAt returns the window [addr, addr+size) of the image, clamped to
// the mapped range. A window entirely outside the image comes back nil.
func (img *Image) ReadAt(addr, size uint64) []byte {
	end := img.Base + uint64(len(img.Mem))
	if addr >= end || addr+size <= img.Base {
		return nil
	}
	if addr < img.Base {
		size -= img.Base - addr
		addr = img.Base
	}
	if addr+size > end {
		size = end - addr
	}
	return img.Mem[addr-img.Base : addr-img.Base+size]
}

// ReadSection returns the section's bytes through the VM image, clamped
// to the mapped range. Zerofill sections read as zeroes.
func (img *Image) ReadSection(sec *Section) []byte {
	return img.ReadAt(sec.Addr, sec.Size)
}
