package macho

import (
	"encoding/binary"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/moscope/moscope/pkg/macho/types"
)

// A File is one fully decoded thin Mach-O slice: its header, every load
// command in file order, the segments and flattened section list, and
// the resolved symbol table. Anomalies collects every non-fatal
// malformation found anywhere in the slice; a File with anomalies is
// still a complete decode.
type File struct {
	Header   Header
	Format   Format
	Loads    []Load
	Segments []*Segment
	Sections []*Section
	Symtab   *SymtabCommand
	Symbols  []Symbol

	Anomalies []Anomaly

	bo   binary.ByteOrder
	is64 bool
	data []byte
}

// Parse decodes one thin Mach-O slice. The walk is driven entirely by
// the header's ncmds count: each command's declared cmdsize advances the
// cursor, so a single unrecognized or damaged command never desyncs the
// commands after it. Only conditions that make the cursor itself
// untrustworthy (bad magic, a truncated envelope, cmdsize under the
// 8-byte minimum, a command escaping sizeofcmds) are fatal.
func Parse(data []byte) (*File, error) {
	hdr, format, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{
		Header: hdr,
		Format: format,
		bo:     format.ByteOrder(),
		is64:   format.Is64(),
		data:   data,
	}
	st := &decodeState{bo: f.bo, is64: f.is64, slice: data}

	cursor := uint64(hdr.Size())
	end := cursor + uint64(hdr.SizeCommands)
	if end > uint64(len(data)) {
		return nil, &TruncatedFileError{
			Offset: cursor,
			Want:   uint64(hdr.SizeCommands),
			Have:   uint64(len(data)) - cursor,
			What:   "load commands",
		}
	}

	for i := uint32(0); i < hdr.NCommands; i++ {
		if cursor+8 > uint64(len(data)) {
			return nil, &TruncatedFileError{
				Offset: cursor,
				Want:   8,
				Have:   uint64(len(data)) - cursor,
				What:   fmt.Sprintf("load command %d envelope", i),
			}
		}

		info := LoadCmdInfo{
			LoadCmd: types.LoadCmd(f.bo.Uint32(data[cursor : cursor+4])),
			Len:     f.bo.Uint32(data[cursor+4 : cursor+8]),
			Offset:  cursor,
		}
		if info.Len < 8 {
			return nil, fmt.Errorf("load command %d at %#x: cmdsize %d below the 8-byte minimum", i, cursor, info.Len)
		}
		// end never exceeds the buffer, so escaping sizeofcmds covers
		// escaping the file too
		if cursor+uint64(info.Len) > end {
			return nil, &TruncatedFileError{
				Offset: cursor,
				Want:   uint64(info.Len),
				Have:   end - cursor,
				What:   fmt.Sprintf("load command %d (%s) past sizeofcmds", i, info.LoadCmd),
			}
		}
		align := uint32(4)
		if f.is64 {
			align = 8
		}
		if info.Len%align != 0 {
			f.Anomalies = append(f.Anomalies, Anomaly{
				Offset: cursor,
				Detail: fmt.Sprintf("load command %d (%s) cmdsize %d not a multiple of %d", i, info.LoadCmd, info.Len, align),
			})
		}

		payload := data[cursor : cursor+uint64(info.Len)]

		var load Load
		if dec, ok := commandDecoders[info.LoadCmd]; ok {
			load, err = dec(st, info, payload)
			if err != nil {
				// a bad payload degrades this one command to Unknown and
				// the walk continues
				info.Anomalies = append(info.Anomalies, Anomaly{
					Offset: cursor,
					Detail: fmt.Sprintf("load command %d (%s): %v", i, info.LoadCmd, err),
				})
				load = &UnknownCommand{LoadCmdInfo: info, Raw: payload}
			}
		} else {
			load = &UnknownCommand{LoadCmdInfo: info, Raw: payload}
		}

		switch cmd := load.(type) {
		case *Segment:
			f.Segments = append(f.Segments, cmd)
			for _, sec := range cmd.Sections {
				sec.Index = len(f.Sections) + 1
				f.Sections = append(f.Sections, sec)
				f.Anomalies = append(f.Anomalies, sec.Anomalies...)
			}
		case *SymtabCommand:
			if f.Symtab != nil {
				f.Anomalies = append(f.Anomalies, Anomaly{
					Offset: cursor,
					Detail: "duplicate LC_SYMTAB, keeping the first",
				})
			} else {
				f.Symtab = cmd
			}
		}
		if a, ok := load.(interface{ commandAnomalies() []Anomaly }); ok {
			f.Anomalies = append(f.Anomalies, a.commandAnomalies()...)
		}

		f.Loads = append(f.Loads, load)
		cursor += uint64(info.Len)
	}

	if cursor != end {
		f.Anomalies = append(f.Anomalies, Anomaly{
			Offset: cursor,
			Detail: fmt.Sprintf("sizeofcmds %d disagrees with walked size %d", hdr.SizeCommands, cursor-uint64(hdr.Size())),
		})
	}

	if f.Symtab != nil {
		if err := f.parseSymtab(f.Symtab); err != nil {
			f.Anomalies = append(f.Anomalies, Anomaly{
				Offset: f.Symtab.Offset,
				Detail: fmt.Sprintf("symbol table: %v", err),
			})
		}
	}

	return f, nil
}

// Dylibs returns the linked-library commands in load order, LC_ID_DYLIB
// excluded (that one names the image itself, not a dependency).
func (f *File) Dylibs() []*DylibCommand {
	var out []*DylibCommand
	for _, l := range f.Loads {
		if d, ok := l.(*DylibCommand); ok && d.Kind != DylibID {
			out = append(out, d)
		}
	}
	return out
}

// Rpaths returns the LC_RPATH entries in load order.
func (f *File) Rpaths() []*RpathCommand {
	var out []*RpathCommand
	for _, l := range f.Loads {
		if r, ok := l.(*RpathCommand); ok {
			out = append(out, r)
		}
	}
	return out
}

// Segment returns the first segment with the given name, or nil.
func (f *File) Segment(name string) *Segment {
	for _, s := range f.Segments {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Section returns the first section matching seg.name, or nil.
func (f *File) Section(seg, name string) *Section {
	for _, s := range f.Sections {
		if s.Seg == seg && s.Name == name {
			return s
		}
	}
	return nil
}

func humanSize(n uint64) string {
	return humanize.Bytes(n)
}
