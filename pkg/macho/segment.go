package macho

import (
	"bytes"
	"fmt"

	"github.com/moscope/moscope/pkg/macho/types"
)

const (
	segmentCmd32Size = 56
	segmentCmd64Size = 72
	section32Size    = 68
	section64Size    = 80
)

// A Segment is a named memory region with its ordered sections
// (LC_SEGMENT / LC_SEGMENT_64).
type Segment struct {
	LoadCmdInfo
	Name     string
	Addr     uint64
	Memsz    uint64
	FileOff  uint64
	Filesz   uint64
	Maxprot  types.VmProtection
	Prot     types.VmProtection
	Nsect    uint32
	Flag     uint32
	Sections []*Section
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s sz=%s off=%#08x-%#08x addr=%#09x-%#09x %s/%s   %s",
		s.LoadCmdInfo.LoadCmd,
		humanSize(s.Filesz),
		s.FileOff, s.FileOff+s.Filesz,
		s.Addr, s.Addr+s.Memsz,
		s.Prot, s.Maxprot,
		s.Name)
}

// A Section is one named sub-region of a segment, with its derived
// semantic Kind.
type Section struct {
	Name   string
	Seg    string
	Addr   uint64
	Size   uint64
	Offset uint32
	Align  uint32
	Reloff uint32
	Nreloc uint32
	Flags  types.SectionFlag
	Kind   Kind

	// Index is the section's position in the flattened, 1-based section
	// list spanning all segments; symbol entries cross-reference it.
	Index int

	// Anomalies are range violations against the parent segment.
	Anomalies []Anomaly
}

func (s *Section) String() string {
	return fmt.Sprintf("sz=%s off=%#08x-%#08x addr=%#09x-%#09x   %s.%s (%s)",
		humanSize(s.Size),
		uint64(s.Offset), uint64(s.Offset)+s.Size,
		s.Addr, s.Addr+s.Size,
		s.Seg, s.Name, s.Kind)
}

// trimName converts a fixed 16-byte segment/section name field to a Go
// string, stopping at the first NUL.
func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func decodeSegment(st *decodeState, info LoadCmdInfo, payload []byte) (Load, error) {
	is64 := info.LoadCmd == types.LC_SEGMENT_64
	fixed := segmentCmd32Size
	sectSize := section32Size
	if is64 {
		fixed = segmentCmd64Size
		sectSize = section64Size
	}
	if len(payload) < fixed {
		return nil, fmt.Errorf("%s payload too small: %d bytes", info.LoadCmd, len(payload))
	}

	seg := &Segment{
		LoadCmdInfo: info,
		Name:        trimName(payload[8:24]),
	}
	if is64 {
		seg.Addr = st.bo.Uint64(payload[24:])
		seg.Memsz = st.bo.Uint64(payload[32:])
		seg.FileOff = st.bo.Uint64(payload[40:])
		seg.Filesz = st.bo.Uint64(payload[48:])
		seg.Maxprot = types.VmProtection(st.bo.Uint32(payload[56:]))
		seg.Prot = types.VmProtection(st.bo.Uint32(payload[60:]))
		seg.Nsect = st.bo.Uint32(payload[64:])
		seg.Flag = st.bo.Uint32(payload[68:])
	} else {
		seg.Addr = uint64(st.bo.Uint32(payload[24:]))
		seg.Memsz = uint64(st.bo.Uint32(payload[28:]))
		seg.FileOff = uint64(st.bo.Uint32(payload[32:]))
		seg.Filesz = uint64(st.bo.Uint32(payload[36:]))
		seg.Maxprot = types.VmProtection(st.bo.Uint32(payload[40:]))
		seg.Prot = types.VmProtection(st.bo.Uint32(payload[44:]))
		seg.Nsect = st.bo.Uint32(payload[48:])
		seg.Flag = st.bo.Uint32(payload[52:])
	}

	// nsects section structs trail the fixed part inside the command's
	// own payload; an implausible count is an anomaly, not a failure
	have := (len(payload) - fixed) / sectSize
	nsect := int(seg.Nsect)
	if nsect > have {
		seg.Anomalies = append(seg.Anomalies, Anomaly{
			Offset: info.Offset,
			Detail: fmt.Sprintf("segment %s declares %d sections but cmdsize %d holds %d", seg.Name, seg.Nsect, info.Len, have),
		})
		nsect = have
	}

	for i := 0; i < nsect; i++ {
		b := payload[fixed+i*sectSize:]
		sec := &Section{
			Name: trimName(b[0:16]),
			Seg:  trimName(b[16:32]),
		}
		if is64 {
			sec.Addr = st.bo.Uint64(b[32:])
			sec.Size = st.bo.Uint64(b[40:])
			sec.Offset = st.bo.Uint32(b[48:])
			sec.Align = st.bo.Uint32(b[52:])
			sec.Reloff = st.bo.Uint32(b[56:])
			sec.Nreloc = st.bo.Uint32(b[60:])
			sec.Flags = types.SectionFlag(st.bo.Uint32(b[64:]))
		} else {
			sec.Addr = uint64(st.bo.Uint32(b[32:]))
			sec.Size = uint64(st.bo.Uint32(b[36:]))
			sec.Offset = st.bo.Uint32(b[40:])
			sec.Align = st.bo.Uint32(b[44:])
			sec.Reloff = st.bo.Uint32(b[48:])
			sec.Nreloc = st.bo.Uint32(b[52:])
			sec.Flags = types.SectionFlag(st.bo.Uint32(b[56:]))
		}
		sec.Kind = ClassifySection(sec.Flags, sec.Name, sec.Seg)

		// sections should fall inside their segment; violations are
		// flagged and kept
		if sec.Addr < seg.Addr || sec.Addr+sec.Size > seg.Addr+seg.Memsz {
			sec.Anomalies = append(sec.Anomalies, Anomaly{
				Offset: info.Offset,
				Detail: fmt.Sprintf("section %s.%s VM range %#x-%#x outside segment %#x-%#x",
					sec.Seg, sec.Name, sec.Addr, sec.Addr+sec.Size, seg.Addr, seg.Addr+seg.Memsz),
			})
		}
		if !sec.Flags.IsZerofill() && sec.Size > 0 &&
			(uint64(sec.Offset) < seg.FileOff || uint64(sec.Offset)+sec.Size > seg.FileOff+seg.Filesz) {
			sec.Anomalies = append(sec.Anomalies, Anomaly{
				Offset: info.Offset,
				Detail: fmt.Sprintf("section %s.%s file range %#x-%#x outside segment %#x-%#x",
					sec.Seg, sec.Name, uint64(sec.Offset), uint64(sec.Offset)+sec.Size, seg.FileOff, seg.FileOff+seg.Filesz),
			})
		}

		seg.Sections = append(seg.Sections, sec)
	}

	return seg, nil
}
