package macho

import (
	"regexp"
	"strings"
)

// An ExtractedString is one printable run found in a scanned section,
// tagged with where it lives.
type ExtractedString struct {
	Value    string
	Addr     uint64
	SegName  string
	SectName string
}

// StringConfig controls extraction. The zero value scans every section
// with a minimum run length of 4.
type StringConfig struct {
	// MinLen is the shortest printable run to keep; 0 means 4.
	MinLen int
	// MaxCount stops extraction after that many strings; 0 means no cap.
	MaxCount int
	// Include restricts the scan to the named sections. Entries are
	// section names ("__cstring") or qualified "SEG.__sect" pairs.
	Include []string
	// Exclude removes sections from the scan set, same naming.
	Exclude []string
	// Pattern keeps only strings it matches.
	Pattern *regexp.Regexp
}

const defaultMinStringLen = 4

func sectionNamed(sec *Section, names []string) bool {
	for _, n := range names {
		if n == sec.Name || n == sec.Seg+"."+sec.Name {
			return true
		}
	}
	return false
}

// ExtractStrings scans the selected sections (all of them unless
// Include narrows the set) through the slice's VM image and returns
// every NUL- or boundary-terminated printable run of at least MinLen
// bytes, in address order. Zerofill sections read as zeroes and so
// yield nothing.
func (f *File) ExtractStrings(cfg StringConfig) ([]ExtractedString, error) {
	img, err := f.VMImage()
	if err != nil {
		return nil, err
	}

	minLen := cfg.MinLen
	if minLen <= 0 {
		minLen = defaultMinStringLen
	}

	var out []ExtractedString
	for _, sec := range f.Sections {
		if len(cfg.Include) > 0 && !sectionNamed(sec, cfg.Include) {
			continue
		}
		if sectionNamed(sec, cfg.Exclude) {
			continue
		}

		data := img.ReadSection(sec)
		start := -1
		for i := 0; i <= len(data); i++ {
			if i < len(data) && printable(data[i]) {
				if start < 0 {
					start = i
				}
				continue
			}
			// only NUL- or boundary-terminated runs count; a stray
			// control byte voids the run it cuts off
			if start >= 0 && i-start >= minLen && (i == len(data) || data[i] == 0) {
				s := string(data[start:i])
				if cfg.Pattern == nil || cfg.Pattern.MatchString(s) {
					out = append(out, ExtractedString{
						Value:    s,
						Addr:     sec.Addr + uint64(start),
						SegName:  sec.Seg,
						SectName: sec.Name,
					})
					if cfg.MaxCount > 0 && len(out) >= cfg.MaxCount {
						return out, nil
					}
				}
			}
			start = -1
		}
	}
	return out, nil
}

func printable(b byte) bool {
	return b >= 0x20 && b < 0x7f || b == '\t'
}

// String renders the run with its provenance, escaping nothing because
// only printable bytes and tabs ever get this far.
func (e ExtractedString) String() string {
	var sb strings.Builder
	sb.WriteString(e.SegName)
	sb.WriteByte('.')
	sb.WriteString(e.SectName)
	sb.WriteString(": ")
	sb.WriteString(e.Value)
	return sb.String()
}
