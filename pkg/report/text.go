package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/moscope/moscope/internal/colors"
	"github.com/moscope/moscope/pkg/macho"
)

// Text writes the human-readable report for one decoded slice. Section
// order is fixed; Config decides which sections appear. Color is handled
// globally by internal/colors, so piping the output degrades cleanly.
func Text(w io.Writer, f *macho.File, strs []macho.ExtractedString, cfg Config) {
	if cfg.Header {
		title(w, "HEADER")
		fmt.Fprintln(w, f.Header)
	}

	if cfg.Loads {
		title(w, "LOAD COMMANDS")
		for _, l := range f.Loads {
			fmt.Fprintf(w, "- %s cmd=0x%08x size=%d\n",
				colors.Name().Sprint(l.Command()), uint32(l.Command()), l.LoadSize())
		}
		fmt.Fprintln(w)
	}

	if cfg.Segments {
		title(w, "SEGMENTS")
		for _, seg := range f.Segments {
			fmt.Fprintf(w, "%s sz=%-8s off=%#08x-%#08x addr=%#09x-%#09x %s/%s   %s\n",
				seg.LoadCmdInfo.LoadCmd,
				humanize.Bytes(seg.Filesz),
				seg.FileOff, seg.FileOff+seg.Filesz,
				seg.Addr, seg.Addr+seg.Memsz,
				seg.Prot, seg.Maxprot,
				colors.Name().Sprint(seg.Name))
			for _, sec := range seg.Sections {
				fmt.Fprintf(w, "\tsz=%-8s off=%#08x-%#08x addr=%#09x-%#09x\t\t%s.%s\t(%s)\n",
					humanize.Bytes(sec.Size),
					uint64(sec.Offset), uint64(sec.Offset)+sec.Size,
					sec.Addr, sec.Addr+sec.Size,
					colors.Name().Sprint(sec.Seg), colors.Name().Sprint(sec.Name),
					colors.Kind().Sprint(sec.Kind))
			}
		}
		fmt.Fprintln(w)
	}

	if cfg.Dylibs {
		if dylibs := f.Dylibs(); len(dylibs) > 0 {
			title(w, "DYLIBS")
			for _, d := range dylibs {
				fmt.Fprintf(w, "[%-8s] %s (current %s, compat %s)\n",
					d.Kind, colors.Lib().Sprint(d.Name), d.CurrentVersion, d.CompatVersion)
			}
			fmt.Fprintln(w)
		}
	}

	if cfg.Rpaths {
		if rpaths := f.Rpaths(); len(rpaths) > 0 {
			title(w, "RPATHS")
			for _, r := range rpaths {
				fmt.Fprintf(w, "%s\n", colors.Lib().Sprint(r.Path))
			}
			fmt.Fprintln(w)
		}
	}

	if cfg.Symbols && len(f.Symbols) > 0 {
		title(w, "SYMBOLS")
		for i, sym := range f.Symbols {
			if cfg.MaxSymbols > 0 && i >= cfg.MaxSymbols {
				fmt.Fprintf(w, "... %d more\n", len(f.Symbols)-i)
				break
			}
			sect := ""
			if s := f.SectionForSymbol(sym); s != nil {
				sect = s.Seg + "." + s.Name
			}
			fmt.Fprintf(w, "%#09x  %-10s %-24s %s\n",
				sym.Value, colors.Kind().Sprint(sym.Kind), sect, colors.Name().Sprint(sym.Name))
		}
		fmt.Fprintln(w)
	}

	if cfg.Strings && len(strs) > 0 {
		title(w, "STRINGS")
		for _, es := range strs {
			fmt.Fprintf(w, "[%s.%s] %s\n", es.SegName, es.SectName, es.Value)
		}
		fmt.Fprintln(w)
	}

	if n := len(f.Anomalies); n > 0 {
		fmt.Fprintf(w, "%s decode complete, with %d anomalies\n", colors.Anomaly().Sprint("⚠"), n)
		for _, a := range f.Anomalies {
			fmt.Fprintf(w, "  %s\n", a)
		}
	}
}

// ArchTable writes the fat slice table for `archs`.
func ArchTable(w io.Writer, ff *macho.FatFile) {
	for _, a := range ff.Arches {
		fmt.Fprintf(w, "%d) %-16s offset=%#x size=%s align=2^%d\n",
			a.Index,
			colors.Name().Sprint(ArchLabel(a.CPU, a.SubCPU)),
			a.Offset, humanize.Bytes(a.Size), a.Align)
	}
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w, colors.Title().Sprint(s))
}
