// Package inspect contains the shared open/select/decode pipeline behind
// the info, archs, and strings commands.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/moscope/moscope/pkg/macho"
	"github.com/moscope/moscope/pkg/report"
)

// Config is the inspect pipeline configuration.
type Config struct {
	// index of the fat slice to decode; -1 means all (or prompt)
	Arch int `json:"arch,omitempty"`
	// emit the JSON document instead of text
	JSON bool `json:"json,omitempty"`
	// allow an interactive slice prompt on fat inputs
	Interactive bool `json:"interactive,omitempty"`
	// which report sections to produce
	Report report.Config `json:"-"`

	// string extraction filters
	MinLen          int      `json:"min_len,omitempty"`
	MaxStrings      int      `json:"max_strings,omitempty"`
	StringSections  []string `json:"string_sections,omitempty"`
	ExcludeSections []string `json:"exclude_sections,omitempty"`
	StringPattern   string   `json:"string_pattern,omitempty"`
}

// stringConfig compiles the string filters. The regex is validated here,
// before any decode work starts.
func (c *Config) stringConfig() (macho.StringConfig, error) {
	cfg := macho.StringConfig{
		MinLen:   c.MinLen,
		MaxCount: c.MaxStrings,
		Include:  c.StringSections,
		Exclude:  c.ExcludeSections,
	}
	if c.StringPattern != "" {
		re, err := regexp.Compile(c.StringPattern)
		if err != nil {
			return cfg, fmt.Errorf("failed to compile --string-pattern: %w", err)
		}
		cfg.Pattern = re
	}
	return cfg, nil
}

// Inspect opens path, resolves which slices to decode, and writes the
// report to w. Fat containers with no --arch decode every slice, except
// interactively where the user picks one.
func Inspect(w io.Writer, path string, cfg Config) error {
	strCfg, err := cfg.stringConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	rep := report.Report{}

	ff, err := macho.ParseFat(data)
	switch {
	case errors.Is(err, macho.ErrNotFat):
		if cfg.Arch > 0 {
			return &macho.InvalidArchitectureIndexError{Index: cfg.Arch, Count: 1}
		}
		parts := [][]byte{data}
		if err := decodeSlices(w, parts, strCfg, cfg, &rep); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		rep.IsFat = true
		log.Debugf("universal binary with %d architectures", ff.Header.NArch)
		picks, err := pickArches(ff, cfg)
		if err != nil {
			return err
		}
		var parts [][]byte
		for _, idx := range picks {
			sd, err := ff.SliceData(idx)
			if err != nil {
				return err
			}
			parts = append(parts, sd)
		}
		if err := decodeSlices(w, parts, strCfg, cfg, &rep); err != nil {
			return err
		}
	}

	if cfg.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return nil
}

// Archs writes the fat slice table, or the single implied entry for a
// thin file.
func Archs(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	ff, err := macho.ParseFat(data)
	if errors.Is(err, macho.ErrNotFat) {
		f, err := macho.Parse(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "0) %s (thin)\n", report.ArchLabel(f.Header.CPU, f.Header.SubCPU))
		return nil
	} else if err != nil {
		return err
	}

	report.ArchTable(w, ff)
	return nil
}

func pickArches(ff *macho.FatFile, cfg Config) ([]int, error) {
	if cfg.Arch >= 0 {
		if err := macho.SelectArch(cfg.Arch, len(ff.Arches)); err != nil {
			return nil, err
		}
		return []int{cfg.Arch}, nil
	}
	if len(ff.Arches) == 1 || !cfg.Interactive || cfg.JSON {
		picks := make([]int, len(ff.Arches))
		for i := range ff.Arches {
			picks[i] = i
		}
		return picks, nil
	}

	var choices []string
	for _, a := range ff.Arches {
		choices = append(choices, fmt.Sprintf("%-16s offset=%#x size=%#x", report.ArchLabel(a.CPU, a.SubCPU), a.Offset, a.Size))
	}
	selected := 0
	prompt := &survey.Select{
		Message: "Select the architecture to inspect:",
		Options: choices,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		if err == terminal.InterruptErr {
			log.Warn("Exiting...")
			os.Exit(0)
		}
		return nil, err
	}
	return []int{selected}, nil
}

func decodeSlices(w io.Writer, parts [][]byte, strCfg macho.StringConfig, cfg Config, rep *report.Report) error {
	for _, sd := range parts {
		f, err := macho.Parse(sd)
		if err != nil {
			return err
		}
		if n := len(f.Anomalies); n > 0 {
			log.Warnf("decode complete, with %d anomalies", n)
		}

		var strs []macho.ExtractedString
		if cfg.Report.Strings {
			strs, err = f.ExtractStrings(strCfg)
			if err != nil {
				if errors.Is(err, macho.ErrNoMappedSegments) {
					log.Debug("no file-backed segments, skipping string extraction")
				} else {
					return err
				}
			}
		}

		if cfg.JSON {
			rep.Architectures = append(rep.Architectures, report.FromFile(f, strs, cfg.Report))
			continue
		}
		if len(rep.Architectures) > 0 || len(parts) > 1 {
			fmt.Fprintf(w, "\n%s:\n\n", report.ArchLabel(f.Header.CPU, f.Header.SubCPU))
		}
		rep.Architectures = append(rep.Architectures, report.Architecture{
			CPUType:    f.Header.CPU.String(),
			CPUSubtype: f.Header.SubCPU.String(f.Header.CPU),
		})
		report.Text(w, f, strs, cfg.Report)
	}
	return nil
}
