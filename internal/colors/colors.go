// Package colors provides centralized color output with TTY-aware defaults.
//
// Colors are automatically disabled when stdout is not a terminal (piped or
// redirected to a file). This behavior is provided by the underlying fatih/color
// library and respected by default. Use Init() to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//
//   - forceColor == nil: keep auto-detected value
//   - forceColor == true: force colors on (--color flag)
//   - forceColor == false: force colors off (--no-color flag)
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// New creates a color with custom attributes. Use for combinations not
// covered by the semantic helpers below.
func New(attrs ...color.Attribute) *color.Color {
	return color.New(attrs...)
}

func Bold() *color.Color  { return color.New(color.Bold) }
func Faint() *color.Color { return color.New(color.Faint) }

// Semantic styles for decoded-model output. Every renderer goes through
// these so the palette stays consistent across subcommands.

// Title styles top-level section headings ("HEADER", "SEGMENTS").
func Title() *color.Color { return color.New(color.Bold, color.FgHiMagenta) }

// Field styles fixed field labels in key/value listings.
func Field() *color.Color { return color.New(color.Bold, color.FgHiBlue) }

// Addr styles virtual addresses and file offsets.
func Addr() *color.Color { return color.New(color.Faint, color.FgWhite) }

// Name styles segment, section, and symbol names.
func Name() *color.Color { return color.New(color.FgHiCyan) }

// Kind styles derived classifications (section kinds, symbol kinds).
func Kind() *color.Color { return color.New(color.FgYellow) }

// Lib styles dynamic library paths and rpaths.
func Lib() *color.Color { return color.New(color.FgGreen) }

// Anomaly styles non-fatal malformation notices.
func Anomaly() *color.Color { return color.New(color.Bold, color.FgHiYellow) }

// Err styles fatal decode failures.
func Err() *color.Color { return color.New(color.Bold, color.FgHiRed) }
