package colors

import (
	"testing"

	"github.com/fatih/color"
)

func TestInit(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	forceOn := true
	Init(&forceOn)
	if !Enabled() {
		t.Error("expected colors enabled after Init(&true)")
	}

	forceOff := false
	Init(&forceOff)
	if Enabled() {
		t.Error("expected colors disabled after Init(&false)")
	}

	color.NoColor = true
	Init(nil)
	if Enabled() {
		t.Error("Init(nil) must keep the auto-detected value")
	}
}

func TestSemanticStylesPlainWhenDisabled(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = true

	if got := Title().Sprint("SEGMENTS"); got != "SEGMENTS" {
		t.Errorf("Title() with colors off = %q, want plain text", got)
	}
	if got := Anomaly().Sprintf("%d anomalies", 3); got != "3 anomalies" {
		t.Errorf("Anomaly() with colors off = %q, want plain text", got)
	}
}
