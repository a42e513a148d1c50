package ui

import (
	"testing"

	"amoebot/internal/core"
	election "amoebot/internal/sims/election"
)

func TestPanelLinesForElection(t *testing.T) {
	sim := election.NewWithConfig(election.Config{Shape: "line", Size: 3, Seed: 1, Steps: 1})
	lines := PanelLines(sim)
	if len(lines) == 0 || lines[0].Text != "Election" || !lines[0].Header {
		t.Fatalf("first line = %+v", lines)
	}
	want := map[string]bool{"running": false, "Shape": false, "Shape: line": false, "Activations per tick: 1": false}
	for _, l := range lines {
		if _, ok := want[l.Text]; ok {
			want[l.Text] = true
		}
	}
	for text, seen := range want {
		if !seen {
			t.Fatalf("missing line %q in %+v", text, lines)
		}
	}
}

type bareSim struct{}

func (bareSim) Name() string { return "" }
func (bareSim) Size() core.Size { return core.Size{W: 1, H: 1} }
func (bareSim) Reset(int64) {}
func (bareSim) Step() {}
func (bareSim) Cells() []uint8 { return []uint8{0} }

func TestPanelLinesMinimalSim(t *testing.T) {
	lines := PanelLines(bareSim{})
	if len(lines) != 1 || lines[0].Text != "Sim" {
		t.Fatalf("lines = %+v", lines)
	}
	if PanelLines(nil) != nil {
		t.Fatal("nil sim should yield no lines")
	}
}
