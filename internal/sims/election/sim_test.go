package election

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"amoebot/internal/core"
	"amoebot/internal/election"
	"amoebot/internal/lattice"
	"amoebot/internal/shapes"
)

func TestFromMapParsesAndIgnoresInvalid(t *testing.T) {
	c := FromMap(map[string]string{
		"shape": " Ring ",
		"size":  "4",
		"fill":  "1.5",
		"seed":  "-3",
		"steps": "0",
	})
	if c.Shape != "ring" || c.Size != 4 || c.Seed != -3 {
		t.Fatalf("parsed config = %+v", c)
	}
	def := DefaultConfig()
	if c.Fill != def.Fill || c.Steps != def.Steps {
		t.Fatalf("invalid values should keep defaults, got fill=%v steps=%d", c.Fill, c.Steps)
	}
	if FromMap(nil) != def {
		t.Fatal("nil map should yield defaults")
	}
}

func TestResetDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = 9
	cfg.Seed = 42

	a := NewWithConfig(cfg)
	b := NewWithConfig(cfg)
	for i := 0; i < 40; i++ {
		a.Step()
		b.Step()
	}
	if !slices.Equal(a.Cells(), b.Cells()) {
		t.Fatal("equal seeds must paint equal frames")
	}

	initial := NewWithConfig(cfg).Cells()
	a.Reset(42)
	if !slices.Equal(initial, a.Cells()) {
		t.Fatal("Reset with the config seed must restore the first frame")
	}
}

func TestSizeStableAcrossSeeds(t *testing.T) {
	for _, shape := range []string{"blob", "instance"} {
		s := NewWithConfig(Config{Shape: shape, Size: 10, Fill: 0.5, Seed: 1, Steps: 4, Margin: 1})
		want := s.Size()
		for seed := int64(2); seed < 12; seed++ {
			s.Reset(seed)
			if s.Size() != want || len(s.Cells()) != want.W*want.H {
				t.Fatalf("%s seed %d: size %+v, want %+v", shape, seed, s.Size(), want)
			}
			if s.Err() != nil {
				t.Fatalf("%s seed %d: %v", shape, seed, s.Err())
			}
		}
	}
}

func TestRunToEndPaintsOneLeader(t *testing.T) {
	s := NewWithConfig(Config{Shape: "hexagon", Size: 2, Seed: 7, Steps: 16, Margin: 2})
	if err := s.RunToEnd(context.Background(), 2_000_000); err != nil {
		t.Fatalf("RunToEnd: %v", err)
	}
	if !s.Terminated() || !strings.HasPrefix(s.Status(), "terminated") {
		t.Fatalf("status = %q", s.Status())
	}
	leaders, particles := 0, 0
	for _, v := range s.Cells() {
		if v >= cellStatus {
			particles++
		}
		if v == cellStatus+uint8(election.Leader) {
			leaders++
		}
	}
	if leaders != 1 {
		t.Fatalf("painted %d leader cells", leaders)
	}
	if particles != len(shapes.Hexagon(2)) {
		t.Fatalf("painted %d particles, want %d", particles, len(shapes.Hexagon(2)))
	}
	m := s.Metrics()
	if m.Leaders != 1 || !m.Terminated {
		t.Fatalf("metrics = %+v", m)
	}

	before := append([]uint8(nil), s.Cells()...)
	s.Step()
	if !slices.Equal(before, s.Cells()) {
		t.Fatal("stepping a terminated election must not change the frame")
	}
}

func TestPaletteCoversCells(t *testing.T) {
	s := NewWithConfig(Config{Shape: "ring", Size: 3, Seed: 2, Steps: 64, Margin: 1})
	palette := s.Palette()
	for i := 0; i < 200 && !s.Terminated(); i++ {
		s.Step()
		for _, v := range s.Cells() {
			if int(v) >= len(palette) {
				t.Fatalf("cell value %d outside palette of %d", v, len(palette))
			}
		}
	}
}

func TestUnknownShapeLeavesEmptyFrame(t *testing.T) {
	s := NewWithConfig(Config{Shape: "spiral", Size: 3, Steps: 1})
	if !errors.Is(s.Err(), shapes.ErrUnknownShape) {
		t.Fatalf("Err = %v", s.Err())
	}
	s.Step()
	for _, v := range s.Cells() {
		if v != cellEmpty {
			t.Fatal("frame should stay empty without a system")
		}
	}
	if !strings.HasPrefix(s.Status(), "no system") {
		t.Fatalf("status = %q", s.Status())
	}
}

func TestRegisteredAndTunable(t *testing.T) {
	f, ok := core.Sims()["election"]
	if !ok {
		t.Fatal("election sim not registered")
	}
	sim := f(map[string]string{"shape": "line", "size": "4", "steps": "2"})
	if sim.Name() != "election" {
		t.Fatalf("name = %q", sim.Name())
	}
	setter, ok := sim.(core.IntParameterSetter)
	if !ok || !setter.SetIntParameter("steps", 5) || setter.SetIntParameter("steps", 0) {
		t.Fatal("steps should accept positive values only")
	}
	if _, ok := sim.(core.ParameterProvider); !ok {
		t.Fatal("sim should expose parameters")
	}
	snap := sim.(core.ParameterProvider).Parameters()
	if len(snap.Groups) != 2 || snap.Groups[1].Params[0].Value != "5" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestBoundaryMaskSkipsInterior(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = "hexagon"
	cfg.Size = 2
	s := NewWithConfig(cfg)

	mask := s.BoundaryMask()
	if len(mask) != s.Size().W*s.Size().H {
		t.Fatalf("mask length %d does not match raster", len(mask))
	}
	x, y := s.bounds.Cell(lattice.Node{}, cfg.Margin)
	if v := mask[s.grid.Index(x, y)]; v != 0 {
		t.Fatalf("interior particle shaded %v", v)
	}
	outer := 0
	for _, v := range mask {
		switch v {
		case 0:
		case 1:
			outer++
		default:
			t.Fatalf("hexagon has no hole cycles, got weight %v", v)
		}
	}
	want := 0
	for _, p := range s.System().Particles() {
		if p.NeighborCount() < 6 {
			want++
		}
	}
	if outer != want || want != 12 {
		t.Fatalf("outer cells = %d, want %d boundary particles", outer, want)
	}
}

func TestTrafficMaskBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = "ring"
	cfg.Size = 3
	s := NewWithConfig(cfg)
	for _, v := range s.TrafficMask() {
		if v != 0 {
			t.Fatal("no tokens are in flight before the first activation")
		}
	}
	for i := 0; i < 20; i++ {
		s.Step()
		for _, v := range s.TrafficMask() {
			if v < 0 || v > 1 {
				t.Fatalf("traffic intensity %v out of range", v)
			}
		}
	}
}
