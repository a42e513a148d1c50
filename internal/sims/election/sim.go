// Package election renders a running leader election for the grid viewer.
package election

import (
	"context"
	"fmt"

	"amoebot/internal/core"
	"amoebot/internal/election"
	"amoebot/internal/lattice"
	"amoebot/internal/shapes"

	"go.uber.org/zap"
)

// Sim drives an election system a few activations per tick and rasterises it.
type Sim struct {
	cfg    Config
	log    *zap.Logger
	sys    *election.System
	bounds lattice.Bounds
	grid   *core.ByteGrid
	err    error

	boundary []float32
	traffic  []float32
}

// New constructs a Sim with the default configuration.
func New() *Sim {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig constructs a Sim for the given configuration.
func NewWithConfig(cfg Config) *Sim {
	if cfg.Steps <= 0 {
		cfg.Steps = 1
	}
	s := &Sim{cfg: cfg, log: zap.NewNop()}
	nodes, err := s.build(cfg.Seed)
	if err != nil {
		s.err = err
		nodes = []lattice.Node{{}}
	}
	s.bounds = lattice.BoundsOf(frame(cfg, nodes))
	w, h := s.bounds.Size(cfg.Margin)
	s.grid = core.NewByteGrid(w, h)
	s.Reset(cfg.Seed)
	return s
}

// SetLogger routes protocol transition logs to l.
func (s *Sim) SetLogger(l *zap.Logger) {
	if l != nil {
		s.log = l
	}
}

// Name returns the registry key of the sim.
func (s *Sim) Name() string { return "election" }

// Size returns the raster dimensions.
func (s *Sim) Size() core.Size { return core.Size{W: s.grid.W, H: s.grid.H} }

// Cells returns palette indices for the current raster.
func (s *Sim) Cells() []uint8 { return s.grid.Cells() }

// System exposes the running election.
func (s *Sim) System() *election.System { return s.sys }

// Err reports why the last Reset could not build a system.
func (s *Sim) Err() error { return s.err }

// Reset rebuilds the configuration for seed and starts a fresh election.
func (s *Sim) Reset(seed int64) {
	s.cfg.Seed = seed
	s.sys = nil
	nodes, err := s.build(seed)
	if err == nil {
		s.sys, err = election.NewSystem(nodes, election.WithSeed(seed), election.WithLogger(s.log))
	}
	s.err = err
	if err != nil {
		s.log.Warn("election reset failed", zap.Int64("seed", seed), zap.Error(err))
	}
	s.traceBoundaries()
	s.paint()
}

// Step advances the election by the configured number of activations.
func (s *Sim) Step() {
	if s.sys == nil || s.sys.Terminated() {
		return
	}
	for i := 0; i < s.cfg.Steps && !s.sys.Terminated(); i++ {
		s.sys.Activate()
	}
	s.paint()
}

// Terminated reports whether the election has finished.
func (s *Sim) Terminated() bool { return s.sys == nil || s.sys.Terminated() }

// RunToEnd activates until termination, the budget is spent, or ctx is done.
func (s *Sim) RunToEnd(ctx context.Context, budget int64) error {
	if s.sys == nil {
		return s.err
	}
	err := s.sys.Run(ctx, budget)
	s.paint()
	return err
}

// Metrics summarises the current election.
func (s *Sim) Metrics() election.Metrics {
	if s.sys == nil {
		return election.Metrics{}
	}
	return s.sys.Metrics()
}

// Status renders a one-line progress summary for the HUD.
func (s *Sim) Status() string {
	if s.sys == nil {
		return fmt.Sprintf("no system: %v", s.err)
	}
	state := "running"
	if s.sys.Terminated() {
		state = "terminated"
	}
	return fmt.Sprintf("%s  activations=%d rounds=%d leaders=%d",
		state, s.sys.Activations(), s.sys.Rounds(), s.sys.Leaders())
}

// SetIntParameter updates integer parameters that take effect without a reset.
func (s *Sim) SetIntParameter(key string, value int) bool {
	switch key {
	case "steps":
		if value <= 0 {
			return false
		}
		s.cfg.Steps = value
		return true
	}
	return false
}

// BoundaryMask marks outer-cycle particles with 1 and hole-cycle particles with 0.5.
func (s *Sim) BoundaryMask() []float32 { return s.boundary }

// TrafficMask shades each particle by how many of its tokens are still unconsumed.
func (s *Sim) TrafficMask() []float32 {
	clear(s.traffic)
	if s.sys == nil {
		return s.traffic
	}
	for _, p := range s.sys.Particles() {
		x, y := s.bounds.Cell(p.Node(), s.cfg.Margin)
		if !s.grid.In(x, y) {
			continue
		}
		s.traffic[s.grid.Index(x, y)] = min(float32(p.Pending())/4, 1)
	}
	return s.traffic
}

// traceBoundaries caches the boundary mask; cycles never change during an election.
func (s *Sim) traceBoundaries() {
	total := s.grid.W * s.grid.H
	if len(s.boundary) != total {
		s.boundary = make([]float32, total)
		s.traffic = make([]float32, total)
	}
	clear(s.boundary)
	if s.sys == nil {
		return
	}
	for _, c := range s.sys.Cycles() {
		weight := float32(0.5)
		if c.Outer() {
			weight = 1
		}
		for _, b := range c.Members {
			x, y := s.bounds.Cell(b.Node, s.cfg.Margin)
			if s.grid.In(x, y) {
				i := s.grid.Index(x, y)
				s.boundary[i] = max(s.boundary[i], weight)
			}
		}
	}
}

func (s *Sim) build(seed int64) ([]lattice.Node, error) {
	return shapes.Build(shapes.Spec{Name: s.cfg.Shape, Size: s.cfg.Size, Fill: s.cfg.Fill, Seed: seed})
}

func (s *Sim) paint() {
	s.grid.Clear()
	if s.sys == nil {
		return
	}
	for _, p := range s.sys.Particles() {
		x, y := s.bounds.Cell(p.Node(), s.cfg.Margin)
		s.grid.Set(x, y, cellFor(p))
		if _, ok := s.sys.Particle(p.Node().Neighbor(lattice.East)); ok {
			s.grid.Set(x+1, y, cellBond)
		}
	}
}

// frame returns nodes whose bounds cover every configuration the shape can produce for
// any seed, so the raster size stays fixed across resets.
func frame(cfg Config, nodes []lattice.Node) []lattice.Node {
	var n int
	switch cfg.Shape {
	case "blob":
		n = max(cfg.Size, 2) - 1
	case "instance":
		n = shapes.InstanceSide(cfg.Size) - 1
	default:
		return nodes
	}
	return append(append([]lattice.Node(nil), nodes...),
		lattice.Node{}, lattice.Node{X: n}, lattice.Node{Y: n}, lattice.Node{X: n, Y: n})
}

func init() {
	core.Register("election", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		return NewWithConfig(c)
	})
}
