// Package election elects one leader per boundary cycle of a connected set of anonymous
// particles on the triangular grid, using only directional token slots between neighbors.
package election

import (
	"context"
	"fmt"

	"amoebot/internal/lattice"
	"amoebot/pkg/core"

	"go.uber.org/zap"
)

// Option configures a System.
type Option func(*System)

// WithSeed seeds the scheduler and every coin flip.
func WithSeed(seed int64) Option {
	return func(s *System) { s.seed = seed }
}

// WithLogger routes agent transition logs to l at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.log = l
		}
	}
}

// System owns the particles of one connected configuration and schedules them.
type System struct {
	particles []*Particle
	byNode    map[lattice.Node]*Particle

	seed int64
	rng  *core.RNG
	log  *zap.Logger

	activations int64
	rounds      int64
	roundSeen   []bool
	roundLeft   int
	done        int
}

// NewSystem places one particle on each node. The nodes must be distinct and connected.
func NewSystem(nodes []lattice.Node, opts ...Option) (*System, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptySystem
	}
	s := &System{
		byNode: make(map[lattice.Node]*Particle, len(nodes)),
		seed:   1,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = core.NewRNG(s.seed)
	for _, n := range nodes {
		if _, dup := s.byNode[n]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateNode, n)
		}
		p := newParticle(s, n)
		s.byNode[n] = p
		s.particles = append(s.particles, p)
	}
	for _, p := range s.particles {
		for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
			if q, ok := s.byNode[p.node.Neighbor(d)]; ok {
				p.occupied[d] = true
				p.ch.peers[d] = &q.ch
			}
		}
	}
	if !connected(s.particles[0].node, s.byNode) {
		return nil, ErrDisconnected
	}
	s.roundSeen = make([]bool, len(s.particles))
	s.roundLeft = len(s.particles)
	return s, nil
}

func connected(start lattice.Node, set map[lattice.Node]*Particle) bool {
	seen := map[lattice.Node]bool{start: true}
	queue := []lattice.Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
			m := n.Neighbor(d)
			if _, ok := set[m]; ok && !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}
	return len(seen) == len(set)
}

// Particles returns the particles in insertion order.
func (s *System) Particles() []*Particle { return s.particles }

// Particle returns the particle at n, if any.
func (s *System) Particle(n lattice.Node) (*Particle, bool) {
	p, ok := s.byNode[n]
	return p, ok
}

// Agent returns the agent of the particle at n whose boundary run starts at dir.
func (s *System) Agent(n lattice.Node, dir lattice.Dir) (*Agent, bool) {
	p, ok := s.byNode[n]
	if !ok {
		return nil, false
	}
	for _, a := range p.agents {
		if a.dir == dir {
			return a, true
		}
	}
	return nil, false
}

// Nodes returns the occupied nodes in insertion order.
func (s *System) Nodes() []lattice.Node {
	out := make([]lattice.Node, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.node
	}
	return out
}

// Activations is the number of particle activations so far.
func (s *System) Activations() int64 { return s.activations }

// Rounds is the number of completed rounds; a round ends once every particle has been
// activated at least once since the previous one ended.
func (s *System) Rounds() int64 { return s.rounds }

// Terminated reports whether every particle is done.
func (s *System) Terminated() bool { return s.done == len(s.particles) }

// Activate runs one particle chosen uniformly at random.
func (s *System) Activate() {
	i := s.rng.IntN(len(s.particles))
	p := s.particles[i]
	wasDone := p.done
	p.activate(s.rng)
	if !wasDone && p.done {
		s.done++
	}
	s.activations++
	if !s.roundSeen[i] {
		s.roundSeen[i] = true
		s.roundLeft--
		if s.roundLeft == 0 {
			s.rounds++
			clear(s.roundSeen)
			s.roundLeft = len(s.particles)
		}
	}
}

// Run activates particles until the system terminates, the budget is spent, or ctx is
// done. A budget of zero or less means no limit.
func (s *System) Run(ctx context.Context, budget int64) error {
	for !s.Terminated() {
		if budget > 0 && s.activations >= budget {
			return fmt.Errorf("%w after %d activations", ErrBudgetExhausted, s.activations)
		}
		if s.activations%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s.Activate()
	}
	s.log.Debug("election terminated",
		zap.Int64("activations", s.activations),
		zap.Int64("rounds", s.rounds),
		zap.Int("leaders", s.Leaders()),
	)
	return nil
}

// Leaders returns the number of particles holding a leader.
func (s *System) Leaders() int {
	n := 0
	for _, p := range s.particles {
		if p.IsLeader() {
			n++
		}
	}
	return n
}

// Outstanding counts unconsumed tokens per kind across every slot.
func (s *System) Outstanding() [NumKinds]int {
	var out [NumKinds]int
	for _, p := range s.particles {
		for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
			for k := 0; k < numChannelKinds; k++ {
				if p.ch.pending(d, k) {
					out[k]++
				}
			}
		}
		for _, a := range p.agents {
			for _, k := range a.parked.kinds() {
				out[k]++
			}
		}
	}
	return out
}
