package election

import (
	"amoebot/internal/lattice"
	"amoebot/pkg/core"
)

// Particle hosts up to three agents and round-robins their activation.
type Particle struct {
	sys  *System
	node lattice.Node
	ch   Channel

	occupied [lattice.NumDirs]bool
	started  bool
	agents   []*Agent
	cursor   int
	status   State
	done     bool
}

func newParticle(sys *System, node lattice.Node) *Particle {
	return &Particle{sys: sys, node: node, status: Idle}
}

// Node returns the particle's position.
func (p *Particle) Node() lattice.Node { return p.node }

// Agents returns the particle's agents in creation order; empty before the first activation.
func (p *Particle) Agents() []*Agent { return p.agents }

// Status aggregates the agents' states.
func (p *Particle) Status() State { return p.status }

// IsLeader reports whether the particle holds the leader.
func (p *Particle) IsLeader() bool { return p.status == Leader }

// IsFinished reports whether the particle completed without becoming leader.
func (p *Particle) IsFinished() bool { return p.status == Finished }

// Done reports whether nothing remains for the particle to decide.
func (p *Particle) Done() bool { return p.done }

// NeighborCount returns the number of occupied neighbor nodes.
func (p *Particle) NeighborCount() int {
	n := 0
	for _, occ := range p.occupied {
		if occ {
			n++
		}
	}
	return n
}

// Pending counts the tokens this particle has written that are not yet consumed.
func (p *Particle) Pending() int {
	n := 0
	for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
		for k := 0; k < numChannelKinds; k++ {
			if p.ch.pending(d, k) {
				n++
			}
		}
	}
	return n
}

func (p *Particle) activate(rng *core.RNG) {
	if !p.started {
		p.start()
		return
	}
	if len(p.agents) == 0 {
		return
	}
	a := p.agents[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.agents)
	a.activate(rng)
	p.aggregate()
}

// start creates one agent per run of empty directions, or settles a particle that has
// no boundary to compete on.
func (p *Particle) start() {
	p.started = true
	switch p.NeighborCount() {
	case 0:
		p.status = Leader
		p.done = true
		return
	case lattice.NumDirs:
		p.status = Finished
		p.done = true
		return
	}
	for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
		if !p.occupied[d] && p.occupied[d.Add(1)] {
			p.agents = append(p.agents, newAgent(p, len(p.agents)+1, d, p.occupied))
		}
	}
	if len(p.agents) > 3 {
		violate("start", "particle %v created %d agents", p.node, len(p.agents))
	}
	p.aggregate()
}

func (p *Particle) aggregate() {
	var leader, candidate, pending bool
	for _, a := range p.agents {
		switch a.state {
		case Leader:
			leader = true
		case Candidate, SoleCandidate:
			candidate = true
		case Idle, Demoted:
			pending = true
		}
	}
	switch {
	case leader:
		p.status = Leader
	case candidate:
		p.status = Candidate
	case pending:
		p.status = Demoted
	default:
		p.status = Finished
	}
	p.done = !candidate && !pending
}
