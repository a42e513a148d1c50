package election

import "amoebot/internal/lattice"

// Dump is a diagnostic snapshot of a system. It is not read by the protocol.
type Dump struct {
	Activations int64          `yaml:"activations" json:"activations"`
	Rounds      int64          `yaml:"rounds" json:"rounds"`
	Particles   []ParticleDump `yaml:"particles" json:"particles"`
}

// ParticleDump describes one particle and its agents.
type ParticleDump struct {
	Node   string      `yaml:"node" json:"node"`
	Status string      `yaml:"status" json:"status"`
	Agents []AgentDump `yaml:"agents,omitempty" json:"agents,omitempty"`
}

// AgentDump describes one agent and the tokens it currently holds.
type AgentDump struct {
	ID       int      `yaml:"id" json:"id"`
	Dir      string   `yaml:"dir" json:"dir"`
	Next     string   `yaml:"next" json:"next"`
	Prev     string   `yaml:"prev" json:"prev"`
	State    string   `yaml:"state" json:"state"`
	Subphase string   `yaml:"subphase,omitempty" json:"subphase,omitempty"`
	Tokens   []string `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	Parked   []string `yaml:"parked,omitempty" json:"parked,omitempty"`
}

// Dump captures every particle's status, each agent's state and subphase, the
// unconsumed tokens it wrote, and its parked parity tokens.
func (s *System) Dump() Dump {
	d := Dump{Activations: s.activations, Rounds: s.rounds}
	for _, p := range s.particles {
		pd := ParticleDump{Node: p.node.String(), Status: p.status.String()}
		for _, a := range p.agents {
			pd.Agents = append(pd.Agents, a.dump())
		}
		d.Particles = append(d.Particles, pd)
	}
	return d
}

func (a *Agent) dump() AgentDump {
	ad := AgentDump{
		ID:    a.id,
		Dir:   a.dir.String(),
		Next:  a.next.String(),
		Prev:  a.prev.String(),
		State: a.state.String(),
	}
	if a.state == Candidate || a.state == SoleCandidate {
		ad.Subphase = a.sub.String()
	}
	for k := Kind(0); int(k) < numChannelKinds; k++ {
		to := a.prev
		if k.Forward() {
			to = a.next
		}
		if tok, ok := a.host.ch.held(to, int(k)); ok && a.owns(k, to) {
			ad.Tokens = append(ad.Tokens, tok.String())
		}
	}
	for _, k := range a.parked.kinds() {
		ad.Parked = append(ad.Parked, k.String())
	}
	return ad
}

// owns reports whether the out slot of kind k toward d is written by this agent.
func (a *Agent) owns(k Kind, d lattice.Dir) bool {
	if k.Forward() {
		return d == a.next
	}
	return d == a.prev
}
