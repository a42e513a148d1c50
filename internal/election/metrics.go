package election

// Metrics summarises a run.
type Metrics struct {
	Particles   int            `json:"particles" yaml:"particles"`
	Agents      int            `json:"agents" yaml:"agents"`
	Cycles      int            `json:"cycles" yaml:"cycles"`
	Activations int64          `json:"activations" yaml:"activations"`
	Rounds      int64          `json:"rounds" yaml:"rounds"`
	Leaders     int            `json:"leaders" yaml:"leaders"`
	Terminated  bool           `json:"terminated" yaml:"terminated"`
	States      map[string]int `json:"states" yaml:"states"`
}

// Metrics counts agents per state alongside the scheduler counters.
func (s *System) Metrics() Metrics {
	m := Metrics{
		Particles:   len(s.particles),
		Cycles:      len(s.Cycles()),
		Activations: s.activations,
		Rounds:      s.rounds,
		Leaders:     s.Leaders(),
		Terminated:  s.Terminated(),
		States:      map[string]int{},
	}
	for _, p := range s.particles {
		m.Agents += len(p.agents)
		for _, a := range p.agents {
			m.States[a.state.String()]++
		}
	}
	return m
}
