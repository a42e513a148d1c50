package election

import (
	"fmt"

	"amoebot/internal/lattice"
	"amoebot/pkg/core"

	"go.uber.org/zap"
)

// State is the election state of an agent, and the aggregated status of a particle.
type State uint8

const (
	Idle State = iota
	Candidate
	Demoted
	SoleCandidate
	Leader
	Finished
)

var stateNames = [...]string{"Idle", "Candidate", "Demoted", "SoleCandidate", "Leader", "Finished"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether s is Leader or Finished.
func (s State) Terminal() bool { return s == Leader || s == Finished }

// Subphase is the step of the election a candidate is working on.
type Subphase uint8

const (
	SegmentComparison Subphase = iota
	CoinFlipping
	SolitudeVerification
	BorderDetection
)

var subphaseNames = [...]string{"SegmentComparison", "CoinFlipping", "SolitudeVerification", "BorderDetection"}

func (s Subphase) String() string {
	if int(s) >= len(subphaseNames) {
		return fmt.Sprintf("Subphase(%d)", int(s))
	}
	return subphaseNames[s]
}

// Hint is a cosmetic marker for viewers. The protocol never reads it.
type Hint uint8

const (
	HintNone Hint = iota
	HintSegment
	HintCoin
	HintSolitude
	HintBorder
)

type segmentState struct {
	leadSent      bool
	measured      bool
	front         int
	challenge     int
	challengeSent bool
}

type coinState struct {
	waiting     bool
	gotAnnounce bool
}

type solitudeState struct {
	createdLead bool
}

type borderState struct {
	testing bool
}

type parity struct {
	posX, negX, posY, negY bool
}

func parityOf(v lattice.Vec) parity {
	return parity{posX: v.X > 0, negX: v.X < 0, posY: v.Y > 0, negY: v.Y < 0}
}

func (p parity) kinds() []Kind {
	var out []Kind
	if p.posX {
		out = append(out, SolitudePositiveX)
	}
	if p.negX {
		out = append(out, SolitudeNegativeX)
	}
	if p.posY {
		out = append(out, SolitudePositiveY)
	}
	if p.negY {
		out = append(out, SolitudeNegativeY)
	}
	return out
}

// Agent is the election participant for one run of empty directions around a particle.
type Agent struct {
	host *Particle
	id   int
	dir  lattice.Dir
	next lattice.Dir
	prev lattice.Dir

	state State
	sub   Subphase

	seg    segmentState
	coin   coinState
	sol    solitudeState
	border borderState

	cleanOut bool
	parked   parity
	hint     Hint
}

func newAgent(host *Particle, id int, dir lattice.Dir, occupied [lattice.NumDirs]bool) *Agent {
	if occupied[dir] || !occupied[dir.Add(1)] {
		violate("newAgent", "direction %v of %v is not a boundary start", dir, host.node)
	}
	next, ok := nextOccupied(dir, occupied)
	if !ok {
		violate("newAgent", "no occupied direction clockwise of %v at %v", dir, host.node)
	}
	return &Agent{host: host, id: id, dir: dir, next: next, prev: dir.Add(1)}
}

func nextOccupied(dir lattice.Dir, occupied [lattice.NumDirs]bool) (lattice.Dir, bool) {
	for k := 1; k <= lattice.NumDirs; k++ {
		d := dir.Add(-k)
		if occupied[d] {
			return d, true
		}
	}
	return 0, false
}

// ID is the agent's local identifier within its particle (1..3).
func (a *Agent) ID() int { return a.id }

// Dir is the first empty direction of the agent's boundary run.
func (a *Agent) Dir() lattice.Dir { return a.dir }

// Next is the direction of the particle continuing the boundary clockwise.
func (a *Agent) Next() lattice.Dir { return a.next }

// Prev is the direction of the particle continuing the boundary counter-clockwise.
func (a *Agent) Prev() lattice.Dir { return a.prev }

// Node is the host particle's position.
func (a *Agent) Node() lattice.Node { return a.host.node }

// State returns the agent's election state.
func (a *Agent) State() State { return a.state }

// Subphase returns the active subphase; meaningful only for candidates.
func (a *Agent) Subphase() Subphase { return a.sub }

// Hint returns the cosmetic marker last set by the agent.
func (a *Agent) Hint() Hint { return a.hint }

func (a *Agent) ch() *Channel { return &a.host.ch }

func (a *Agent) activate(rng *core.RNG) {
	a.ch().Cleanup(a.next)
	if a.prev != a.next {
		a.ch().Cleanup(a.prev)
	}
	if a.state == Idle {
		a.becomeCandidate()
		return
	}
	forward := rng.Bool()
	switch a.state {
	case Candidate:
		a.candidate(forward, rng)
	case SoleCandidate:
		a.soleCandidate(forward)
	case Demoted:
		a.demoted(forward)
	default:
		a.absorbStray()
	}
}

// turnOffset is the facing-direction change at this agent folded into [-2, 3].
func (a *Agent) turnOffset() int {
	off := int(a.prev.Add(3)) - int(a.next)
	if off >= 4 {
		off -= lattice.NumDirs
	}
	if off <= -3 {
		off += lattice.NumDirs
	}
	return off
}

func (a *Agent) addNextBorder(sum int) int {
	return (sum + a.turnOffset() + 5) % 5
}

func (a *Agent) setState(s State) {
	if a.state == s {
		return
	}
	a.logger().Debug("agent state",
		zap.Stringer("node", a.host.node),
		zap.Int("agent", a.id),
		zap.Stringer("from", a.state),
		zap.Stringer("to", s),
	)
	a.state = s
}

func (a *Agent) logger() *zap.Logger {
	if a.host.sys == nil || a.host.sys.log == nil {
		return zap.NewNop()
	}
	return a.host.sys.log
}

func (a *Agent) becomeCandidate() {
	a.setState(Candidate)
	a.enterSegment()
}

// absorbStray drops a segment clean that reaches an agent after it terminated.
func (a *Agent) absorbStray() {
	if _, ok := a.ch().Peek(PassiveSegmentClean, a.prev); ok {
		a.ch().Receive(PassiveSegmentClean, a.prev)
	}
}

// flush emits the segment clean this agent owes after being covered.
func (a *Agent) flush() {
	if a.cleanOut && a.ch().CanSend(PassiveSegmentClean, a.next) {
		a.ch().Send(a.next, Token{Kind: PassiveSegmentClean})
		a.cleanOut = false
	}
}
