package election

import (
	"context"
	"testing"

	"amoebot/internal/lattice"
	"amoebot/pkg/core"
)

func TestSingleParticleLeadsImmediately(t *testing.T) {
	s, err := NewSystem([]lattice.Node{{}})
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	s.Activate()
	p := s.particles[0]
	if !p.IsLeader() {
		t.Fatalf("status = %v, want Leader", p.Status())
	}
	if len(p.Agents()) != 0 {
		t.Fatalf("isolated particle created %d agents", len(p.Agents()))
	}
	if !s.Terminated() {
		t.Fatal("system should be terminated after one activation")
	}
}

func TestPairElectsOne(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		s, err := NewSystem([]lattice.Node{{X: 0, Y: 0}, {X: 1, Y: 0}}, WithSeed(seed))
		if err != nil {
			t.Fatalf("NewSystem: %v", err)
		}
		for !s.particles[0].started || !s.particles[1].started {
			s.Activate()
		}
		west, east := s.particles[0], s.particles[1]
		if len(west.Agents()) != 1 || len(east.Agents()) != 1 {
			t.Fatalf("seed %d: agents = %d/%d, want 1/1", seed, len(west.Agents()), len(east.Agents()))
		}
		wa, ea := west.Agents()[0], east.Agents()[0]
		if wa.Dir() != lattice.SouthEast || wa.Next() != lattice.East || wa.Prev() != lattice.East {
			t.Fatalf("west agent dir/next/prev = %v/%v/%v", wa.Dir(), wa.Next(), wa.Prev())
		}
		if ea.Dir() != lattice.NorthWest || ea.Next() != lattice.West || ea.Prev() != lattice.West {
			t.Fatalf("east agent dir/next/prev = %v/%v/%v", ea.Dir(), ea.Next(), ea.Prev())
		}

		if err := s.Run(context.Background(), 100000); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		leaders, finished := 0, 0
		for _, p := range s.particles {
			switch p.Status() {
			case Leader:
				leaders++
			case Finished:
				finished++
			}
		}
		if leaders != 1 || finished != 1 {
			t.Fatalf("seed %d: leaders=%d finished=%d", seed, leaders, finished)
		}
	}
}

func TestSurroundedParticleNeverParticipates(t *testing.T) {
	s, err := NewSystem(hexagonNodes(1), WithSeed(9))
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	center, ok := s.Particle(lattice.Node{})
	if !ok {
		t.Fatal("center particle missing")
	}
	for !center.started {
		s.Activate()
	}
	if !center.IsFinished() || len(center.Agents()) != 0 {
		t.Fatalf("center status=%v agents=%d", center.Status(), len(center.Agents()))
	}
	for !s.Terminated() {
		s.Activate()
		if s.Activations() > 200000 {
			t.Fatal("hexagon did not terminate")
		}
		for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
			n := lattice.Node{}.Neighbor(d)
			p, _ := s.Particle(n)
			back := d.Opposite()
			for k := 0; k < numChannelKinds; k++ {
				if p.ch.out[back][k].full {
					t.Fatalf("%v wrote %v toward the center", n, Kind(k))
				}
				if center.ch.out[d][k].full || center.ch.received[d][k] {
					t.Fatalf("center touched its %v slots", d)
				}
			}
		}
	}
	if !center.IsFinished() {
		t.Fatalf("center ended as %v", center.Status())
	}
	if s.Leaders() != 1 {
		t.Fatalf("leaders = %d, want 1", s.Leaders())
	}
}

// startedPair returns the west and east agents of a two-particle system whose particles
// have created their agents but never activated them.
func startedPair(t *testing.T) (*System, *Agent, *Agent) {
	t.Helper()
	s, err := NewSystem([]lattice.Node{{X: 0, Y: 0}, {X: 1, Y: 0}})
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	for _, p := range s.particles {
		p.start()
	}
	return s, s.particles[0].agents[0], s.particles[1].agents[0]
}

func TestIdleParticleIsNotDone(t *testing.T) {
	s, west, east := startedPair(t)
	for _, p := range s.particles {
		if p.Status() != Demoted || p.Done() {
			t.Fatalf("%v: status=%v done=%t before any agent ran", p.Node(), p.Status(), p.Done())
		}
	}
	west.becomeCandidate()
	s.particles[0].aggregate()
	if got := s.particles[0].Status(); got != Candidate {
		t.Fatalf("west status = %v, want Candidate", got)
	}
	if east.State() != Idle || s.particles[1].Done() {
		t.Fatal("east particle settled without running")
	}
}

func TestCoinWithoutAnnouncementNeverVerifiesSolitude(t *testing.T) {
	s, err := NewSystem(hexagonNodes(2))
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	for _, p := range s.particles {
		p.start()
	}
	var a *Agent
	for _, p := range s.particles {
		if len(p.agents) > 0 {
			a = p.agents[0]
			break
		}
	}
	for seed := int64(1); seed <= 20; seed++ {
		a.becomeCandidate()
		a.enterCoin()
		rng := core.NewRNG(seed)
		for i := 0; i < 64; i++ {
			a.advance(rng)
			a.collectReplies()
			if a.Subphase() != CoinFlipping || a.State() != Candidate {
				t.Fatalf("seed %d: candidate moved to %v/%v without an announcement", seed, a.State(), a.Subphase())
			}
		}
		if !a.coin.waiting || !a.holds(CandidacyAnnounce) {
			t.Fatalf("seed %d: 64 flips never came up heads", seed)
		}
		a.host.ch = Channel{peers: a.host.ch.peers}
	}
}

func TestAckWithoutAnnouncementDemotes(t *testing.T) {
	_, west, east := startedPair(t)
	west.becomeCandidate()
	west.enterCoin()
	east.becomeCandidate()
	for i := 0; i < 64 && !west.coin.waiting; i++ {
		west.advance(core.NewRNG(int64(i)))
	}
	east.answerRequests()
	if east.coin.gotAnnounce {
		t.Fatal("a candidate that is not waiting recorded an announcement")
	}
	west.collectReplies()
	if west.State() != Demoted {
		t.Fatalf("west = %v, want Demoted", west.State())
	}
}

func TestAnnouncementWhileWaitingWins(t *testing.T) {
	_, west, east := startedPair(t)
	for _, a := range []*Agent{west, east} {
		a.becomeCandidate()
		a.enterCoin()
		rng := core.NewRNG(3)
		for i := 0; i < 64 && !a.coin.waiting; i++ {
			a.advance(rng)
		}
	}
	west.answerRequests()
	east.answerRequests()
	west.collectReplies()
	east.collectReplies()
	for _, a := range []*Agent{west, east} {
		if a.State() != Candidate || a.Subphase() != SolitudeVerification {
			t.Fatalf("%v = %v/%v, want Candidate/SolitudeVerification", a.Node(), a.State(), a.Subphase())
		}
	}
}

// Both candidates of a pair answer each other before measuring, so neither reply is
// final. Both must keep competing.
func TestCrossedLeadsBothFlip(t *testing.T) {
	_, west, east := startedPair(t)
	rng := core.NewRNG(1)
	west.becomeCandidate()
	east.becomeCandidate()
	west.advance(rng)
	east.advance(rng)
	west.answerRequests()
	east.answerRequests()
	west.collectReplies()
	east.collectReplies()
	for _, a := range []*Agent{west, east} {
		if a.State() != Candidate || a.Subphase() != CoinFlipping {
			t.Fatalf("%v = %v/%v, want Candidate/CoinFlipping", a.Node(), a.State(), a.Subphase())
		}
	}
}

// Equal segments cover nobody and no announcement exists yet; both candidates survive.
func TestEqualSegmentsSurviveComparison(t *testing.T) {
	_, west, east := startedPair(t)
	rng := core.NewRNG(1)
	west.becomeCandidate()
	east.becomeCandidate()
	west.advance(rng)
	east.answerRequests()
	west.collectReplies()
	east.advance(rng)
	west.answerRequests()
	east.collectReplies()
	if east.seg.challenge != 0 || east.holds(PassiveSegment) {
		t.Fatalf("east challenged an equal segment: %+v", east.seg)
	}
	for _, a := range []*Agent{west, east} {
		if a.State() != Candidate || a.Subphase() != CoinFlipping {
			t.Fatalf("%v = %v/%v, want Candidate/CoinFlipping", a.Node(), a.State(), a.Subphase())
		}
	}
}

func TestSolitudeLeadReturnedByOtherCandidate(t *testing.T) {
	_, west, east := startedPair(t)
	rng := core.NewRNG(1)
	west.becomeCandidate()
	west.enterSolitude()
	east.becomeCandidate()
	west.advance(rng)
	if !west.holds(SolitudeLead) {
		t.Fatal("west sent no solitude lead")
	}
	east.answerRequests()
	if east.holds(SolitudeLead) || east.parked != (parity{}) {
		t.Fatal("east passed the lead on")
	}
	if !east.holds(SolitudeReturn) {
		t.Fatal("east did not return the lead")
	}
	west.collectReplies()
	if west.State() != Candidate || west.Subphase() != SegmentComparison {
		t.Fatalf("west = %v/%v, want Candidate/SegmentComparison", west.State(), west.Subphase())
	}
	if east.State() != Candidate || east.Subphase() != SegmentComparison {
		t.Fatalf("east = %v/%v, want Candidate/SegmentComparison", east.State(), east.Subphase())
	}
}
