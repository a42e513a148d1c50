package election

import (
	"amoebot/pkg/core"
)

// locked reports whether the candidate waits on a reply to one of its own requests.
// A locked candidate cannot be covered.
func (a *Agent) locked() bool {
	return a.seg.leadSent || a.seg.challengeSent || a.coin.waiting || a.sol.createdLead
}

func (a *Agent) coverable() bool {
	return a.state == Candidate && !a.locked()
}

func (a *Agent) ownsLead(tok Token) bool {
	return tok.Offset.IsZero() && tok.Owner == a.id
}

func (a *Agent) enterSegment() {
	a.sub = SegmentComparison
	a.seg = segmentState{front: a.seg.front}
	a.coin = coinState{}
	a.sol = solitudeState{}
	a.hint = HintSegment
}

func (a *Agent) enterCoin() {
	a.sub = CoinFlipping
	a.coin = coinState{}
	a.hint = HintCoin
}

func (a *Agent) enterSolitude() {
	a.sub = SolitudeVerification
	a.sol = solitudeState{}
	a.hint = HintSolitude
}

func (a *Agent) demote() {
	a.setState(Demoted)
	a.seg = segmentState{}
	a.coin = coinState{}
	a.sol = solitudeState{}
	a.hint = HintNone
}

func (a *Agent) candidate(forward bool, rng *core.RNG) {
	a.absorbCleanup()
	a.collectReplies()
	if a.state != Candidate {
		if forward {
			a.flush()
		}
		return
	}
	if !forward {
		a.answerRequests()
		return
	}
	a.flush()
	a.advance(rng)
}

// absorbCleanup ends a segment clean at the first candidate ahead of the covered one.
func (a *Agent) absorbCleanup() {
	ch := a.ch()
	if _, ok := ch.Peek(PassiveSegmentClean, a.prev); ok {
		ch.Receive(PassiveSegmentClean, a.prev)
	}
}

// collectReplies consumes answers to this candidate's own requests. Replies never need
// a write toward a neighbor, so they are taken on every activation.
func (a *Agent) collectReplies() {
	ch := a.ch()
	if tok, ok := ch.Peek(ActiveSegment, a.next); ok {
		ch.Receive(ActiveSegment, a.next)
		a.onBounce(tok)
	}
	if tok, ok := ch.Peek(FinalSegmentClean, a.next); ok {
		ch.Receive(FinalSegmentClean, a.next)
		a.onVerdict(tok)
	}
	if _, ok := ch.Peek(CandidacyAck, a.next); ok {
		ch.Receive(CandidacyAck, a.next)
		a.onAck()
		if a.state != Candidate {
			return
		}
	}
	if _, ok := ch.Peek(SolitudeReturn, a.next); ok {
		ch.Receive(SolitudeReturn, a.next)
		a.onReturn()
	}
	if tok, ok := ch.Peek(SolitudeLead, a.prev); ok && a.ownsLead(tok) && tok.Lap == 2 {
		ch.Receive(SolitudeLead, a.prev)
		a.onSecondLap(tok)
	}
}

func (a *Agent) onBounce(tok Token) {
	if !a.seg.leadSent {
		violate("segment", "agent %d at %v got a bounce it did not ask for", a.id, a.host.node)
	}
	a.seg.leadSent = false
	a.seg.measured = true
	a.seg.front = tok.Length
	if tok.Final && tok.Length > tok.Front && tok.Front > 0 {
		a.seg.challenge = tok.Length
		return
	}
	a.enterCoin()
}

func (a *Agent) onVerdict(tok Token) {
	if !a.seg.challengeSent {
		violate("segment", "agent %d at %v got a verdict it did not ask for", a.id, a.host.node)
	}
	a.seg.challengeSent = false
	a.seg.challenge = 0
	if tok.Covered {
		a.seg.front = 0
	}
	a.enterCoin()
}

func (a *Agent) onAck() {
	if !a.coin.waiting {
		violate("coin", "agent %d at %v got an acknowledgement it did not ask for", a.id, a.host.node)
	}
	a.coin.waiting = false
	if a.coin.gotAnnounce {
		a.enterSolitude()
		return
	}
	a.demote()
}

func (a *Agent) onReturn() {
	if !a.sol.createdLead {
		violate("solitude", "agent %d at %v got a return it did not ask for", a.id, a.host.node)
	}
	a.enterSegment()
}

func (a *Agent) onSecondLap(tok Token) {
	if !a.sol.createdLead {
		violate("solitude", "agent %d at %v got a lead it never created", a.id, a.host.node)
	}
	if !tok.XSettled || !tok.YSettled {
		violate("solitude", "lead of agent %d at %v came back unsettled", a.id, a.host.node)
	}
	a.sol = solitudeState{}
	a.setState(SoleCandidate)
	a.sub = BorderDetection
	a.hint = HintBorder
}

// answerRequests replies to requests from the candidate behind. Each request is consumed
// only together with its reply.
func (a *Agent) answerRequests() {
	ch := a.ch()
	if tok, ok := ch.Peek(SegmentLead, a.prev); ok && ch.CanSend(ActiveSegment, a.prev) {
		ch.Receive(SegmentLead, a.prev)
		ch.Send(a.prev, Token{
			Kind:   ActiveSegment,
			Length: tok.Hops,
			Front:  a.seg.front,
			Final:  a.sub != SegmentComparison || a.seg.measured,
		})
	}
	if _, ok := ch.Peek(PassiveSegment, a.prev); ok && ch.CanSend(FinalSegmentClean, a.prev) {
		ch.Receive(PassiveSegment, a.prev)
		covered := a.coverable()
		ch.Send(a.prev, Token{Kind: FinalSegmentClean, Covered: covered})
		if covered {
			a.cleanOut = true
			a.demote()
			return
		}
	}
	if _, ok := ch.Peek(CandidacyAnnounce, a.prev); ok && ch.CanSend(CandidacyAck, a.prev) {
		ch.Receive(CandidacyAnnounce, a.prev)
		ch.Send(a.prev, Token{Kind: CandidacyAck})
		if a.coin.waiting {
			a.coin.gotAnnounce = true
		}
	}
	if tok, ok := ch.Peek(SolitudeLead, a.prev); ok && !a.ownsLead(tok) && ch.CanSend(SolitudeReturn, a.prev) {
		ch.Receive(SolitudeLead, a.prev)
		ch.Send(a.prev, Token{Kind: SolitudeReturn})
	}
}

// advance performs the forward write of the active subphase.
func (a *Agent) advance(rng *core.RNG) {
	ch := a.ch()
	switch a.sub {
	case SegmentComparison:
		switch {
		case !a.seg.leadSent && !a.seg.measured:
			if ch.CanSend(SegmentLead, a.next) {
				ch.Send(a.next, Token{Kind: SegmentLead, Hops: 1})
				a.seg.leadSent = true
			}
		case a.seg.challenge > 0 && !a.seg.challengeSent:
			if ch.CanSend(PassiveSegment, a.next) {
				ch.Send(a.next, Token{Kind: PassiveSegment, Length: a.seg.challenge})
				a.seg.challengeSent = true
			}
		}
	case CoinFlipping:
		// Tails keeps flipping; only an announcement received while waiting wins.
		if !a.coin.waiting && ch.CanSend(CandidacyAnnounce, a.next) && rng.Bool() {
			ch.Send(a.next, Token{Kind: CandidacyAnnounce})
			a.coin.waiting = true
		}
	case SolitudeVerification:
		if !a.sol.createdLead {
			if ch.CanSend(SolitudeLead, a.next) {
				ch.Send(a.next, a.newLead(1))
				a.sol.createdLead = true
			}
			return
		}
		if tok, ok := ch.Peek(SolitudeLead, a.prev); ok && a.ownsLead(tok) && tok.Lap == 1 && ch.CanSend(SolitudeLead, a.next) {
			ch.Receive(SolitudeLead, a.prev)
			ch.Send(a.next, a.newLead(2))
		}
	}
}

func (a *Agent) newLead(lap int) Token {
	return Token{
		Kind:     SolitudeLead,
		Lap:      lap,
		Offset:   a.next.Unit(),
		Owner:    a.id,
		XSettled: true,
		YSettled: true,
	}
}

func (a *Agent) soleCandidate(forward bool) {
	a.absorbCleanup()
	ch := a.ch()
	if forward {
		a.flush()
		if !a.border.testing && ch.CanSend(BorderTest, a.next) {
			ch.Send(a.next, Token{Kind: BorderTest, Sum: a.addNextBorder(0)})
			a.border.testing = true
			return
		}
	}
	tok, ok := ch.Peek(BorderTest, a.prev)
	if !ok || !a.border.testing {
		return
	}
	ch.Receive(BorderTest, a.prev)
	switch tok.Sum {
	case 1:
		a.setState(Leader)
	case 4:
		a.setState(Finished)
	default:
		violate("border", "agent %d at %v measured border sum %d", a.id, a.host.node, tok.Sum)
	}
	a.hint = HintNone
}
