package election

import "amoebot/internal/lattice"

var (
	forwardRelays  = []Kind{BorderTest, SolitudeLead, SegmentLead, PassiveSegment, CandidacyAnnounce, PassiveSegmentClean}
	backwardRelays = []Kind{ActiveSegment, FinalSegmentClean, CandidacyAck, SolitudeReturn}
)

// demoted passes cycle traffic through: forward kinds from prev to next, backward kinds
// from next to prev, one direction per activation.
func (a *Agent) demoted(forward bool) {
	if !forward {
		for _, k := range backwardRelays {
			tok, ok := a.take(k, a.next, a.prev)
			if !ok {
				continue
			}
			switch k {
			case SolitudeReturn:
				a.parked = parity{}
			case FinalSegmentClean:
				a.hint = HintNone
			}
			a.ch().Send(a.prev, tok)
		}
		return
	}
	a.flush()
	for _, k := range forwardRelays {
		tok, ok := a.take(k, a.prev, a.next)
		if !ok {
			continue
		}
		switch k {
		case BorderTest:
			tok.Sum = a.addNextBorder(tok.Sum)
			a.ch().Send(a.next, tok)
			a.setState(Finished)
			a.hint = HintNone
			return
		case SolitudeLead:
			a.checkParity(&tok)
			tok.Offset = tok.Offset.Add(a.next.Unit())
			a.hint = HintSolitude
		case SegmentLead:
			tok.Hops++
			a.hint = HintSegment
		case PassiveSegment:
			a.hint = HintSegment
		case CandidacyAnnounce:
			a.hint = HintCoin
		case PassiveSegmentClean:
			a.hint = HintNone
		}
		a.ch().Send(a.next, tok)
	}
}

// take consumes a token of kind k arriving from `from` if it can be passed on toward `to`.
func (a *Agent) take(k Kind, from, to lattice.Dir) (Token, bool) {
	ch := a.ch()
	tok, ok := ch.Peek(k, from)
	if !ok || !ch.CanSend(k, to) {
		return Token{}, false
	}
	ch.Receive(k, from)
	return tok, true
}

// checkParity parks the lead's displacement signs on lap 1 and cancels them on lap 2,
// clearing the settled flag of any axis that does not match.
func (a *Agent) checkParity(tok *Token) {
	seen := parityOf(tok.Offset)
	if tok.Lap == 1 {
		a.parked = seen
		return
	}
	if seen.posX != a.parked.posX || seen.negX != a.parked.negX {
		tok.XSettled = false
	}
	if seen.posY != a.parked.posY || seen.negY != a.parked.negY {
		tok.YSettled = false
	}
	a.parked = parity{}
}
