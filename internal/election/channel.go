package election

import "amoebot/internal/lattice"

type slot struct {
	tok  Token
	full bool
}

// Channel holds the directional token slots of one particle. A particle writes only its
// own out slots and received flags; it reads the facing slots of its neighbors.
type Channel struct {
	out      [lattice.NumDirs][numChannelKinds]slot
	received [lattice.NumDirs][numChannelKinds]bool
	peers    [lattice.NumDirs]*Channel
}

func (c *Channel) peer(d lattice.Dir, op string) *Channel {
	p := c.peers[d]
	if p == nil {
		violate(op, "no neighbor in direction %v", d)
	}
	return p
}

func channelKind(k Kind, op string) int {
	if int(k) >= numChannelKinds {
		violate(op, "%v is not exchanged through slots", k)
	}
	return int(k)
}

// CanSend reports whether a token of kind k may be written toward d: the out slot is
// empty and the neighbor no longer holds a delivery mark for the previous one.
func (c *Channel) CanSend(k Kind, d lattice.Dir) bool {
	i := channelKind(k, "CanSend")
	p := c.peer(d, "CanSend")
	return !c.out[d][i].full && !p.received[d.Opposite()][i]
}

// Send writes tok toward d. Sending when CanSend is false panics.
func (c *Channel) Send(d lattice.Dir, tok Token) {
	if !c.CanSend(tok.Kind, d) {
		violate("Send", "%v slot toward %v is occupied", tok.Kind, d)
	}
	tok.Origin = d.Opposite()
	c.out[d][tok.Kind] = slot{tok: tok, full: true}
}

// Peek returns the token of kind k waiting from direction d without consuming it.
func (c *Channel) Peek(k Kind, d lattice.Dir) (Token, bool) {
	i := channelKind(k, "Peek")
	if c.received[d][i] {
		return Token{}, false
	}
	s := c.peer(d, "Peek").out[d.Opposite()][i]
	if !s.full {
		return Token{}, false
	}
	return s.tok, true
}

// Receive consumes the token of kind k waiting from direction d. Receiving nothing panics.
func (c *Channel) Receive(k Kind, d lattice.Dir) Token {
	tok, ok := c.Peek(k, d)
	if !ok {
		violate("Receive", "no %v waiting from %v", k, d)
	}
	c.received[d][k] = true
	return tok
}

// Cleanup reclaims every kind's slot pair facing d once both ends agree the value was
// consumed. Repeating it without intervening sends or receives changes nothing.
func (c *Channel) Cleanup(d lattice.Dir) {
	p := c.peer(d, "Cleanup")
	back := d.Opposite()
	for i := 0; i < numChannelKinds; i++ {
		if c.out[d][i].full && p.received[back][i] {
			c.out[d][i] = slot{}
		}
		if c.received[d][i] && !p.out[back][i].full {
			c.received[d][i] = false
		}
	}
}

// pending reports whether the token written toward d of kind k is still unconsumed.
func (c *Channel) pending(d lattice.Dir, k int) bool {
	if !c.out[d][k].full {
		return false
	}
	p := c.peers[d]
	return p == nil || !p.received[d.Opposite()][k]
}

// held returns the unconsumed token written toward d of kind k.
func (c *Channel) held(d lattice.Dir, k int) (Token, bool) {
	if !c.pending(d, k) {
		return Token{}, false
	}
	return c.out[d][k].tok, true
}
