package election

import (
	"fmt"

	"amoebot/internal/lattice"
)

// Kind identifies a token type. Every kind travels in one fixed direction along a cycle.
type Kind uint8

const (
	SegmentLead Kind = iota
	PassiveSegment
	PassiveSegmentClean
	CandidacyAnnounce
	SolitudeLead
	BorderTest
	ActiveSegment
	FinalSegmentClean
	CandidacyAck
	SolitudeReturn
	SolitudePositiveX
	SolitudeNegativeX
	SolitudePositiveY
	SolitudeNegativeY

	// NumKinds is the size of the catalog.
	NumKinds = iota
)

// Channel kinds are the ones exchanged through slots; the parity kinds stay parked on agents.
const numChannelKinds = int(SolitudeReturn) + 1

var kindNames = [NumKinds]string{
	"SegmentLead",
	"PassiveSegment",
	"PassiveSegmentClean",
	"CandidacyAnnounce",
	"SolitudeLead",
	"BorderTest",
	"ActiveSegment",
	"FinalSegmentClean",
	"CandidacyAck",
	"SolitudeReturn",
	"SolitudePositiveX",
	"SolitudeNegativeX",
	"SolitudePositiveY",
	"SolitudeNegativeY",
}

func (k Kind) String() string {
	if int(k) >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Forward reports whether k travels along nextAgentDir.
func (k Kind) Forward() bool { return k <= BorderTest }

// Parked reports whether k is held by an agent instead of a slot.
func (k Kind) Parked() bool { return k >= SolitudePositiveX && int(k) < NumKinds }

// Exchange reports whether k belongs to a request/reply exchange owned by one candidate.
func (k Kind) Exchange() bool {
	return k != PassiveSegmentClean && !k.Parked() && int(k) < NumKinds
}

// Token is a single-use message. Origin is the direction leading back to the sender;
// the remaining fields are the payload and only the ones relevant to Kind are set.
type Token struct {
	Kind   Kind
	Origin lattice.Dir

	Hops   int
	Length int
	Front  int
	Final  bool

	Covered bool

	Lap      int
	Offset   lattice.Vec
	Owner    int
	XSettled bool
	YSettled bool

	Sum int
}

func (t Token) String() string {
	switch t.Kind {
	case SegmentLead:
		return fmt.Sprintf("%v{hops=%d}", t.Kind, t.Hops)
	case PassiveSegment:
		return fmt.Sprintf("%v{len=%d}", t.Kind, t.Length)
	case ActiveSegment:
		return fmt.Sprintf("%v{len=%d front=%d final=%t}", t.Kind, t.Length, t.Front, t.Final)
	case FinalSegmentClean:
		return fmt.Sprintf("%v{covered=%t}", t.Kind, t.Covered)
	case SolitudeLead:
		return fmt.Sprintf("%v{lap=%d off=%v owner=%d}", t.Kind, t.Lap, t.Offset, t.Owner)
	case BorderTest:
		return fmt.Sprintf("%v{sum=%d}", t.Kind, t.Sum)
	}
	return t.Kind.String()
}
