package election

import (
	"image/color"

	"amoebot/internal/election"
)

// Cell values written by the sim. Zero is background.
const (
	cellEmpty uint8 = iota
	cellBond
	cellStatus // cellStatus + State
	cellHint   = cellStatus + uint8(election.Finished) + 1 // cellHint + Hint - 1
	numCells   = cellHint + uint8(election.HintBorder)
)

var electionPalette = buildElectionPalette()

// Palette exposes the color palette used for rendering particles.
func (s *Sim) Palette() []color.RGBA {
	return electionPalette
}

func buildElectionPalette() []color.RGBA {
	palette := make([]color.RGBA, numCells)
	palette[cellEmpty] = color.RGBA{R: 12, G: 12, B: 16, A: 255}
	palette[cellBond] = color.RGBA{R: 48, G: 48, B: 56, A: 255}
	for st := election.Idle; st <= election.Finished; st++ {
		palette[cellStatus+uint8(st)] = statusColor(st)
	}
	for h := election.HintSegment; h <= election.HintBorder; h++ {
		palette[cellHint+uint8(h)-1] = hintColor(h)
	}
	return palette
}

func statusColor(st election.State) color.RGBA {
	switch st {
	case election.Idle:
		return color.RGBA{R: 140, G: 140, B: 150, A: 255}
	case election.Candidate:
		return color.RGBA{R: 70, G: 140, B: 255, A: 255}
	case election.Demoted:
		return color.RGBA{R: 90, G: 90, B: 110, A: 255}
	case election.SoleCandidate:
		return color.RGBA{R: 190, G: 90, B: 255, A: 255}
	case election.Leader:
		return color.RGBA{R: 255, G: 210, B: 40, A: 255}
	default:
		return color.RGBA{R: 60, G: 160, B: 90, A: 255}
	}
}

func hintColor(h election.Hint) color.RGBA {
	switch h {
	case election.HintSegment:
		return color.RGBA{R: 80, G: 200, B: 220, A: 255}
	case election.HintCoin:
		return color.RGBA{R: 240, G: 150, B: 60, A: 255}
	case election.HintSolitude:
		return color.RGBA{R: 230, G: 90, B: 150, A: 255}
	default:
		return color.RGBA{R: 230, G: 230, B: 120, A: 255}
	}
}

// cellFor picks the display value of a particle: its status, or for a relaying particle
// the hint of the protocol phase last seen passing through.
func cellFor(p *election.Particle) uint8 {
	if p.Status() == election.Demoted {
		for _, a := range p.Agents() {
			if a.State() == election.Demoted && a.Hint() != election.HintNone {
				return cellHint + uint8(a.Hint()) - 1
			}
		}
	}
	return cellStatus + uint8(p.Status())
}
