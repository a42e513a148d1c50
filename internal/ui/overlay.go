//go:build ebiten

package ui

import (
	"image/color"

	"amoebot/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type maskProvider interface {
	BoundaryMask() []float32
	TrafficMask() []float32
}

// Overlay draws optional debugging masks on top of the base simulation.
// Key 1 toggles boundary cycles, key 2 toggles unconsumed token traffic.
type Overlay struct {
	sim          core.Sim
	scale        int
	showBoundary bool
	showTraffic  bool
	maskImg      *ebiten.Image
	maskBuf      []byte
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	return &Overlay{sim: sim, scale: max(scale, 1)}
}

// Update handles the toggle keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showBoundary = !o.showBoundary
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showTraffic = !o.showTraffic
	}
}

// Draw renders the enabled masks onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(maskProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	total := size.W * size.H
	if total == 0 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*total)
	}
	if o.showBoundary {
		o.drawMask(screen, provider.BoundaryMask(), color.RGBA{R: 64, G: 164, B: 223})
	}
	if o.showTraffic {
		o.drawMask(screen, provider.TrafficMask(), color.RGBA{R: 255, G: 120, B: 40})
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []float32, tint color.RGBA) {
	if len(mask) != len(o.maskBuf)/4 {
		return
	}
	shadeMask(o.maskBuf, mask, tint)
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}
