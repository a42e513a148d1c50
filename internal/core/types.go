package core

import (
	"image/color"
	"sort"
)

// Size describes the dimensions of a rendered grid in cells.
type Size struct {
	W int
	H int
}

// Sim is the contract the viewer drives: one Step per tick, Cells as palette indices.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// StatusReporter is implemented by sims that can summarise their progress in one line.
type StatusReporter interface {
	Status() string
}

// Paletted is implemented by sims whose cell values index a fixed color table.
type Paletted interface {
	Palette() []color.RGBA
}

// Terminator is implemented by sims that reach a final state.
type Terminator interface {
	Terminated() bool
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) Sim

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}

// Names lists the registered simulations in lexical order.
func Names() []string {
	out := make([]string, 0, len(sims))
	for name := range sims {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
