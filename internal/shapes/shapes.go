// Package shapes builds initial particle configurations.
package shapes

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"amoebot/internal/lattice"
	"amoebot/pkg/core"
)

// ErrUnknownShape is returned by Build for names it does not know.
var ErrUnknownShape = errors.New("shapes: unknown shape")

// Names lists the shapes Build understands.
func Names() []string {
	return []string{"single", "pair", "line", "triangle", "hexagon", "ring", "blob", "instance"}
}

// Spec selects a shape and its parameters.
type Spec struct {
	Name string
	Size int
	Fill float64
	Seed int64
}

// Build returns the nodes of the requested shape.
func Build(spec Spec) ([]lattice.Node, error) {
	size := max(spec.Size, 1)
	switch strings.ToLower(spec.Name) {
	case "single":
		return []lattice.Node{{}}, nil
	case "pair":
		return Line(2), nil
	case "line":
		return Line(size), nil
	case "triangle":
		return Triangle(size), nil
	case "hexagon":
		return Hexagon(size), nil
	case "ring":
		return Ring(max(size, 1), 1), nil
	case "blob":
		fill := spec.Fill
		if fill <= 0 {
			fill = 0.5
		}
		return Blob(max(size, 2), fill, core.NewRNG(spec.Seed)), nil
	case "instance":
		return Instance(size, core.NewRNG(spec.Seed)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownShape, spec.Name)
}

// Line returns n particles in a row heading east.
func Line(n int) []lattice.Node {
	out := make([]lattice.Node, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, lattice.Node{X: i})
	}
	return out
}

// Triangle returns a filled triangle with the given side length.
func Triangle(side int) []lattice.Node {
	var out []lattice.Node
	for y := 0; y < side; y++ {
		for x := 0; x < side-y; x++ {
			out = append(out, lattice.Node{X: x, Y: y})
		}
	}
	return out
}

// Hexagon returns every node within radius steps of the origin.
func Hexagon(radius int) []lattice.Node {
	var out []lattice.Node
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			n := lattice.Node{X: x, Y: y}
			if lattice.Distance(n, lattice.Node{}) <= radius {
				out = append(out, n)
			}
		}
	}
	return out
}

// Ring returns the nodes whose distance from the origin lies in (radius-thickness, radius],
// leaving a hole around the origin.
func Ring(radius, thickness int) []lattice.Node {
	thickness = max(1, min(thickness, radius))
	var out []lattice.Node
	for _, n := range Hexagon(radius) {
		if lattice.Distance(n, lattice.Node{}) > radius-thickness {
			out = append(out, n)
		}
	}
	return out
}

// Blob fills a size x size parallelogram with probability fill, picks one occupied node
// at random and keeps the component grown from it. The result is never empty.
func Blob(size int, fill float64, rng *core.RNG) []lattice.Node {
	set := map[lattice.Node]bool{}
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if rng.Chance(fill) {
				set[lattice.Node{X: x, Y: y}] = true
			}
		}
	}
	if len(set) == 0 {
		return []lattice.Node{{}}
	}
	occupied := sortedNodes(set, func(a, b lattice.Node) bool {
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	comp := component(occupied[rng.IntN(len(occupied))], set)
	return sortedNodes(comp, func(a, b lattice.Node) bool {
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// Instance is the simulator's stock configuration for roughly n particles: a blob over a
// region of side sqrt(2n) at half occupancy.
func Instance(n int, rng *core.RNG) []lattice.Node {
	return Blob(InstanceSide(n), 0.5, rng)
}

// InstanceSide is the side of the region Instance samples for n particles.
func InstanceSide(n int) int {
	return max(int(math.Sqrt(2*float64(max(n, 1)))), 1)
}

func sortedNodes(set map[lattice.Node]bool, less func(a, b lattice.Node) bool) []lattice.Node {
	out := make([]lattice.Node, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// component returns the nodes of set reachable from start.
func component(start lattice.Node, set map[lattice.Node]bool) map[lattice.Node]bool {
	seen := map[lattice.Node]bool{start: true}
	queue := []lattice.Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
			m := n.Neighbor(d)
			if set[m] && !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}
	return seen
}

// Connected reports whether nodes form a single component.
func Connected(nodes []lattice.Node) bool {
	if len(nodes) == 0 {
		return false
	}
	set := make(map[lattice.Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return len(component(nodes[0], set)) == len(set)
}
