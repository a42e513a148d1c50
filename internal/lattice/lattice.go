// Package lattice describes the triangular grid particles live on.
package lattice

import "fmt"

// Dir is one of the six grid directions, counter-clockwise starting at east.
type Dir int

const (
	East Dir = iota
	NorthEast
	NorthWest
	West
	SouthWest
	SouthEast
)

// NumDirs is the number of neighbors a node has.
const NumDirs = 6

var dirNames = [NumDirs]string{"E", "NE", "NW", "W", "SW", "SE"}

var units = [NumDirs]Vec{{1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {0, -1}, {1, -1}}

// Norm folds any integer into the range [0, 6).
func Norm(d int) Dir {
	return Dir(((d % NumDirs) + NumDirs) % NumDirs)
}

// Valid reports whether d names one of the six directions.
func (d Dir) Valid() bool { return d >= 0 && d < NumDirs }

// Add rotates d by k steps; positive k turns counter-clockwise.
func (d Dir) Add(k int) Dir { return Norm(int(d) + k) }

// Opposite returns the direction pointing back.
func (d Dir) Opposite() Dir { return d.Add(3) }

// Unit returns the axial displacement of one step in direction d.
func (d Dir) Unit() Vec { return units[Norm(int(d))] }

func (d Dir) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Dir(%d)", int(d))
	}
	return dirNames[d]
}

// Vec is an axial displacement.
type Vec struct {
	X, Y int
}

// Add returns the component-wise sum.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns the component-wise difference.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// IsZero reports whether both components are zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Node is a grid position in axial coordinates.
type Node struct {
	X, Y int
}

// Neighbor returns the adjacent node in direction d.
func (n Node) Neighbor(d Dir) Node {
	u := d.Unit()
	return Node{n.X + u.X, n.Y + u.Y}
}

// Offset returns the displacement from o to n.
func (n Node) Offset(o Node) Vec { return Vec{n.X - o.X, n.Y - o.Y} }

// Translate moves n by v.
func (n Node) Translate(v Vec) Node { return Node{n.X + v.X, n.Y + v.Y} }

func (n Node) String() string { return fmt.Sprintf("(%d,%d)", n.X, n.Y) }

// Distance returns the number of steps between two nodes.
func Distance(a, b Node) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := -dx - dy
	return max(abs(dx), abs(dy), abs(dz))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
