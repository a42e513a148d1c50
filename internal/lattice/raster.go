package lattice

// Bounds is the axis-aligned box of a node set after projection onto a raster.
type Bounds struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Project maps an axial node onto doubled raster coordinates: neighbors along a row
// are two cells apart and rows shift by one cell, which keeps the grid's shape.
// Rows grow downward so north-east points up on screen.
func Project(n Node) (x, y int) {
	return 2*n.X + n.Y, -n.Y
}

// BoundsOf returns the raster bounds of nodes. An empty set yields a 1x1 box at the origin.
func BoundsOf(nodes []Node) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	x, y := Project(nodes[0])
	b := Bounds{MinX: x, MaxX: x, MinY: y, MaxY: y}
	for _, n := range nodes[1:] {
		x, y := Project(n)
		b.MinX = min(b.MinX, x)
		b.MaxX = max(b.MaxX, x)
		b.MinY = min(b.MinY, y)
		b.MaxY = max(b.MaxY, y)
	}
	return b
}

// Size returns the raster width and height covered by b, with a margin on every side.
func (b Bounds) Size(margin int) (w, h int) {
	return b.MaxX - b.MinX + 1 + 2*margin, b.MaxY - b.MinY + 1 + 2*margin
}

// Cell returns the raster cell of n inside a raster sized by b.Size(margin).
func (b Bounds) Cell(n Node, margin int) (x, y int) {
	px, py := Project(n)
	return px - b.MinX + margin, py - b.MinY + margin
}
