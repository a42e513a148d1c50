package election

import "amoebot/internal/lattice"

// Boundary identifies one agent position: a node and the first empty direction of a run.
type Boundary struct {
	Node lattice.Node
	Dir  lattice.Dir
	Next lattice.Dir
	Prev lattice.Dir
}

// Cycle is the ring of boundaries around one pocket of empty nodes, in nextAgentDir order.
type Cycle struct {
	Members []Boundary
}

// BorderSum folds the turning contributions of every member, starting from the first.
func (c Cycle) BorderSum() int {
	sum := 0
	for _, b := range c.Members {
		a := Agent{next: b.Next, prev: b.Prev}
		sum = a.addNextBorder(sum)
	}
	return sum
}

// Outer reports whether the cycle bounds the outside of the configuration.
func (c Cycle) Outer() bool { return c.BorderSum() == 1 }

// Boundaries lists the agent positions of a particle at n given the occupied set.
func Boundaries(n lattice.Node, occupied func(lattice.Node) bool) []Boundary {
	var occ [lattice.NumDirs]bool
	for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
		occ[d] = occupied(n.Neighbor(d))
	}
	var out []Boundary
	for d := lattice.Dir(0); d < lattice.NumDirs; d++ {
		if occ[d] || !occ[d.Add(1)] {
			continue
		}
		next, _ := nextOccupied(d, occ)
		out = append(out, Boundary{Node: n, Dir: d, Next: next, Prev: d.Add(1)})
	}
	return out
}

// Cycles derives every agent cycle of a node set from occupancy alone.
func Cycles(nodes []lattice.Node) []Cycle {
	set := make(map[lattice.Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	occupied := func(n lattice.Node) bool { return set[n] }

	type key struct {
		node lattice.Node
		dir  lattice.Dir
	}
	index := map[key]Boundary{}
	var order []key
	for _, n := range nodes {
		for _, b := range Boundaries(n, occupied) {
			k := key{b.Node, b.Dir}
			index[k] = b
			order = append(order, k)
		}
	}

	visited := map[key]bool{}
	var cycles []Cycle
	for _, start := range order {
		if visited[start] {
			continue
		}
		var c Cycle
		for k := start; !visited[k]; {
			b, ok := index[k]
			if !ok {
				violate("Cycles", "boundary chain leaves the configuration at %v", k.node)
			}
			visited[k] = true
			c.Members = append(c.Members, b)
			k = key{b.Node.Neighbor(b.Next), b.Next.Add(2)}
		}
		cycles = append(cycles, c)
	}
	return cycles
}

// Cycles returns the agent cycles of the system's configuration.
func (s *System) Cycles() []Cycle { return Cycles(s.Nodes()) }
