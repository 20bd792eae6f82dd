package voxel

import "fmt"

// Strategy names accepted by NewMesher.
const (
	StrategyGreedy = "greedy"
	StrategyNaive  = "naive"
)

// Mesher turns a grid into quads covering every exposed face.
// Implementations are deterministic: the same grid always yields the same quads.
type Mesher interface {
	Name() string
	Mesh(g *Grid) []Quad
	// VertexShader is the vertex stage source the mesher's output is drawn with.
	VertexShader() string
}

// NewMesher returns the mesher for a strategy name.
func NewMesher(strategy string) (Mesher, error) {
	switch strategy {
	case StrategyGreedy, "":
		return Greedy{}, nil
	case StrategyNaive:
		return Naive{}, nil
	}
	return nil, fmt.Errorf("unknown meshing strategy %q", strategy)
}

// exposed returns the material of the face of voxel p looking along dir, or
// Empty when the voxel is empty or its neighbour hides the face.
func exposed(g *Grid, p [3]int, a Axis, positive bool) uint8 {
	m := g.at3(p)
	if m == Empty {
		return Empty
	}
	n := p
	if positive {
		n[a]++
	} else {
		n[a]--
	}
	if g.at3(n) != Empty {
		return Empty
	}
	return m
}
