package voxel

// Naive emits one quad per exposed voxel face.
type Naive struct{}

func (Naive) Name() string { return StrategyNaive }

func (Naive) VertexShader() string { return "voxel.vert" }

// Mesh walks voxels in x, y, z order and emits faces in axis order (-X +X -Y +Y -Z +Z).
func (Naive) Mesh(g *Grid) []Quad {
	var quads []Quad
	for z := 0; z < g.SizeZ; z++ {
		for y := 0; y < g.SizeY; y++ {
			for x := 0; x < g.SizeX; x++ {
				p := [3]int{x, y, z}
				for a := AxisX; a <= AxisZ; a++ {
					for _, positive := range [2]bool{false, true} {
						m := exposed(g, p, a, positive)
						if m == Empty {
							continue
						}
						u, v := planeAxes(a)
						layer := p[a]
						if positive {
							layer++
						}
						quads = append(quads, Quad{
							Axis:     a,
							Positive: positive,
							Layer:    layer,
							U:        p[u],
							V:        p[v],
							W:        1,
							H:        1,
							Material: m,
						})
					}
				}
			}
		}
	}
	return quads
}
