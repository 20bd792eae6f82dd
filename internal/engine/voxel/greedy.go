package voxel

// Greedy merges coplanar exposed faces of equal material into maximal rectangles.
//
// For every direction and every slice along it a material mask of exposed faces
// is built, then scanned row by row: each unvisited cell grows first along U
// while the material matches, then along V while the whole row matches. The
// covered cells are cleared so no face is emitted twice.
type Greedy struct{}

func (Greedy) Name() string { return StrategyGreedy }

func (Greedy) VertexShader() string { return "voxel_gm.vert" }

func (Greedy) Mesh(g *Grid) []Quad {
	var quads []Quad
	size := g.Size()

	for a := AxisX; a <= AxisZ; a++ {
		u, v := planeAxes(a)
		su, sv := size[u], size[v]
		if su == 0 || sv == 0 {
			continue
		}
		mask := make([]uint8, su*sv)

		for _, positive := range [2]bool{false, true} {
			for layer := 0; layer < size[a]; layer++ {
				// Build the mask for this slice.
				for j := 0; j < sv; j++ {
					for i := 0; i < su; i++ {
						var p [3]int
						p[a], p[u], p[v] = layer, i, j
						mask[i+j*su] = exposed(g, p, a, positive)
					}
				}

				plane := layer
				if positive {
					plane++
				}
				quads = mergeMask(quads, mask, su, sv, a, positive, plane)
			}
		}
	}
	return quads
}

// mergeMask emits maximal rectangles from mask and clears it.
func mergeMask(quads []Quad, mask []uint8, su, sv int, a Axis, positive bool, plane int) []Quad {
	for j := 0; j < sv; j++ {
		for i := 0; i < su; {
			m := mask[i+j*su]
			if m == Empty {
				i++
				continue
			}

			// Width along U.
			w := 1
			for i+w < su && mask[i+w+j*su] == m {
				w++
			}

			// Height along V.
			h := 1
		grow:
			for j+h < sv {
				for k := 0; k < w; k++ {
					if mask[i+k+(j+h)*su] != m {
						break grow
					}
				}
				h++
			}

			quads = append(quads, Quad{
				Axis:     a,
				Positive: positive,
				Layer:    plane,
				U:        i,
				V:        j,
				W:        w,
				H:        h,
				Material: m,
			})

			for dy := 0; dy < h; dy++ {
				for dx := 0; dx < w; dx++ {
					mask[i+dx+(j+dy)*su] = Empty
				}
			}
			i += w
		}
	}
	return quads
}
