// Package water provides water plane geometry.
package water

import "github.com/Faultbox/voxview/internal/engine/voxel"

// DefaultSegments is the grid resolution used when none is given.
// The water shader displaces vertices, so the plane needs interior points.
const DefaultSegments = 32

// BuildPlane creates a horizontal plane of width × depth centered on the origin,
// split into segments × segments cells, facing +Y.
// UVs are in world units so textures tile at a fixed density.
func BuildPlane(width, depth float32, segments int) ([]float32, []uint32) {
	if segments <= 0 {
		segments = DefaultSegments
	}
	n := segments + 1
	vertices := make([]float32, 0, n*n*voxel.FloatsPerVertex)
	indices := make([]uint32, 0, segments*segments*6)

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x := (float32(i)/float32(segments) - 0.5) * width
			z := (float32(j)/float32(segments) - 0.5) * depth
			vertices = append(vertices,
				x, 0, z,
				0, 1, 0,
				x, z,
				0,
			)
		}
	}

	// Counter-clockwise seen from above
	for j := 0; j < segments; j++ {
		for i := 0; i < segments; i++ {
			a := uint32(j*n + i)
			b := a + 1
			c := a + uint32(n)
			d := c + 1
			indices = append(indices, a, c, b, b, c, d)
		}
	}
	return vertices, indices
}
