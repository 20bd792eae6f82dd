package voxel

import "github.com/Faultbox/voxview/internal/engine/gpu"

// Layout is the interleaved vertex format of voxel meshes:
// position(3) normal(3) uv(2) material(1).
var Layout = gpu.Layout{
	{Location: 0, Size: 3},
	{Location: 1, Size: 3},
	{Location: 2, Size: 2},
	{Location: 3, Size: 1},
}

// FloatsPerVertex is the stride of Layout in floats.
const FloatsPerVertex = 9

// Geometry converts quads into an indexed triangle list in voxel units.
// UVs span the quad in voxels, so a merged quad carries its extent.
//
// A quad edge that passes through a corner of another quad is split there,
// so neighbouring triangles always share vertices and the mesh has no
// T-junctions.
func Geometry(quads []Quad) (vertices []float32, indices []uint32) {
	vertices = make([]float32, 0, len(quads)*4*FloatsPerVertex)
	indices = make([]uint32, 0, len(quads)*6)

	corners := make(map[[3]int]struct{}, len(quads)*4)
	for _, q := range quads {
		for _, c := range q.Corners() {
			corners[c] = struct{}{}
		}
	}

	for _, q := range quads {
		base := uint32(len(vertices) / FloatsPerVertex)
		n := q.Normal()
		u, v := planeAxes(q.Axis)

		ring := q.boundary(corners)
		for _, c := range ring {
			vertices = append(vertices,
				float32(c[0]), float32(c[1]), float32(c[2]),
				n[0], n[1], n[2],
				float32(c[u]-q.U), float32(c[v]-q.V),
				float32(q.Material),
			)
		}
		if len(ring) == 4 {
			indices = append(indices, base, base+1, base+2, base+2, base+3, base)
			continue
		}
		indices = appendEars(indices, base, ring, u, v)
	}
	return vertices, indices
}

// boundary walks the quad outline counter-clockwise from outside and returns
// its corners plus every lattice point from corners that lies strictly inside
// one of its edges.
func (q Quad) boundary(corners map[[3]int]struct{}) [][3]int {
	c := q.Corners()
	ring := make([][3]int, 0, 4)
	for i := range c {
		from, to := c[i], c[(i+1)%4]
		ring = append(ring, from)

		step, length := edgeStep(from, to)
		p := from
		for k := 1; k < length; k++ {
			for a := range p {
				p[a] += step[a]
			}
			if _, ok := corners[p]; ok {
				ring = append(ring, p)
			}
		}
	}
	return ring
}

// edgeStep returns the unit lattice step and the length of an axis-aligned edge.
func edgeStep(from, to [3]int) (step [3]int, length int) {
	for a := range from {
		d := to[a] - from[a]
		switch {
		case d > 0:
			step[a], length = 1, d
		case d < 0:
			step[a], length = -1, -d
		}
	}
	return step, length
}

// appendEars triangulates a convex ring whose edges may hold collinear points.
// Only ears with a non-zero area are clipped, so no triangle is degenerate and
// the winding of the ring is kept.
func appendEars(indices []uint32, base uint32, ring [][3]int, u, v Axis) []uint32 {
	open := make([]int, len(ring))
	for i := range open {
		open[i] = i
	}

	for len(open) > 3 {
		clipped := false
		for i := range open {
			prev := ring[open[(i+len(open)-1)%len(open)]]
			cur := ring[open[i]]
			next := ring[open[(i+1)%len(open)]]
			if cross2(prev, cur, next, u, v) == 0 {
				continue
			}
			indices = append(indices,
				base+uint32(open[(i+len(open)-1)%len(open)]),
				base+uint32(open[i]),
				base+uint32(open[(i+1)%len(open)]),
			)
			open = append(open[:i], open[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return indices
		}
	}
	return append(indices, base+uint32(open[0]), base+uint32(open[1]), base+uint32(open[2]))
}

func cross2(a, b, c [3]int, u, v Axis) int {
	return (b[u]-a[u])*(c[v]-a[v]) - (b[v]-a[v])*(c[u]-a[u])
}
