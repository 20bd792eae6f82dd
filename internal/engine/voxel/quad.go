package voxel

// Axis names a grid axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// planeAxes returns the two in-plane axes of a face whose normal is along a.
// (u, v, a) is a right-handed cyclic ordering, so u × v points along +a.
func planeAxes(a Axis) (u, v Axis) {
	return (a + 1) % 3, (a + 2) % 3
}

// Quad is an axis-aligned rectangle of exposed voxel faces, all of one material.
// Layer is the lattice plane along Axis; U,V is the corner on the in-plane axes
// and W,H the extent in voxels along them.
type Quad struct {
	Axis     Axis
	Positive bool
	Layer    int
	U, V     int
	W, H     int
	Material uint8
}

// Face is a single unit face on the voxel lattice.
type Face struct {
	Axis     Axis
	Positive bool
	Layer    int
	U, V     int
	Material uint8
}

// Area returns the number of unit faces covered.
func (q Quad) Area() int {
	return q.W * q.H
}

// Faces expands the quad into its unit faces.
func (q Quad) Faces() []Face {
	faces := make([]Face, 0, q.Area())
	for dv := 0; dv < q.H; dv++ {
		for du := 0; du < q.W; du++ {
			faces = append(faces, Face{
				Axis:     q.Axis,
				Positive: q.Positive,
				Layer:    q.Layer,
				U:        q.U + du,
				V:        q.V + dv,
				Material: q.Material,
			})
		}
	}
	return faces
}

// Normal returns the outward unit normal.
func (q Quad) Normal() [3]float32 {
	var n [3]float32
	if q.Positive {
		n[q.Axis] = 1
	} else {
		n[q.Axis] = -1
	}
	return n
}

// Corners returns the four lattice corners, counter-clockwise seen from outside.
func (q Quad) Corners() [4][3]int {
	u, v := planeAxes(q.Axis)
	corner := func(du, dv int) [3]int {
		var p [3]int
		p[q.Axis] = q.Layer
		p[u] = q.U + du
		p[v] = q.V + dv
		return p
	}

	c := [4][3]int{
		corner(0, 0),
		corner(q.W, 0),
		corner(q.W, q.H),
		corner(0, q.H),
	}
	if !q.Positive {
		c[1], c[3] = c[3], c[1]
	}
	return c
}
