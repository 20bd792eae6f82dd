package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/voxel"
)

const stride = voxel.FloatsPerVertex

// Transform applies m to the positions and normals of vertices in place.
func Transform(vertices []float32, m mgl32.Mat4) {
	normal := m.Mat3().Inv().Transpose()
	for i := 0; i+stride <= len(vertices); i += stride {
		p := mgl32.TransformCoordinate(mgl32.Vec3{vertices[i], vertices[i+1], vertices[i+2]}, m)
		n := normal.Mul3x1(mgl32.Vec3{vertices[i+3], vertices[i+4], vertices[i+5]})
		if n.Len() > 0 {
			n = n.Normalize()
		}
		copy(vertices[i:i+6], []float32{p[0], p[1], p[2], n[0], n[1], n[2]})
	}
}

// Append concatenates b onto a, rebasing b's indices.
func Append(av []float32, ai []uint32, bv []float32, bi []uint32) ([]float32, []uint32) {
	base := uint32(len(av) / stride)
	av = append(av, bv...)
	for _, i := range bi {
		ai = append(ai, base+i)
	}
	return av, ai
}

// Cube returns a unit cube centered on the origin.
func Cube() ([]float32, []uint32) {
	v, i := voxel.Geometry(voxel.Box([3]int{1, 1, 1}, 0))
	Transform(v, mgl32.Translate3D(-0.5, -0.5, -0.5))
	return v, i
}

// Rope returns a chain of square segments of the given thickness through points.
// Consecutive duplicate points are skipped.
func Rope(points []mgl32.Vec3, thickness float32) ([]float32, []uint32) {
	var vertices []float32
	var indices []uint32

	unitV, unitI := voxel.Geometry(voxel.Box([3]int{1, 1, 1}, 0))
	for k := 0; k+1 < len(points); k++ {
		a, b := points[k], points[k+1]
		dir := b.Sub(a)
		length := dir.Len()
		if length < 1e-6 {
			continue
		}

		// Unit box spans [0,1] on every axis: center it on X/Y and stretch Z along the segment.
		rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, dir.Mul(1/length)).Mat4()
		m := mgl32.Translate3D(a[0], a[1], a[2]).
			Mul4(rot).
			Mul4(mgl32.Scale3D(thickness, thickness, length)).
			Mul4(mgl32.Translate3D(-0.5, -0.5, 0))

		seg := make([]float32, len(unitV))
		copy(seg, unitV)
		Transform(seg, m)
		vertices, indices = Append(vertices, indices, seg, unitI)
	}
	return vertices, indices
}
