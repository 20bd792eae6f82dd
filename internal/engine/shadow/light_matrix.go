package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no point.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to contain p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Transform returns the box enclosing b after m is applied to it.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.Extend(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// Center returns the center point of the AABB.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Len() / 2
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := range out {
		out[i] = mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			out[i][0] = b.Max[0]
		}
		if i&2 != 0 {
			out[i][1] = b.Max[1]
		}
		if i&4 != 0 {
			out[i][2] = b.Max[2]
		}
	}
	return out
}

// LightMatrix computes the light-space view-projection for a light at pos
// looking at the center of bounds. The orthographic volume is fitted to the
// box corners in light view space, so every corner maps inside clip space.
func LightMatrix(pos mgl32.Vec3, bounds AABB) mgl32.Mat4 {
	if bounds.IsEmpty() {
		bounds = AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	}
	center := bounds.Center()

	dir := center.Sub(pos)
	if dir.Len() < 1e-4 {
		// Light inside the box center: look straight down.
		pos = center.Add(mgl32.Vec3{0, bounds.Radius() + 1, 0})
		dir = center.Sub(pos)
	}
	dir = dir.Normalize()

	// Choose an up vector not parallel to the light direction
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Y()) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(pos, center, up)

	ls := bounds.Transform(view)

	// Pad to avoid edge artifacts
	padding := bounds.Radius()*0.05 + 0.01
	near := -ls.Max[2] - padding
	far := -ls.Min[2] + padding
	proj := mgl32.Ortho(
		ls.Min[0]-padding, ls.Max[0]+padding,
		ls.Min[1]-padding, ls.Max[1]+padding,
		near, far,
	)
	return proj.Mul4(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
