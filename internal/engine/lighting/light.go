// Package lighting provides the scene's point light.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/input"
	"github.com/Faultbox/voxview/internal/engine/mesh"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/shadow"
)

// Default attenuation, tuned for a range of a few hundred units.
const (
	DefaultConstant  = 1.0
	DefaultLinear    = 0.0014
	DefaultQuadratic = 0.000007
)

// Light is a point light that also drives the shadow projection.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3

	// Attenuation = 1 / (Constant + Linear*d + Quadratic*d²)
	Constant  float32
	Linear    float32
	Quadratic float32

	Speed      float32 // world units per second when moved by keys
	MarkerSize float32

	lightSpace mgl32.Mat4
	marker     *mesh.Mesh
}

// New creates a light at pos and uploads its marker cube.
func New(dev gpu.Device, pos, color mgl32.Vec3) *Light {
	v, i := mesh.Cube()
	l := &Light{
		Position:   pos,
		Color:      color,
		Constant:   DefaultConstant,
		Linear:     DefaultLinear,
		Quadratic:  DefaultQuadratic,
		Speed:      20,
		MarkerSize: 1,
		lightSpace: mgl32.Ident4(),
		marker:     mesh.New(dev, "light", v, i, mgl32.Ident4()),
	}
	return l
}

// Update recomputes the light-space matrix so it covers bounds.
// Call once per frame, before the first Push.
func (l *Light) Update(bounds shadow.AABB) {
	l.lightSpace = shadow.LightMatrix(l.Position, bounds)
}

// LightSpace returns the matrix cached by the last Update.
func (l *Light) LightSpace() mgl32.Mat4 {
	return l.lightSpace
}

// PushLight uploads position, color and attenuation. p must be in use.
func (l *Light) PushLight(p *shader.Program) {
	p.SetVec3("lightPos", l.Position)
	p.SetVec3("lightColor", l.Color)
	p.SetFloat("lightConstant", l.Constant)
	p.SetFloat("lightLinear", l.Linear)
	p.SetFloat("lightQuadratic", l.Quadratic)
}

// PushProjection uploads the cached light-space matrix. p must be in use.
func (l *Light) PushProjection(p *shader.Program) {
	p.SetMat4("lightSpace", l.lightSpace)
}

// HandleInput moves the light: I/K along -Z/+Z, J/L along -X/+X, U/O up and down.
func (l *Light) HandleInput(in *input.State) {
	if in.UICapture {
		return
	}
	move := mgl32.Vec3{
		in.Axis(input.KeyL, input.KeyJ),
		in.Axis(input.KeyU, input.KeyO),
		in.Axis(input.KeyK, input.KeyI),
	}
	if move.Len() == 0 {
		return
	}
	l.Position = l.Position.Add(move.Normalize().Mul(l.Speed * in.DeltaTime))
}

// Draw renders the marker cube at the light position in the light color.
func (l *Light) Draw(p *shader.Program, cam *camera.Camera) {
	p.Use()
	cam.Push(p)
	p.SetVec3("color", l.Color)
	l.marker.Model = mgl32.Translate3D(l.Position[0], l.Position[1], l.Position[2]).
		Mul4(mgl32.Scale3D(l.MarkerSize, l.MarkerSize, l.MarkerSize))
	l.marker.DrawModel(p)
}

// Destroy releases the marker mesh.
func (l *Light) Destroy() {
	l.marker.Destroy()
}
