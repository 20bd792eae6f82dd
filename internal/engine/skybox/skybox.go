// Package skybox draws a vertical gradient behind the scene.
package skybox

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/mesh"
	"github.com/Faultbox/voxview/internal/engine/shader"
)

// Skybox is a gradient cube drawn at the far plane.
type Skybox struct {
	Top    mgl32.Vec3
	Bottom mgl32.Vec3

	dev  gpu.Device
	cube *mesh.Mesh
}

// New uploads the sky cube.
func New(dev gpu.Device) *Skybox {
	v, i := mesh.Cube()
	mesh.Transform(v, mgl32.Scale3D(2, 2, 2))
	return &Skybox{
		Top:    mgl32.Vec3{0.35, 0.54, 0.8},
		Bottom: mgl32.Vec3{0.85, 0.9, 0.95},
		dev:    dev,
		cube:   mesh.New(dev, "skybox", v, i, mgl32.Ident4()),
	}
}

// Draw renders the sky with the camera's rotation only. It must run after
// opaque geometry so the depth test rejects covered pixels.
func (s *Skybox) Draw(p *shader.Program, cam *camera.Camera) {
	p.Use()
	p.SetMat4("view", cam.Rotation())
	p.SetMat4("projection", cam.Projection())
	p.SetVec3("topColor", s.Top)
	p.SetVec3("bottomColor", s.Bottom)

	// The camera sits inside the cube, so its faces are back faces.
	culling := s.dev.IsEnabled(gpu.CullFace)
	if culling {
		s.dev.Disable(gpu.CullFace)
	}
	s.dev.SetDepthFunc(gpu.DepthLessEqual)
	s.cube.DrawModel(p)
	s.dev.SetDepthFunc(gpu.DepthLess)
	if culling {
		s.dev.Enable(gpu.CullFace)
	}
}

// Destroy releases the cube.
func (s *Skybox) Destroy() {
	s.cube.Destroy()
}
