// Package scene holds the meshes of a loaded scene by category and draws them.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/mesh"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/shadow"
	"github.com/Faultbox/voxview/internal/engine/voxel"
)

// VoxelSize is the world size of one voxel at scale 1.
const VoxelSize = 0.1

// Category is the draw group a mesh belongs to.
type Category int

const (
	Solid Category = iota
	Voxbox
	Rope
	Water
)

func (c Category) String() string {
	switch c {
	case Solid:
		return "solid"
	case Voxbox:
		return "voxbox"
	case Rope:
		return "rope"
	case Water:
		return "water"
	default:
		return "unknown"
	}
}

// Counts is the number of meshes per category.
type Counts struct {
	Solid  int
	Voxbox int
	Rope   int
	Water  int
}

// Shape is a voxel grid placed in the world, used to fill the shadow volume.
type Shape struct {
	Name  string
	Grid  *voxel.Grid
	Model mgl32.Mat4
}

// LightOverride is the light described by the scene file.
type LightOverride struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Scene owns every mesh of a loaded scene. It is read-only after Load.
type Scene struct {
	Path string

	// Spawn is the initial camera position, if the scene has a spawnpoint.
	Spawn *mgl32.Vec3
	// Light is set when the scene has a light element.
	Light *LightOverride

	dev    gpu.Device
	meshes [4][]*mesh.Mesh
	shapes []Shape
	bounds shadow.AABB
	// textures are owned by the scene and shared between meshes.
	textures []uint32
	time     float32
}

// Counts returns the number of meshes per category.
func (s *Scene) Counts() Counts {
	return Counts{
		Solid:  len(s.meshes[Solid]),
		Voxbox: len(s.meshes[Voxbox]),
		Rope:   len(s.meshes[Rope]),
		Water:  len(s.meshes[Water]),
	}
}

// Meshes returns the meshes of one category in insertion order.
func (s *Scene) Meshes(c Category) []*mesh.Mesh {
	return s.meshes[c]
}

// Bounds returns the world box of the shadow-casting geometry (solid and voxbox).
func (s *Scene) Bounds() shadow.AABB {
	return s.bounds
}

// Shapes returns the voxel occluders: every vox model and every voxbox, the
// latter as a solid grid of its cell size.
func (s *Scene) Shapes() []Shape {
	return s.shapes
}

// Triangles returns the total triangle count.
func (s *Scene) Triangles() int {
	n := 0
	for _, list := range s.meshes {
		for _, m := range list {
			n += m.Triangles()
		}
	}
	return n
}

// Update advances the water animation clock.
func (s *Scene) Update(dt float32) {
	s.time += dt
}

// Draw renders the solid voxel meshes with p.
func (s *Scene) Draw(p *shader.Program, cam *camera.Camera) {
	s.draw(p, cam, s.meshes[Solid])
}

// DrawVoxbox renders the voxbox meshes with p.
func (s *Scene) DrawVoxbox(p *shader.Program, cam *camera.Camera) {
	s.draw(p, cam, s.meshes[Voxbox])
}

// DrawRope renders the rope meshes with p.
func (s *Scene) DrawRope(p *shader.Program, cam *camera.Camera) {
	s.draw(p, cam, s.meshes[Rope])
}

// DrawWater renders the water meshes with blending enabled for exactly these draws.
func (s *Scene) DrawWater(p *shader.Program, cam *camera.Camera) {
	p.Use()
	cam.Push(p)
	p.SetFloat("time", s.time)
	gpu.WithEnabled(s.dev, gpu.Blend, func() {
		for _, m := range s.meshes[Water] {
			m.Draw(p)
		}
	})
}

// DrawDepth renders the shadow casters with only their model matrices set.
// The caller uploads the light-space matrix.
func (s *Scene) DrawDepth(p *shader.Program) {
	p.Use()
	for _, c := range []Category{Solid, Voxbox} {
		for _, m := range s.meshes[c] {
			m.DrawModel(p)
		}
	}
}

func (s *Scene) draw(p *shader.Program, cam *camera.Camera, meshes []*mesh.Mesh) {
	p.Use()
	cam.Push(p)
	for _, m := range meshes {
		m.Draw(p)
	}
}

func (s *Scene) add(c Category, m *mesh.Mesh) {
	s.meshes[c] = append(s.meshes[c], m)
}

// Destroy releases all meshes and textures.
func (s *Scene) Destroy() {
	for c := range s.meshes {
		for _, m := range s.meshes[c] {
			m.Destroy()
		}
		s.meshes[c] = nil
	}
	for _, tex := range s.textures {
		s.dev.DeleteTexture(tex)
	}
	s.textures = nil
}
