// Package mesh holds uploaded static geometry and the builders for non-voxel shapes.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/voxel"
)

// TextureUnit is the unit material textures are bound to.
const TextureUnit int32 = 0

// Mesh is an uploaded indexed triangle list with its model transform.
type Mesh struct {
	Name    string
	Buffers gpu.Buffers
	Model   mgl32.Mat4
	Color   mgl32.Vec4

	// Texture is bound to TextureUnit and exposed through the Sampler uniform.
	// Zero means untextured.
	Texture uint32
	Sampler string

	dev gpu.Device
}

// New uploads vertices in voxel.Layout and indices.
func New(dev gpu.Device, name string, vertices []float32, indices []uint32, model mgl32.Mat4) *Mesh {
	return &Mesh{
		Name:    name,
		Buffers: dev.CreateBuffers(vertices, voxel.Layout, indices),
		Model:   model,
		Color:   mgl32.Vec4{1, 1, 1, 1},
		Sampler: "diffuse",
		dev:     dev,
	}
}

// Draw uploads per-mesh uniforms and issues one indexed draw. p must be in use.
func (m *Mesh) Draw(p *shader.Program) {
	p.SetMat4("model", m.Model)
	p.SetVec4("color", m.Color)
	p.SetBool("hasTexture", m.Texture != 0)
	if m.Texture != 0 {
		m.dev.BindTexture(TextureUnit, gpu.Texture2D, m.Texture)
		p.SetInt(m.Sampler, TextureUnit)
	}
	m.dev.DrawIndexed(m.Buffers)
}

// DrawModel issues the draw with only the model matrix set.
// Depth passes and flat-colored shaders use it.
func (m *Mesh) DrawModel(p *shader.Program) {
	p.SetMat4("model", m.Model)
	m.dev.DrawIndexed(m.Buffers)
}

// Triangles returns the number of triangles uploaded.
func (m *Mesh) Triangles() int {
	return int(m.Buffers.Count) / 3
}

// Destroy releases the buffers. Textures are owned by whoever created them.
func (m *Mesh) Destroy() {
	if m.Buffers.VAO == 0 {
		return
	}
	m.dev.DeleteBuffers(m.Buffers)
	m.Buffers = gpu.Buffers{}
}
