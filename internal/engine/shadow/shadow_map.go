// Package shadow provides the shadow techniques used by the color pass.
package shadow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/shader"
)

// Texture units reserved for shadow lookups. Unit 0 belongs to material textures.
const (
	MapUnit    int32 = 1
	VolumeUnit int32 = 2
)

// Shader modes selected by the shadowMode uniform.
const (
	modeMap    int32 = 0
	modeVolume int32 = 1
)

// DefaultResolution is the default shadow map resolution.
const DefaultResolution = 2048

// Technique produces shadow information for the color pass.
type Technique interface {
	// Render runs the depth casters, if the technique needs them.
	Render(cam *camera.Camera, casters func())
	// Push binds the shadow data and uploads its uniforms to p, which must be in use.
	Push(p *shader.Program, lightSpace mgl32.Mat4)
	Destroy()
}

// Map is a depth-only framebuffer for a single light.
type Map struct {
	Resolution int32

	dev    gpu.Device
	target gpu.Target
	bound  bool
	saved  savedState
}

// savedState is the pipeline state Bind changes and Unbind puts back.
type savedState struct {
	viewport    gpu.Viewport
	framebuffer uint32
	colorMask   bool
	depthTest   bool
	depthFunc   gpu.DepthFunc
	blend       bool
	cullEnabled bool
	cullFace    gpu.Face
}

var _ Technique = (*Map)(nil)

// NewMap creates a shadow map with the given resolution.
// A non-positive resolution selects DefaultResolution.
func NewMap(dev gpu.Device, resolution int32) (*Map, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	t, err := dev.CreateDepthTarget(resolution)
	if err != nil {
		return nil, fmt.Errorf("creating shadow map: %w", err)
	}
	return &Map{Resolution: resolution, dev: dev, target: t}, nil
}

// Pass is an active depth pass. End must be called exactly once.
type Pass struct {
	m *Map
}

// End restores the state saved by Bind.
func (p Pass) End(cam *camera.Camera) {
	p.m.Unbind(cam)
}

// Bind makes the shadow framebuffer the draw target for a depth-only pass.
func (m *Map) Bind() Pass {
	if m.bound {
		panic("shadow: Bind called while the map is already bound")
	}
	d := m.dev
	m.saved = savedState{
		viewport:    d.Viewport(),
		framebuffer: d.Framebuffer(),
		colorMask:   d.ColorMask(),
		depthTest:   d.IsEnabled(gpu.DepthTest),
		depthFunc:   d.DepthFunc(),
		blend:       d.IsEnabled(gpu.Blend),
		cullEnabled: d.IsEnabled(gpu.CullFace),
		cullFace:    d.CullFace(),
	}
	m.bound = true

	d.BindFramebuffer(m.target.FBO)
	d.SetViewport(gpu.Viewport{Width: m.Resolution, Height: m.Resolution})
	d.SetColorMask(false)
	d.Clear(false, true)

	d.Enable(gpu.DepthTest)
	d.SetDepthFunc(gpu.DepthLess)
	d.Disable(gpu.Blend)

	// Front-face culling to reduce shadow acne
	d.Enable(gpu.CullFace)
	d.SetCullFace(gpu.FaceFront)

	return Pass{m: m}
}

// Unbind restores the state saved by Bind and re-fits cam to the restored viewport.
// It panics if the map is not bound.
func (m *Map) Unbind(cam *camera.Camera) {
	if !m.bound {
		panic("shadow: Unbind called without a matching Bind")
	}
	m.bound = false

	d, s := m.dev, m.saved
	d.BindFramebuffer(s.framebuffer)
	d.SetViewport(s.viewport)
	d.SetColorMask(s.colorMask)
	setCap(d, gpu.DepthTest, s.depthTest)
	d.SetDepthFunc(s.depthFunc)
	setCap(d, gpu.Blend, s.blend)
	setCap(d, gpu.CullFace, s.cullEnabled)
	d.SetCullFace(s.cullFace)

	if cam != nil {
		cam.SetViewport(s.viewport.Width, s.viewport.Height)
	}
}

// Bound reports whether a depth pass is in progress.
func (m *Map) Bound() bool {
	return m.bound
}

// Render runs casters between Bind and Unbind. State is restored even if casters panics.
func (m *Map) Render(cam *camera.Camera, casters func()) {
	pass := m.Bind()
	defer pass.End(cam)
	casters()
}

// DepthTexture returns the sampleable depth texture.
func (m *Map) DepthTexture() uint32 {
	return m.target.Depth
}

// Push binds the depth texture to MapUnit and uploads the light-space matrix.
func (m *Map) Push(p *shader.Program, lightSpace mgl32.Mat4) {
	m.dev.BindTexture(MapUnit, gpu.Texture2D, m.target.Depth)
	p.SetInt("shadowMode", modeMap)
	p.SetInt("shadowMap", MapUnit)
	p.SetInt("shadowVolume", VolumeUnit)
	p.SetMat4("lightSpace", lightSpace)
}

// Destroy releases the framebuffer and depth texture.
func (m *Map) Destroy() {
	if m.target.FBO == 0 {
		return
	}
	m.dev.DeleteTarget(m.target)
	m.target = gpu.Target{}
}

func setCap(d gpu.Device, c gpu.Cap, on bool) {
	if on {
		d.Enable(c)
	} else {
		d.Disable(c)
	}
}
