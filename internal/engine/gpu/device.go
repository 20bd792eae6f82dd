// Package gpu wraps the OpenGL state the renderer touches behind a small interface.
// The GL implementation talks to the driver; gputest provides a recording double.
package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Cap is a toggleable pipeline capability.
type Cap int

const (
	DepthTest Cap = iota
	Blend
	CullFace
	Multisample
)

func (c Cap) String() string {
	switch c {
	case DepthTest:
		return "depth_test"
	case Blend:
		return "blend"
	case CullFace:
		return "cull_face"
	case Multisample:
		return "multisample"
	default:
		return "unknown"
	}
}

// Face selects which triangle faces are culled.
type Face int

const (
	FaceBack Face = iota
	FaceFront
)

// DepthFunc is the depth comparison used by the depth test.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

// TextureTarget identifies a texture binding point.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	Texture3D
)

// Viewport is a window-space rectangle.
type Viewport struct {
	X, Y, Width, Height int32
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Attrib describes one float vertex attribute in an interleaved buffer.
type Attrib struct {
	Location uint32
	Size     int32
}

// Layout is the ordered attribute list of an interleaved vertex buffer.
type Layout []Attrib

// Stride returns the number of floats per vertex.
func (l Layout) Stride() int32 {
	var n int32
	for _, a := range l {
		n += a.Size
	}
	return n
}

// Buffers is an uploaded indexed vertex array.
type Buffers struct {
	VAO, VBO, EBO uint32
	Count         int32
}

// Target is an offscreen framebuffer and its attachments.
// Color is 0 for depth-only targets, whose Depth is a sampleable texture;
// color targets keep depth in a renderbuffer.
type Target struct {
	FBO   uint32
	Color uint32
	Depth uint32
}

// DepthOnly reports whether the target has no color attachment.
func (t Target) DepthOnly() bool {
	return t.Color == 0
}

// Device is the GPU state machine as seen by the renderer.
// All calls must come from the thread owning the GL context.
type Device interface {
	Viewport() Viewport
	SetViewport(v Viewport)
	Framebuffer() uint32
	BindFramebuffer(fbo uint32)
	ColorMask() bool
	SetColorMask(enabled bool)
	ClearColor() [4]float32
	SetClearColor(c [4]float32)
	Clear(color, depth bool)
	IsEnabled(c Cap) bool
	Enable(c Cap)
	Disable(c Cap)
	CullFace() Face
	SetCullFace(f Face)
	DepthFunc() DepthFunc
	SetDepthFunc(f DepthFunc)

	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UseProgram(program uint32)
	CurrentProgram() uint32
	UniformLocation(program uint32, name string) int32
	UniformMat4(loc int32, m mgl32.Mat4)
	UniformVec3(loc int32, v mgl32.Vec3)
	UniformVec4(loc int32, v mgl32.Vec4)
	UniformFloat(loc int32, f float32)
	UniformInt(loc int32, i int32)
	DeleteProgram(program uint32)

	CreateBuffers(vertices []float32, layout Layout, indices []uint32) Buffers
	DrawIndexed(b Buffers)
	DeleteBuffers(b Buffers)

	CreateTexture2D(rgba []byte, width, height int32, nearest bool) uint32
	CreateTexture3D(r8 []byte, width, height, depth int32) uint32
	UpdateTexture3D(tex uint32, r8 []byte, width, height, depth int32)
	BindTexture(unit int32, target TextureTarget, tex uint32)
	DeleteTexture(tex uint32)

	CreateDepthTarget(resolution int32) (Target, error)
	CreateColorTarget(width, height int32) (Target, error)
	ResizeColorTarget(t Target, width, height int32)
	ReadPixels(t Target, width, height int32) []byte
	DeleteTarget(t Target)
}

// WithEnabled enables c for the duration of fn and restores the previous state afterwards.
func WithEnabled(dev Device, c Cap, fn func()) {
	was := dev.IsEnabled(c)
	if !was {
		dev.Enable(c)
	}
	defer func() {
		if !was {
			dev.Disable(c)
		}
	}()
	fn()
}

// InitState sets the pipeline defaults every pass assumes: depth testing with
// LESS, multisampling, back-face culling of counter-clockwise geometry and no blending.
func InitState(dev Device) {
	dev.Disable(Blend)
	dev.Enable(DepthTest)
	dev.SetDepthFunc(DepthLess)
	dev.Enable(Multisample)
	dev.Enable(CullFace)
	dev.SetCullFace(FaceBack)
}
