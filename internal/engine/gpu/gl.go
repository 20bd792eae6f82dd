package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GL is the OpenGL 4.1 core Device.
// IMPORTANT: gl.Init must have run on the current context before use.
type GL struct {
	program uint32
}

// NewGL returns a device bound to the current GL context.
func NewGL() *GL {
	return &GL{}
}

// Setup applies InitState and the alpha blend equation used by the water pass.
func (d *GL) Setup() {
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	InitState(d)
}

// Info returns the driver version and renderer strings.
func (d *GL) Info() (version, renderer string) {
	return gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER))
}

func glCap(c Cap) uint32 {
	switch c {
	case DepthTest:
		return gl.DEPTH_TEST
	case Blend:
		return gl.BLEND
	case CullFace:
		return gl.CULL_FACE
	case Multisample:
		return gl.MULTISAMPLE
	}
	panic(fmt.Sprintf("gpu: unknown capability %d", c))
}

func (d *GL) Viewport() Viewport {
	var vp [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	return Viewport{X: vp[0], Y: vp[1], Width: vp[2], Height: vp[3]}
}

func (d *GL) SetViewport(v Viewport) {
	gl.Viewport(v.X, v.Y, v.Width, v.Height)
}

func (d *GL) Framebuffer() uint32 {
	var fbo int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fbo)
	return uint32(fbo)
}

func (d *GL) BindFramebuffer(fbo uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

func (d *GL) ColorMask() bool {
	var mask [4]bool
	gl.GetBooleanv(gl.COLOR_WRITEMASK, &mask[0])
	return mask[0] && mask[1] && mask[2] && mask[3]
}

func (d *GL) SetColorMask(enabled bool) {
	gl.ColorMask(enabled, enabled, enabled, enabled)
}

func (d *GL) ClearColor() [4]float32 {
	var c [4]float32
	gl.GetFloatv(gl.COLOR_CLEAR_VALUE, &c[0])
	return c
}

func (d *GL) SetClearColor(c [4]float32) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

func (d *GL) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *GL) IsEnabled(c Cap) bool {
	return gl.IsEnabled(glCap(c))
}

func (d *GL) Enable(c Cap) {
	gl.Enable(glCap(c))
}

func (d *GL) Disable(c Cap) {
	gl.Disable(glCap(c))
}

func (d *GL) CullFace() Face {
	var mode int32
	gl.GetIntegerv(gl.CULL_FACE_MODE, &mode)
	if mode == gl.FRONT {
		return FaceFront
	}
	return FaceBack
}

func (d *GL) SetCullFace(f Face) {
	if f == FaceFront {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

func (d *GL) DepthFunc() DepthFunc {
	var fn int32
	gl.GetIntegerv(gl.DEPTH_FUNC, &fn)
	if fn == gl.LEQUAL {
		return DepthLessEqual
	}
	return DepthLess
}

func (d *GL) SetDepthFunc(f DepthFunc) {
	if f == DepthLessEqual {
		gl.DepthFunc(gl.LEQUAL)
		return
	}
	gl.DepthFunc(gl.LESS)
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func (d *GL) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", gl.GoStr(&log[0]))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

func (d *GL) UseProgram(program uint32) {
	gl.UseProgram(program)
	d.program = program
}

// CurrentProgram returns the last program bound through this device.
func (d *GL) CurrentProgram() uint32 {
	return d.program
}

func (d *GL) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *GL) UniformMat4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *GL) UniformVec3(loc int32, v mgl32.Vec3) {
	gl.Uniform3f(loc, v[0], v[1], v[2])
}

func (d *GL) UniformVec4(loc int32, v mgl32.Vec4) {
	gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
}

func (d *GL) UniformFloat(loc int32, f float32) {
	gl.Uniform1f(loc, f)
}

func (d *GL) UniformInt(loc int32, i int32) {
	gl.Uniform1i(loc, i)
}

func (d *GL) DeleteProgram(program uint32) {
	if d.program == program {
		d.program = 0
	}
	gl.DeleteProgram(program)
}

// CreateBuffers uploads an interleaved float vertex buffer and a uint32 index buffer.
func (d *GL) CreateBuffers(vertices []float32, layout Layout, indices []uint32) Buffers {
	b := Buffers{Count: int32(len(indices))}
	if len(vertices) == 0 || len(indices) == 0 {
		return b
	}

	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)

	gl.GenBuffers(1, &b.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	stride := layout.Stride() * 4
	var offset int32
	for _, a := range layout {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, stride, uintptr(offset*4))
		gl.EnableVertexAttribArray(a.Location)
		offset += a.Size
	}

	gl.BindVertexArray(0)
	return b
}

func (d *GL) DrawIndexed(b Buffers) {
	if b.VAO == 0 || b.Count == 0 {
		return
	}
	gl.BindVertexArray(b.VAO)
	gl.DrawElementsWithOffset(gl.TRIANGLES, b.Count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (d *GL) DeleteBuffers(b Buffers) {
	if b.VAO != 0 {
		gl.DeleteVertexArrays(1, &b.VAO)
	}
	if b.VBO != 0 {
		gl.DeleteBuffers(1, &b.VBO)
	}
	if b.EBO != 0 {
		gl.DeleteBuffers(1, &b.EBO)
	}
}

// CreateTexture2D uploads RGBA8 pixels. Nearest filtering suits palettes; otherwise mipmapped linear.
func (d *GL) CreateTexture2D(rgba []byte, width, height int32, nearest bool) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	if nearest {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	} else {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// CreateTexture3D allocates a single-channel 3D texture.
func (d *GL) CreateTexture3D(r8 []byte, width, height, depth int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_3D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.R8, width, height, depth, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(r8))
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_3D, 0)
	return tex
}

func (d *GL) UpdateTexture3D(tex uint32, r8 []byte, width, height, depth int32) {
	gl.BindTexture(gl.TEXTURE_3D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage3D(gl.TEXTURE_3D, 0, 0, 0, 0, width, height, depth, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(r8))
	gl.BindTexture(gl.TEXTURE_3D, 0)
}

func (d *GL) BindTexture(unit int32, target TextureTarget, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if target == Texture3D {
		gl.BindTexture(gl.TEXTURE_3D, tex)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (d *GL) DeleteTexture(tex uint32) {
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

// CreateDepthTarget creates a depth-only framebuffer whose texture is set up for
// sampler2DShadow comparison lookups.
func (d *GL) CreateDepthTarget(resolution int32) (Target, error) {
	var t Target

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)

	gl.GenTextures(1, &t.Depth)
	gl.BindTexture(gl.TEXTURE_2D, t.Depth)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, resolution, resolution, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Outside the light frustum reads as fully lit.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	borderColor := []float32{1.0, 1.0, 1.0, 1.0}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.Depth, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteTarget(t)
		return Target{}, fmt.Errorf("depth framebuffer incomplete: 0x%x", status)
	}
	return t, nil
}

// CreateColorTarget creates an RGBA8 color texture with a depth renderbuffer.
func (d *GL) CreateColorTarget(width, height int32) (Target, error) {
	var t Target

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)

	gl.GenTextures(1, &t.Color)
	gl.BindTexture(gl.TEXTURE_2D, t.Color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.Color, 0)

	gl.GenRenderbuffers(1, &t.Depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.Depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.Depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteTarget(t)
		return Target{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return t, nil
}

func (d *GL) ResizeColorTarget(t Target, width, height int32) {
	gl.BindTexture(gl.TEXTURE_2D, t.Color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindRenderbuffer(gl.RENDERBUFFER, t.Depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

// ReadPixels reads the color attachment as bottom-up RGBA rows.
func (d *GL) ReadPixels(t Target, width, height int32) []byte {
	pixels := make([]byte, width*height*4)

	prev := d.Framebuffer()
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, prev)

	return pixels
}

func (d *GL) DeleteTarget(t Target) {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
	}
	if t.Color != 0 {
		gl.DeleteTextures(1, &t.Color)
	}
	if t.Depth != 0 {
		if t.DepthOnly() {
			gl.DeleteTextures(1, &t.Depth)
		} else {
			gl.DeleteRenderbuffers(1, &t.Depth)
		}
	}
}
