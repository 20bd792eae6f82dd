// Package gputest provides a recording gpu.Device for tests that run without a GL context.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/gpu"
)

// Draw is one DrawIndexed call with the pipeline state it ran under.
type Draw struct {
	Program     uint32
	Framebuffer uint32
	Buffers     gpu.Buffers
	Blend       bool
	DepthTest   bool
	ColorMask   bool
	CullFace    gpu.Face
	Viewport    gpu.Viewport
	// Uniforms is a snapshot of the program's uniform values at draw time.
	Uniforms map[string]any
	// Textures maps texture unit to the bound texture name.
	Textures map[int32]uint32
}

// Recorder is an in-memory gpu.Device.
// Handles are allocated from a single counter so every name is unique.
type Recorder struct {
	Calls []string
	Draws []Draw

	// FailCompile makes CompileProgram fail when a source contains the substring.
	FailCompile string

	viewport    gpu.Viewport
	framebuffer uint32
	colorMask   bool
	clearColor  [4]float32
	enabled     map[gpu.Cap]bool
	cullFace    gpu.Face
	depthFunc   gpu.DepthFunc
	program     uint32
	textures    map[int32]uint32

	nextID    uint32
	programs  map[uint32]bool
	locations map[uint32]map[string]int32
	names     map[int32]string
	values    map[uint32]map[string]any
	live      map[uint32]bool
}

var _ gpu.Device = (*Recorder)(nil)

// New returns a recorder with a default-framebuffer viewport of the given size.
func New(width, height int32) *Recorder {
	return &Recorder{
		viewport:  gpu.Viewport{Width: width, Height: height},
		colorMask: true,
		enabled:   make(map[gpu.Cap]bool),
		textures:  make(map[int32]uint32),
		programs:  make(map[uint32]bool),
		locations: make(map[uint32]map[string]int32),
		names:     make(map[int32]string),
		values:    make(map[uint32]map[string]any),
		live:      make(map[uint32]bool),
	}
}

func (r *Recorder) alloc() uint32 {
	r.nextID++
	r.live[r.nextID] = true
	return r.nextID
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Live returns how many allocated GPU objects have not been deleted.
func (r *Recorder) Live() int {
	return len(r.live)
}

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// DrawsWith returns the draws issued while program was in use.
func (r *Recorder) DrawsWith(program uint32) []Draw {
	var out []Draw
	for _, d := range r.Draws {
		if d.Program == program {
			out = append(out, d)
		}
	}
	return out
}

// Uniform returns the last value uploaded to the named uniform of program.
func (r *Recorder) Uniform(program uint32, name string) (any, bool) {
	v, ok := r.values[program][name]
	return v, ok
}

// Reset clears recorded calls and draws but keeps pipeline state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
}

func (r *Recorder) Viewport() gpu.Viewport { return r.viewport }

func (r *Recorder) SetViewport(v gpu.Viewport) {
	r.viewport = v
	r.record("viewport %d %d %d %d", v.X, v.Y, v.Width, v.Height)
}

func (r *Recorder) Framebuffer() uint32 { return r.framebuffer }

func (r *Recorder) BindFramebuffer(fbo uint32) {
	r.framebuffer = fbo
	r.record("bind_framebuffer %d", fbo)
}

func (r *Recorder) ColorMask() bool { return r.colorMask }

func (r *Recorder) SetColorMask(enabled bool) {
	r.colorMask = enabled
	r.record("color_mask %t", enabled)
}

func (r *Recorder) ClearColor() [4]float32 { return r.clearColor }

func (r *Recorder) SetClearColor(c [4]float32) {
	r.clearColor = c
	r.record("clear_color %g %g %g %g", c[0], c[1], c[2], c[3])
}

func (r *Recorder) Clear(color, depth bool) {
	r.record("clear color=%t depth=%t fbo=%d", color, depth, r.framebuffer)
}

func (r *Recorder) IsEnabled(c gpu.Cap) bool { return r.enabled[c] }

func (r *Recorder) Enable(c gpu.Cap) {
	r.enabled[c] = true
	r.record("enable %s", c)
}

func (r *Recorder) Disable(c gpu.Cap) {
	r.enabled[c] = false
	r.record("disable %s", c)
}

func (r *Recorder) CullFace() gpu.Face { return r.cullFace }

func (r *Recorder) SetCullFace(f gpu.Face) {
	r.cullFace = f
	r.record("cull_face %d", f)
}

// DepthFunc returns the last depth comparison set.
func (r *Recorder) DepthFunc() gpu.DepthFunc { return r.depthFunc }

func (r *Recorder) SetDepthFunc(f gpu.DepthFunc) {
	r.depthFunc = f
	r.record("depth_func %d", f)
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if r.FailCompile != "" {
		if strings.Contains(vertexSrc, r.FailCompile) {
			return 0, fmt.Errorf("vertex shader: 0:1: error: %s", r.FailCompile)
		}
		if strings.Contains(fragmentSrc, r.FailCompile) {
			return 0, fmt.Errorf("fragment shader: 0:1: error: %s", r.FailCompile)
		}
	}
	id := r.alloc()
	r.programs[id] = true
	r.locations[id] = make(map[string]int32)
	r.values[id] = make(map[string]any)
	r.record("compile_program %d", id)
	return id, nil
}

func (r *Recorder) UseProgram(program uint32) {
	r.program = program
	r.record("use_program %d", program)
}

func (r *Recorder) CurrentProgram() uint32 { return r.program }

// UniformLocation hands out a distinct location per program and name.
func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	locs, ok := r.locations[program]
	if !ok {
		return -1
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(len(r.names))
	locs[name] = loc
	r.names[loc] = name
	r.record("uniform_location %d %s", program, name)
	return loc
}

func (r *Recorder) setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	name, ok := r.names[loc]
	if !ok {
		panic(fmt.Sprintf("gputest: unknown uniform location %d", loc))
	}
	if _, ok := r.locations[r.program][name]; !ok || r.locations[r.program][name] != loc {
		panic(fmt.Sprintf("gputest: uniform %s set while program %d is not in use", name, r.program))
	}
	r.values[r.program][name] = v
	r.record("uniform %s", name)
}

func (r *Recorder) UniformMat4(loc int32, m mgl32.Mat4) { r.setUniform(loc, m) }
func (r *Recorder) UniformVec3(loc int32, v mgl32.Vec3) { r.setUniform(loc, v) }
func (r *Recorder) UniformVec4(loc int32, v mgl32.Vec4) { r.setUniform(loc, v) }
func (r *Recorder) UniformFloat(loc int32, f float32) { r.setUniform(loc, f) }
func (r *Recorder) UniformInt(loc int32, i int32) { r.setUniform(loc, i) }

func (r *Recorder) DeleteProgram(program uint32) {
	if r.program == program {
		r.program = 0
	}
	delete(r.programs, program)
	delete(r.live, program)
	r.record("delete_program %d", program)
}

func (r *Recorder) CreateBuffers(vertices []float32, layout gpu.Layout, indices []uint32) gpu.Buffers {
	b := gpu.Buffers{Count: int32(len(indices))}
	if len(vertices) == 0 || len(indices) == 0 {
		return b
	}
	if stride := int(layout.Stride()); stride == 0 || len(vertices)%stride != 0 {
		panic(fmt.Sprintf("gputest: %d floats do not fit stride %d", len(vertices), stride))
	}
	b.VAO, b.VBO, b.EBO = r.alloc(), r.alloc(), r.alloc()
	r.record("create_buffers %d", b.VAO)
	return b
}

func (r *Recorder) DrawIndexed(b gpu.Buffers) {
	if b.VAO == 0 || b.Count == 0 {
		return
	}
	if r.program == 0 {
		panic("gputest: draw with no program in use")
	}
	uniforms := make(map[string]any, len(r.values[r.program]))
	for k, v := range r.values[r.program] {
		uniforms[k] = v
	}
	textures := make(map[int32]uint32, len(r.textures))
	for k, v := range r.textures {
		textures[k] = v
	}
	r.Draws = append(r.Draws, Draw{
		Program:     r.program,
		Framebuffer: r.framebuffer,
		Buffers:     b,
		Blend:       r.enabled[gpu.Blend],
		DepthTest:   r.enabled[gpu.DepthTest],
		ColorMask:   r.colorMask,
		CullFace:    r.cullFace,
		Viewport:    r.viewport,
		Uniforms:    uniforms,
		Textures:    textures,
	})
	r.record("draw %d", b.VAO)
}

func (r *Recorder) DeleteBuffers(b gpu.Buffers) {
	delete(r.live, b.VAO)
	delete(r.live, b.VBO)
	delete(r.live, b.EBO)
	r.record("delete_buffers %d", b.VAO)
}

func (r *Recorder) CreateTexture2D(rgba []byte, width, height int32, nearest bool) uint32 {
	if int32(len(rgba)) != width*height*4 {
		panic(fmt.Sprintf("gputest: %d bytes for %dx%d RGBA texture", len(rgba), width, height))
	}
	id := r.alloc()
	r.record("create_texture_2d %d %dx%d", id, width, height)
	return id
}

func (r *Recorder) CreateTexture3D(r8 []byte, width, height, depth int32) uint32 {
	id := r.alloc()
	r.record("create_texture_3d %d %dx%dx%d", id, width, height, depth)
	return id
}

func (r *Recorder) UpdateTexture3D(tex uint32, r8 []byte, width, height, depth int32) {
	if int32(len(r8)) != width*height*depth {
		panic(fmt.Sprintf("gputest: %d bytes for %dx%dx%d texture", len(r8), width, height, depth))
	}
	r.record("update_texture_3d %d", tex)
}

func (r *Recorder) BindTexture(unit int32, target gpu.TextureTarget, tex uint32) {
	r.textures[unit] = tex
	r.record("bind_texture %d %d", unit, tex)
}

func (r *Recorder) DeleteTexture(tex uint32) {
	delete(r.live, tex)
	r.record("delete_texture %d", tex)
}

func (r *Recorder) CreateDepthTarget(resolution int32) (gpu.Target, error) {
	if resolution <= 0 {
		return gpu.Target{}, fmt.Errorf("depth framebuffer incomplete: resolution %d", resolution)
	}
	t := gpu.Target{FBO: r.alloc(), Depth: r.alloc()}
	r.record("create_depth_target %d %d", t.FBO, resolution)
	return t, nil
}

func (r *Recorder) CreateColorTarget(width, height int32) (gpu.Target, error) {
	if width <= 0 || height <= 0 {
		return gpu.Target{}, fmt.Errorf("framebuffer incomplete: %dx%d", width, height)
	}
	t := gpu.Target{FBO: r.alloc(), Color: r.alloc(), Depth: r.alloc()}
	r.record("create_color_target %d %dx%d", t.FBO, width, height)
	return t, nil
}

func (r *Recorder) ResizeColorTarget(t gpu.Target, width, height int32) {
	r.record("resize_color_target %d %dx%d", t.FBO, width, height)
}

// ReadPixels returns an opaque gradient so readback consumers have something to encode.
func (r *Recorder) ReadPixels(t gpu.Target, width, height int32) []byte {
	pixels := make([]byte, width*height*4)
	for y := int32(0); y < height; y++ {
		for x := int32(0); x < width; x++ {
			i := (y*width + x) * 4
			pixels[i] = byte(x)
			pixels[i+1] = byte(y)
			pixels[i+3] = 255
		}
	}
	r.record("read_pixels %d", t.FBO)
	return pixels
}

func (r *Recorder) DeleteTarget(t gpu.Target) {
	delete(r.live, t.FBO)
	delete(r.live, t.Color)
	delete(r.live, t.Depth)
	r.record("delete_target %d", t.FBO)
}
