// Package shader provides GPU program compilation and uniform upload.
package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/gpu"
)

// Program is a linked vertex+fragment program with cached uniform locations.
type Program struct {
	Name string
	ID   uint32

	dev       gpu.Device
	locations map[string]int32
}

// Compile compiles and links a program from source text.
// name is used in error messages and logs.
func Compile(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return &Program{
		Name:      name,
		ID:        id,
		dev:       dev,
		locations: make(map[string]int32),
	}, nil
}

// Use makes the program current.
func (p *Program) Use() {
	p.dev.UseProgram(p.ID)
}

// InUse reports whether the program is the device's current program.
func (p *Program) InUse() bool {
	return p.dev.CurrentProgram() == p.ID
}

// Location returns the uniform location for name, -1 if the uniform is inactive.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.ID, name)
	p.locations[name] = loc
	return loc
}

// Uniform setters panic when the program is not current: the value would
// land in whatever program is bound instead.
func (p *Program) mustBeInUse(name string) {
	if !p.InUse() {
		panic(fmt.Sprintf("shader %s: uniform %q set while program is not in use", p.Name, name))
	}
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	p.mustBeInUse(name)
	p.dev.UniformMat4(p.Location(name), m)
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	p.mustBeInUse(name)
	p.dev.UniformVec3(p.Location(name), v)
}

func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	p.mustBeInUse(name)
	p.dev.UniformVec4(p.Location(name), v)
}

func (p *Program) SetFloat(name string, f float32) {
	p.mustBeInUse(name)
	p.dev.UniformFloat(p.Location(name), f)
}

func (p *Program) SetInt(name string, i int32) {
	p.mustBeInUse(name)
	p.dev.UniformInt(p.Location(name), i)
}

func (p *Program) SetBool(name string, b bool) {
	var i int32
	if b {
		i = 1
	}
	p.SetInt(name, i)
}

// Destroy releases the GPU program.
func (p *Program) Destroy() {
	if p.ID != 0 {
		p.dev.DeleteProgram(p.ID)
		p.ID = 0
	}
}
