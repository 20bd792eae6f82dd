package renderer

import (
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/voxel"
)

// Programs holds one shader program per pass.
type Programs struct {
	Voxel  *shader.Program
	Voxbox *shader.Program
	Rope   *shader.Program
	Water  *shader.Program
	Depth  *shader.Program
	Light  *shader.Program
	Skybox *shader.Program
}

// LoadPrograms compiles every pass program. The voxel vertex stage is the one
// the mesher pairs with. The first failure aborts and releases what was built.
func LoadPrograms(lib *shader.Library, mesher voxel.Mesher) (*Programs, error) {
	p := &Programs{}
	steps := []struct {
		dst        **shader.Program
		vert, frag string
	}{
		{&p.Voxel, mesher.VertexShader(), "voxel.frag"},
		{&p.Voxbox, "voxbox.vert", "voxbox.frag"},
		{&p.Rope, "rope.vert", "rope.frag"},
		{&p.Water, "water.vert", "water.frag"},
		{&p.Depth, "shadowmap.vert", "shadowmap.frag"},
		{&p.Light, "light.vert", "light.frag"},
		{&p.Skybox, "skybox.vert", "skybox.frag"},
	}
	for _, s := range steps {
		prog, err := lib.Load(s.vert, s.frag)
		if err != nil {
			p.Destroy()
			return nil, err
		}
		*s.dst = prog
	}
	return p, nil
}

func (p *Programs) all() []*shader.Program {
	return []*shader.Program{p.Voxel, p.Voxbox, p.Rope, p.Water, p.Depth, p.Light, p.Skybox}
}

// Destroy releases every compiled program.
func (p *Programs) Destroy() {
	for _, prog := range p.all() {
		if prog != nil {
			prog.Destroy()
		}
	}
}
