package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/assets"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/mesh"
	"github.com/Faultbox/voxview/internal/engine/shadow"
	"github.com/Faultbox/voxview/internal/engine/texture"
	"github.com/Faultbox/voxview/internal/engine/voxel"
	"github.com/Faultbox/voxview/internal/engine/water"
	"github.com/Faultbox/voxview/internal/logger"
	"github.com/Faultbox/voxview/pkg/formats"
)

// Defaults for attributes a scene file may omit.
var (
	DefaultVoxboxColor = [4]float32{1, 1, 1, 1}
	DefaultRopeColor   = [4]float32{0.1, 0.08, 0.05, 1}
	DefaultWaterColor  = [4]float32{0.1, 0.3, 0.5, 0.6}
	DefaultWaterSize   = [2]float32{10, 10}
)

// DefaultRopeThickness is the rope width in world units.
const DefaultRopeThickness = 0.02

// Options controls how a scene is built.
type Options struct {
	// Mesher builds the solid voxel meshes. Nil selects greedy meshing.
	Mesher voxel.Mesher
}

// loader carries the state of one Load call.
type loader struct {
	s      *Scene
	assets *assets.Manager
	mesher voxel.Mesher

	voxFiles map[string]*formats.Vox
	palettes map[string]uint32
	textures map[string]uint32

	err error
}

// Load reads the scene XML at path through m and uploads every mesh it describes.
// Paths inside the file are relative to path. All asset failures are reported together.
func Load(dev gpu.Device, m *assets.Manager, path string, opts Options) (*Scene, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	root, err := formats.ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}

	mesher := opts.Mesher
	if mesher == nil {
		mesher = voxel.Greedy{}
	}

	l := &loader{
		s: &Scene{
			Path:   path,
			dev:    dev,
			bounds: shadow.EmptyAABB(),
		},
		assets:   m,
		mesher:   mesher,
		voxFiles: make(map[string]*formats.Vox),
		palettes: make(map[string]uint32),
		textures: make(map[string]uint32),
	}
	for _, child := range root.Children {
		l.walk(child, mgl32.Ident4())
	}
	if l.err != nil {
		l.s.Destroy()
		return nil, fmt.Errorf("loading scene %s: %w", path, l.err)
	}

	c := l.s.Counts()
	logger.Info("scene loaded",
		zap.String("path", path),
		zap.String("mesher", mesher.Name()),
		zap.Int("solid", c.Solid),
		zap.Int("voxbox", c.Voxbox),
		zap.Int("rope", c.Rope),
		zap.Int("water", c.Water),
		zap.Int("triangles", l.s.Triangles()))
	return l.s, nil
}

func (l *loader) fail(err error) {
	l.err = multierr.Append(l.err, err)
}

// walk handles one element and recurses into its children with the composed transform.
func (l *loader) walk(n *formats.SceneNode, parent mgl32.Mat4) {
	switch n.Name {
	case "group", "body":
		local, err := localTransform(n)
		if err != nil {
			l.fail(err)
			return
		}
		world := parent.Mul4(local)
		for _, child := range n.Children {
			l.walk(child, world)
		}
	case "vox":
		l.addVox(n, parent)
	case "voxbox":
		l.addVoxbox(n, parent)
	case "rope":
		l.addRope(n, parent)
	case "water":
		l.addWater(n, parent)
	case "spawnpoint":
		pos, err := n.Vec3("pos", [3]float32{})
		if err != nil {
			l.fail(err)
			return
		}
		p := mgl32.TransformCoordinate(pos, parent)
		l.s.Spawn = &p
	case "light":
		pos, err1 := n.Vec3("pos", [3]float32{})
		color, err2 := n.Vec3("color", [3]float32{1, 1, 1})
		if err := multierr.Combine(err1, err2); err != nil {
			l.fail(err)
			return
		}
		l.s.Light = &LightOverride{
			Position: mgl32.TransformCoordinate(pos, parent),
			Color:    color,
		}
	default:
		logger.Debug("scene element ignored", zap.String("element", n.Name), zap.Int("line", n.Line))
		for _, child := range n.Children {
			l.walk(child, parent)
		}
	}
}

// localTransform returns T(pos) * R(rot) for a node. Rotation is in degrees, applied Y, X, then Z.
func localTransform(n *formats.SceneNode) (mgl32.Mat4, error) {
	pos, err1 := n.Vec3("pos", [3]float32{})
	rot, err2 := n.Vec3("rot", [3]float32{})
	if err := multierr.Combine(err1, err2); err != nil {
		return mgl32.Ident4(), err
	}
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(rotation(rot)), nil
}

// rotation builds Ry * Rx * Rz from "x y z" degrees.
func rotation(deg [3]float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(mgl32.DegToRad(deg[1])).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(deg[0]))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(deg[2])))
}

func (l *loader) loadVox(file string) (*formats.Vox, uint32, error) {
	if v, ok := l.voxFiles[file]; ok {
		return v, l.palettes[file], nil
	}
	data, err := l.assets.Load(file)
	if err != nil {
		return nil, 0, err
	}
	v, err := formats.ParseVox(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", file, err)
	}
	if !v.HasPalette {
		logger.Debug("vox file has no palette, using default", zap.String("file", file))
	}
	tex := l.s.dev.CreateTexture2D(voxel.PaletteRGBA(&v.Palette), 256, 1, true)
	l.s.textures = append(l.s.textures, tex)
	l.voxFiles[file] = v
	l.palettes[file] = tex
	logger.Debug("vox file loaded",
		zap.String("file", file),
		zap.Int("models", len(v.Models)),
		zap.Strings("objects", v.ObjectNames()))
	return v, tex, nil
}

func (l *loader) loadTexture(name string) (uint32, error) {
	if tex, ok := l.textures[name]; ok {
		return tex, nil
	}
	tex, err := texture.Load(l.s.dev, l.assets, name)
	if err != nil {
		return 0, err
	}
	l.s.textures = append(l.s.textures, tex)
	l.textures[name] = tex
	return tex, nil
}

func (l *loader) addVox(n *formats.SceneNode, parent mgl32.Mat4) {
	file, ok := n.Attr("file")
	if !ok {
		l.fail(fmt.Errorf("<vox> at line %d: missing file attribute", n.Line))
		return
	}
	local, err := localTransform(n)
	scale, errScale := n.Float("scale", 1)
	if err := multierr.Combine(err, errScale); err != nil {
		l.fail(err)
		return
	}

	path := assets.Join(l.s.Path, file)
	v, palette, err := l.loadVox(path)
	if err != nil {
		l.fail(err)
		return
	}
	object := n.Text("object", "")
	model, err := v.Model(object)
	if err != nil {
		l.fail(fmt.Errorf("%s: %w", path, err))
		return
	}

	grid := voxel.FromVox(model)
	size := grid.Size()
	s := VoxelSize * scale
	// Pivot at the bottom center of the model.
	world := parent.Mul4(local).
		Mul4(mgl32.Scale3D(s, s, s)).
		Mul4(mgl32.Translate3D(-float32(size[0])/2, 0, -float32(size[2])/2))

	vertices, indices := voxel.Geometry(l.mesher.Mesh(grid))
	name := file
	if object != "" {
		name += "#" + object
	}
	m := mesh.New(l.s.dev, name, vertices, indices, world)
	m.Texture = palette
	m.Sampler = "palette"
	l.s.add(Solid, m)
	l.s.shapes = append(l.s.shapes, Shape{Name: name, Grid: grid, Model: world})
	l.extend(gridBox(size), world)
}

func (l *loader) addVoxbox(n *formats.SceneNode, parent mgl32.Mat4) {
	local, err1 := localTransform(n)
	size, err2 := n.Vec3("size", [3]float32{1, 1, 1})
	color, err3 := n.Color("color", DefaultVoxboxColor)
	if err := multierr.Combine(err1, err2, err3); err != nil {
		l.fail(err)
		return
	}

	var cells [3]int
	for i, f := range size {
		cells[i] = max(1, int(math.Round(float64(f))))
	}
	world := parent.Mul4(local).Mul4(mgl32.Scale3D(VoxelSize, VoxelSize, VoxelSize))

	vertices, indices := voxel.Geometry(voxel.Box(cells, 0))
	name := fmt.Sprintf("voxbox@%d", n.Line)
	m := mesh.New(l.s.dev, name, vertices, indices, world)
	m.Color = color
	if tex, ok := n.Attr("texture"); ok {
		t, err := l.loadTexture(assets.Join(l.s.Path, tex))
		if err != nil {
			l.fail(err)
		}
		m.Texture = t
	}
	l.s.add(Voxbox, m)

	grid := voxel.NewGrid(cells[0], cells[1], cells[2])
	grid.Fill(1)
	l.s.shapes = append(l.s.shapes, Shape{Name: name, Grid: grid, Model: world})
	l.extend(gridBox(cells), world)
}

func (l *loader) addRope(n *formats.SceneNode, parent mgl32.Mat4) {
	color, err1 := n.Color("color", DefaultRopeColor)
	thickness, err2 := n.Float("thickness", DefaultRopeThickness)
	if err := multierr.Combine(err1, err2); err != nil {
		l.fail(err)
		return
	}

	var points []mgl32.Vec3
	for _, child := range n.Children {
		if child.Name != "location" {
			continue
		}
		p, err := child.Vec3("pos", [3]float32{})
		if err != nil {
			l.fail(err)
			return
		}
		points = append(points, mgl32.TransformCoordinate(p, parent))
	}
	if len(points) < 2 {
		logger.Warn("rope needs at least two locations", zap.Int("line", n.Line))
		return
	}

	vertices, indices := mesh.Rope(points, thickness)
	m := mesh.New(l.s.dev, fmt.Sprintf("rope@%d", n.Line), vertices, indices, mgl32.Ident4())
	m.Color = color
	l.s.add(Rope, m)
}

func (l *loader) addWater(n *formats.SceneNode, parent mgl32.Mat4) {
	local, err1 := localTransform(n)
	size, err2 := n.Vec2("size", DefaultWaterSize)
	color, err3 := n.Color("color", DefaultWaterColor)
	if err := multierr.Combine(err1, err2, err3); err != nil {
		l.fail(err)
		return
	}

	vertices, indices := water.BuildPlane(size[0], size[1], water.DefaultSegments)
	m := mesh.New(l.s.dev, fmt.Sprintf("water@%d", n.Line), vertices, indices, parent.Mul4(local))
	m.Color = color
	if tex, ok := n.Attr("texture"); ok {
		t, err := l.loadTexture(assets.Join(l.s.Path, tex))
		if err != nil {
			l.fail(err)
		}
		m.Texture = t
	}
	l.s.add(Water, m)
}

func gridBox(size [3]int) shadow.AABB {
	return shadow.AABB{Max: mgl32.Vec3{float32(size[0]), float32(size[1]), float32(size[2])}}
}

func (l *loader) extend(local shadow.AABB, model mgl32.Mat4) {
	l.s.bounds = l.s.bounds.Union(local.Transform(model))
}
