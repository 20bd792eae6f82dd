package scene

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"

	"github.com/Faultbox/voxview/internal/assets"
	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/gpu/gputest"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/voxel"
)

func chunk(id string, content, children []byte) []byte {
	out := []byte(id)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(content)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(children)))
	out = append(out, content...)
	return append(out, children...)
}

// voxFile builds a single-model file with a sx×sy×sz box (Z up) filled with color 1.
func voxFile(sx, sy, sz int) []byte {
	size := binary.LittleEndian.AppendUint32(nil, uint32(sx))
	size = binary.LittleEndian.AppendUint32(size, uint32(sy))
	size = binary.LittleEndian.AppendUint32(size, uint32(sz))

	xyzi := binary.LittleEndian.AppendUint32(nil, uint32(sx*sy*sz))
	for z := 0; z < sz; z++ {
		for y := 0; y < sy; y++ {
			for x := 0; x < sx; x++ {
				xyzi = append(xyzi, byte(x), byte(y), byte(z), 1)
			}
		}
	}

	children := append(chunk("SIZE", size, nil), chunk("XYZI", xyzi, nil)...)
	out := []byte("VOX ")
	out = binary.LittleEndian.AppendUint32(out, 150)
	return append(out, chunk("MAIN", nil, children)...)
}

const sceneXML = `<scene version="1">
	<spawnpoint pos="0 2 8"/>
	<light pos="-35 130 -132" color="1 0.9 0.8"/>
	<group pos="10 0 0" rot="0 90 0">
		<vox file="vox/crate.vox" pos="0 0 0"/>
		<body pos="0 1 0">
			<vox file="vox/crate.vox" scale="2"/>
			<voxbox pos="0 0 0" size="10 2 10" color="0.5 0.5 0.5"/>
		</body>
	</group>
	<voxbox pos="5 0 5" size="4 4 4" texture="tex/stone.tga"/>
	<rope thickness="0.05">
		<location pos="0 5 0"/>
		<location pos="0 3 1"/>
	</rope>
	<water pos="0 -0.5 0" size="40 40"/>
	<water pos="50 -0.5 0" size="10 10"/>
	<environment>
		<vox file="vox/crate.vox" pos="0 0 -20"/>
	</environment>
</scene>`

// tga1x1 is a 1x1 uncompressed 24-bit TGA.
var tga1x1 = []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 24, 0, 10, 20, 30}

func newAssets(files map[string]string) *assets.Manager {
	fsys := fstest.MapFS{
		"levels/vox/crate.vox":  {Data: voxFile(2, 3, 4)},
		"levels/tex/stone.tga": {Data: tga1x1},
	}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	m := assets.NewManager()
	m.AddFS("test", fsys)
	return m
}

func loadTestScene(t *testing.T) (*Scene, *gputest.Recorder) {
	t.Helper()
	dev := gputest.New(800, 600)
	s, err := Load(dev, newAssets(map[string]string{"levels/main.xml": sceneXML}), "levels/main.xml", Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s, dev
}

func TestLoadCounts(t *testing.T) {
	s, dev := loadTestScene(t)

	want := Counts{Solid: 3, Voxbox: 2, Rope: 1, Water: 2}
	if got := s.Counts(); got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
	if len(s.Shapes()) != 5 {
		t.Errorf("expected 3 vox and 2 voxbox shapes, got %d", len(s.Shapes()))
	}
	if s.Spawn == nil || *s.Spawn != (mgl32.Vec3{0, 2, 8}) {
		t.Errorf("unexpected spawn %v", s.Spawn)
	}
	if s.Light == nil || s.Light.Color != (mgl32.Vec3{1, 0.9, 0.8}) {
		t.Errorf("unexpected light %+v", s.Light)
	}

	// One palette for the shared vox file, one texture for the voxbox.
	if n := dev.Count("create_texture_2d"); n != 2 {
		t.Errorf("expected 2 textures, got %d", n)
	}
	if s.Triangles() == 0 {
		t.Error("expected triangles")
	}
}

func TestLoadTwiceSameCounts(t *testing.T) {
	a, _ := loadTestScene(t)
	b, _ := loadTestScene(t)
	if a.Counts() != b.Counts() {
		t.Errorf("counts differ: %+v vs %+v", a.Counts(), b.Counts())
	}
	if a.Bounds() != b.Bounds() {
		t.Errorf("bounds differ: %+v vs %+v", a.Bounds(), b.Bounds())
	}
}

func TestVoxTransform(t *testing.T) {
	s, _ := loadTestScene(t)

	// The first crate sits in a group at x=10 rotated 90° about Y.
	// File size 2x3x4 becomes a 2x4x3 grid; pivot is the bottom center.
	crate := s.Meshes(Solid)[0]
	origin := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 1.5}, crate.Model)
	if !origin.ApproxEqualThreshold(mgl32.Vec3{10, 0, 0}, 1e-5) {
		t.Errorf("pivot maps to %v, want group origin", origin)
	}

	// The scaled crate is one unit up and twice as large.
	scaled := s.Meshes(Solid)[1]
	top := mgl32.TransformCoordinate(mgl32.Vec3{1, 4, 1.5}, scaled.Model)
	if !top.ApproxEqualThreshold(mgl32.Vec3{10, 1.8, 0}, 1e-5) {
		t.Errorf("scaled crate top at %v", top)
	}

	b := s.Bounds()
	if b.IsEmpty() || b.Max.Y() < 1.8-1e-5 || b.Min.Y() > 0 {
		t.Errorf("bounds do not cover the crates: %+v", b)
	}
}

func TestRotationOrder(t *testing.T) {
	// Yaw 90 turns +X toward -Z.
	m := rotation([3]float32{0, 90, 0})
	got := mgl32.TransformNormal(mgl32.Vec3{1, 0, 0}, m)
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("yaw 90 maps +X to %v", got)
	}

	// Roll, then pitch, then yaw: +Z rolled stays +Z, pitched 90 goes to -Y, yaw keeps -Y.
	m = rotation([3]float32{90, 90, 45})
	got = mgl32.TransformNormal(mgl32.Vec3{0, 0, 1}, m)
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-6) {
		t.Errorf("unexpected composed rotation of +Z: %v", got)
	}
}

func TestVoxboxIsShape(t *testing.T) {
	s, _ := loadTestScene(t)

	var boxes []Shape
	for _, sh := range s.Shapes() {
		if strings.HasPrefix(sh.Name, "voxbox@") {
			boxes = append(boxes, sh)
		}
	}
	if len(boxes) != 2 {
		t.Fatalf("expected 2 voxbox shapes, got %d", len(boxes))
	}
	// Document order: the nested 10x2x10 slab comes first.
	g := boxes[0].Grid
	if g.Size() != [3]int{10, 2, 10} || g.Count() != 200 {
		t.Errorf("expected a solid 10x2x10 grid, got %v with %d cells", g.Size(), g.Count())
	}
	if g := boxes[1].Grid; g.Count() != 64 {
		t.Errorf("expected a solid 4x4x4 grid, got %d cells", g.Count())
	}
	// The box's model matches its mesh.
	if m := s.Meshes(Voxbox)[1]; m.Model != boxes[1].Model {
		t.Errorf("shape and mesh transforms differ: %v vs %v", boxes[1].Model, m.Model)
	}
}

func TestMesherChoice(t *testing.T) {
	load := func(m voxel.Mesher) int {
		dev := gputest.New(1, 1)
		s, err := Load(dev, newAssets(map[string]string{"levels/main.xml": sceneXML}), "levels/main.xml", Options{Mesher: m})
		if err != nil {
			t.Fatal(err)
		}
		return s.Meshes(Solid)[0].Triangles()
	}
	greedy, naive := load(voxel.Greedy{}), load(voxel.Naive{})
	if greedy != 12 {
		t.Errorf("expected a box of 12 triangles with greedy meshing, got %d", greedy)
	}
	if naive <= greedy {
		t.Errorf("expected naive meshing to emit more triangles, got %d", naive)
	}
}

func TestDrawIssuesOneDrawPerMesh(t *testing.T) {
	s, dev := loadTestScene(t)
	cam := camera.New(mgl32.Vec3{0, 2.5, 10}, 45, 0.1, 500, 800, 600)
	p, err := shader.Compile(dev, "voxel", "v", "f")
	if err != nil {
		t.Fatal(err)
	}

	dev.Reset()
	s.Draw(p, cam)
	if len(dev.Draws) != 3 {
		t.Fatalf("expected 3 solid draws, got %d", len(dev.Draws))
	}
	for i, d := range dev.Draws {
		if d.Buffers != s.Meshes(Solid)[i].Buffers {
			t.Errorf("draw %d out of insertion order", i)
		}
		if d.Uniforms["view"] != cam.View() {
			t.Errorf("draw %d without camera uniforms", i)
		}
		if d.Uniforms["palette"] != int32(0) || d.Textures[0] == 0 {
			t.Errorf("draw %d without palette bound", i)
		}
	}

	dev.Reset()
	s.DrawVoxbox(p, cam)
	s.DrawRope(p, cam)
	if len(dev.Draws) != 3 {
		t.Errorf("expected 2 voxbox + 1 rope draws, got %d", len(dev.Draws))
	}
}

func TestDrawWaterScopesBlending(t *testing.T) {
	s, dev := loadTestScene(t)
	cam := camera.New(mgl32.Vec3{0, 2.5, 10}, 45, 0.1, 500, 800, 600)
	p, err := shader.Compile(dev, "water", "v", "f")
	if err != nil {
		t.Fatal(err)
	}
	s.Update(1.5)

	dev.Reset()
	s.DrawWater(p, cam)

	if len(dev.Draws) != 2 {
		t.Fatalf("expected 2 water draws, got %d", len(dev.Draws))
	}
	for i, d := range dev.Draws {
		if !d.Blend {
			t.Errorf("water draw %d without blending", i)
		}
		if d.Uniforms["time"] != float32(1.5) {
			t.Errorf("water draw %d time = %v", i, d.Uniforms["time"])
		}
	}
	if dev.IsEnabled(gpu.Blend) {
		t.Error("blending left on after DrawWater")
	}
}

func TestDrawDepthCastersOnly(t *testing.T) {
	s, dev := loadTestScene(t)
	p, err := shader.Compile(dev, "shadowmap", "v", "f")
	if err != nil {
		t.Fatal(err)
	}

	dev.Reset()
	s.DrawDepth(p)
	c := s.Counts()
	if len(dev.Draws) != c.Solid+c.Voxbox {
		t.Errorf("expected %d depth draws, got %d", c.Solid+c.Voxbox, len(dev.Draws))
	}
}

func TestLoadAggregatesErrors(t *testing.T) {
	xml := `<scene>
		<vox file="vox/missing.vox"/>
		<vox file="vox/crate.vox" object="door"/>
		<voxbox size="1 2"/>
		<voxbox texture="tex/missing.png"/>
		<vox/>
	</scene>`
	dev := gputest.New(1, 1)
	_, err := Load(dev, newAssets(map[string]string{"levels/main.xml": xml}), "levels/main.xml", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(multierr.Errors(errors.Unwrap(err))); n != 5 {
		t.Errorf("expected 5 aggregated errors, got %d: %v", n, err)
	}
	for _, want := range []string{"missing.vox", "door", "size", "missing.png", "missing file"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q: %v", want, err)
		}
	}
	if dev.Live() != 0 {
		t.Errorf("expected everything released after a failed load, %d live", dev.Live())
	}
}

func TestLoadMissingScene(t *testing.T) {
	_, err := Load(gputest.New(1, 1), newAssets(nil), "levels/main.xml", Options{})
	if !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryString(t *testing.T) {
	if Water.String() != "water" || Category(9).String() != "unknown" {
		t.Error("unexpected category names")
	}
}
