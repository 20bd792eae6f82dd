package skybox

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/gpu/gputest"
	"github.com/Faultbox/voxview/internal/engine/shader"
)

func TestDraw(t *testing.T) {
	dev := gputest.New(800, 600)
	dev.Enable(gpu.CullFace)
	p, err := shader.Compile(dev, "skybox", "v", "f")
	if err != nil {
		t.Fatal(err)
	}
	cam := camera.New(mgl32.Vec3{5, 2, 10}, 45, 0.1, 500, 800, 600)
	sky := New(dev)

	sky.Draw(p, cam)

	if len(dev.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(dev.Draws))
	}
	view := dev.Draws[0].Uniforms["view"].(mgl32.Mat4)
	if view.Col(3) != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("sky view keeps a translation: %v", view.Col(3))
	}
	if dev.Count("depth_func 1") != 1 {
		t.Error("expected LEQUAL during the sky draw")
	}
	if dev.DepthFunc() != gpu.DepthLess {
		t.Error("depth func not restored")
	}
	if !dev.IsEnabled(gpu.CullFace) {
		t.Error("culling not restored")
	}

	sky.Destroy()
}
