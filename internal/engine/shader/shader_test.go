package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/gpu/gputest"
)

func TestUniformRequiresUse(t *testing.T) {
	dev := gputest.New(800, 600)
	p, err := Compile(dev, "test", "void main(){}", "void main(){}")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic when setting a uniform on an idle program")
		}
		if !strings.Contains(r.(string), "model") {
			t.Errorf("panic should name the uniform, got %v", r)
		}
	}()
	p.SetMat4("model", mgl32.Ident4())
}

func TestUniformUpload(t *testing.T) {
	dev := gputest.New(800, 600)
	p, err := Compile(dev, "test", "void main(){}", "void main(){}")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	p.Use()
	p.SetVec3("lightPos", mgl32.Vec3{1, 2, 3})
	p.SetBool("hasTexture", true)
	p.SetVec3("lightPos", mgl32.Vec3{4, 5, 6})

	if got, _ := dev.Uniform(p.ID, "lightPos"); got != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("expected last value, got %v", got)
	}
	if got, _ := dev.Uniform(p.ID, "hasTexture"); got != int32(1) {
		t.Errorf("expected bool as int 1, got %v", got)
	}
	if n := dev.Count("uniform_location"); n != 2 {
		t.Errorf("expected locations cached, got %d lookups", n)
	}
}

func TestCompileError(t *testing.T) {
	dev := gputest.New(800, 600)
	dev.FailCompile = "syntax"

	_, err := Compile(dev, "voxel.vert+voxel.frag", "syntax error", "void main(){}")
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !strings.Contains(err.Error(), "voxel.vert+voxel.frag") || !strings.Contains(err.Error(), "vertex shader") {
		t.Errorf("error should name the program and stage: %v", err)
	}
}

func TestDestroy(t *testing.T) {
	dev := gputest.New(800, 600)
	p, err := Compile(dev, "test", "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	p.Destroy()
	p.Destroy()

	if dev.Live() != 0 {
		t.Errorf("expected program released, %d live", dev.Live())
	}
	if n := dev.Count("delete_program"); n != 1 {
		t.Errorf("expected one delete, got %d", n)
	}
}

func TestLibraryBuiltinPrograms(t *testing.T) {
	dev := gputest.New(800, 600)
	lib, err := NewLibrary(dev, "")
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	pairs := [][2]string{
		{"voxel.vert", "voxel.frag"},
		{"voxel_gm.vert", "voxel.frag"},
		{"voxbox.vert", "voxbox.frag"},
		{"rope.vert", "rope.frag"},
		{"water.vert", "water.frag"},
		{"shadowmap.vert", "shadowmap.frag"},
		{"light.vert", "light.frag"},
		{"skybox.vert", "skybox.frag"},
	}
	for _, pair := range pairs {
		if _, err := lib.Load(pair[0], pair[1]); err != nil {
			t.Errorf("Load(%s, %s) failed: %v", pair[0], pair[1], err)
		}
	}
}

func TestLibraryExpandsIncludes(t *testing.T) {
	lib, err := NewLibrary(gputest.New(1, 1), "")
	if err != nil {
		t.Fatal(err)
	}

	src, err := lib.Source("voxel.frag")
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if strings.Contains(src, "#include") {
		t.Error("expected includes to be expanded")
	}
	if !strings.HasPrefix(src, "#version 410 core") {
		t.Error("expected #version to stay on the first line")
	}
	for _, fn := range []string{"vec3 shade(", "float shadowFactor("} {
		if !strings.Contains(src, fn) {
			t.Errorf("expected %q in expanded source", fn)
		}
	}
}

func TestLibraryOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "#version 410 core\n// custom\nvoid main() {}\n"
	if err := os.WriteFile(filepath.Join(dir, "light.frag"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibrary(gputest.New(1, 1), dir)
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	src, err := lib.Source("light.frag")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "// custom") {
		t.Error("expected override to win")
	}

	// Files missing from the override dir fall back to the built-in set.
	if _, err := lib.Source("light.vert"); err != nil {
		t.Errorf("expected built-in fallback: %v", err)
	}
}

func TestLibraryMissingFile(t *testing.T) {
	lib, err := NewLibrary(gputest.New(1, 1), "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = lib.Load("nope.vert", "light.frag")
	if err == nil || !strings.Contains(err.Error(), "nope.vert") {
		t.Errorf("expected error naming the missing file, got %v", err)
	}
}

func TestLibraryIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loop.glsl"), []byte("#include \"loop.glsl\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibrary(gputest.New(1, 1), dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Source("loop.glsl"); err == nil {
		t.Error("expected include depth error")
	}
}

func TestLibraryBadOverrideDir(t *testing.T) {
	if _, err := NewLibrary(gputest.New(1, 1), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing override dir")
	}
}
