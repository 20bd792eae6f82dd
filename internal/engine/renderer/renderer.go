// Package renderer runs the per-frame pass sequence: shadow depth pass, then
// the color passes into the scene target.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/framebuffer"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/lighting"
	"github.com/Faultbox/voxview/internal/engine/scene"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/shadow"
	"github.com/Faultbox/voxview/internal/engine/skybox"
	"github.com/Faultbox/voxview/internal/engine/voxel"
	"github.com/Faultbox/voxview/internal/logger"
)

// Shadow technique names.
const (
	TechniqueMap    = "map"
	TechniqueVolume = "volume"
)

// Config holds renderer configuration.
type Config struct {
	Width  int32
	Height int32

	Mesher     voxel.Mesher
	ClearColor [4]float32
	Skybox     bool

	ShadowTechnique  string
	ShadowResolution int32
	VolumeCell       float32
}

// Renderer draws one scene with one light into an offscreen color target.
type Renderer struct {
	// ClearColor and Skybox may be changed between frames.
	ClearColor [4]float32
	Skybox     bool

	dev      gpu.Device
	programs *Programs
	scene    *scene.Scene
	light    *lighting.Light
	shadow   shadow.Technique
	target   *framebuffer.Framebuffer
	sky      *skybox.Skybox
}

// New compiles the pass programs and creates the shadow technique and color target.
// The scene and light stay owned by the caller.
func New(dev gpu.Device, lib *shader.Library, cfg Config, sc *scene.Scene, light *lighting.Light) (*Renderer, error) {
	mesher := cfg.Mesher
	if mesher == nil {
		mesher = voxel.Greedy{}
	}
	programs, err := LoadPrograms(lib, mesher)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		ClearColor: cfg.ClearColor,
		Skybox:     cfg.Skybox,
		dev:        dev,
		programs:   programs,
		scene:      sc,
		light:      light,
		sky:        skybox.New(dev),
	}

	r.shadow, err = newTechnique(dev, cfg, sc)
	if err != nil {
		r.Destroy()
		return nil, err
	}
	r.target, err = framebuffer.New(dev, cfg.Width, cfg.Height)
	if err != nil {
		r.Destroy()
		return nil, err
	}

	logger.Info("renderer ready",
		zap.String("mesher", mesher.Name()),
		zap.String("shadow", cfg.ShadowTechnique),
		zap.Int32("width", cfg.Width),
		zap.Int32("height", cfg.Height))
	return r, nil
}

func newTechnique(dev gpu.Device, cfg Config, sc *scene.Scene) (shadow.Technique, error) {
	if cfg.ShadowTechnique == TechniqueVolume {
		v, err := shadow.NewVolume(dev, sc.Bounds(), cfg.VolumeCell)
		if err == nil {
			voxels := 0
			for _, s := range sc.Shapes() {
				voxels += v.AddShape(s.Grid, s.Model)
			}
			logger.Debug("shadow volume filled", zap.Int("voxels", voxels), zap.Ints("dims", v.Dims[:]))
			return v, nil
		}
		logger.Warn("shadow volume unavailable, using shadow map", zap.Error(err))
	}
	m, err := shadow.NewMap(dev, cfg.ShadowResolution)
	if err != nil {
		return nil, fmt.Errorf("creating shadow map: %w", err)
	}
	return m, nil
}

// Target returns the color target the frame is drawn into.
func (r *Renderer) Target() *framebuffer.Framebuffer {
	return r.target
}

// Resize resizes the color target and the camera viewport.
func (r *Renderer) Resize(cam *camera.Camera, width, height int32) {
	r.target.Resize(width, height)
	cam.SetViewport(r.target.Size())
}

// Frame renders the scene as seen from cam. The camera must already be updated.
func (r *Renderer) Frame(cam *camera.Camera) {
	p := r.programs
	// The overlay pass may leave its own pipeline state behind.
	gpu.InitState(r.dev)

	// The light-space matrix is computed once so both passes read the same value.
	r.light.Update(r.scene.Bounds())
	lightSpace := r.light.LightSpace()
	for _, prog := range []*shader.Program{p.Voxel, p.Voxbox, p.Rope, p.Water} {
		prog.Use()
		r.light.PushLight(prog)
	}

	restore := r.target.BindWithViewport()
	defer restore()

	r.shadow.Render(cam, func() {
		p.Depth.Use()
		r.light.PushProjection(p.Depth)
		r.scene.DrawDepth(p.Depth)
	})

	r.target.Clear(premultiply(r.ClearColor))

	for _, prog := range []*shader.Program{p.Voxel, p.Voxbox} {
		prog.Use()
		r.shadow.Push(prog, lightSpace)
	}

	r.scene.Draw(p.Voxel, cam)
	r.scene.DrawVoxbox(p.Voxbox, cam)
	r.scene.DrawRope(p.Rope, cam)
	r.scene.DrawWater(p.Water, cam)
	r.light.Draw(p.Light, cam)
	if r.Skybox {
		r.sky.Draw(p.Skybox, cam)
	}
}

func premultiply(c [4]float32) [4]float32 {
	return [4]float32{c[0] * c[3], c[1] * c[3], c[2] * c[3], c[3]}
}

// Destroy releases everything the renderer created.
func (r *Renderer) Destroy() {
	logger.Info("closing renderer")
	if r.target != nil {
		r.target.Destroy()
	}
	if r.shadow != nil {
		r.shadow.Destroy()
	}
	r.sky.Destroy()
	r.programs.Destroy()
}
