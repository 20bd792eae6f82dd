// Package app wires the window, scene, light, camera and renderer into the frame loop.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/assets"
	"github.com/Faultbox/voxview/internal/config"
	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/debug"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/input"
	"github.com/Faultbox/voxview/internal/engine/lighting"
	"github.com/Faultbox/voxview/internal/engine/renderer"
	"github.com/Faultbox/voxview/internal/engine/scene"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/ui"
	"github.com/Faultbox/voxview/internal/engine/voxel"
	"github.com/Faultbox/voxview/internal/engine/window"
	"github.com/Faultbox/voxview/internal/logger"
)

// App is the viewer instance.
type App struct {
	cfg *config.Config

	window   *window.Window
	dev      *gpu.GL
	assets   *assets.Manager
	scene    *scene.Scene
	light    *lighting.Light
	camera   *camera.Camera
	renderer *renderer.Renderer
	panel    *ui.DebugPanel
	shots    *debug.ScreenshotCapture

	mesher    voxel.Mesher
	glVersion string
	input     input.State
	fps       FPSCounter
	stats     ui.Stats
	last      time.Time
}

// New opens the window and loads the scene. Any failure aborts startup.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var err error
	a.mesher, err = voxel.NewMesher(cfg.Render.Meshing)
	if err != nil {
		return nil, err
	}

	a.window, err = window.New(window.Config{
		Title:  cfg.Graphics.Title,
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.dev = gpu.NewGL()
	a.dev.Setup()
	version, rendererName := a.dev.Info()
	a.glVersion = version
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName))

	if err := a.load(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) load() error {
	cfg := a.cfg

	root, name := splitScenePath(cfg.ScenePath)
	a.assets = assets.NewManager()
	if err := a.assets.AddDir(root); err != nil {
		return err
	}
	var err error
	a.scene, err = scene.Load(a.dev, a.assets, name, scene.Options{Mesher: a.mesher})
	if err != nil {
		return err
	}

	lightPos, lightColor := mgl32.Vec3(cfg.Light.Position), mgl32.Vec3(cfg.Light.Color)
	if o := a.scene.Light; o != nil {
		lightPos, lightColor = o.Position, o.Color
	}
	a.light = lighting.New(a.dev, lightPos, lightColor)
	a.light.Speed = cfg.Light.Speed

	width, height := int32(cfg.Graphics.Width), int32(cfg.Graphics.Height)
	camPos := mgl32.Vec3(cfg.Camera.Position)
	if a.scene.Spawn != nil {
		camPos = *a.scene.Spawn
	}
	a.camera = camera.New(camPos, cfg.Render.FOV, cfg.Render.Near, cfg.Render.Far, width, height)
	a.camera.Speed = cfg.Camera.Speed
	a.camera.Sensitivity = cfg.Camera.Sensitivity

	lib, err := shader.NewLibrary(a.dev, cfg.Render.ShaderDir)
	if err != nil {
		return err
	}
	a.renderer, err = renderer.New(a.dev, lib, renderer.Config{
		Width:            width,
		Height:           height,
		Mesher:           a.mesher,
		ClearColor:       cfg.Render.ClearColor,
		Skybox:           cfg.Render.Skybox,
		ShadowTechnique:  cfg.Render.ShadowTechnique,
		ShadowResolution: cfg.Render.ShadowResolution,
		VolumeCell:       cfg.Render.VolumeCell,
	}, a.scene, a.light)
	if err != nil {
		return err
	}

	a.panel = ui.NewDebugPanel(cfg.Render.ClearColor, cfg.Render.Skybox)
	a.shots = debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "voxview")
	a.stats = ui.Stats{
		Counts:    a.scene.Counts(),
		Triangles: a.scene.Triangles(),
		Mesher:    a.mesher.Name(),
		Shadow:    cfg.Render.ShadowTechnique,
	}
	return nil
}

// splitScenePath picks the directory to serve assets from and the scene's
// path inside it. Relative paths below the working directory keep the working
// directory as root so scene files can reference siblings of their folder.
func splitScenePath(p string) (root, name string) {
	clean := filepath.Clean(p)
	if !filepath.IsAbs(clean) && clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return ".", filepath.ToSlash(clean)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		abs = clean
	}
	return filepath.Dir(abs), filepath.Base(abs)
}

// Run enters the frame loop and returns when the window closes.
func (a *App) Run() {
	logger.Info("starting frame loop", zap.String("scene", a.cfg.ScenePath))
	a.last = time.Now()
	a.window.Run(a.frame)
}

func (a *App) frame() {
	now := time.Now()
	dt := now.Sub(a.last)
	a.last = now

	a.input.DeltaTime = float32(dt.Seconds())
	ui.PollInput(&a.input)
	a.handleKeys()

	if w, h := a.window.FramebufferSize(); w > 0 && h > 0 {
		a.renderer.Resize(a.camera, w, h)
	}
	a.camera.HandleInput(&a.input)
	a.light.HandleInput(&a.input)
	a.camera.Update()
	a.scene.Update(a.input.DeltaTime)

	a.renderer.ClearColor = a.panel.ClearColor
	a.renderer.Skybox = a.panel.Skybox
	a.renderer.Frame(a.camera)

	if a.panel.ScreenshotRequested() {
		a.screenshot()
	}
	if a.panel.SaveRequested() {
		a.saveSettings()
	}

	w, h := a.window.Size()
	ui.SceneImage(a.renderer.Target().ColorTexture(), w, h)
	a.stats.Camera = a.camera.Position
	a.stats.Light = a.light.Position
	a.panel.Render(a.stats)

	if fps, ms, ok := a.fps.Tick(dt); ok {
		a.stats.FPS, a.stats.FrameMS = float32(fps), float32(ms)
		a.window.SetTitle(Title(a.glVersion, fps, ms))
	}
}

func (a *App) handleKeys() {
	in := &a.input
	if in.IsPressed(input.KeyEscape) {
		a.window.Close()
	}
	if in.IsPressed(input.KeyP) {
		p := a.camera.Position
		logger.Info("camera position", zap.Float32("x", p[0]), zap.Float32("y", p[1]), zap.Float32("z", p[2]))
		fmt.Fprintf(os.Stdout, "Camera position: (%g, %g, %g)\n", p[0], p[1], p[2])
	}
	if in.IsPressed(input.KeyF2) {
		a.screenshot()
	}
}

func (a *App) screenshot() {
	target := a.renderer.Target()
	w, h := target.Size()
	path, err := a.shots.CaptureFromPixels(target.ReadPixels(), int(w), int(h))
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// saveSettings writes the panel's clear color and skybox toggle to the config file.
func (a *App) saveSettings() {
	path, err := a.cfg.SaveDisplay(a.panel.ClearColor, a.panel.Skybox)
	if err != nil {
		logger.Error("saving settings failed", zap.String("path", path), zap.Error(err))
		a.panel.SetSaved("save failed: " + err.Error())
		return
	}
	logger.Info("settings saved", zap.String("path", path))
	a.panel.SetSaved("saved to " + path)
}

// Close releases GPU resources in reverse creation order.
func (a *App) Close() {
	logger.Info("closing viewer")
	if a.renderer != nil {
		a.renderer.Destroy()
	}
	if a.light != nil {
		a.light.Destroy()
	}
	if a.scene != nil {
		a.scene.Destroy()
	}
	if a.assets != nil {
		a.assets.Close()
	}
}
