// Package window creates the SDL window and OpenGL context through the ImGui backend.
package window

import (
	"fmt"
	"runtime"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title  string
	Width  int
	Height int
}

// Window owns the platform window, its GL context and the ImGui frame loop.
type Window struct {
	config  Config
	backend backend.Backend[sdlbackend.SDLWindowFlags]
}

// New opens the window and loads the GL function pointers.
func New(cfg Config) (*Window, error) {
	w := &Window{config: cfg}

	var err error
	w.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	w.backend.SetBgColor(imgui.NewVec4(0, 0, 0, 1))
	w.backend.CreateWindow(cfg.Title, cfg.Width, cfg.Height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))
	return w, nil
}

// Run calls frame once per display frame until Close is requested.
func (w *Window) Run(frame func()) {
	w.backend.Run(frame)
}

// Close asks the loop to stop after the current frame.
func (w *Window) Close() {
	logger.Info("closing window")
	w.backend.SetShouldClose(true)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.backend.SetWindowTitle(title)
}

// Size returns the drawable size in logical points.
func (w *Window) Size() (float32, float32) {
	size := imgui.CurrentIO().DisplaySize()
	return size.X, size.Y
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (int32, int32) {
	io := imgui.CurrentIO()
	size, scale := io.DisplaySize(), io.DisplayFramebufferScale()
	return int32(size.X * scale.X), int32(size.Y * scale.Y)
}
