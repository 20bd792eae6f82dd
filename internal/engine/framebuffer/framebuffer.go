// Package framebuffer provides the offscreen color target the scene renders into.
package framebuffer

import (
	"fmt"

	"github.com/Faultbox/voxview/internal/engine/gpu"
)

// Framebuffer is a color texture with a depth renderbuffer.
type Framebuffer struct {
	dev    gpu.Device
	target gpu.Target
	width  int32
	height int32
}

// New creates a framebuffer. Sizes below 1 are clamped to 1.
func New(dev gpu.Device, width, height int32) (*Framebuffer, error) {
	width, height = max(width, 1), max(height, 1)
	t, err := dev.CreateColorTarget(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	return &Framebuffer{dev: dev, target: t, width: width, height: height}, nil
}

// BindWithViewport binds the framebuffer and sets a full-size viewport.
// The returned func restores the previous binding and viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	prevFBO := fb.dev.Framebuffer()
	prevViewport := fb.dev.Viewport()

	fb.dev.BindFramebuffer(fb.target.FBO)
	fb.dev.SetViewport(gpu.Viewport{Width: fb.width, Height: fb.height})

	return func() {
		fb.dev.BindFramebuffer(prevFBO)
		fb.dev.SetViewport(prevViewport)
	}
}

// Clear clears color and depth with c. The caller's clear color is kept.
func (fb *Framebuffer) Clear(c [4]float32) {
	prev := fb.dev.ClearColor()
	fb.dev.SetClearColor(c)
	fb.dev.Clear(true, true)
	fb.dev.SetClearColor(prev)
}

// ColorTexture returns the color attachment.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.target.Color
}

// FBO returns the framebuffer name.
func (fb *Framebuffer) FBO() uint32 {
	return fb.target.FBO
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates the attachments when the size changes.
func (fb *Framebuffer) Resize(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return
	}
	fb.width, fb.height = width, height
	fb.dev.ResizeColorTarget(fb.target, width, height)
}

// ReadPixels returns the color attachment as bottom-up RGBA rows.
func (fb *Framebuffer) ReadPixels() []byte {
	return fb.dev.ReadPixels(fb.target, fb.width, fb.height)
}

// Destroy releases the framebuffer and its attachments.
func (fb *Framebuffer) Destroy() {
	if fb.target.FBO == 0 {
		return
	}
	fb.dev.DeleteTarget(fb.target)
	fb.target = gpu.Target{}
}
