// Package ui draws the ImGui overlay: the scene image, the debug panel, and
// the input poller that feeds input.State.
package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/scene"
)

// SceneImage draws the scene color texture as a full-window background.
func SceneImage(textureID uint32, w, h float32) {
	if textureID == 0 {
		return
	}

	imgui.SetNextWindowPos(imgui.NewVec2(0, 0))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoScrollWithMouse | imgui.WindowFlagsNoBringToFrontOnFocus |
		imgui.WindowFlagsNoInputs

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	if imgui.BeginV("##Scene", nil, flags) {
		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
		// GL textures are bottom-up.
		imgui.ImageV(*texRef,
			imgui.NewVec2(w, h),
			imgui.NewVec2(0, 1),
			imgui.NewVec2(1, 0))
	}
	imgui.End()
	imgui.PopStyleVar()
}

// Stats is what the debug panel reports each frame.
type Stats struct {
	FPS       float32
	FrameMS   float32
	Counts    scene.Counts
	Triangles int
	Camera    mgl32.Vec3
	Light     mgl32.Vec3
	Mesher    string
	Shadow    string
}

// DebugPanel is the small settings window drawn over the scene.
type DebugPanel struct {
	ClearColor [4]float32
	Skybox     bool

	screenshots int
	requested   bool
	save        bool
	saved       string
}

// NewDebugPanel creates a panel starting from the configured values.
func NewDebugPanel(clearColor [4]float32, skybox bool) *DebugPanel {
	return &DebugPanel{ClearColor: clearColor, Skybox: skybox}
}

// ScreenshotRequested reports and clears a click on the screenshot button.
func (d *DebugPanel) ScreenshotRequested() bool {
	r := d.requested
	d.requested = false
	return r
}

// SaveRequested reports and clears a click on the save button.
func (d *DebugPanel) SaveRequested() bool {
	r := d.save
	d.save = false
	return r
}

// SetSaved shows where settings were last written, or why they were not.
func (d *DebugPanel) SetSaved(status string) {
	d.saved = status
}

// Render draws the panel.
func (d *DebugPanel) Render(s Stats) {
	imgui.SetNextWindowPos(imgui.NewVec2(10, 10))
	imgui.SetNextWindowBgAlpha(0.7)

	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoCollapse

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(8, 8))
	if imgui.BeginV("voxview", nil, flags) {
		imgui.TextColored(fpsColor(s.FPS), fmt.Sprintf("%.3f ms/frame (%.1f FPS)", s.FrameMS, s.FPS))

		imgui.Separator()
		imgui.Text(fmt.Sprintf("Solid: %d  Voxbox: %d", s.Counts.Solid, s.Counts.Voxbox))
		imgui.Text(fmt.Sprintf("Rope: %d  Water: %d", s.Counts.Rope, s.Counts.Water))
		imgui.Text(fmt.Sprintf("Triangles: %d", s.Triangles))
		imgui.Text(fmt.Sprintf("Meshing: %s  Shadows: %s", s.Mesher, s.Shadow))

		imgui.Separator()
		imgui.Text(fmt.Sprintf("Camera: %.1f, %.1f, %.1f", s.Camera[0], s.Camera[1], s.Camera[2]))
		imgui.Text(fmt.Sprintf("Light: %.1f, %.1f, %.1f", s.Light[0], s.Light[1], s.Light[2]))

		imgui.Separator()
		imgui.Text("Clear color")
		imgui.SliderFloatV("R", &d.ClearColor[0], 0, 1, "%.2f", imgui.SliderFlagsNone)
		imgui.SliderFloatV("G", &d.ClearColor[1], 0, 1, "%.2f", imgui.SliderFlagsNone)
		imgui.SliderFloatV("B", &d.ClearColor[2], 0, 1, "%.2f", imgui.SliderFlagsNone)
		imgui.Checkbox("Skybox", &d.Skybox)

		if imgui.Button("Screenshot") {
			d.screenshots++
			d.requested = true
		}
		imgui.SameLine()
		imgui.Text(fmt.Sprintf("taken = %d", d.screenshots))

		if imgui.Button("Save settings") {
			d.save = true
		}
		if d.saved != "" {
			imgui.Text(d.saved)
		}
	}
	imgui.End()
	imgui.PopStyleVar()
}

func fpsColor(fps float32) imgui.Vec4 {
	switch {
	case fps < 30:
		return imgui.NewVec4(1.0, 0.2, 0.2, 1.0)
	case fps < 60:
		return imgui.NewVec4(1.0, 1.0, 0.2, 1.0)
	}
	return imgui.NewVec4(0.2, 1.0, 0.2, 1.0)
}
