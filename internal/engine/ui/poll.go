package ui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/voxview/internal/engine/input"
)

var keyMap = [input.KeyCount]imgui.Key{
	input.KeyW:      imgui.KeyW,
	input.KeyA:      imgui.KeyA,
	input.KeyS:      imgui.KeyS,
	input.KeyD:      imgui.KeyD,
	input.KeySpace:  imgui.KeySpace,
	input.KeyShift:  imgui.KeyLeftShift,
	input.KeyI:      imgui.KeyI,
	input.KeyJ:      imgui.KeyJ,
	input.KeyK:      imgui.KeyK,
	input.KeyL:      imgui.KeyL,
	input.KeyU:      imgui.KeyU,
	input.KeyO:      imgui.KeyO,
	input.KeyP:      imgui.KeyP,
	input.KeyEscape: imgui.KeyEscape,
	input.KeyF2:     imgui.KeyF2,
}

// PollInput writes this frame's raw keyboard and mouse state into s and
// derives the edges. DeltaTime is left to the caller.
func PollInput(s *input.State) {
	io := imgui.CurrentIO()

	for k, key := range keyMap {
		s.Down[k] = imgui.IsKeyDown(key)
	}
	pos := imgui.MousePos()
	s.MouseX = pos.X
	s.MouseY = pos.Y
	s.MouseRight = imgui.IsMouseDown(imgui.MouseButtonRight)
	s.UICapture = io.WantCaptureMouse() || io.WantCaptureKeyboard()

	s.Update()
}
