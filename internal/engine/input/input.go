// Package input holds the per-frame input snapshot handed to the camera and light.
package input

// Key identifies a key the viewer reacts to.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyShift
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyU
	KeyO
	KeyP
	KeyEscape
	KeyF2
	KeyCount
)

var keyNames = [KeyCount]string{
	"W", "A", "S", "D", "Space", "Shift",
	"I", "J", "K", "L", "U", "O",
	"P", "Escape", "F2",
}

func (k Key) String() string {
	if k < 0 || k >= KeyCount {
		return "Unknown"
	}
	return keyNames[k]
}

// State holds the input state for one frame.
// Raw values are written by the platform poller, then Update derives edges.
type State struct {
	// Keys held this frame.
	Down [KeyCount]bool
	// Keys that went down this frame.
	Pressed [KeyCount]bool

	// Mouse state
	MouseX      float32
	MouseY      float32
	MouseDeltaX float32
	MouseDeltaY float32
	MouseRight  bool

	// UICapture is set when the overlay owns the mouse or keyboard.
	UICapture bool

	// DeltaTime is the frame time in seconds.
	DeltaTime float32

	// Previous frame state for edge detection
	prevDown       [KeyCount]bool
	prevMouseX     float32
	prevMouseY     float32
	prevMouseRight bool
}

// Update prepares the state for a new frame.
// Call this after writing Down, MouseX/Y and MouseRight.
func (s *State) Update() {
	for k := Key(0); k < KeyCount; k++ {
		s.Pressed[k] = s.Down[k] && !s.prevDown[k]
	}

	// Deltas only count while the drag is held across two frames so the
	// first click does not jump the camera.
	if s.MouseRight && s.prevMouseRight {
		s.MouseDeltaX = s.MouseX - s.prevMouseX
		s.MouseDeltaY = s.MouseY - s.prevMouseY
	} else {
		s.MouseDeltaX = 0
		s.MouseDeltaY = 0
	}

	s.prevDown = s.Down
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.prevMouseRight = s.MouseRight
}

// IsDown reports whether k is held.
func (s *State) IsDown(k Key) bool {
	return s.Down[k]
}

// IsPressed reports whether k went down this frame.
func (s *State) IsPressed(k Key) bool {
	return s.Pressed[k]
}

// Axis returns +1, -1 or 0 from a pair of opposing keys.
func (s *State) Axis(positive, negative Key) float32 {
	var v float32
	if s.Down[positive] {
		v++
	}
	if s.Down[negative] {
		v--
	}
	return v
}
