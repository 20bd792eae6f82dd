// Package camera provides the free-fly perspective camera.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxview/internal/engine/input"
	"github.com/Faultbox/voxview/internal/engine/shader"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera is a yaw/pitch fly camera.
// The projection is rebuilt only when fov, depth range or viewport change;
// the view is rebuilt by Update every frame.
type Camera struct {
	Position mgl32.Vec3

	// Orientation in degrees. Yaw -90 looks down -Z.
	Yaw   float32
	Pitch float32

	// Movement
	Speed       float32 // world units per second
	Sensitivity float32 // degrees per pixel of mouse drag

	// Constraints
	MinPitch float32
	MaxPitch float32

	fov, near, far float32
	width, height  int32

	front      mgl32.Vec3
	up         mgl32.Vec3
	view       mgl32.Mat4
	projection mgl32.Mat4
}

// New creates a camera at pos with a perspective projection.
func New(pos mgl32.Vec3, fov, near, far float32, width, height int32) *Camera {
	c := &Camera{
		Position:    pos,
		Yaw:         -90,
		Pitch:       0,
		Speed:       10,
		Sensitivity: 0.15,
		MinPitch:    -89,
		MaxPitch:    89,
		fov:         fov,
		near:        near,
		far:         far,
		width:       width,
		height:      height,
	}
	c.updateProjection()
	c.Update()
	return c
}

// SetPerspective changes the projection parameters.
func (c *Camera) SetPerspective(fov, near, far float32) {
	if fov == c.fov && near == c.near && far == c.far {
		return
	}
	c.fov, c.near, c.far = fov, near, far
	c.updateProjection()
}

// SetViewport changes the target size and with it the aspect ratio.
func (c *Camera) SetViewport(width, height int32) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.updateProjection()
}

// Viewport returns the target size the projection was built for.
func (c *Camera) Viewport() (width, height int32) {
	return c.width, c.height
}

// Aspect returns width/height.
func (c *Camera) Aspect() float32 {
	if c.height == 0 {
		return 1
	}
	return float32(c.width) / float32(c.height)
}

func (c *Camera) updateProjection() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), c.Aspect(), c.near, c.far)
}

// Update rebuilds the orientation vectors and view matrix.
func (c *Camera) Update() {
	c.Pitch = mgl32.Clamp(c.Pitch, c.MinPitch, c.MaxPitch)

	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	c.front = mgl32.Vec3{
		cos(yaw) * cos(pitch),
		sin(pitch),
		sin(yaw) * cos(pitch),
	}.Normalize()

	right := c.front.Cross(worldUp).Normalize()
	c.up = right.Cross(c.front).Normalize()
	c.view = mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}

// HandleInput moves and turns the camera from one frame of input.
// W/S move along the view direction, A/D strafe, Space/Shift move vertically,
// right-mouse drag turns.
func (c *Camera) HandleInput(in *input.State) {
	if in.UICapture {
		return
	}

	step := c.Speed * in.DeltaTime
	right := c.front.Cross(worldUp).Normalize()

	move := c.front.Mul(in.Axis(input.KeyW, input.KeyS)).
		Add(right.Mul(in.Axis(input.KeyD, input.KeyA))).
		Add(worldUp.Mul(in.Axis(input.KeySpace, input.KeyShift)))
	if move.Len() > 0 {
		c.Position = c.Position.Add(move.Normalize().Mul(step))
	}

	if in.MouseRight {
		c.Yaw += in.MouseDeltaX * c.Sensitivity
		c.Pitch -= in.MouseDeltaY * c.Sensitivity
	}
	c.Update()
}

// Front returns the normalized view direction.
func (c *Camera) Front() mgl32.Vec3 {
	return c.front
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return c.view
}

// Rotation returns the view matrix with translation removed.
func (c *Camera) Rotation() mgl32.Mat4 {
	return c.view.Mat3().Mat4()
}

// Projection returns the projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return c.projection
}

// Near returns the near plane distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far plane distance.
func (c *Camera) Far() float32 { return c.far }

// Push uploads view, projection and eye position. p must be in use.
func (c *Camera) Push(p *shader.Program) {
	p.SetMat4("view", c.view)
	p.SetMat4("projection", c.projection)
	p.SetVec3("viewPos", c.Position)
}
