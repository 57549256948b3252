package camera

import (
	gomath "math"

	"github.com/Faultbox/archviz/pkg/math"
)

// FreeCamera is a first-person camera. Walk mode enables collisions against
// the ground plane and gravity; fly mode moves unconstrained.
type FreeCamera struct {
	kind Kind

	Pos   math.Vec3
	Yaw   float32 // radians, 0 looks along +Z
	Pitch float32 // radians, positive looks up

	// Focus is the distance of the look-at point reported by Target.
	Focus float32

	Ellipsoid       math.Vec3
	CheckCollisions bool
	ApplyGravity    bool
	Gravity         float32
	GroundY         float32

	Speed           float32
	LookSensitivity float32

	velocityY float32
}

// NewFreeCamera places the camera at spec.Position looking at spec.Target.
func NewFreeCamera(spec Spec) *FreeCamera {
	c := &FreeCamera{
		kind:            spec.Kind,
		Pos:             spec.Position,
		Focus:           1,
		Ellipsoid:       spec.Ellipsoid,
		CheckCollisions: spec.CheckCollisions,
		ApplyGravity:    spec.ApplyGravity,
		Gravity:         spec.Gravity,
		GroundY:         spec.GroundY,
		Speed:           5,
		LookSensitivity: 0.003,
	}

	dir := spec.Target.Sub(spec.Position)
	if !dir.IsZero() {
		c.Pitch, c.Yaw = angles(dir)
		c.Focus = dir.Length()
	} else {
		c.Yaw = float32(gomath.Pi) // look toward -Z
	}
	return c
}

// Kind returns Walk or Fly.
func (c *FreeCamera) Kind() Kind { return c.kind }

// Position returns the eye position.
func (c *FreeCamera) Position() math.Vec3 { return c.Pos }

// Forward returns the unit view direction.
func (c *FreeCamera) Forward() math.Vec3 { return direction(c.Pitch, c.Yaw) }

// Target returns the point Focus units ahead of the camera.
func (c *FreeCamera) Target() math.Vec3 {
	return c.Pos.Add(c.Forward().Scale(c.Focus))
}

// ViewMatrix returns the view matrix for this camera.
func (c *FreeCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Pos, c.Pos.Add(c.Forward()), math.Vec3Up)
}

// HandleDrag turns the camera. Pitch stops just short of straight up/down.
func (c *FreeCamera) HandleDrag(deltaX, deltaY float32) {
	const limit = gomath.Pi/2 - 0.01
	c.Yaw -= deltaX * c.LookSensitivity
	c.Pitch = clamp(c.Pitch-deltaY*c.LookSensitivity, -limit, limit)
}

// HandleZoom dollies along the view direction.
func (c *FreeCamera) HandleZoom(delta float32) {
	c.HandleMovement(delta, 0, 0)
}

// HandleMovement moves relative to the view. Walking keeps to the
// horizontal plane and ignores up.
func (c *FreeCamera) HandleMovement(forward, right, up float32) {
	step := c.Speed * 0.05

	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))
	rightDir := math.Vec3{X: -cos, Z: sin}

	var fwd math.Vec3
	if c.kind == Walk {
		fwd = math.Vec3{X: sin, Z: cos}
		up = 0
	} else {
		fwd = c.Forward()
	}

	move := fwd.Scale(forward).Add(rightDir.Scale(right)).Add(math.Vec3Up.Scale(up))
	c.Pos = c.Pos.Add(move.Scale(step))
	c.collide()
}

// Update applies gravity for dt seconds.
func (c *FreeCamera) Update(dt float32) {
	if !c.ApplyGravity || dt <= 0 {
		return
	}
	c.velocityY += c.Gravity * dt
	c.Pos.Y += c.velocityY * dt
	c.collide()
}

// collide keeps the bottom of the ellipsoid on or above the ground plane.
func (c *FreeCamera) collide() {
	if !c.CheckCollisions {
		return
	}
	floor := c.GroundY + c.Ellipsoid.Y
	if c.Pos.Y < floor {
		c.Pos.Y = floor
		c.velocityY = 0
	}
}
