package camera

import (
	gomath "math"

	"github.com/Faultbox/archviz/pkg/math"
)

// OrbitCamera orbits around a center point. Orbit and tabletop modes differ
// only in their pitch limits.
type OrbitCamera struct {
	kind Kind

	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the horizon (radians)
	Yaw      float32 // Horizontal angle (radians), 0 looks from +Z

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera frames spec.Target from the side spec.Position was on. The
// radius is the captured distance clamped to the radius limits and the pitch
// is the spec's fixed default, so only the yaw carries over.
func NewOrbitCamera(spec Spec) *OrbitCamera {
	c := &OrbitCamera{
		kind:            spec.Kind,
		Center:          spec.Target,
		MinDistance:     spec.MinRadius,
		MaxDistance:     spec.MaxRadius,
		MinPitch:        spec.MinPitch,
		MaxPitch:        spec.MaxPitch,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}

	offset := spec.Position.Sub(spec.Target)
	c.Distance = clamp(offset.Length(), c.MinDistance, c.MaxDistance)
	if offset.X != 0 || offset.Z != 0 {
		c.Yaw = float32(gomath.Atan2(float64(offset.X), float64(offset.Z)))
	}
	c.Pitch = clamp(spec.Pitch, c.MinPitch, c.MaxPitch)
	return c
}

// Kind returns Orbit or Tabletop.
func (c *OrbitCamera) Kind() Kind { return c.kind }

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Center.Add(direction(c.Pitch, c.Yaw).Scale(c.Distance))
}

// Forward returns the unit view direction.
func (c *OrbitCamera) Forward() math.Vec3 {
	return direction(c.Pitch, c.Yaw).Negate()
}

// Target returns the orbit center.
func (c *OrbitCamera) Target() math.Vec3 { return c.Center }

// ViewMatrix returns the view matrix for this camera. Looking straight down
// uses the yaw direction as up.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3Up
	if gomath.Cos(float64(c.Pitch)) < 1e-4 {
		up = direction(0, c.Yaw).Negate()
	}
	return math.LookAt(c.Position(), c.Center, up)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point. Speed scales with distance.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01

	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))

	// Negate forward so a positive value moves into the scene.
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
	c.Center.Y += up * speed
}

// Update is a no-op; orbit cameras have no time-dependent state.
func (c *OrbitCamera) Update(float32) {}

// FitToBounds centers the orbit on box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(box math.AABB) {
	if box.IsEmpty() {
		return
	}
	c.Center = box.Center()
	c.Distance = clamp(box.MaxExtent()*1.5, c.MinDistance, c.MaxDistance)
}
