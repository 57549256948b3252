package camera

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/archviz/pkg/math"
)

// ErrInvalidSpec is returned by New when a Spec cannot produce a camera.
var ErrInvalidSpec = errors.New("camera: invalid spec")

// Model is a navigation camera.
type Model interface {
	Kind() Kind
	Position() math.Vec3
	Forward() math.Vec3
	// Target returns the point the camera looks at.
	Target() math.Vec3
	ViewMatrix() math.Mat4

	HandleDrag(deltaX, deltaY float32)
	HandleZoom(delta float32)
	HandleMovement(forward, right, up float32)
	// Update advances time-dependent state such as gravity.
	Update(dt float32)
}

// Spec describes the camera to construct. Position and Target are the
// viewpoint captured from the outgoing camera.
type Spec struct {
	Kind     Kind
	Position math.Vec3
	Target   math.Vec3

	// Orbit and tabletop. Pitch is elevation above the horizon in radians.
	Pitch     float32
	MinPitch  float32
	MaxPitch  float32
	MinRadius float32
	MaxRadius float32

	// Walk. Ellipsoid holds the collision capsule half extents.
	Ellipsoid       math.Vec3
	CheckCollisions bool
	ApplyGravity    bool
	Gravity         float32
	GroundY         float32
}

// Validate checks that the spec can produce a camera.
func (s Spec) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: kind %d", ErrInvalidSpec, int(s.Kind))
	}
	if !finite(s.Position) || !finite(s.Target) {
		return fmt.Errorf("%w: non-finite viewpoint", ErrInvalidSpec)
	}
	if s.Kind.Orbiting() {
		if s.MinRadius <= 0 || s.MaxRadius < s.MinRadius {
			return fmt.Errorf("%w: radius limits [%v, %v]", ErrInvalidSpec, s.MinRadius, s.MaxRadius)
		}
		if s.MaxPitch < s.MinPitch {
			return fmt.Errorf("%w: pitch limits [%v, %v]", ErrInvalidSpec, s.MinPitch, s.MaxPitch)
		}
	}
	return nil
}

// New constructs the camera model for spec.Kind.
func New(spec Spec) (Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Kind.Orbiting() {
		return NewOrbitCamera(spec), nil
	}
	return NewFreeCamera(spec), nil
}

func finite(v math.Vec3) bool {
	for _, c := range v.Array() {
		f := float64(c)
		if gomath.IsNaN(f) || gomath.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// direction returns the unit vector for the given pitch (elevation) and yaw,
// with yaw 0 pointing along +Z.
func direction(pitch, yaw float32) math.Vec3 {
	cp := float32(gomath.Cos(float64(pitch)))
	return math.Vec3{
		X: cp * float32(gomath.Sin(float64(yaw))),
		Y: float32(gomath.Sin(float64(pitch))),
		Z: cp * float32(gomath.Cos(float64(yaw))),
	}
}

// angles is the inverse of direction for a non-zero vector.
func angles(dir math.Vec3) (pitch, yaw float32) {
	d := dir.Normalize()
	pitch = float32(gomath.Asin(float64(clamp(d.Y, -1, 1))))
	yaw = float32(gomath.Atan2(float64(d.X), float64(d.Z)))
	return pitch, yaw
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
