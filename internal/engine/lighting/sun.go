// Package lighting provides lighting utilities for the viewport shaders.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/archviz/pkg/math"
)

// Sun is a directional light given by compass azimuth and elevation above
// the horizon, both in degrees.
type Sun struct {
	Azimuth   float32
	Elevation float32
	Intensity float32
}

// DefaultSun lights the scene from high in the south-west.
func DefaultSun() Sun {
	return Sun{Azimuth: 225, Elevation: 50, Intensity: 0.85}
}

// Direction returns the normalized vector pointing towards the sun.
func (s Sun) Direction() math.Vec3 {
	az := float64(s.Azimuth) * gomath.Pi / 180
	el := float64(s.Elevation) * gomath.Pi / 180
	return math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Sin(el)),
		Z: float32(gomath.Cos(el) * gomath.Cos(az)),
	}
}
