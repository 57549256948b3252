package math

// Plane is the set of points p where Normal·p + D = 0.
// Normal is kept unit length by PlaneFromPointNormal.
type Plane struct {
	Normal Vec3
	D      float32
}

// PlaneFromPointNormal builds the plane through point with the given normal.
// ok is false when normal has zero length.
func PlaneFromPointNormal(point, normal Vec3) (p Plane, ok bool) {
	n := normal.Normalize()
	if n.IsZero() {
		return Plane{}, false
	}
	return Plane{Normal: n, D: -n.Dot(point)}, true
}

// SignedDistance returns the distance of pt from the plane, positive on the
// side the normal points to.
func (p Plane) SignedDistance(pt Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Equation returns the plane as (a, b, c, d) for shader uniforms.
func (p Plane) Equation() [4]float32 {
	return [4]float32{p.Normal.X, p.Normal.Y, p.Normal.Z, p.D}
}
