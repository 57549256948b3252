// Package picking casts rays from the viewport into the scene.
package picking

import (
	gomath "math"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/pkg/math"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// View describes a perspective camera for ray construction.
type View struct {
	Position math.Vec3
	Forward  math.Vec3
	FovY     float32 // radians
	Width    float32
	Height   float32
}

// PointsToPixels maps window coordinates in points to drawable pixels.
// They differ by the display scale on high-DPI screens.
func PointsToPixels(x, y float32, windowW, windowH, pixelW, pixelH int) (float32, float32) {
	if windowW <= 0 || windowH <= 0 {
		return x, y
	}
	return x * float32(pixelW) / float32(windowW), y * float32(pixelH) / float32(windowH)
}

// ScreenToRay converts pixel coordinates (origin top-left) to a world ray.
func ScreenToRay(v View, screenX, screenY float32) Ray {
	ndcX := 2*screenX/v.Width - 1
	ndcY := 1 - 2*screenY/v.Height

	forward := v.Forward.Normalize()
	right := forward.Cross(math.Vec3Up)
	if right.IsZero() {
		// Looking straight up or down.
		right = math.Vec3{X: 1}
	}
	right = right.Normalize()
	up := right.Cross(forward)

	tanHalf := float32(gomath.Tan(float64(v.FovY) / 2))
	aspect := v.Width / v.Height
	dir := forward.
		Add(right.Scale(ndcX * tanHalf * aspect)).
		Add(up.Scale(ndcY * tanHalf))

	return Ray{Origin: v.Position, Direction: dir.Normalize()}
}

// IntersectPlane returns the distance to p along the ray.
func (r Ray) IntersectPlane(p math.Plane) (t float32, hit bool) {
	denom := p.Normal.Dot(r.Direction)
	if gomath.Abs(float64(denom)) < 1e-6 {
		return 0, false
	}
	t = -p.SignedDistance(r.Origin) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectAABB uses the slab test. A ray starting inside the box reports
// the exit distance.
func (r Ray) IntersectAABB(box math.AABB) (t float32, hit bool) {
	if box.IsEmpty() {
		return 0, false
	}

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Hit is the nearest mesh a ray struck.
type Hit struct {
	Mesh     engine.Mesh
	Point    math.Vec3
	Distance float32
}

// Pick returns the nearest mesh whose world bounds the ray enters.
func Pick(r Ray, meshes []engine.Mesh) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, m := range meshes {
		t, ok := r.IntersectAABB(m.WorldBounds())
		if !ok || (found && t >= best.Distance) {
			continue
		}
		best = Hit{Mesh: m, Point: r.At(t), Distance: t}
		found = true
	}
	return best, found
}
