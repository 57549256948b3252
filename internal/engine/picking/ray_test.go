package picking

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/headless"
	"github.com/Faultbox/archviz/pkg/math"
)

func TestScreenToRayCenter(t *testing.T) {
	v := View{
		Position: math.Vec3{Z: 10},
		Forward:  math.Vec3{Z: -1},
		FovY:     gomath.Pi / 4,
		Width:    800,
		Height:   600,
	}

	r := ScreenToRay(v, 400, 300)
	assert.True(t, r.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-6), "dir %v", r.Direction)

	corner := ScreenToRay(v, 0, 0)
	assert.Less(t, corner.Direction.X, float32(0), "left of center")
	assert.Greater(t, corner.Direction.Y, float32(0), "above center")
	assert.InDelta(t, 1, corner.Direction.Length(), 1e-6)
}

func TestPointsToPixels(t *testing.T) {
	x, y := PointsToPixels(300, 200, 800, 600, 1600, 1200)
	assert.Equal(t, float32(600), x)
	assert.Equal(t, float32(400), y)

	x, y = PointsToPixels(300, 200, 0, 0, 1600, 1200)
	assert.Equal(t, float32(300), x)
	assert.Equal(t, float32(200), y)
}

func TestScreenToRayHighDPICursor(t *testing.T) {
	v := View{Position: math.Vec3{Z: 10}, Forward: math.Vec3{Z: -1}, FovY: 1, Width: 1600, Height: 1200}

	// The window center in points is the drawable center in pixels.
	x, y := PointsToPixels(400, 300, 800, 600, 1600, 1200)
	r := ScreenToRay(v, x, y)
	assert.True(t, r.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-6), "dir %v", r.Direction)
}

func TestScreenToRayLookingDown(t *testing.T) {
	v := View{Position: math.Vec3{Y: 10}, Forward: math.Vec3{Y: -1}, FovY: 1, Width: 100, Height: 100}
	r := ScreenToRay(v, 50, 50)
	assert.True(t, r.Direction.ApproxEqual(math.Vec3{Y: -1}, 1e-6), "dir %v", r.Direction)
}

func TestIntersectAABB(t *testing.T) {
	box := math.NewAABB(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})

	tests := []struct {
		name string
		ray  Ray
		hit  bool
		t    float32
	}{
		{"front", Ray{math.Vec3{Z: 5}, math.Vec3{Z: -1}}, true, 4},
		{"inside", Ray{math.Vec3{}, math.Vec3{X: 1}}, true, 1},
		{"behind", Ray{math.Vec3{Z: 5}, math.Vec3{Z: 1}}, false, 0},
		{"miss parallel", Ray{math.Vec3{X: 3, Z: 5}, math.Vec3{Z: -1}}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectAABB(box)
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.InDelta(t, tt.t, got, 1e-6)
			}
		})
	}

	_, ok := Ray{math.Vec3{}, math.Vec3{X: 1}}.IntersectAABB(math.EmptyAABB())
	assert.False(t, ok)
}

func TestIntersectPlane(t *testing.T) {
	p, ok := math.PlaneFromPointNormal(math.Vec3{}, math.Vec3Up)
	require.True(t, ok)

	got, hit := Ray{math.Vec3{Y: 3}, math.Vec3{Y: -1}}.IntersectPlane(p)
	require.True(t, hit)
	assert.InDelta(t, 3, got, 1e-6)

	_, hit = Ray{math.Vec3{Y: 3}, math.Vec3{X: 1}}.IntersectPlane(p)
	assert.False(t, hit)
	_, hit = Ray{math.Vec3{Y: 3}, math.Vec3{Y: 1}}.IntersectPlane(p)
	assert.False(t, hit)
}

func TestPickNearest(t *testing.T) {
	e := headless.New()
	unit := math.NewAABB(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
	far := e.AddMesh("far", unit)
	near := e.AddMesh("near", unit)
	far.Translate(math.Vec3{Z: -10})

	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	hit, ok := Pick(r, []engine.Mesh{far, near})
	require.True(t, ok)
	assert.Equal(t, "near", hit.Mesh.Name())
	assert.True(t, hit.Point.ApproxEqual(math.Vec3{Z: 1}, 1e-5), "point %v", hit.Point)

	_, ok = Pick(Ray{Origin: math.Vec3{Y: 10}, Direction: math.Vec3{Y: 1}}, []engine.Mesh{far, near})
	assert.False(t, ok)
}
