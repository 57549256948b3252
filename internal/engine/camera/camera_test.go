package camera

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/pkg/math"
)

const eps = 1e-4

func orbitSpec(pos, target math.Vec3) Spec {
	return Spec{
		Kind:      Orbit,
		Position:  pos,
		Target:    target,
		Pitch:     gomath.Pi / 4,
		MinPitch:  -gomath.Pi / 2,
		MaxPitch:  gomath.Pi / 2,
		MinRadius: 1,
		MaxRadius: 100,
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	k, ok := ParseKind(" Tabletop ")
	assert.True(t, ok)
	assert.Equal(t, Tabletop, k)

	_, ok = ParseKind("hover")
	assert.False(t, ok)
}

func TestKindText(t *testing.T) {
	text, err := Walk.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "walk", string(text))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("fly")))
	assert.Equal(t, Fly, k)

	assert.Error(t, k.UnmarshalText([]byte("swim")))
	_, err = Kind(42).MarshalText()
	assert.Error(t, err)
}

func TestNewValidatesSpec(t *testing.T) {
	_, err := New(Spec{Kind: Kind(9)})
	assert.ErrorIs(t, err, ErrInvalidSpec)

	spec := orbitSpec(math.Vec3{Z: 10}, math.Vec3{})
	spec.MinRadius = 0
	_, err = New(spec)
	assert.ErrorIs(t, err, ErrInvalidSpec)

	nan := float32(gomath.NaN())
	_, err = New(Spec{Kind: Fly, Position: math.Vec3{X: nan}})
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestNewPicksModel(t *testing.T) {
	m, err := New(orbitSpec(math.Vec3{Z: 10}, math.Vec3{}))
	require.NoError(t, err)
	assert.IsType(t, &OrbitCamera{}, m)

	m, err = New(Spec{Kind: Walk, Position: math.Vec3{Z: 10}})
	require.NoError(t, err)
	assert.IsType(t, &FreeCamera{}, m)
	assert.Equal(t, Walk, m.Kind())
}

func TestOrbitFromCapturedViewpoint(t *testing.T) {
	target := math.Vec3{X: 1, Y: 0, Z: 1}
	pos := math.Vec3{X: 1 + 3, Y: 5, Z: 1 + 4}

	c := NewOrbitCamera(orbitSpec(pos, target))

	assert.Equal(t, target, c.Target())
	assert.InDelta(t, pos.Distance(target), c.Distance, eps)
	assert.InDelta(t, gomath.Pi/4, c.Pitch, eps)
	// Yaw keeps the horizontal side the viewer was on.
	assert.InDelta(t, gomath.Atan2(3, 4), c.Yaw, eps)

	assert.InDelta(t, c.Distance, c.Position().Distance(target), eps)
	assert.True(t, c.Forward().ApproxEqual(target.Sub(c.Position()).Normalize(), eps))
}

func TestOrbitRadiusClamped(t *testing.T) {
	c := NewOrbitCamera(orbitSpec(math.Vec3{Z: 0.2}, math.Vec3{}))
	assert.Equal(t, float32(1), c.Distance)

	c = NewOrbitCamera(orbitSpec(math.Vec3{Z: 500}, math.Vec3{}))
	assert.Equal(t, float32(100), c.Distance)
}

func TestOrbitTabletopPitchLimits(t *testing.T) {
	spec := orbitSpec(math.Vec3{Z: 10}, math.Vec3{})
	spec.Kind = Tabletop
	spec.Pitch = gomath.Pi / 3
	spec.MinPitch = 0
	spec.MaxPitch = gomath.Pi / 2

	c := NewOrbitCamera(spec)
	assert.Equal(t, Tabletop, c.Kind())

	c.HandleDrag(0, -100000)
	assert.Equal(t, float32(0), c.Pitch, "never below the table plane")
	assert.GreaterOrEqual(t, c.Position().Y, float32(0))

	c.HandleDrag(0, 100000)
	assert.InDelta(t, gomath.Pi/2, c.Pitch, eps)
}

func TestOrbitZoomAndFit(t *testing.T) {
	c := NewOrbitCamera(orbitSpec(math.Vec3{Z: 10}, math.Vec3{}))

	c.HandleZoom(1)
	assert.InDelta(t, 9, c.Distance, eps)

	c.FitToBounds(math.NewAABB(math.Vec3{X: -2, Y: -2, Z: -2}, math.Vec3{X: 4, Y: 2, Z: 2}))
	assert.Equal(t, math.Vec3{X: 1}, c.Center)
	assert.InDelta(t, 9, c.Distance, eps)
}

func TestFreeCameraLooksAtTarget(t *testing.T) {
	pos := math.Vec3{X: 0, Y: 7, Z: 7}
	target := math.Vec3{}

	c := NewFreeCamera(Spec{Kind: Walk, Position: pos, Target: target})

	assert.Equal(t, pos, c.Position())
	want := target.Sub(pos).Normalize()
	assert.True(t, c.Forward().ApproxEqual(want, eps), "forward %v want %v", c.Forward(), want)
	assert.True(t, c.Target().ApproxEqual(target, 1e-3))
}

func TestFreeCameraWalkGravity(t *testing.T) {
	c := NewFreeCamera(Spec{
		Kind:            Walk,
		Position:        math.Vec3{Y: 5},
		Target:          math.Vec3{Y: 5, Z: -1},
		Ellipsoid:       math.Vec3{X: 0.5, Y: 1, Z: 0.5},
		CheckCollisions: true,
		ApplyGravity:    true,
		Gravity:         -9.81,
	})

	for i := 0; i < 120; i++ {
		c.Update(1.0 / 60)
	}
	assert.InDelta(t, 1, c.Pos.Y, eps, "rests on the ellipsoid")

	c.HandleMovement(1, 0, 1)
	assert.InDelta(t, 1, c.Pos.Y, eps, "walking ignores vertical input")
	assert.Less(t, c.Pos.Z, float32(0))
}

func TestFreeCameraFlyIgnoresGravity(t *testing.T) {
	c := NewFreeCamera(Spec{Kind: Fly, Position: math.Vec3{Y: 5}, Target: math.Vec3{Y: 5, Z: 1}, Gravity: -9.81})
	c.Update(1)
	assert.Equal(t, float32(5), c.Pos.Y)

	c.HandleMovement(0, 0, 1)
	assert.Greater(t, c.Pos.Y, float32(5))
}
