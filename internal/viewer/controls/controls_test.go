package controls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/internal/assets"
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/engine/headless"
	"github.com/Faultbox/archviz/internal/workspace"
	"github.com/Faultbox/archviz/pkg/math"
)

type boxLoader struct{}

func (boxLoader) Load(context.Context, assets.Source) ([]engine.Geometry, error) {
	return []engine.Geometry{{
		Name:      "box",
		Positions: []math.Vec3{{X: 2, Y: 2, Z: 2}, {X: 6, Y: 4, Z: 4}},
	}}, nil
}

func setup(t *testing.T) (*Dispatcher, *workspace.Workspace, *headless.Engine) {
	t.Helper()
	e := headless.New()
	opts := workspace.DefaultOptions()
	opts.Loader = boxLoader{}
	ws, err := workspace.New(e, opts)
	require.NoError(t, err)
	t.Cleanup(ws.Dispose)
	return NewDispatcher(ws, nil), ws, e
}

func TestPressSwitchesModes(t *testing.T) {
	d, ws, _ := setup(t)

	tests := []struct {
		key  string
		want camera.Kind
	}{
		{"2", camera.Walk},
		{"3", camera.Fly},
		{"4", camera.Tabletop},
		{"1", camera.Orbit},
	}
	for _, tt := range tests {
		assert.Equal(t, d.Lookup(tt.key), d.Press(tt.key))
		assert.Equal(t, tt.want, ws.NavigationMode(), "key %s", tt.key)
	}
}

func TestPressPlanes(t *testing.T) {
	d, ws, e := setup(t)
	_, err := ws.LoadAsset(context.Background(), assets.FromBytes("box", nil))
	require.NoError(t, err)

	d.Press("Y")
	d.Press("X")
	planes := ws.SectionPlanes()
	require.Len(t, planes, 2)
	assert.Equal(t, math.Vec3{Y: 1}, planes[0].Normal)
	assert.True(t, planes[0].Point.ApproxEqual(ws.Bounds().Center(), 1e-6))
	assert.Equal(t, 2, e.BoundSlots())

	assert.Equal(t, ActionClearPlanes, d.Press("R"))
	assert.Empty(t, ws.SectionPlanes())
}

func TestPressPlaneWithoutAssetsUsesOrigin(t *testing.T) {
	d, ws, _ := setup(t)
	d.Press("Z")
	require.Len(t, ws.SectionPlanes(), 1)
	assert.Equal(t, math.Vec3{}, ws.SectionPlanes()[0].Point)
}

func TestPressFPS(t *testing.T) {
	d, ws, _ := setup(t)

	d.Press("=")
	assert.Equal(t, 65.0, ws.Quality().TargetFPS)
	d.Press("-")
	d.Press("-")
	assert.Equal(t, 55.0, ws.Quality().TargetFPS)
}

func TestPressFit(t *testing.T) {
	d, ws, _ := setup(t)
	_, err := ws.LoadAsset(context.Background(), assets.FromBytes("box", nil))
	require.NoError(t, err)

	d.Press("F")
	orbit, ok := d.Controls().(*camera.OrbitCamera)
	require.True(t, ok)
	assert.True(t, orbit.Center.ApproxEqual(ws.Bounds().Center(), 1e-6))

	d.Press("3")
	assert.Equal(t, ActionFit, d.Press("F"), "fit is ignored outside orbit")
}

func TestPressReturnsCallerActions(t *testing.T) {
	d, _, _ := setup(t)

	assert.Equal(t, ActionQuit, d.Press("Escape"))
	assert.Equal(t, ActionScreenshot, d.Press("F12"))
	assert.Equal(t, ActionToggleBounds, d.Press("B"))
	assert.Equal(t, ActionNone, d.Press("Unbound"))
}

func TestMovement(t *testing.T) {
	d, _, _ := setup(t)

	held := map[string]bool{"W": true, "D": true, "Q": true, "A": false}
	f, r, u := d.Movement(func(k string) bool { return held[k] })
	assert.Equal(t, float32(1), f)
	assert.Equal(t, float32(1), r)
	assert.Equal(t, float32(-1), u)

	held = map[string]bool{"W": true, "S": true}
	f, _, _ = d.Movement(func(k string) bool { return held[k] })
	assert.Zero(t, f)
}

func TestCustomBindings(t *testing.T) {
	d, ws, _ := setup(t)
	d = NewDispatcher(ws, map[string]Action{"Space": ActionFly})

	d.Press("Space")
	assert.Equal(t, camera.Fly, ws.NavigationMode())
	assert.Equal(t, ActionNone, d.Press("3"))
}
