package sim

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/internal/assets"
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/workspace"
	"github.com/Faultbox/archviz/pkg/math"
)

const sampleTrace = `
models: [slab.glb]
steps:
  - frames: {fps: 61, duration: 1100ms}
  - frames: {fps: 45, duration: 1100ms}
  - mode: fly
  - plane: {normal: [0, 1, 0], point: [0, 0, 0]}
  - target_fps: 30
  - clear_planes: true
  - unload: 0
`

type slabLoader struct{}

func (slabLoader) Load(context.Context, assets.Source) ([]engine.Geometry, error) {
	return []engine.Geometry{{
		Name:      "slab",
		Positions: []math.Vec3{{X: -20, Z: -5}, {X: 20, Y: 4, Z: 5}},
	}}, nil
}

func TestDecode(t *testing.T) {
	tr, err := Decode(strings.NewReader(sampleTrace))
	require.NoError(t, err)

	assert.Equal(t, []string{"slab.glb"}, tr.Models)
	require.Len(t, tr.Steps, 7)
	assert.Equal(t, 61.0, tr.Steps[0].Frames.FPS)
	assert.Equal(t, "fly", tr.Steps[2].Mode)
	assert.Equal(t, [3]float32{0, 1, 0}, tr.Steps[3].Plane.Normal)
	assert.Equal(t, 30.0, *tr.Steps[4].TargetFPS)
	assert.Equal(t, 0, *tr.Steps[6].Unload)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"two actions":   "steps:\n  - {mode: fly, clear_planes: true}\n",
		"no action":     "steps:\n  - {}\n",
		"bad frames":    "steps:\n  - frames: {fps: 0, duration: 1s}\n",
		"unload range":  "models: []\nsteps:\n  - unload: 0\n",
		"unknown field": "steps:\n  - teleport: true\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := Decode(strings.NewReader("steps:\n  - {}\n"))
	assert.ErrorIs(t, err, ErrInvalidTrace)
}

func TestRunReplaysTrace(t *testing.T) {
	tr, err := Decode(strings.NewReader(sampleTrace))
	require.NoError(t, err)

	opts := workspace.DefaultOptions()
	opts.Loader = slabLoader{}
	r, err := NewRunner(opts)
	require.NoError(t, err)
	defer r.Close()

	var states []workspace.ViewportState
	err = r.Run(context.Background(), tr, func(_ int, st workspace.ViewportState) error {
		states = append(states, st)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, states, 7)

	assert.Len(t, states[0].AssetIDs, 1)
	assert.Equal(t, 1.0, states[0].Scale, "fast frames keep the minimum scale")
	assert.InDelta(t, 1.1, states[1].Scale, 1e-9, "slow window degrades one step")
	assert.Equal(t, camera.Fly, states[2].NavigationMode)
	assert.Equal(t, 1, states[3].SectionPlanes)
	assert.Equal(t, 30.0, states[4].TargetFPS)
	assert.Zero(t, states[5].SectionPlanes)
	assert.Empty(t, states[6].AssetIDs)
}

func TestRunSkipsFailedModels(t *testing.T) {
	opts := workspace.DefaultOptions()
	opts.Loader = assets.NewLoader(nil)
	r, err := NewRunner(opts)
	require.NoError(t, err)
	defer r.Close()

	tr := &Trace{Models: []string{"/nonexistent/model.glb"}}
	unload := 0
	tr.Steps = []Step{{Unload: &unload}}

	require.NoError(t, r.Run(context.Background(), tr, nil))
	assert.Empty(t, r.Workspace.ExportViewportState().AssetIDs)
}

func TestRunStopsOnEmitError(t *testing.T) {
	opts := workspace.DefaultOptions()
	opts.Loader = slabLoader{}
	r, err := NewRunner(opts)
	require.NoError(t, err)
	defer r.Close()

	boom := errors.New("closed pipe")
	tr := &Trace{Steps: []Step{{ClearPlanes: true}, {ClearPlanes: true}}}
	calls := 0
	err = r.Run(context.Background(), tr, func(int, workspace.ViewportState) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
