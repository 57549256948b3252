package glbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/pkg/math"
)

func TestInterleaveComputesMissingData(t *testing.T) {
	g := engine.Geometry{
		Name:      "tri",
		Positions: []math.Vec3{{}, {X: 1}, {Z: -1}},
	}

	verts, idx := interleave(g)
	assert.Equal(t, []uint32{0, 1, 2}, idx)
	require.Len(t, verts, 3*floatsPerVertex)
	for v := 0; v < 3; v++ {
		n := math.Vec3{X: verts[v*6+3], Y: verts[v*6+4], Z: verts[v*6+5]}
		assert.True(t, n.ApproxEqual(math.Vec3Up, 1e-6), "normal %d = %v", v, n)
	}
}

func TestInterleaveKeepsNormals(t *testing.T) {
	g := quadGeometry("q", 2)
	verts, idx := interleave(g)

	assert.Equal(t, g.Indices, idx)
	assert.Equal(t, []float32{-1, -1, 0, 0, 0, 1}, verts[:6])
}

func TestSmoothNormalsIgnoresBadIndices(t *testing.T) {
	n := smoothNormals([]math.Vec3{{}, {X: 1}}, []uint32{0, 1, 7})
	assert.Equal(t, []math.Vec3{math.Vec3Up, math.Vec3Up}, n)
}

func TestLODLevels(t *testing.T) {
	a, b := &Mesh{name: "a"}, &Mesh{name: "b"}

	var levels []lodLevel
	levels = insertLevel(levels, lodLevel{distance: 100})
	levels = insertLevel(levels, lodLevel{distance: 10, mesh: a})
	levels = insertLevel(levels, lodLevel{distance: 20, mesh: b})
	require.Len(t, levels, 3)
	assert.Equal(t, []float32{10, 20, 100}, []float32{levels[0].distance, levels[1].distance, levels[2].distance})

	tests := []struct {
		dist float32
		want int
	}{
		{0, -1},
		{9.9, -1},
		{10, 0},
		{15, 0},
		{20, 1},
		{99, 1},
		{100, 2},
		{1e6, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pickLevel(levels, tt.dist), "distance %v", tt.dist)
	}

	levels = insertLevel(levels, lodLevel{distance: 20, mesh: a})
	assert.Len(t, levels, 3)
	assert.Same(t, a, levels[1].mesh)
}

func TestWorldBounds(t *testing.T) {
	local := math.NewAABB(math.Vec3{X: -1, Y: -1}, math.Vec3{X: 1, Y: 1})
	m := math.Translate(0, 5, 0).Mul(math.RotateX(-1.5707964))

	b := worldBounds(local, m)
	assert.InDelta(t, 2, b.Size().Z, 1e-5)
	assert.InDelta(t, 0, b.Size().Y, 1e-5)
	assert.InDelta(t, 5, b.Center().Y, 1e-5)

	assert.True(t, worldBounds(math.EmptyAABB(), m).IsEmpty())
}

func TestClipUniforms(t *testing.T) {
	var slots [engine.MaxClipPlanes]*math.Plane
	p, ok := math.PlaneFromPointNormal(math.Vec3{Y: 2}, math.Vec3Up)
	require.True(t, ok)
	slots[1] = &p

	u := clipUniforms(slots)
	assert.Equal(t, []float32{0, 0, 0, -1}, u[0:4])
	assert.Equal(t, []float32{0, 1, 0, -2}, u[4:8])
}
