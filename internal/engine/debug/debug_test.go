package debug

import (
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/pkg/math"
)

func TestBoundsWireframe(t *testing.T) {
	b := math.NewAABB(math.Vec3{}, math.Vec3{X: 2, Y: 1, Z: 3})

	v := BoundsWireframe(b, 0.5)
	require.Len(t, v, BoundsVertexCount*3)
	assert.Equal(t, []float32{-0.5, -0.5, -0.5, 2.5, -0.5, -0.5}, v[:6])

	assert.Nil(t, BoundsWireframe(math.EmptyAABB(), 0))
}

func TestScreenshotsSaveFlipsRows(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "viewport")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	// Bottom row red, top row blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := s.Save(pixels, 1, 2)
	require.NoError(t, err)
	assert.Contains(t, path, "viewport_2024-05-01_12-00-00.000.png")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, _, b, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r)
	assert.NotZero(t, b, "top row comes from the last GL row")

	_, err = s.Save(pixels[:4], 1, 2)
	assert.Error(t, err)
}
