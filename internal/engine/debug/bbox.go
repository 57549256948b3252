// Package debug provides debug visualization utilities.
package debug

import "github.com/Faultbox/archviz/pkg/math"

// BoundsVertexCount is the number of vertices in a bounds wireframe
// (12 edges, 2 endpoints each).
const BoundsVertexCount = 24

// BoundsWireframe returns line-list vertices outlining b, expanded by pad
// on every side, as flat xyz triples. An empty box yields nil.
func BoundsWireframe(b math.AABB, pad float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	lo := b.Min.Sub(math.Vec3{X: pad, Y: pad, Z: pad})
	hi := b.Max.Add(math.Vec3{X: pad, Y: pad, Z: pad})

	return []float32{
		// bottom
		lo.X, lo.Y, lo.Z, hi.X, lo.Y, lo.Z,
		hi.X, lo.Y, lo.Z, hi.X, lo.Y, hi.Z,
		hi.X, lo.Y, hi.Z, lo.X, lo.Y, hi.Z,
		lo.X, lo.Y, hi.Z, lo.X, lo.Y, lo.Z,
		// top
		lo.X, hi.Y, lo.Z, hi.X, hi.Y, lo.Z,
		hi.X, hi.Y, lo.Z, hi.X, hi.Y, hi.Z,
		hi.X, hi.Y, hi.Z, lo.X, hi.Y, hi.Z,
		lo.X, hi.Y, hi.Z, lo.X, hi.Y, lo.Z,
		// verticals
		lo.X, lo.Y, lo.Z, lo.X, hi.Y, lo.Z,
		hi.X, lo.Y, lo.Z, hi.X, hi.Y, lo.Z,
		hi.X, lo.Y, hi.Z, hi.X, hi.Y, hi.Z,
		lo.X, lo.Y, hi.Z, lo.X, hi.Y, hi.Z,
	}
}
