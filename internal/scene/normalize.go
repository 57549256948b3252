// Package scene prepares loaded assets for display: it centers and fits them
// to a size budget and attaches distance-keyed detail levels.
package scene

import (
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/pkg/math"
)

// DefaultBudget is the largest extent, in scene units, an asset keeps after
// normalization.
const DefaultBudget float32 = 10

// Normalization records what Normalize applied.
type Normalization struct {
	Bounds math.AABB // union bounds before normalization
	Center math.Vec3
	Offset math.Vec3 // translation applied, -Center
	Factor float32   // uniform scale applied after translation, 1 if none
}

// Normalize centers the union bounds of meshes on the origin and, when the
// largest extent exceeds budget, scales every mesh uniformly about the origin
// so that it fits.
//
// Calling it again on the same meshes re-centers a centered box, which is a
// no-op, but a second rescale would compound; Asset.Normalize guards that.
func Normalize(meshes []engine.Mesh, budget float32) Normalization {
	n := Normalization{Bounds: math.EmptyAABB(), Factor: 1}
	if len(meshes) == 0 {
		return n
	}

	for _, m := range meshes {
		n.Bounds = n.Bounds.Union(m.WorldBounds())
	}
	if n.Bounds.IsEmpty() {
		return n
	}
	n.Center = n.Bounds.Center()
	n.Offset = n.Center.Negate()

	if !n.Offset.IsZero() {
		for _, m := range meshes {
			m.Translate(n.Offset)
		}
	}

	if extent := n.Bounds.MaxExtent(); budget > 0 && extent > budget {
		n.Factor = budget / extent
		for _, m := range meshes {
			m.Scale(n.Factor)
		}
	}
	return n
}
