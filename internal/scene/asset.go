package scene

import (
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/pkg/math"
)

// Asset is a loaded model: the meshes imported from one source.
type Asset struct {
	ID     string
	Meshes []engine.Mesh
	Bounds math.AABB
	LODs   [][]LODLevel // indexed like Meshes

	normalized    bool
	normalization Normalization
}

// NewAsset groups meshes under id and records their current bounds.
func NewAsset(id string, meshes []engine.Mesh) *Asset {
	a := &Asset{ID: id, Meshes: meshes}
	a.refreshBounds()
	return a
}

// Normalize runs Normalize on the asset's meshes the first time it is
// called. Later calls return the first result without touching the meshes.
func (a *Asset) Normalize(budget float32) Normalization {
	if a.normalized {
		return a.normalization
	}
	a.normalization = Normalize(a.Meshes, budget)
	a.normalized = true
	a.refreshBounds()
	return a.normalization
}

// Normalized reports whether Normalize has run.
func (a *Asset) Normalized() bool {
	return a.normalized
}

// AttachLOD attaches thresholds to every mesh of the asset. It stops at the
// first invalid threshold list, before any mesh is touched.
func (a *Asset) AttachLOD(thresholds []float32) error {
	lods := make([][]LODLevel, len(a.Meshes))
	for i, m := range a.Meshes {
		levels, err := AttachLOD(m, thresholds)
		if err != nil {
			return err
		}
		lods[i] = levels
	}
	a.LODs = lods
	return nil
}

// Dispose releases every mesh. LOD stand-ins are released with their base.
func (a *Asset) Dispose() {
	for _, m := range a.Meshes {
		m.Dispose()
	}
	a.Meshes = nil
	a.LODs = nil
}

func (a *Asset) refreshBounds() {
	a.Bounds = math.EmptyAABB()
	for _, m := range a.Meshes {
		a.Bounds = a.Bounds.Union(m.WorldBounds())
	}
}
