package workspace

import (
	"github.com/Faultbox/archviz/internal/engine/camera"
)

// ViewportState is a serializable snapshot of the viewport.
type ViewportState struct {
	AssetIDs       []string    `json:"assetIds"`
	NavigationMode camera.Kind `json:"navigationMode"`
	CameraPosition [3]float32  `json:"cameraPosition"`
	CameraTarget   [3]float32  `json:"cameraTarget"`
	Scale          float64     `json:"scale"`
	TargetFPS      float64     `json:"targetFps"`
	SectionPlanes  int         `json:"sectionPlanes"`
}

// ExportViewportState snapshots the viewport. Asset IDs are in load order.
func (w *Workspace) ExportViewportState() ViewportState {
	cam := w.nav.State()
	q := w.quality.State()

	ids := make([]string, len(w.order))
	copy(ids, w.order)

	return ViewportState{
		AssetIDs:       ids,
		NavigationMode: cam.Mode,
		CameraPosition: cam.Position.Array(),
		CameraTarget:   cam.Target.Array(),
		Scale:          q.Scale,
		TargetFPS:      q.TargetFPS,
		SectionPlanes:  w.clipping.Len(),
	}
}
