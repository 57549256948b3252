// Package workspace owns one viewport: the engine frame subscription, the
// active camera, quality control, section planes and the loaded assets. It
// exposes the operations UI callers drive the viewport with.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/assets"
	"github.com/Faultbox/archviz/internal/clipping"
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/frametimer"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/internal/navigation"
	"github.com/Faultbox/archviz/internal/quality"
	"github.com/Faultbox/archviz/internal/scene"
	"github.com/Faultbox/archviz/pkg/math"
)

// ErrDisposed is returned by operations on a disposed workspace.
var ErrDisposed = errors.New("workspace: disposed")

// Workspace is the viewport owner. All methods must be called from the
// render goroutine except LoadAsset's fetch, which honours ctx.
type Workspace struct {
	engine engine.Engine
	opts   Options

	timer    *frametimer.Timer
	nav      *navigation.Controller
	quality  *quality.Controller
	clipping *clipping.Manager

	assets map[string]*scene.Asset
	order  []string

	unsubscribe func()
	disposed    bool
}

// New builds the controllers on e and subscribes to its frames.
func New(e engine.Engine, opts Options) (*Workspace, error) {
	if opts.Loader == nil {
		opts.Loader = assets.NewLoader(nil)
	}

	start := navigation.DefaultStart(opts.Navigation)
	start.Mode = opts.InitialMode
	nav, err := navigation.NewController(e, opts.Navigation, start)
	if err != nil {
		return nil, fmt.Errorf("initial camera: %w", err)
	}

	w := &Workspace{
		engine:   e,
		opts:     opts,
		timer:    frametimer.New(opts.Quality.TargetFPS, opts.WindowMs),
		nav:      nav,
		quality:  quality.NewController(e, nav, opts.Quality),
		clipping: clipping.NewManager(e, opts.Clipping),
		assets:   map[string]*scene.Asset{},
	}
	nav.OnCameraChange(w.quality.CameraChanged)
	w.unsubscribe = e.OnFrame(func(fi engine.FrameInfo) {
		w.Frame(fi.DurationMs, fi.TimestampMs)
	})

	logger.Info("workspace ready",
		zap.Stringer("mode", opts.InitialMode),
		zap.Float64("targetFps", opts.Quality.TargetFPS))
	return w, nil
}

// Frame records one rendered frame and, once per aggregation window, lets
// the quality controller react to the measured frame rate.
func (w *Workspace) Frame(durationMs, nowMs float64) {
	if w.disposed {
		return
	}
	w.timer.RecordFrame(frametimer.FrameSample{DurationMs: durationMs, TimestampMs: nowMs})
	w.opts.Recorder.ObserveFrame(durationMs)

	if !w.timer.Due(nowMs) {
		return
	}
	fps := w.timer.SampleAndReset(nowMs)
	st := w.quality.Adjust(fps)
	w.opts.Recorder.ObserveQuality(st, fps < st.TargetFPS)
}

// LoadAsset fetches, imports and normalizes a model and returns its ID.
// Load failures are *assets.ModelLoadError and leave the scene unchanged.
func (w *Workspace) LoadAsset(ctx context.Context, src assets.Source) (string, error) {
	if w.disposed {
		return "", ErrDisposed
	}

	geoms, err := w.opts.Loader.Load(ctx, src)
	if err == nil && len(geoms) == 0 {
		err = &assets.ModelLoadError{Source: src.String(), Err: assets.ErrNoPrimitives}
	}
	if err != nil {
		w.opts.Recorder.LoadFailed()
		logger.Warn("asset load rejected", zap.Stringer("source", src), zap.Error(err))
		return "", err
	}

	names := uniqueNames(geoms)
	meshes := make([]engine.Mesh, 0, len(geoms))
	for i, g := range geoms {
		g.Name = names[i]
		m, err := w.engine.ImportGeometry(g)
		if err != nil {
			for _, imported := range meshes {
				imported.Dispose()
			}
			w.opts.Recorder.LoadFailed()
			return "", &assets.ModelLoadError{Source: src.String(), Err: fmt.Errorf("importing %s: %w", g.Name, err)}
		}
		meshes = append(meshes, m)
	}

	id := "model_" + uuid.NewString()
	asset := scene.NewAsset(id, meshes)
	norm := asset.Normalize(w.opts.NormalizeBudget)
	if w.opts.LODEnabled {
		if err := asset.AttachLOD(w.opts.LODThresholds); err != nil {
			logger.Warn("LOD disabled for asset", zap.String("id", id), zap.Error(err))
		}
	}

	w.assets[id] = asset
	w.order = append(w.order, id)
	w.opts.Recorder.SetAssets(len(w.assets))

	logger.Info("asset loaded",
		zap.String("id", id),
		zap.Stringer("source", src),
		zap.Int("meshes", len(meshes)),
		zap.Float32("scale", norm.Factor))
	return id, nil
}

// uniqueNames suffixes repeated geometry names with _2, _3 and so on so
// meshes and their LOD clones stay distinguishable.
func uniqueNames(geoms []engine.Geometry) []string {
	names := make([]string, len(geoms))
	taken := make(map[string]bool, len(geoms))
	for i, g := range geoms {
		name := g.Name
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", g.Name, n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// Asset returns a loaded asset.
func (w *Workspace) Asset(id string) (*scene.Asset, bool) {
	a, ok := w.assets[id]
	return a, ok
}

// Bounds returns the union of all loaded asset bounds.
func (w *Workspace) Bounds() math.AABB {
	b := math.EmptyAABB()
	for _, id := range w.order {
		b = b.Union(w.assets[id].Bounds)
	}
	return b
}

// UnloadAsset disposes the asset and clears all section planes. It returns
// false for unknown IDs.
func (w *Workspace) UnloadAsset(id string) bool {
	asset, ok := w.assets[id]
	if !ok {
		return false
	}

	w.RemoveAllSectionPlanes()
	asset.Dispose()
	delete(w.assets, id)
	for i, v := range w.order {
		if v == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.opts.Recorder.SetAssets(len(w.assets))

	logger.Info("asset unloaded", zap.String("id", id))
	return true
}

// SetNavigationMode switches the camera mode.
func (w *Workspace) SetNavigationMode(mode camera.Kind) bool {
	if w.disposed {
		return false
	}
	prev := w.nav.Mode()
	ok := w.nav.SetMode(mode)
	if ok && mode != prev {
		w.opts.Recorder.ModeChanged(mode.String())
	}
	return ok
}

// NavigationMode returns the current mode.
func (w *Workspace) NavigationMode() camera.Kind {
	return w.nav.Mode()
}

// Camera returns the live camera, nil after Dispose.
func (w *Workspace) Camera() engine.Camera {
	return w.nav.Active()
}

// AddSectionPlane adds a clip plane through point facing normal.
func (w *Workspace) AddSectionPlane(normal, point math.Vec3) error {
	if w.disposed {
		return ErrDisposed
	}
	if err := w.clipping.AddPlane(normal, point); err != nil {
		return err
	}
	w.opts.Recorder.SetPlanes(w.clipping.Len(), len(w.clipping.Bound()))
	return nil
}

// RemoveAllSectionPlanes clears every section plane.
func (w *Workspace) RemoveAllSectionPlanes() {
	w.clipping.RemoveAll()
	w.opts.Recorder.SetPlanes(0, 0)
}

// SectionPlanes returns the retained planes in insertion order.
func (w *Workspace) SectionPlanes() []clipping.Plane {
	return w.clipping.Planes()
}

// SetTargetFrameRate changes the adaptive quality target.
func (w *Workspace) SetTargetFrameRate(fps float64) {
	w.quality.SetTargetFPS(fps)
}

// Quality returns the current quality state.
func (w *Workspace) Quality() quality.State {
	return w.quality.State()
}

// Dispose tears the viewport down. Calling it again does nothing.
func (w *Workspace) Dispose() {
	if w.disposed {
		return
	}
	w.disposed = true

	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
	w.clipping.RemoveAll()
	for _, id := range w.order {
		w.assets[id].Dispose()
	}
	w.assets = map[string]*scene.Asset{}
	w.order = nil

	if w.engine.HasPass(engine.PassAmbientOcclusion) {
		if err := w.engine.DestroyPass(engine.PassAmbientOcclusion); err != nil {
			logger.Debug("ambient occlusion teardown skipped", zap.Error(err))
		}
	}
	w.nav.Dispose()

	logger.Info("workspace disposed")
}
