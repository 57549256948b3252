// Package headless implements engine.Engine in memory. Every state change is
// recorded so tests and the vpsim tool can inspect what a controller did.
package headless

import (
	"fmt"
	"slices"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/pkg/math"
)

// Engine is an in-memory engine.Engine.
type Engine struct {
	// Slots holds the plane bound to each clip slot.
	Slots [engine.MaxClipPlanes]*math.Plane
	Scale float64

	// Pipeline reports whether the default post-processing pipeline exists.
	// Effects are only tracked while it does.
	Pipeline bool
	Effects  map[engine.Effect]bool
	Passes   map[engine.Pass]bool

	Active  *Camera
	Cameras []*Camera
	Meshes  []*Mesh

	// Log lists engine calls in order, e.g. "clip 0 clear".
	Log []string

	// Failure injection.
	CameraErr        func(spec camera.Spec) error
	ImportErr        error
	TargetlessCamera bool

	observers map[int]func(engine.FrameInfo)
	nextID    int
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine with the default pipeline present and no passes.
func New() *Engine {
	return &Engine{
		Scale:    1,
		Pipeline: true,
		Effects: map[engine.Effect]bool{
			engine.EffectBloom:     true,
			engine.EffectAntialias: true,
		},
		Passes:    map[engine.Pass]bool{},
		observers: map[int]func(engine.FrameInfo){},
	}
}

func (e *Engine) record(format string, args ...any) {
	e.Log = append(e.Log, fmt.Sprintf(format, args...))
}

// NewCamera implements engine.Engine.
func (e *Engine) NewCamera(spec camera.Spec) (engine.Camera, error) {
	if e.CameraErr != nil {
		if err := e.CameraErr(spec); err != nil {
			return nil, err
		}
	}
	model, err := camera.New(spec)
	if err != nil {
		return nil, err
	}
	cam := &Camera{engine: e, model: model, Spec: spec}
	e.Cameras = append(e.Cameras, cam)
	e.record("camera new %s", spec.Kind)
	return cam, nil
}

// AttachCamera implements engine.Engine.
func (e *Engine) AttachCamera(cam engine.Camera) {
	if cam == nil {
		e.Active = nil
		e.record("camera attach none")
		return
	}
	c, _ := cam.(*Camera)
	e.Active = c
	e.record("camera attach %s", cam.Kind())
}

// LiveCameras counts cameras that have not been disposed.
func (e *Engine) LiveCameras() int {
	n := 0
	for _, c := range e.Cameras {
		if !c.Disposed {
			n++
		}
	}
	return n
}

// ImportGeometry implements engine.Engine.
func (e *Engine) ImportGeometry(g engine.Geometry) (engine.Mesh, error) {
	if e.ImportErr != nil {
		return nil, e.ImportErr
	}
	m := e.newMesh(g.Name, g.Bounds())
	e.record("mesh import %s", g.Name)
	return m, nil
}

// AddMesh registers a mesh with the given local bounds directly.
func (e *Engine) AddMesh(name string, bounds math.AABB) *Mesh {
	return e.newMesh(name, bounds)
}

func (e *Engine) newMesh(name string, bounds math.AABB) *Mesh {
	m := &Mesh{engine: e, name: name, local: bounds, scale: 1, Enabled: true, Clonable: true}
	e.Meshes = append(e.Meshes, m)
	return m
}

// CreateSectionQuad implements engine.Engine.
func (e *Engine) CreateSectionQuad(q engine.QuadSpec) (engine.Mesh, error) {
	h := q.Size / 2
	m := e.newMesh(q.Name, math.NewAABB(math.Vec3{X: -h, Y: -h}, math.Vec3{X: h, Y: h}))
	m.origin = q.Center
	m.Quad = &q
	m.Clonable = false
	e.record("quad create %s", q.Name)
	return m, nil
}

// SetClipPlane implements engine.Engine.
func (e *Engine) SetClipPlane(slot int, plane *math.Plane) error {
	if slot < 0 || slot >= engine.MaxClipPlanes {
		return fmt.Errorf("%w: %d", engine.ErrSlotOutOfRange, slot)
	}
	if plane == nil {
		e.Slots[slot] = nil
		e.record("clip %d clear", slot)
		return nil
	}
	p := *plane
	e.Slots[slot] = &p
	e.record("clip %d bind", slot)
	return nil
}

// BoundSlots counts clip slots with a plane bound.
func (e *Engine) BoundSlots() int {
	n := 0
	for _, p := range e.Slots {
		if p != nil {
			n++
		}
	}
	return n
}

// SetResolutionScale implements engine.Engine.
func (e *Engine) SetResolutionScale(scale float64) {
	e.Scale = scale
	e.record("scale %.2f", scale)
}

// SetEffectEnabled implements engine.Engine.
func (e *Engine) SetEffectEnabled(effect engine.Effect, enabled bool) error {
	if !e.Pipeline {
		return engine.ErrPassMissing
	}
	e.Effects[effect] = enabled
	e.record("effect %s %t", effect, enabled)
	return nil
}

// HasPass implements engine.Engine.
func (e *Engine) HasPass(p engine.Pass) bool {
	return e.Passes[p]
}

// CreatePass implements engine.Engine.
func (e *Engine) CreatePass(p engine.Pass, cam engine.Camera) error {
	if cam == nil {
		return fmt.Errorf("create %s: no camera", p)
	}
	e.Passes[p] = true
	e.record("pass create %s", p)
	return nil
}

// DestroyPass implements engine.Engine.
func (e *Engine) DestroyPass(p engine.Pass) error {
	if !e.Passes[p] {
		return engine.ErrPassMissing
	}
	delete(e.Passes, p)
	e.record("pass destroy %s", p)
	return nil
}

// OnFrame implements engine.Engine.
func (e *Engine) OnFrame(fn func(engine.FrameInfo)) func() {
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	return func() { delete(e.observers, id) }
}

// Observers returns the number of registered frame observers.
func (e *Engine) Observers() int {
	return len(e.observers)
}

// Tick simulates one rendered frame.
func (e *Engine) Tick(durationMs, timestampMs float64) {
	if e.Active != nil {
		e.Active.model.Update(float32(durationMs / 1000))
	}
	info := engine.FrameInfo{DurationMs: durationMs, TimestampMs: timestampMs}
	ids := make([]int, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := e.observers[id]; ok {
			fn(info)
		}
	}
}

// ResetLog clears the call log.
func (e *Engine) ResetLog() {
	e.Log = e.Log[:0]
}
