package headless

import (
	"fmt"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/pkg/math"
)

// LODLevel is a level registered through Mesh.AddLODLevel.
type LODLevel struct {
	Distance float32
	Mesh     engine.Mesh
}

// Mesh is an in-memory engine.Mesh. World bounds are the local bounds scaled
// by scale then offset by origin.
type Mesh struct {
	engine *Engine
	name   string
	local  math.AABB
	origin math.Vec3
	scale  float32

	Enabled  bool
	Disposed bool
	Clonable bool
	LODs     []LODLevel
	Quad     *engine.QuadSpec
}

// Name implements engine.Mesh.
func (m *Mesh) Name() string { return m.name }

// WorldBounds implements engine.Mesh.
func (m *Mesh) WorldBounds() math.AABB {
	return m.local.Scale(m.scale).Translate(m.origin)
}

// Translate implements engine.Mesh.
func (m *Mesh) Translate(offset math.Vec3) {
	m.origin = m.origin.Add(offset)
}

// Scale implements engine.Mesh.
func (m *Mesh) Scale(factor float32) {
	m.scale *= factor
	m.origin = m.origin.Scale(factor)
}

// ScaleFactor returns the accumulated uniform scale.
func (m *Mesh) ScaleFactor() float32 { return m.scale }

// Clone implements engine.Mesh.
func (m *Mesh) Clone(name string) (engine.Mesh, error) {
	if !m.Clonable {
		return nil, fmt.Errorf("clone %s: %w", m.name, engine.ErrCloneUnsupported)
	}
	c := m.engine.newMesh(name, m.local)
	c.origin = m.origin
	c.scale = m.scale
	m.engine.record("mesh clone %s", name)
	return c, nil
}

// AddLODLevel implements engine.Mesh.
func (m *Mesh) AddLODLevel(distance float32, level engine.Mesh) {
	m.LODs = append(m.LODs, LODLevel{Distance: distance, Mesh: level})
	if level == nil {
		m.engine.record("lod %s %.1f cull", m.name, distance)
		return
	}
	m.engine.record("lod %s %.1f %s", m.name, distance, level.Name())
}

// SetEnabled implements engine.Mesh.
func (m *Mesh) SetEnabled(enabled bool) {
	m.Enabled = enabled
}

// Dispose implements engine.Mesh.
func (m *Mesh) Dispose() {
	if m.Disposed {
		return
	}
	m.Disposed = true
	for _, l := range m.LODs {
		if l.Mesh != nil {
			l.Mesh.Dispose()
		}
	}
	m.engine.record("mesh dispose %s", m.name)
}

// Camera wraps a camera.Model.
type Camera struct {
	engine   *Engine
	model    camera.Model
	Spec     camera.Spec
	Disposed bool
}

var _ engine.Controllable = (*Camera)(nil)

// Kind implements engine.Camera.
func (c *Camera) Kind() camera.Kind { return c.model.Kind() }

// Position implements engine.Camera.
func (c *Camera) Position() math.Vec3 { return c.model.Position() }

// Forward implements engine.Camera.
func (c *Camera) Forward() math.Vec3 { return c.model.Forward() }

// Target implements engine.Camera. Engines configured with TargetlessCamera
// report no target so callers exercise their look-ahead fallback.
func (c *Camera) Target() (math.Vec3, bool) {
	if c.engine.TargetlessCamera {
		return math.Vec3{}, false
	}
	return c.model.Target(), true
}

// Controls implements engine.Controllable.
func (c *Camera) Controls() camera.Model { return c.model }

// Dispose implements engine.Camera.
func (c *Camera) Dispose() {
	if c.Disposed {
		return
	}
	c.Disposed = true
	if c.engine.Active == c {
		c.engine.Active = nil
	}
	c.engine.record("camera dispose %s", c.Kind())
}
