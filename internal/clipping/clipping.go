// Package clipping manages section planes bound to the engine's global
// clip-plane slots.
//
// Planes are bound in insertion order. Only the first engine.MaxClipPlanes
// planes occupy slots; later planes are retained but inert until earlier
// ones are removed.
package clipping

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/pkg/math"
)

// ErrZeroNormal is returned by AddPlane for a zero-length normal.
var ErrZeroNormal = errors.New("clipping: plane normal is zero")

// Unbound is the Slot of a retained plane that has no engine slot.
const Unbound = -1

// Options configures plane visualization.
type Options struct {
	Visualize   bool
	QuadSize    float32
	QuadOpacity float32
}

// DefaultOptions returns visualization on with a 10 unit quad at 30%
// opacity.
func DefaultOptions() Options {
	return Options{Visualize: true, QuadSize: 10, QuadOpacity: 0.3}
}

// Plane is a section plane.
type Plane struct {
	Normal   math.Vec3 // unit length
	Point    math.Vec3
	Equation math.Plane
	Slot     int

	quad engine.Mesh
}

// Manager owns the section planes of one viewport.
type Manager struct {
	engine engine.Engine
	opts   Options
	planes []*Plane
}

// NewManager returns an empty manager.
func NewManager(e engine.Engine, opts Options) *Manager {
	return &Manager{engine: e, opts: opts}
}

// AddPlane appends a plane through point facing normal and re-binds the
// engine slots.
func (m *Manager) AddPlane(normal, point math.Vec3) error {
	eq, ok := math.PlaneFromPointNormal(point, normal)
	if !ok {
		return ErrZeroNormal
	}

	p := &Plane{Normal: eq.Normal, Point: point, Equation: eq, Slot: Unbound}
	if m.opts.Visualize {
		quad, err := m.engine.CreateSectionQuad(quadSpec(len(m.planes), p, m.opts))
		if err != nil {
			logger.Warn("section plane visualization unavailable", zap.Error(err))
		} else {
			p.quad = quad
		}
	}

	m.planes = append(m.planes, p)
	m.sync()

	if p.Slot == Unbound {
		logger.Debug("section plane retained without a clip slot",
			zap.Int("index", len(m.planes)-1),
			zap.Int("slots", engine.MaxClipPlanes))
	}
	return nil
}

// RemoveAll clears every plane, every slot and every visualization quad.
func (m *Manager) RemoveAll() {
	for _, p := range m.planes {
		if p.quad != nil {
			p.quad.Dispose()
			p.quad = nil
		}
	}
	m.planes = nil
	m.sync()
}

// Len returns the number of retained planes, bound or not.
func (m *Manager) Len() int {
	return len(m.planes)
}

// Planes returns copies of all retained planes in insertion order.
func (m *Manager) Planes() []Plane {
	out := make([]Plane, len(m.planes))
	for i, p := range m.planes {
		out[i] = *p
	}
	return out
}

// Bound returns copies of the planes that occupy engine slots.
func (m *Manager) Bound() []Plane {
	var out []Plane
	for _, p := range m.planes {
		if p.Slot != Unbound {
			out = append(out, *p)
		}
	}
	return out
}

// sync clears every slot and then binds the first MaxClipPlanes planes.
func (m *Manager) sync() {
	for slot := 0; slot < engine.MaxClipPlanes; slot++ {
		m.setSlot(slot, nil)
	}
	for i, p := range m.planes {
		if i >= engine.MaxClipPlanes {
			p.Slot = Unbound
			continue
		}
		p.Slot = i
		m.setSlot(i, &p.Equation)
	}
}

func (m *Manager) setSlot(slot int, eq *math.Plane) {
	if err := m.engine.SetClipPlane(slot, eq); err != nil {
		logger.Warn("clip slot update failed", zap.Int("slot", slot), zap.Error(err))
	}
}

// quadSpec orients a quad lying in the XY plane so that its face matches
// the plane.
func quadSpec(index int, p *Plane, opts Options) engine.QuadSpec {
	n := p.Normal
	return engine.QuadSpec{
		Name:   fmt.Sprintf("sectionPlane_%d", index),
		Size:   opts.QuadSize,
		Center: p.Point,
		Rotation: math.Vec3{
			X: float32(gomath.Acos(float64(n.Y))) - gomath.Pi/2,
			Y: float32(gomath.Atan2(float64(n.X), float64(n.Z))),
		},
		Opacity:  opts.QuadOpacity,
		Pickable: false,
	}
}
