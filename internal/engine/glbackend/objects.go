package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/pkg/math"
)

// gpuMesh is vertex storage shared between a mesh and its clones.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	refs          int
}

func upload(verts []float32, indices []uint32) *gpuMesh {
	g := &gpuMesh{count: int32(len(indices)), refs: 1}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return g
}

func (g *gpuMesh) draw() {
	gl.BindVertexArray(g.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (g *gpuMesh) release() {
	g.refs--
	if g.refs > 0 {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
}

// Mesh implements engine.Mesh. Positions are stored in model space and
// placed by origin, rotation and a uniform scale.
type Mesh struct {
	engine   *Engine
	name     string
	gpu      *gpuMesh
	local    math.AABB
	origin   math.Vec3
	rotation math.Vec3
	scale    float32
	opacity  float32
	quad     bool
	enabled  bool
	disposed bool
	lods     []lodLevel
}

// Name implements engine.Mesh.
func (m *Mesh) Name() string { return m.name }

func (m *Mesh) model() math.Mat4 {
	return math.Translate(m.origin.X, m.origin.Y, m.origin.Z).
		Mul(math.RotateY(m.rotation.Y)).
		Mul(math.RotateX(m.rotation.X)).
		Mul(math.Scale(m.scale, m.scale, m.scale))
}

// WorldBounds implements engine.Mesh.
func (m *Mesh) WorldBounds() math.AABB {
	return worldBounds(m.local, m.model())
}

// Translate implements engine.Mesh.
func (m *Mesh) Translate(offset math.Vec3) {
	m.origin = m.origin.Add(offset)
}

// Scale implements engine.Mesh.
func (m *Mesh) Scale(factor float32) {
	m.origin = m.origin.Scale(factor)
	m.scale *= factor
}

// Clone implements engine.Mesh. The clone shares vertex storage.
func (m *Mesh) Clone(name string) (engine.Mesh, error) {
	if m.quad || m.disposed {
		return nil, engine.ErrCloneUnsupported
	}
	m.gpu.refs++
	c := &Mesh{
		engine:   m.engine,
		name:     name,
		gpu:      m.gpu,
		local:    m.local,
		origin:   m.origin,
		rotation: m.rotation,
		scale:    m.scale,
		opacity:  m.opacity,
		enabled:  m.enabled,
	}
	m.engine.meshes = append(m.engine.meshes, c)
	return c, nil
}

// AddLODLevel implements engine.Mesh.
func (m *Mesh) AddLODLevel(distance float32, level engine.Mesh) {
	var lm *Mesh
	if level != nil {
		var ok bool
		if lm, ok = level.(*Mesh); !ok || lm.engine != m.engine {
			logger.Warn("LOD level ignored",
				zap.String("mesh", m.name),
				zap.Error(ErrForeignObject))
			return
		}
	}
	m.lods = insertLevel(m.lods, lodLevel{distance: distance, mesh: lm})
}

// SetEnabled implements engine.Mesh.
func (m *Mesh) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Dispose implements engine.Mesh.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for _, l := range m.lods {
		if l.mesh != nil {
			l.mesh.Dispose()
		}
	}
	m.lods = nil

	meshes := m.engine.meshes
	for i, other := range meshes {
		if other == m {
			m.engine.meshes = append(meshes[:i], meshes[i+1:]...)
			break
		}
	}
	m.gpu.release()
}

// Camera implements engine.Controllable.
type Camera struct {
	engine   *Engine
	model    camera.Model
	disposed bool
}

// Kind implements engine.Camera.
func (c *Camera) Kind() camera.Kind { return c.model.Kind() }

// Position implements engine.Camera.
func (c *Camera) Position() math.Vec3 { return c.model.Position() }

// Forward implements engine.Camera.
func (c *Camera) Forward() math.Vec3 { return c.model.Forward() }

// Target implements engine.Camera.
func (c *Camera) Target() (math.Vec3, bool) { return c.model.Target(), true }

// Controls implements engine.Controllable.
func (c *Camera) Controls() camera.Model { return c.model }

// Dispose implements engine.Camera.
func (c *Camera) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.engine.active == c {
		c.engine.active = nil
	}
	if c.engine.aoCamera == c {
		c.engine.aoCamera = nil
	}
}
