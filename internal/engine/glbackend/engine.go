// Package glbackend renders the viewport with OpenGL 4.1 core. It requires
// a current GL context on the calling thread, which internal/engine/window
// provides.
package glbackend

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/engine/framebuffer"
	"github.com/Faultbox/archviz/internal/engine/lighting"
	"github.com/Faultbox/archviz/internal/engine/shader"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/pkg/math"
)

// ErrForeignObject is returned when a camera or mesh from another engine is
// passed in.
var ErrForeignObject = errors.New("glbackend: object belongs to another engine")

// Options configures projection and shading.
type Options struct {
	FovY       float32 // radians
	Near       float32
	Far        float32
	Sun        lighting.Sun
	ClearColor [4]float32
	MeshColor  [4]float32
	QuadColor  [3]float32
}

// DefaultOptions returns a 45 degree perspective and neutral materials.
func DefaultOptions() Options {
	return Options{
		FovY:       0.7853982,
		Near:       0.1,
		Far:        1000,
		Sun:        lighting.DefaultSun(),
		ClearColor: [4]float32{0.1, 0.1, 0.15, 1},
		MeshColor:  [4]float32{0.82, 0.8, 0.76, 1},
		QuadColor:  [3]float32{0.2, 0.55, 1},
	}
}

// Engine implements engine.Engine on OpenGL.
type Engine struct {
	opts          Options
	width, height int

	meshProg      *shader.Program
	occlusionProg *shader.Program
	lineProg      *shader.Program
	postProg      *shader.Program

	scene     *framebuffer.Framebuffer
	occlusion *framebuffer.Framebuffer
	aoCamera  *Camera

	emptyVAO         uint32
	lineVAO, lineVBO uint32

	meshes  []*Mesh
	active  *Camera
	clip    [engine.MaxClipPlanes]*math.Plane
	scale   float64
	effects map[engine.Effect]bool

	observers map[int]func(engine.FrameInfo)
	nextID    int
	start     time.Time
	last      time.Time

	// ShowBounds outlines every visible mesh.
	ShowBounds bool
}

// New initializes GL and allocates the render targets for a drawable of
// width x height pixels.
func New(width, height int, opts Options) (*Engine, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	e := &Engine{
		opts:      opts,
		width:     width,
		height:    height,
		scale:     1,
		effects:   map[engine.Effect]bool{engine.EffectBloom: true, engine.EffectAntialias: true},
		observers: map[int]func(engine.FrameInfo){},
	}

	programs := []struct {
		dst    **shader.Program
		vs, fs string
		name   string
	}{
		{&e.meshProg, meshVertexShader, meshFragmentShader, "mesh"},
		{&e.occlusionProg, meshVertexShader, occlusionFragmentShader, "occlusion"},
		{&e.lineProg, lineVertexShader, lineFragmentShader, "line"},
		{&e.postProg, postVertexShader, postFragmentShader, "post"},
	}
	for _, p := range programs {
		prog, err := shader.New(p.vs, p.fs)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("%s program: %w", p.name, err)
		}
		*p.dst = prog
	}

	sw, sh := framebuffer.ScaledSize(width, height, e.scale)
	var err error
	if e.scene, err = framebuffer.New(sw, sh); err != nil {
		e.Close()
		return nil, fmt.Errorf("scene target: %w", err)
	}

	gl.GenVertexArrays(1, &e.emptyVAO)
	gl.GenVertexArrays(1, &e.lineVAO)
	gl.GenBuffers(1, &e.lineVBO)
	gl.BindVertexArray(e.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, e.lineVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return e, nil
}

// Close releases every GL resource the engine owns.
func (e *Engine) Close() {
	logger.Info("closing renderer")

	for len(e.meshes) > 0 {
		e.meshes[0].Dispose()
	}
	for _, p := range []*shader.Program{e.meshProg, e.occlusionProg, e.lineProg, e.postProg} {
		if p != nil {
			p.Delete()
		}
	}
	if e.scene != nil {
		e.scene.Destroy()
	}
	if e.occlusion != nil {
		e.occlusion.Destroy()
		e.occlusion = nil
	}
	if e.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &e.emptyVAO)
	}
	if e.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &e.lineVAO)
		gl.DeleteBuffers(1, &e.lineVBO)
	}
}

// Resize updates the drawable size.
func (e *Engine) Resize(width, height int) {
	e.width, e.height = width, height
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the drawable size.
func (e *Engine) Size() (int, int) {
	return e.width, e.height
}

// FovY returns the vertical field of view in radians.
func (e *Engine) FovY() float32 {
	return e.opts.FovY
}

// ActiveCamera returns the attached camera, or nil.
func (e *Engine) ActiveCamera() *Camera {
	return e.active
}

// PickableMeshes returns enabled non-quad meshes for ray picking.
func (e *Engine) PickableMeshes() []engine.Mesh {
	var out []engine.Mesh
	for _, m := range e.meshes {
		if m.enabled && !m.quad {
			out = append(out, m)
		}
	}
	return out
}

// ReadPixels reads the scene target at its scaled resolution.
func (e *Engine) ReadPixels() ([]byte, int, int) {
	w, h := e.scene.Size()
	return e.scene.ReadPixels(), int(w), int(h)
}

// NewCamera implements engine.Engine.
func (e *Engine) NewCamera(spec camera.Spec) (engine.Camera, error) {
	model, err := camera.New(spec)
	if err != nil {
		return nil, err
	}
	return &Camera{engine: e, model: model}, nil
}

// AttachCamera implements engine.Engine.
func (e *Engine) AttachCamera(cam engine.Camera) {
	if cam == nil {
		e.active = nil
		return
	}
	c, ok := cam.(*Camera)
	if !ok || c.engine != e {
		logger.Warn("camera attach ignored", zap.Error(ErrForeignObject))
		return
	}
	e.active = c
}

// ImportGeometry implements engine.Engine.
func (e *Engine) ImportGeometry(g engine.Geometry) (engine.Mesh, error) {
	if len(g.Positions) == 0 {
		return nil, fmt.Errorf("geometry %s has no positions", g.Name)
	}
	verts, idx := interleave(g)
	m := &Mesh{
		engine:  e,
		name:    g.Name,
		gpu:     upload(verts, idx),
		local:   g.Bounds(),
		scale:   1,
		opacity: 1,
		enabled: true,
	}
	e.meshes = append(e.meshes, m)
	return m, nil
}

// CreateSectionQuad implements engine.Engine.
func (e *Engine) CreateSectionQuad(q engine.QuadSpec) (engine.Mesh, error) {
	g := quadGeometry(q.Name, q.Size)
	verts, idx := interleave(g)
	m := &Mesh{
		engine:   e,
		name:     q.Name,
		gpu:      upload(verts, idx),
		local:    g.Bounds(),
		origin:   q.Center,
		rotation: q.Rotation,
		scale:    1,
		opacity:  q.Opacity,
		enabled:  true,
		quad:     true,
	}
	e.meshes = append(e.meshes, m)
	return m, nil
}

// SetClipPlane implements engine.Engine.
func (e *Engine) SetClipPlane(slot int, plane *math.Plane) error {
	if slot < 0 || slot >= engine.MaxClipPlanes {
		return fmt.Errorf("%w: %d", engine.ErrSlotOutOfRange, slot)
	}
	if plane == nil {
		e.clip[slot] = nil
		return nil
	}
	p := *plane
	e.clip[slot] = &p
	return nil
}

// SetResolutionScale implements engine.Engine. The scene renders at the
// drawable size divided by scale.
func (e *Engine) SetResolutionScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	e.scale = scale
}

// SetEffectEnabled implements engine.Engine.
func (e *Engine) SetEffectEnabled(effect engine.Effect, enabled bool) error {
	switch effect {
	case engine.EffectBloom, engine.EffectAntialias:
		e.effects[effect] = enabled
		return nil
	default:
		return fmt.Errorf("%w: effect %s", engine.ErrPassMissing, effect)
	}
}

// HasPass implements engine.Engine.
func (e *Engine) HasPass(p engine.Pass) bool {
	return p == engine.PassAmbientOcclusion && e.occlusion != nil
}

// CreatePass implements engine.Engine.
func (e *Engine) CreatePass(p engine.Pass, cam engine.Camera) error {
	if p != engine.PassAmbientOcclusion {
		return fmt.Errorf("unknown pass %s", p)
	}
	c, ok := cam.(*Camera)
	if !ok || c == nil || c.engine != e {
		return fmt.Errorf("pass %s: %w", p, ErrForeignObject)
	}
	if e.occlusion == nil {
		w, h := e.scene.Size()
		fb, err := framebuffer.New(w, h)
		if err != nil {
			return fmt.Errorf("pass %s: %w", p, err)
		}
		e.occlusion = fb
	}
	e.aoCamera = c
	return nil
}

// DestroyPass implements engine.Engine.
func (e *Engine) DestroyPass(p engine.Pass) error {
	if !e.HasPass(p) {
		return engine.ErrPassMissing
	}
	e.occlusion.Destroy()
	e.occlusion = nil
	e.aoCamera = nil
	return nil
}

// OnFrame implements engine.Engine.
func (e *Engine) OnFrame(fn func(engine.FrameInfo)) func() {
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	return func() { delete(e.observers, id) }
}

// RenderFrame advances the active camera, draws one frame to the default
// framebuffer and notifies frame observers with the interval since the
// previous call.
func (e *Engine) RenderFrame(now time.Time) {
	if e.start.IsZero() {
		e.start, e.last = now, now
	}
	dt := now.Sub(e.last)
	e.last = now

	if e.active != nil {
		e.active.model.Update(float32(dt.Seconds()))
	}
	e.draw()

	info := engine.FrameInfo{
		DurationMs:  float64(dt.Microseconds()) / 1000,
		TimestampMs: float64(now.Sub(e.start).Microseconds()) / 1000,
	}
	for id := 0; id < e.nextID; id++ {
		if fn, ok := e.observers[id]; ok {
			fn(info)
		}
	}
}
