// Package engine defines the rendering engine contract the viewport
// controllers drive. Implementations live in the headless and glbackend
// subpackages.
package engine

import (
	"errors"

	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/pkg/math"
)

// MaxClipPlanes is the number of global clip-plane slots an engine exposes.
const MaxClipPlanes = 6

var (
	// ErrPassMissing is returned when a post-processing pass or pipeline is
	// not present.
	ErrPassMissing = errors.New("engine: pass not present")

	// ErrCloneUnsupported is returned by Mesh.Clone for meshes that cannot
	// be instanced.
	ErrCloneUnsupported = errors.New("engine: mesh cannot be cloned")

	// ErrSlotOutOfRange is returned for clip slots outside [0, MaxClipPlanes).
	ErrSlotOutOfRange = errors.New("engine: clip slot out of range")
)

// Effect names a cheap post-processing toggle on the default pipeline.
type Effect string

const (
	EffectBloom     Effect = "bloom"
	EffectAntialias Effect = "antialias"
)

// Pass names an expensive post-processing pass that is built and destroyed
// rather than toggled.
type Pass string

const (
	PassAmbientOcclusion Pass = "ambientOcclusion"
)

// Geometry is decoded mesh data ready for upload.
type Geometry struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
}

// Bounds returns the bounding box of the positions.
func (g Geometry) Bounds() math.AABB {
	return math.AABBFromPoints(g.Positions)
}

// QuadSpec describes a section plane visualization quad.
type QuadSpec struct {
	Name     string
	Size     float32
	Center   math.Vec3
	Rotation math.Vec3 // Euler angles in radians, applied Y then X then Z
	Opacity  float32
	Pickable bool
}

// FrameInfo is passed to frame observers once per rendered frame.
type FrameInfo struct {
	DurationMs  float64
	TimestampMs float64
}

// Engine is the black-box renderer.
type Engine interface {
	// NewCamera creates a camera without attaching it.
	NewCamera(spec camera.Spec) (Camera, error)
	// AttachCamera makes cam the active camera for rendering, picking and
	// post-processing.
	AttachCamera(cam Camera)

	ImportGeometry(g Geometry) (Mesh, error)
	CreateSectionQuad(q QuadSpec) (Mesh, error)

	// SetClipPlane binds plane to slot. A nil plane clears the slot.
	SetClipPlane(slot int, plane *math.Plane) error

	SetResolutionScale(scale float64)

	// SetEffectEnabled returns ErrPassMissing when there is no pipeline
	// carrying the effect.
	SetEffectEnabled(effect Effect, enabled bool) error
	HasPass(p Pass) bool
	CreatePass(p Pass, cam Camera) error
	DestroyPass(p Pass) error

	// OnFrame registers fn to run after every rendered frame.
	OnFrame(fn func(FrameInfo)) (unsubscribe func())
}

// Mesh is an engine-owned renderable.
type Mesh interface {
	Name() string
	WorldBounds() math.AABB
	Translate(offset math.Vec3)
	// Scale scales the mesh uniformly about the world origin.
	Scale(factor float32)
	Clone(name string) (Mesh, error)
	// AddLODLevel registers level to be drawn instead of the mesh beyond
	// distance. A nil level culls the mesh beyond distance.
	AddLODLevel(distance float32, level Mesh)
	SetEnabled(enabled bool)
	// Dispose releases the mesh and its registered LOD levels.
	Dispose()
}

// Camera is an engine camera.
type Camera interface {
	Kind() camera.Kind
	Position() math.Vec3
	Forward() math.Vec3
	// Target returns the look-at point when the camera has one.
	Target() (math.Vec3, bool)
	Dispose()
}

// Controllable is implemented by cameras that accept navigation input.
type Controllable interface {
	Camera
	Controls() camera.Model
}
