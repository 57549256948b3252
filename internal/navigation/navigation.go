// Package navigation switches the viewport camera between orbit, walk, fly
// and tabletop modes while keeping the viewpoint continuous.
package navigation

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/pkg/math"
)

// ErrUnknownMode is returned by ParseMode for names that are not a mode.
var ErrUnknownMode = errors.New("navigation: unknown mode")

// ParseMode converts "orbit", "walk", "fly" or "tabletop" to a camera kind.
func ParseMode(s string) (camera.Kind, error) {
	k, ok := camera.ParseKind(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return k, nil
}

// Options holds per-mode construction parameters. Pitches are elevation
// above the horizon in radians.
type Options struct {
	MinRadius     float32
	MaxRadius     float32
	OrbitPitch    float32
	TabletopPitch float32
	WalkEllipsoid math.Vec3
	Gravity       float32
	GroundY       float32

	// LookAhead is how far in front of a camera without a target concept
	// the captured target is placed.
	LookAhead float32
}

// DefaultOptions returns radius limits [1, 100], a 45 degree orbit, a 60
// degree tabletop view and a 0.5 x 1 x 0.5 walking capsule.
func DefaultOptions() Options {
	return Options{
		MinRadius:     1,
		MaxRadius:     100,
		OrbitPitch:    gomath.Pi / 4,
		TabletopPitch: gomath.Pi / 3,
		WalkEllipsoid: math.Vec3{X: 0.5, Y: 1, Z: 0.5},
		Gravity:       -9.81,
		LookAhead:     10,
	}
}

// State is a captured viewpoint.
type State struct {
	Mode     camera.Kind
	Position math.Vec3
	Target   math.Vec3
}

// DefaultStart looks at the origin from 10 units away at the orbit pitch.
func DefaultStart(opts Options) State {
	p := float64(opts.OrbitPitch)
	return State{
		Mode:     camera.Orbit,
		Position: math.Vec3{Y: float32(10 * gomath.Sin(p)), Z: float32(10 * gomath.Cos(p))},
	}
}

// Controller owns the active camera. It is not safe for concurrent use.
type Controller struct {
	engine    engine.Engine
	opts      Options
	mode      camera.Kind
	active    engine.Camera
	listeners []func(engine.Camera)
	disposed  bool
}

// NewController builds and attaches the camera for start.
func NewController(e engine.Engine, opts Options, start State) (*Controller, error) {
	c := &Controller{engine: e, opts: opts, mode: start.Mode}

	cam, err := e.NewCamera(c.spec(start.Mode, start))
	if err != nil {
		return nil, fmt.Errorf("creating %s camera: %w", start.Mode, err)
	}
	e.AttachCamera(cam)
	c.active = cam
	return c, nil
}

// OnCameraChange registers fn to receive each newly attached camera.
func (c *Controller) OnCameraChange(fn func(engine.Camera)) {
	c.listeners = append(c.listeners, fn)
}

// Mode returns the current navigation mode.
func (c *Controller) Mode() camera.Kind {
	return c.mode
}

// Active returns the live camera, or nil after Dispose.
func (c *Controller) Active() engine.Camera {
	return c.active
}

// State captures the live viewpoint.
func (c *Controller) State() State {
	if c.active == nil {
		return State{Mode: c.mode}
	}
	return c.capture()
}

// SetMode switches to mode. It returns true when mode is active afterwards.
//
// The outgoing camera is captured and disposed before the new one is built,
// so two cameras are never live at once. If the new camera cannot be built
// the previous mode is rebuilt from the captured viewpoint and SetMode
// returns false.
func (c *Controller) SetMode(mode camera.Kind) bool {
	if !mode.Valid() {
		logger.Warn("navigation mode rejected", zap.Stringer("mode", mode))
		return false
	}
	if c.active == nil {
		logger.Warn("navigation mode change skipped: no active camera",
			zap.Stringer("mode", mode),
			zap.Bool("disposed", c.disposed))
		return false
	}
	if mode == c.mode {
		return true
	}

	captured := c.capture()
	c.active.Dispose()
	c.active = nil

	cam, err := c.engine.NewCamera(c.spec(mode, captured))
	if err != nil {
		logger.Error("camera construction failed",
			zap.Stringer("from", c.mode),
			zap.Stringer("to", mode),
			zap.Error(err))

		prev, rerr := c.engine.NewCamera(c.spec(c.mode, captured))
		if rerr != nil {
			logger.Error("restoring previous camera failed", zap.Stringer("mode", c.mode), zap.Error(rerr))
			return false
		}
		c.attach(prev)
		return false
	}

	logger.Debug("navigation mode changed",
		zap.Stringer("from", c.mode),
		zap.Stringer("to", mode))
	c.mode = mode
	c.attach(cam)
	return true
}

// Dispose releases the active camera. Calling it again does nothing.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.active != nil {
		c.active.Dispose()
		c.active = nil
	}
	c.listeners = nil
}

func (c *Controller) attach(cam engine.Camera) {
	c.engine.AttachCamera(cam)
	c.active = cam
	for _, fn := range c.listeners {
		fn(cam)
	}
}

func (c *Controller) capture() State {
	st := State{Mode: c.mode, Position: c.active.Position()}
	if target, ok := c.active.Target(); ok {
		st.Target = target
	} else {
		st.Target = st.Position.Add(c.active.Forward().Scale(c.opts.LookAhead))
	}
	return st
}

func (c *Controller) spec(mode camera.Kind, st State) camera.Spec {
	s := camera.Spec{Kind: mode, Position: st.Position, Target: st.Target}

	switch mode {
	case camera.Orbit:
		const limit = gomath.Pi/2 - 0.01
		s.Pitch = c.opts.OrbitPitch
		s.MinPitch, s.MaxPitch = -limit, limit
		s.MinRadius, s.MaxRadius = c.opts.MinRadius, c.opts.MaxRadius
	case camera.Tabletop:
		s.Pitch = c.opts.TabletopPitch
		s.MinPitch, s.MaxPitch = 0, gomath.Pi/2
		s.MinRadius, s.MaxRadius = c.opts.MinRadius, c.opts.MaxRadius
	case camera.Walk:
		s.Ellipsoid = c.opts.WalkEllipsoid
		s.CheckCollisions = true
		s.ApplyGravity = true
		s.Gravity = c.opts.Gravity
		s.GroundY = c.opts.GroundY
	case camera.Fly:
	}
	return s
}
