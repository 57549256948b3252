// Package quality trades render resolution and post-processing for frame
// rate. Once per aggregation window the controller compares measured FPS with
// the target and moves the resolution scale one step: up (coarser) when the
// frame rate is short, down (finer) otherwise.
package quality

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/logger"
)

// Bounds of the resolution scale. Options outside them are clamped.
const (
	ScaleFloor   = 1.0
	ScaleCeiling = 2.0
)

// Options configures the controller. Degrading steps by StepUp and
// recovering by StepDown.
type Options struct {
	TargetFPS float64
	StepUp    float64
	StepDown  float64
	MinScale  float64
	MaxScale  float64

	// AmbientOcclusion allows the AO pass to be (re)built.
	AmbientOcclusion bool
	// PostProcessing allows bloom and antialiasing to be enabled.
	PostProcessing bool
}

// DefaultOptions returns a 60 FPS target, steps of 0.1 and 0.05 and a scale
// range of [1, 2] with every effect allowed.
func DefaultOptions() Options {
	return Options{
		TargetFPS:        60,
		StepUp:           0.1,
		StepDown:         0.05,
		MinScale:         1,
		MaxScale:         2,
		AmbientOcclusion: true,
		PostProcessing:   true,
	}
}

// Effects is the enabled state of each secondary effect.
type Effects struct {
	Bloom            bool `json:"bloom"`
	Antialias        bool `json:"antialias"`
	AmbientOcclusion bool `json:"ambientOcclusion"`
}

// State is the controller's view of render quality.
type State struct {
	CurrentFPS float64 `json:"currentFps"`
	TargetFPS  float64 `json:"targetFps"`
	Scale      float64 `json:"scale"`
	Effects    Effects `json:"effects"`
}

// CameraSource supplies the camera post-processing passes render through.
type CameraSource interface {
	Active() engine.Camera
}

// Controller adjusts quality. It is driven from the render loop and is not
// safe for concurrent use.
type Controller struct {
	engine  engine.Engine
	cameras CameraSource
	opts    Options
	state   State
}

// NewController applies the initial quality: minimum scale, effects as
// allowed by opts and the AO pass built when allowed.
func NewController(e engine.Engine, cameras CameraSource, opts Options) *Controller {
	opts.MinScale = min(max(opts.MinScale, ScaleFloor), ScaleCeiling)
	opts.MaxScale = min(max(opts.MaxScale, opts.MinScale), ScaleCeiling)

	c := &Controller{
		engine:  e,
		cameras: cameras,
		opts:    opts,
		state: State{
			CurrentFPS: opts.TargetFPS,
			TargetFPS:  opts.TargetFPS,
			Scale:      opts.MinScale,
		},
	}

	e.SetResolutionScale(c.state.Scale)
	c.setEffects(opts.PostProcessing)
	if opts.AmbientOcclusion {
		c.buildAO()
	} else {
		c.destroyAO()
	}
	return c
}

// Adjust moves quality one step based on fps and returns the new state.
func (c *Controller) Adjust(fps float64) State {
	c.state.CurrentFPS = fps
	prev := c.state.Scale

	if fps < c.state.TargetFPS {
		c.state.Scale = min(c.state.Scale+c.opts.StepUp, c.opts.MaxScale)
		c.setEffects(false)
		c.destroyAO()
	} else {
		c.state.Scale = max(c.state.Scale-c.opts.StepDown, c.opts.MinScale)
		if c.opts.PostProcessing {
			c.setEffects(true)
		}
		if c.opts.AmbientOcclusion && !c.engine.HasPass(engine.PassAmbientOcclusion) {
			c.buildAO()
		}
	}

	c.engine.SetResolutionScale(c.state.Scale)

	if c.state.Scale != prev {
		logger.Debug("resolution scale adjusted",
			zap.Float64("fps", fps),
			zap.Float64("target", c.state.TargetFPS),
			zap.Float64("scale", c.state.Scale))
	}
	return c.state
}

// SetTargetFPS changes the frame rate Adjust aims for. Values below 1 are
// raised to 1.
func (c *Controller) SetTargetFPS(fps float64) {
	if fps < 1 {
		logger.Warn("target frame rate raised to 1", zap.Float64("requested", fps))
		fps = 1
	}
	c.state.TargetFPS = fps
}

// State returns the current quality state.
func (c *Controller) State() State {
	return c.state
}

// CameraChanged re-binds the AO pass to cam.
func (c *Controller) CameraChanged(cam engine.Camera) {
	if !c.engine.HasPass(engine.PassAmbientOcclusion) {
		return
	}
	if err := c.engine.DestroyPass(engine.PassAmbientOcclusion); err != nil {
		logger.Debug("ambient occlusion teardown skipped", zap.Error(err))
	}
	if err := c.engine.CreatePass(engine.PassAmbientOcclusion, cam); err != nil {
		logger.Warn("ambient occlusion rebind failed", zap.Error(err))
	}
	c.state.Effects.AmbientOcclusion = c.engine.HasPass(engine.PassAmbientOcclusion)
}

func (c *Controller) setEffects(enabled bool) {
	for _, fx := range []engine.Effect{engine.EffectBloom, engine.EffectAntialias} {
		err := c.engine.SetEffectEnabled(fx, enabled)
		if errors.Is(err, engine.ErrPassMissing) {
			logger.Debug("effect toggle skipped: no pipeline", zap.String("effect", string(fx)))
			continue
		}
		if err != nil {
			logger.Warn("effect toggle failed", zap.String("effect", string(fx)), zap.Error(err))
			continue
		}
		switch fx {
		case engine.EffectBloom:
			c.state.Effects.Bloom = enabled
		case engine.EffectAntialias:
			c.state.Effects.Antialias = enabled
		}
	}
}

func (c *Controller) destroyAO() {
	if c.engine.HasPass(engine.PassAmbientOcclusion) {
		if err := c.engine.DestroyPass(engine.PassAmbientOcclusion); err != nil {
			logger.Warn("ambient occlusion teardown failed", zap.Error(err))
		}
	}
	c.state.Effects.AmbientOcclusion = c.engine.HasPass(engine.PassAmbientOcclusion)
}

func (c *Controller) buildAO() {
	var cam engine.Camera
	if c.cameras != nil {
		cam = c.cameras.Active()
	}
	if cam == nil {
		logger.Warn("ambient occlusion rebuild skipped: no active camera")
		return
	}
	if err := c.engine.CreatePass(engine.PassAmbientOcclusion, cam); err != nil {
		logger.Warn("ambient occlusion rebuild failed", zap.Error(err))
	}
	c.state.Effects.AmbientOcclusion = c.engine.HasPass(engine.PassAmbientOcclusion)
}
