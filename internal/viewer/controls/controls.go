// Package controls maps key names to viewport operations. Key names are
// SDL scancode names ("W", "Escape", "F12") so bindings stay independent of
// the windowing layer.
package controls

import (
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/internal/workspace"
	"github.com/Faultbox/archviz/pkg/math"
)

// Action is a bindable viewport command.
type Action string

const (
	ActionNone          Action = ""
	ActionQuit          Action = "quit"
	ActionOrbit         Action = "mode.orbit"
	ActionWalk          Action = "mode.walk"
	ActionFly           Action = "mode.fly"
	ActionTabletop      Action = "mode.tabletop"
	ActionPlaneX        Action = "plane.x"
	ActionPlaneY        Action = "plane.y"
	ActionPlaneZ        Action = "plane.z"
	ActionPlaneAtCursor Action = "plane.cursor"
	ActionClearPlanes   Action = "plane.clear"
	ActionFit           Action = "camera.fit"
	ActionFPSUp         Action = "fps.up"
	ActionFPSDown       Action = "fps.down"
	ActionToggleBounds  Action = "debug.bounds"
	ActionScreenshot    Action = "debug.screenshot"
	ActionExport        Action = "state.export"

	ActionForward  Action = "move.forward"
	ActionBackward Action = "move.backward"
	ActionLeft     Action = "move.left"
	ActionRight    Action = "move.right"
	ActionUp       Action = "move.up"
	ActionDown     Action = "move.down"
)

// DefaultBindings returns the stock key map.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"Escape": ActionQuit,
		"1":      ActionOrbit,
		"2":      ActionWalk,
		"3":      ActionFly,
		"4":      ActionTabletop,
		"X":      ActionPlaneX,
		"Y":      ActionPlaneY,
		"Z":      ActionPlaneZ,
		"C":      ActionPlaneAtCursor,
		"R":      ActionClearPlanes,
		"F":      ActionFit,
		"=":      ActionFPSUp,
		"-":      ActionFPSDown,
		"B":      ActionToggleBounds,
		"F12":    ActionScreenshot,
		"P":      ActionExport,
		"W":      ActionForward,
		"S":      ActionBackward,
		"A":      ActionLeft,
		"D":      ActionRight,
		"E":      ActionUp,
		"Q":      ActionDown,
	}
}

// FPSStep is the target frame rate change per key press.
const FPSStep = 5

// Dispatcher applies key presses to a workspace.
type Dispatcher struct {
	ws       *workspace.Workspace
	bindings map[string]Action
}

// NewDispatcher binds keys to ws. A nil map uses DefaultBindings.
func NewDispatcher(ws *workspace.Workspace, bindings map[string]Action) *Dispatcher {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Dispatcher{ws: ws, bindings: bindings}
}

// Lookup returns the action bound to key.
func (d *Dispatcher) Lookup(key string) Action {
	return d.bindings[key]
}

// Press performs the workspace action bound to key and returns the action.
// Actions that need the window or the renderer (quit, screenshots, bounds,
// picking, export) are returned for the caller to perform.
func (d *Dispatcher) Press(key string) Action {
	a := d.bindings[key]
	switch a {
	case ActionOrbit:
		d.ws.SetNavigationMode(camera.Orbit)
	case ActionWalk:
		d.ws.SetNavigationMode(camera.Walk)
	case ActionFly:
		d.ws.SetNavigationMode(camera.Fly)
	case ActionTabletop:
		d.ws.SetNavigationMode(camera.Tabletop)
	case ActionPlaneX:
		d.planeThroughCenter(math.Vec3{X: 1})
	case ActionPlaneY:
		d.planeThroughCenter(math.Vec3{Y: 1})
	case ActionPlaneZ:
		d.planeThroughCenter(math.Vec3{Z: 1})
	case ActionClearPlanes:
		d.ws.RemoveAllSectionPlanes()
	case ActionFit:
		d.Fit()
	case ActionFPSUp:
		d.ws.SetTargetFrameRate(d.ws.Quality().TargetFPS + FPSStep)
	case ActionFPSDown:
		d.ws.SetTargetFrameRate(d.ws.Quality().TargetFPS - FPSStep)
	}
	return a
}

// Movement sums the held movement keys into forward, right and up axes.
func (d *Dispatcher) Movement(held func(key string) bool) (forward, right, up float32) {
	for key, a := range d.bindings {
		if !held(key) {
			continue
		}
		switch a {
		case ActionForward:
			forward++
		case ActionBackward:
			forward--
		case ActionRight:
			right++
		case ActionLeft:
			right--
		case ActionUp:
			up++
		case ActionDown:
			up--
		}
	}
	return forward, right, up
}

// Controls returns the active camera's input model, nil when the camera
// takes no input.
func (d *Dispatcher) Controls() camera.Model {
	c, ok := d.ws.Camera().(engine.Controllable)
	if !ok {
		return nil
	}
	return c.Controls()
}

func (d *Dispatcher) planeThroughCenter(normal math.Vec3) {
	center := math.Vec3{}
	if b := d.ws.Bounds(); !b.IsEmpty() {
		center = b.Center()
	}
	if err := d.ws.AddSectionPlane(normal, center); err != nil {
		logger.Warn("section plane rejected", zap.Error(err))
	}
}

// Fit frames the loaded assets when orbiting.
func (d *Dispatcher) Fit() {
	orbit, ok := d.Controls().(*camera.OrbitCamera)
	b := d.ws.Bounds()
	if !ok || b.IsEmpty() {
		return
	}
	orbit.FitToBounds(b)
}
