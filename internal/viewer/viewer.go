// Package viewer runs the interactive viewport: an SDL window, the OpenGL
// engine and a workspace driven by keyboard and mouse.
package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/assets"
	"github.com/Faultbox/archviz/internal/config"
	"github.com/Faultbox/archviz/internal/engine/debug"
	"github.com/Faultbox/archviz/internal/engine/glbackend"
	"github.com/Faultbox/archviz/internal/engine/input"
	"github.com/Faultbox/archviz/internal/engine/picking"
	"github.com/Faultbox/archviz/internal/engine/window"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/internal/metrics"
	"github.com/Faultbox/archviz/internal/viewer/controls"
	"github.com/Faultbox/archviz/internal/workspace"
)

// Viewer owns the window, the GL engine and the workspace.
type Viewer struct {
	window   *window.Window
	engine   *glbackend.Engine
	input    *input.Input
	ws       *workspace.Workspace
	controls *controls.Dispatcher
	shots    *debug.Screenshots

	mouseX, mouseY int
	running        bool
}

// New opens the window and builds the workspace from cfg. rec may be nil.
func New(cfg *config.Config, rec *metrics.Recorder) (*Viewer, error) {
	opts, err := workspace.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Recorder = rec

	v := &Viewer{input: input.New()}

	v.window, err = window.New(window.Config{
		Title:      "ArchViz",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := v.window.DrawableSize()
	v.engine, err = glbackend.New(w, h, glbackend.DefaultOptions())
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.ws, err = workspace.New(v.engine, opts)
	if err != nil {
		v.engine.Close()
		v.window.Close()
		return nil, err
	}
	v.controls = controls.NewDispatcher(v.ws, nil)

	v.shots = debug.NewScreenshots(filepath.Join(config.ConfigDir(), "screenshots"), "viewport")

	logger.Info("viewer initialized")
	return v, nil
}

// Load loads each source, logging failures.
func (v *Viewer) Load(ctx context.Context, sources []assets.Source) {
	for _, src := range sources {
		if _, err := v.ws.LoadAsset(ctx, src); err != nil {
			logger.Error("model load failed", zap.Stringer("source", src), zap.Error(err))
		}
	}
	if len(sources) > 0 {
		v.controls.Fit()
	}
}

// Run renders until the window closes, Escape is pressed or ctx ends.
// Configuration updates adjust the target frame rate live.
func (v *Viewer) Run(ctx context.Context, updates <-chan *config.Config) error {
	v.running = true
	titleAt := time.Now()

	logger.Info("starting render loop")
	for v.running {
		select {
		case <-ctx.Done():
			v.running = false
			continue
		case cfg, ok := <-updates:
			if ok {
				v.ws.SetTargetFrameRate(cfg.Quality.TargetFPS)
				logger.Info("config reloaded", zap.Float64("targetFps", cfg.Quality.TargetFPS))
			} else {
				updates = nil
			}
		default:
		}

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.move()

		v.engine.RenderFrame(time.Now())
		v.window.SwapBuffers()

		if time.Since(titleAt) >= time.Second {
			q := v.ws.Quality()
			v.window.SetTitle(fmt.Sprintf("ArchViz | %s | %.0f/%.0f fps | scale %.2f",
				v.ws.NavigationMode(), q.CurrentFPS, q.TargetFPS, q.Scale))
			titleAt = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, ev := range v.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			v.engine.Resize(w, h)

		case input.EventKeyDown:
			v.perform(v.controls.Press(sdl.GetScancodeName(ev.Key)))

		case input.EventMouseMove:
			v.mouseX, v.mouseY = ev.MouseX, ev.MouseY
			if m := v.controls.Controls(); m != nil && v.input.Dragging(sdl.BUTTON_LEFT) {
				m.HandleDrag(float32(ev.DX), float32(ev.DY))
			}

		case input.EventMouseWheel:
			if m := v.controls.Controls(); m != nil {
				m.HandleZoom(ev.Wheel)
			}
		}
	}
}

func (v *Viewer) move() {
	m := v.controls.Controls()
	if m == nil {
		return
	}
	f, r, u := v.controls.Movement(func(key string) bool {
		return v.input.IsKeyHeld(sdl.GetScancodeFromName(key))
	})
	if f != 0 || r != 0 || u != 0 {
		m.HandleMovement(f, r, u)
	}
}

// perform handles the actions the dispatcher leaves to the window owner.
func (v *Viewer) perform(a controls.Action) {
	switch a {
	case controls.ActionQuit:
		v.running = false
	case controls.ActionToggleBounds:
		v.engine.ShowBounds = !v.engine.ShowBounds
	case controls.ActionPlaneAtCursor:
		v.planeAtCursor()
	case controls.ActionScreenshot:
		pixels, w, h := v.engine.ReadPixels()
		path, err := v.shots.Save(pixels, w, h)
		if err != nil {
			logger.Error("screenshot failed", zap.Error(err))
			return
		}
		logger.Info("screenshot saved", zap.String("path", path))
	case controls.ActionExport:
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(v.ws.ExportViewportState()); err != nil {
			logger.Error("state export failed", zap.Error(err))
		}
	}
}

// planeAtCursor cuts the model under the cursor with a plane facing the
// camera.
func (v *Viewer) planeAtCursor() {
	cam := v.ws.Camera()
	if cam == nil {
		return
	}
	w, h := v.engine.Size()
	ww, wh := v.window.Size()
	x, y := picking.PointsToPixels(float32(v.mouseX), float32(v.mouseY), ww, wh, w, h)
	ray := picking.ScreenToRay(picking.View{
		Position: cam.Position(),
		Forward:  cam.Forward(),
		FovY:     v.engine.FovY(),
		Width:    float32(w),
		Height:   float32(h),
	}, x, y)

	hit, ok := picking.Pick(ray, v.engine.PickableMeshes())
	if !ok {
		logger.Debug("no mesh under cursor")
		return
	}
	if err := v.ws.AddSectionPlane(cam.Forward().Negate(), hit.Point); err != nil {
		logger.Warn("section plane rejected", zap.Error(err))
	}
}

// Close tears down the workspace, the renderer and the window.
func (v *Viewer) Close() {
	logger.Info("closing viewer")
	v.ws.Dispose()
	v.engine.Close()
	v.window.Close()
}
