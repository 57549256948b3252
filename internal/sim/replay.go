package sim

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/assets"
	"github.com/Faultbox/archviz/internal/engine/headless"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/internal/navigation"
	"github.com/Faultbox/archviz/internal/workspace"
	"github.com/Faultbox/archviz/pkg/math"
)

// Runner replays traces on a fresh headless workspace.
type Runner struct {
	Engine    *headless.Engine
	Workspace *workspace.Workspace

	ids   []string
	nowMs float64
}

// NewRunner creates the headless engine and the workspace on it.
func NewRunner(opts workspace.Options) (*Runner, error) {
	e := headless.New()
	ws, err := workspace.New(e, opts)
	if err != nil {
		return nil, err
	}
	return &Runner{Engine: e, Workspace: ws}, nil
}

// Run loads the trace models and replays its steps, calling emit with the
// viewport state after each step. Model load failures are logged and the
// model's slot left empty, like a user dismissing an error dialog.
func (r *Runner) Run(ctx context.Context, t *Trace, emit func(step int, st workspace.ViewportState) error) error {
	r.ids = make([]string, len(t.Models))
	for i, ref := range t.Models {
		id, err := r.Workspace.LoadAsset(ctx, assets.SourceFor(ref))
		if err != nil {
			logger.Warn("trace model skipped", zap.String("model", ref), zap.Error(err))
			continue
		}
		r.ids[i] = id
	}

	for i, s := range t.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(s); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if emit != nil {
			if err := emit(i, r.Workspace.ExportViewportState()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) step(s Step) error {
	switch {
	case s.Frames != nil:
		r.frames(*s.Frames)
	case s.Mode != "":
		mode, err := navigation.ParseMode(strings.TrimSpace(s.Mode))
		if err != nil {
			return err
		}
		if !r.Workspace.SetNavigationMode(mode) {
			logger.Warn("trace mode change refused", zap.Stringer("mode", mode))
		}
	case s.Plane != nil:
		return r.Workspace.AddSectionPlane(math.Vec3FromArray(s.Plane.Normal), math.Vec3FromArray(s.Plane.Point))
	case s.ClearPlanes:
		r.Workspace.RemoveAllSectionPlanes()
	case s.TargetFPS != nil:
		r.Workspace.SetTargetFrameRate(*s.TargetFPS)
	case s.Unload != nil:
		if id := r.ids[*s.Unload]; id != "" {
			r.Workspace.UnloadAsset(id)
			r.ids[*s.Unload] = ""
		}
	}
	return nil
}

func (r *Runner) frames(f Frames) {
	frameMs := 1000 / f.FPS
	end := r.nowMs + float64(f.Duration.Milliseconds())
	for r.nowMs < end {
		r.nowMs += frameMs
		r.Engine.Tick(frameMs, r.nowMs)
	}
}

// Close disposes the workspace.
func (r *Runner) Close() {
	r.Workspace.Dispose()
}
