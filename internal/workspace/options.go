package workspace

import (
	"context"
	gomath "math"

	"github.com/Faultbox/archviz/internal/assets"
	"github.com/Faultbox/archviz/internal/clipping"
	"github.com/Faultbox/archviz/internal/config"
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/camera"
	"github.com/Faultbox/archviz/internal/frametimer"
	"github.com/Faultbox/archviz/internal/metrics"
	"github.com/Faultbox/archviz/internal/navigation"
	"github.com/Faultbox/archviz/internal/quality"
	"github.com/Faultbox/archviz/internal/scene"
	"github.com/Faultbox/archviz/pkg/math"
)

// Loader fetches and decodes model sources. *assets.Loader implements it.
type Loader interface {
	Load(ctx context.Context, src assets.Source) ([]engine.Geometry, error)
}

// Options configures a Workspace.
type Options struct {
	Quality     quality.Options
	Navigation  navigation.Options
	InitialMode camera.Kind
	Clipping    clipping.Options

	NormalizeBudget float32
	LODEnabled      bool
	LODThresholds   []float32
	WindowMs        float64

	// Loader defaults to assets.NewLoader(nil).
	Loader Loader
	// Recorder may be nil.
	Recorder *metrics.Recorder
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return Options{
		Quality:         quality.DefaultOptions(),
		Navigation:      navigation.DefaultOptions(),
		InitialMode:     camera.Orbit,
		Clipping:        clipping.DefaultOptions(),
		NormalizeBudget: scene.DefaultBudget,
		LODEnabled:      true,
		LODThresholds:   scene.DefaultThresholds,
		WindowMs:        frametimer.DefaultWindowMs,
	}
}

// OptionsFromConfig converts a loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := navigation.ParseMode(cfg.Navigation.InitialMode)
	if err != nil {
		return Options{}, err
	}

	q := cfg.Quality
	n := cfg.Navigation
	nav := navigation.DefaultOptions()
	nav.MinRadius = n.MinRadius
	nav.MaxRadius = n.MaxRadius
	nav.OrbitPitch = radians(n.OrbitPitch)
	nav.TabletopPitch = radians(n.TabletopPitch)
	nav.WalkEllipsoid = math.Vec3FromArray(n.WalkEllipsoid)
	nav.Gravity = n.Gravity

	return Options{
		Quality: quality.Options{
			TargetFPS:        q.TargetFPS,
			StepUp:           q.StepUp,
			StepDown:         q.StepDown,
			MinScale:         q.MinScale,
			MaxScale:         q.MaxScale,
			AmbientOcclusion: q.AmbientOcclusion,
			PostProcessing:   q.PostProcessing,
		},
		Navigation:  nav,
		InitialMode: mode,
		Clipping: clipping.Options{
			Visualize:   cfg.Clipping.Visualize,
			QuadSize:    cfg.Clipping.QuadSize,
			QuadOpacity: cfg.Clipping.QuadOpacity,
		},
		NormalizeBudget: cfg.Scene.NormalizeBudget,
		LODEnabled:      cfg.LOD.Enabled,
		LODThresholds:   cfg.LOD.Thresholds,
		WindowMs:        float64(q.Window.Milliseconds()),
	}, nil
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}
