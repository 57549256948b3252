// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Quality    QualityConfig    `yaml:"quality"`
	LOD        LODConfig        `yaml:"lod"`
	Scene      SceneConfig      `yaml:"scene"`
	Clipping   ClippingConfig   `yaml:"clipping"`
	Navigation NavigationConfig `yaml:"navigation"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// QualityConfig drives the adaptive resolution controller.
type QualityConfig struct {
	TargetFPS float64       `yaml:"target_fps"`
	StepUp    float64       `yaml:"step_up"`   // scale increase per slow window
	StepDown  float64       `yaml:"step_down"` // scale decrease per fast window
	MinScale  float64       `yaml:"min_scale"`
	MaxScale  float64       `yaml:"max_scale"`
	Window    time.Duration `yaml:"window"`

	// AmbientOcclusion allows the AO pass to be rebuilt when frame rate
	// recovers. PostProcessing gates bloom and antialiasing.
	AmbientOcclusion bool `yaml:"ambient_occlusion"`
	PostProcessing   bool `yaml:"post_processing"`
}

// LODConfig holds level-of-detail settings.
type LODConfig struct {
	Enabled    bool      `yaml:"enabled"`
	Thresholds []float32 `yaml:"thresholds"`
}

// SceneConfig holds asset normalization settings.
type SceneConfig struct {
	NormalizeBudget float32 `yaml:"normalize_budget"`
}

// ClippingConfig holds section plane visualization settings.
type ClippingConfig struct {
	Visualize   bool    `yaml:"visualize"`
	QuadSize    float32 `yaml:"quad_size"`
	QuadOpacity float32 `yaml:"quad_opacity"`
}

// NavigationConfig holds camera mode settings. Pitches are degrees of
// elevation above the horizon.
type NavigationConfig struct {
	InitialMode   string     `yaml:"initial_mode"`
	MinRadius     float32    `yaml:"min_radius"`
	MaxRadius     float32    `yaml:"max_radius"`
	OrbitPitch    float32    `yaml:"orbit_pitch"`
	TabletopPitch float32    `yaml:"tabletop_pitch"`
	WalkEllipsoid [3]float32 `yaml:"walk_ellipsoid"`
	Gravity       float32    `yaml:"gravity"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Quality: QualityConfig{
			TargetFPS:        60,
			StepUp:           0.1,
			StepDown:         0.05,
			MinScale:         1.0,
			MaxScale:         2.0,
			Window:           time.Second,
			AmbientOcclusion: true,
			PostProcessing:   true,
		},
		LOD: LODConfig{
			Enabled:    true,
			Thresholds: []float32{0, 10, 20, 100},
		},
		Scene: SceneConfig{
			NormalizeBudget: 10,
		},
		Clipping: ClippingConfig{
			Visualize:   true,
			QuadSize:    10,
			QuadOpacity: 0.3,
		},
		Navigation: NavigationConfig{
			InitialMode:   "orbit",
			MinRadius:     1,
			MaxRadius:     100,
			OrbitPitch:    45,
			TabletopPitch: 60,
			WalkEllipsoid: [3]float32{0.5, 1, 0.5},
			Gravity:       -9.81,
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that would put a controller into an
// unusable state.
func (c *Config) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}

	q := c.Quality
	if q.TargetFPS < 1 {
		errs = append(errs, fmt.Errorf("quality.target_fps %v must be at least 1", q.TargetFPS))
	}
	if q.StepUp <= 0 || q.StepDown <= 0 {
		errs = append(errs, errors.New("quality steps must be positive"))
	}
	if q.MinScale < 1 || q.MaxScale < q.MinScale || q.MaxScale > 2 {
		errs = append(errs, fmt.Errorf("quality scale range [%v, %v] is invalid", q.MinScale, q.MaxScale))
	}
	if q.Window <= 0 {
		errs = append(errs, errors.New("quality.window must be positive"))
	}

	for i := 1; i < len(c.LOD.Thresholds); i++ {
		if c.LOD.Thresholds[i] <= c.LOD.Thresholds[i-1] {
			errs = append(errs, fmt.Errorf("lod.thresholds must be strictly increasing at index %d", i))
			break
		}
	}

	if c.Scene.NormalizeBudget <= 0 {
		errs = append(errs, errors.New("scene.normalize_budget must be positive"))
	}

	switch c.Navigation.InitialMode {
	case "orbit", "walk", "fly", "tabletop":
	default:
		errs = append(errs, fmt.Errorf("navigation.initial_mode %q is not a navigation mode", c.Navigation.InitialMode))
	}
	if c.Navigation.MinRadius <= 0 || c.Navigation.MaxRadius < c.Navigation.MinRadius {
		errs = append(errs, errors.New("navigation radius limits are invalid"))
	}

	return errors.Join(errs...)
}
