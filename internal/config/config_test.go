package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	if cfg.Quality.TargetFPS != 60 {
		t.Errorf("expected target fps 60, got %v", cfg.Quality.TargetFPS)
	}
	if cfg.Quality.StepUp != 0.1 || cfg.Quality.StepDown != 0.05 {
		t.Errorf("expected steps 0.1/0.05, got %v/%v", cfg.Quality.StepUp, cfg.Quality.StepDown)
	}
	if cfg.Quality.MinScale != 1 || cfg.Quality.MaxScale != 2 {
		t.Errorf("expected scale range [1, 2], got [%v, %v]", cfg.Quality.MinScale, cfg.Quality.MaxScale)
	}
	if cfg.Quality.Window != time.Second {
		t.Errorf("expected 1s window, got %v", cfg.Quality.Window)
	}

	want := []float32{0, 10, 20, 100}
	if len(cfg.LOD.Thresholds) != len(want) {
		t.Fatalf("expected thresholds %v, got %v", want, cfg.LOD.Thresholds)
	}
	for i := range want {
		if cfg.LOD.Thresholds[i] != want[i] {
			t.Errorf("threshold %d: expected %v, got %v", i, want[i], cfg.LOD.Thresholds[i])
		}
	}

	if cfg.Scene.NormalizeBudget != 10 {
		t.Errorf("expected normalize budget 10, got %v", cfg.Scene.NormalizeBudget)
	}
	if cfg.Navigation.InitialMode != "orbit" {
		t.Errorf("expected initial mode orbit, got %s", cfg.Navigation.InitialMode)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

quality:
  target_fps: 30
  step_up: 0.2
  window: 500ms
  ambient_occlusion: false

lod:
  thresholds: [0, 5, 50]

clipping:
  visualize: false

navigation:
  initial_mode: tabletop

logging:
  level: "debug"
  log_file: "viewer.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Quality.TargetFPS != 30 {
		t.Errorf("expected target fps 30, got %v", cfg.Quality.TargetFPS)
	}
	if cfg.Quality.StepUp != 0.2 {
		t.Errorf("expected step up 0.2, got %v", cfg.Quality.StepUp)
	}
	// Unset keys keep their defaults.
	if cfg.Quality.StepDown != 0.05 {
		t.Errorf("expected default step down 0.05, got %v", cfg.Quality.StepDown)
	}
	if cfg.Quality.Window != 500*time.Millisecond {
		t.Errorf("expected 500ms window, got %v", cfg.Quality.Window)
	}
	if cfg.Quality.AmbientOcclusion {
		t.Error("expected ambient occlusion to be disabled")
	}
	if len(cfg.LOD.Thresholds) != 3 || cfg.LOD.Thresholds[2] != 50 {
		t.Errorf("expected thresholds [0 5 50], got %v", cfg.LOD.Thresholds)
	}
	if cfg.Clipping.Visualize {
		t.Error("expected clipping visualization to be disabled")
	}
	if cfg.Navigation.InitialMode != "tabletop" {
		t.Errorf("expected initial mode tabletop, got %s", cfg.Navigation.InitialMode)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"zero target fps", func(c *Config) { c.Quality.TargetFPS = 0 }, "target_fps"},
		{"inverted scale range", func(c *Config) { c.Quality.MaxScale = 0.5 }, "scale range"},
		{"scale below one", func(c *Config) { c.Quality.MinScale = 0.5 }, "scale range"},
		{"scale above two", func(c *Config) { c.Quality.MaxScale = 4 }, "scale range"},
		{"min scale above two", func(c *Config) { c.Quality.MinScale, c.Quality.MaxScale = 3, 3 }, "scale range"},
		{"duplicate thresholds", func(c *Config) { c.LOD.Thresholds = []float32{0, 10, 10} }, "strictly increasing"},
		{"unknown mode", func(c *Config) { c.Navigation.InitialMode = "hover" }, "hover"},
		{"zero budget", func(c *Config) { c.Scene.NormalizeBudget = 0 }, "normalize_budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error mentioning %q, got %v", tt.errSub, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "archviz.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find archviz.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "target fps flag",
			setup: func() { *flagTargetFPS = 30 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Quality.TargetFPS != 30 {
					t.Errorf("expected target fps 30, got %v", cfg.Quality.TargetFPS)
				}
			},
			teardown: func() { *flagTargetFPS = 0 },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "metrics and mode flags",
			setup: func() { *flagMetricsAddr = ":9102"; *flagMode = "fly" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Metrics.Addr != ":9102" {
					t.Errorf("expected metrics addr :9102, got %s", cfg.Metrics.Addr)
				}
				if cfg.Navigation.InitialMode != "fly" {
					t.Errorf("expected initial mode fly, got %s", cfg.Navigation.InitialMode)
				}
			},
			teardown: func() { *flagMetricsAddr = ""; *flagMode = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("quality:\n  target_fps: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected validation error, got nil")
	}
}

func TestLoadFileRejectsScaleAboveTwo(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("quality:\n  max_scale: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFile(configPath)
	if err == nil || !strings.Contains(err.Error(), "scale range") {
		t.Errorf("expected scale range error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Quality.TargetFPS = 45
	cfg.Quality.Window = 750 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Quality.TargetFPS != 45 {
		t.Errorf("expected target fps 45, got %v", loaded.Quality.TargetFPS)
	}
	if loaded.Quality.Window != 750*time.Millisecond {
		t.Errorf("expected 750ms window, got %v", loaded.Quality.Window)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("quality:\n  target_fps: 60\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// An unrelated file in the same directory is ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write other file: %v", err)
	}
	if err := os.WriteFile(path, []byte("quality:\n  target_fps: 24\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Quality.TargetFPS == 24 {
				cancel()
				for range updates {
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}
