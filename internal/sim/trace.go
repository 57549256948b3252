// Package sim replays scripted viewport sessions against the headless
// engine. A trace is a YAML document of models to load and steps to run;
// each step is one of frames, mode, plane, clear_planes, target_fps or
// unload.
package sim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Trace is a scripted session.
type Trace struct {
	Models []string `yaml:"models"`
	Steps  []Step   `yaml:"steps"`
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	Frames      *Frames  `yaml:"frames,omitempty"`
	Mode        string   `yaml:"mode,omitempty"`
	Plane       *Plane   `yaml:"plane,omitempty"`
	ClearPlanes bool     `yaml:"clear_planes,omitempty"`
	TargetFPS   *float64 `yaml:"target_fps,omitempty"`
	// Unload is the index into Models of the asset to unload.
	Unload *int `yaml:"unload,omitempty"`
}

// Frames renders frames at a steady rate for a duration.
type Frames struct {
	FPS      float64       `yaml:"fps"`
	Duration time.Duration `yaml:"duration"`
}

// Plane adds a section plane.
type Plane struct {
	Normal [3]float32 `yaml:"normal"`
	Point  [3]float32 `yaml:"point"`
}

// ErrInvalidTrace wraps trace validation failures.
var ErrInvalidTrace = errors.New("sim: invalid trace")

// Decode parses and validates a trace.
func Decode(r io.Reader) (*Trace, error) {
	var t Trace
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// ReadFile decodes the trace at path.
func ReadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks that every step sets exactly one action.
func (t *Trace) Validate() error {
	var errs []error
	for i, s := range t.Steps {
		n := 0
		if s.Frames != nil {
			n++
			if s.Frames.FPS <= 0 || s.Frames.Duration <= 0 {
				errs = append(errs, fmt.Errorf("step %d: frames need positive fps and duration", i))
			}
		}
		if s.Mode != "" {
			n++
		}
		if s.Plane != nil {
			n++
		}
		if s.ClearPlanes {
			n++
		}
		if s.TargetFPS != nil {
			n++
		}
		if s.Unload != nil {
			n++
			if *s.Unload < 0 || *s.Unload >= len(t.Models) {
				errs = append(errs, fmt.Errorf("step %d: unload index %d out of range", i, *s.Unload))
			}
		}
		if n != 1 {
			errs = append(errs, fmt.Errorf("step %d: want exactly one action, got %d", i, n))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTrace, err)
	}
	return nil
}
