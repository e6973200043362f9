// Package profile defines the fixed ladder of rendering quality profiles the
// adaptive controller moves between, and YAML tuning of their settings.
package profile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// The four profile names, in descending quality order. The ladder never
// contains anything else.
const (
	Ultra       = "ultra"
	Balanced    = "balanced"
	Performance = "performance"
	Minimal     = "minimal"
)

var (
	ErrBadLadder   = errors.New("profile: ladder must contain exactly ultra, balanced, performance, minimal in order")
	ErrBadSettings = errors.New("profile: invalid quality settings")
)

// Quality is the immutable bundle of settings one profile grants a renderer.
type Quality struct {
	RenderScale    float64 `yaml:"render_scale"`    // canvas dimension factor (0-1]
	DataDecimation int     `yaml:"data_decimation"` // stride for generic record arrays
	UpdateRate     float64 `yaml:"update_rate"`     // target frame rate, Hz
	Smoothing      float64 `yaml:"smoothing"`       // temporal smoothing factor [0,1]
	AntiAliasing   bool    `yaml:"anti_aliasing"`
	Shadows        bool    `yaml:"shadows"`
	Glow           bool    `yaml:"glow"`
	Animations     bool    `yaml:"animations"`
	MaxDataPoints  int     `yaml:"max_data_points"`
}

// Triggers are the live-metric thresholds that push the controller off a
// profile: breaching any of them while on this profile requests a downgrade.
type Triggers struct {
	FPSThreshold      float64 `yaml:"fps_threshold"`
	CPUThreshold      float64 `yaml:"cpu_threshold"`
	MemoryThresholdMB float64 `yaml:"memory_threshold_mb"`
}

type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Quality     Quality  `yaml:"quality"`
	Triggers    Triggers `yaml:"triggers"`
}

// DefaultLadder returns the built-in profile ladder, highest quality first.
// Callers receive a fresh copy and may tune settings before constructing a
// controller.
func DefaultLadder() []Profile {
	return []Profile{
		{
			Name:        Ultra,
			Description: "full fidelity for machines with headroom",
			Quality: Quality{
				RenderScale:    1.0,
				DataDecimation: 1,
				UpdateRate:     60,
				Smoothing:      0.9,
				AntiAliasing:   true,
				Shadows:        true,
				Glow:           true,
				Animations:     true,
				MaxDataPoints:  2048,
			},
			Triggers: Triggers{FPSThreshold: 45, CPUThreshold: 70, MemoryThresholdMB: 800},
		},
		{
			Name:        Balanced,
			Description: "default trade-off between fidelity and throughput",
			Quality: Quality{
				RenderScale:    0.85,
				DataDecimation: 2,
				UpdateRate:     60,
				Smoothing:      0.8,
				AntiAliasing:   true,
				Shadows:        true,
				Glow:           false,
				Animations:     true,
				MaxDataPoints:  1024,
			},
			Triggers: Triggers{FPSThreshold: 30, CPUThreshold: 80, MemoryThresholdMB: 1000},
		},
		{
			Name:        Performance,
			Description: "reduced fidelity to hold frame rate under load",
			Quality: Quality{
				RenderScale:    0.7,
				DataDecimation: 4,
				UpdateRate:     30,
				Smoothing:      0.6,
				AntiAliasing:   false,
				Shadows:        false,
				Glow:           false,
				Animations:     true,
				MaxDataPoints:  512,
			},
			Triggers: Triggers{FPSThreshold: 20, CPUThreshold: 90, MemoryThresholdMB: 1200},
		},
		{
			Name:        Minimal,
			Description: "bare rendering for constrained machines",
			Quality: Quality{
				RenderScale:    0.5,
				DataDecimation: 8,
				UpdateRate:     24,
				Smoothing:      0.4,
				AntiAliasing:   false,
				Shadows:        false,
				Glow:           false,
				Animations:     false,
				MaxDataPoints:  256,
			},
			Triggers: Triggers{FPSThreshold: 10, CPUThreshold: 95, MemoryThresholdMB: 1500},
		},
	}
}

// Index returns the position of name in the ladder, or -1.
func Index(ladder []Profile, name string) int {
	for i, p := range ladder {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks that the ladder keeps the fixed four names in order and
// every profile carries usable settings.
func Validate(ladder []Profile) error {
	want := []string{Ultra, Balanced, Performance, Minimal}
	if len(ladder) != len(want) {
		return ErrBadLadder
	}
	for i, p := range ladder {
		if p.Name != want[i] {
			return ErrBadLadder
		}
		q := p.Quality
		if q.RenderScale <= 0 || q.RenderScale > 1 {
			return fmt.Errorf("%w: %s render_scale %v", ErrBadSettings, p.Name, q.RenderScale)
		}
		if q.DataDecimation < 1 {
			return fmt.Errorf("%w: %s data_decimation %d", ErrBadSettings, p.Name, q.DataDecimation)
		}
		if q.UpdateRate <= 0 {
			return fmt.Errorf("%w: %s update_rate %v", ErrBadSettings, p.Name, q.UpdateRate)
		}
		if q.MaxDataPoints < 1 {
			return fmt.Errorf("%w: %s max_data_points %d", ErrBadSettings, p.Name, q.MaxDataPoints)
		}
	}
	return nil
}

type ladderFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Load reads a tuned ladder from a YAML file. The file must describe the
// full fixed ladder; partial files are rejected rather than silently merged.
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f ladderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	if err := Validate(f.Profiles); err != nil {
		return nil, err
	}
	return f.Profiles, nil
}

// Save writes a ladder to a YAML file, e.g. to seed a tuning file from the
// defaults.
func Save(path string, ladder []Profile) error {
	if err := Validate(ladder); err != nil {
		return err
	}
	data, err := yaml.Marshal(ladderFile{Profiles: ladder})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
