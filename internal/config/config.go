package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ecg-synth/internal/model"
	"ecg-synth/internal/preset"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	// Optional: load overrides from another scenario file first (e.g. examples/scenarios/*.yaml).
	// If both BaseFile and Simulation set a field, Simulation wins.
	BaseFile   string    `yaml:"base_file"`
	Preset     string    `yaml:"preset"`
	Simulation Overrides `yaml:"simulation"`
}

// Overrides is a partial SimulationConfig. Nil fields keep the preset's value,
// so false and 0 can still be set explicitly.
type Overrides struct {
	DurationS        *float64                      `yaml:"duration_s,omitempty" json:"duration_s,omitempty"`
	SamplingRateHz   *int                          `yaml:"sampling_rate_hz,omitempty" json:"sampling_rate_hz,omitempty"`
	HeartRateBPM     *float64                      `yaml:"heart_rate_bpm,omitempty" json:"heart_rate_bpm,omitempty"`
	Rhythm           *string                       `yaml:"rhythm,omitempty" json:"rhythm,omitempty"`
	HRVariabilityBPM *float64                      `yaml:"hr_variability_bpm,omitempty" json:"hr_variability_bpm,omitempty"`
	WideQRS          *bool                         `yaml:"wide_qrs,omitempty" json:"wide_qrs,omitempty"`
	RBBB             *bool                         `yaml:"rbbb,omitempty" json:"rbbb,omitempty"`
	LBBB             *bool                         `yaml:"lbbb,omitempty" json:"lbbb,omitempty"`
	STShiftMV        *float64                      `yaml:"st_shift_mv,omitempty" json:"st_shift_mv,omitempty"`
	TInverted        *bool                         `yaml:"t_inverted,omitempty" json:"t_inverted,omitempty"`
	PVCBigeminy      *bool                         `yaml:"pvc_bigeminy,omitempty" json:"pvc_bigeminy,omitempty"`
	BaselineWanderHz *float64                      `yaml:"baseline_wander_hz,omitempty" json:"baseline_wander_hz,omitempty"`
	BaselineWanderMV *float64                      `yaml:"baseline_wander_mv,omitempty" json:"baseline_wander_mv,omitempty"`
	MainsHz          *int                          `yaml:"mains_hz,omitempty" json:"mains_hz,omitempty"`
	NoiseStdMV       *float64                      `yaml:"noise_std_mv,omitempty" json:"noise_std_mv,omitempty"`
	Template         *string                       `yaml:"template,omitempty" json:"template,omitempty"`
	Morphology       map[string]model.WaveOverride `yaml:"morphology,omitempty" json:"morphology,omitempty"`
	Seed             *int64                        `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Load reads, merges and validates a scenario file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges a scenario file, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if c.BaseFile != "" {
		basePath := c.BaseFile
		if !filepath.IsAbs(basePath) {
			// Prefer paths relative to the including file, fall back to the cwd.
			cand := filepath.Join(filepath.Dir(path), basePath)
			if _, err := os.Stat(cand); err == nil {
				basePath = cand
			}
		}
		base, err := readFile(basePath)
		if err != nil {
			return nil, fmt.Errorf("base_file %s: %w", c.BaseFile, err)
		}
		if c.Preset == "" {
			c.Preset = base.Preset
		}
		c.Simulation = MergeOverrides(base.Simulation, c.Simulation)
	}
	return c, nil
}

func readFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

// Validate resolves the config and checks the resulting simulation parameters.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	_, err := c.Resolve()
	return err
}

// Resolve turns the preset name plus overrides into a validated SimulationConfig.
// An unknown preset name resolves to the base configuration.
func (c *Config) Resolve() (model.SimulationConfig, error) {
	cfg := c.Simulation.ApplyTo(preset.Resolve(c.Preset))
	if err := cfg.Validate(); err != nil {
		return model.SimulationConfig{}, err
	}
	return cfg, nil
}

// ApplyTo overlays the set fields of o onto base. Morphology overrides merge per wave
// and per field.
func (o Overrides) ApplyTo(base model.SimulationConfig) model.SimulationConfig {
	out := base.Clone()
	if o.DurationS != nil {
		out.DurationS = *o.DurationS
	}
	if o.SamplingRateHz != nil {
		out.SamplingRateHz = *o.SamplingRateHz
	}
	if o.HeartRateBPM != nil {
		out.HeartRateBPM = *o.HeartRateBPM
	}
	if o.Rhythm != nil {
		out.Rhythm = model.Rhythm(*o.Rhythm)
	}
	if o.HRVariabilityBPM != nil {
		out.HRVariabilityBPM = *o.HRVariabilityBPM
	}
	if o.WideQRS != nil {
		out.Pathology.WideQRS = *o.WideQRS
	}
	if o.RBBB != nil {
		out.Pathology.RBBB = *o.RBBB
	}
	if o.LBBB != nil {
		out.Pathology.LBBB = *o.LBBB
	}
	if o.STShiftMV != nil {
		out.Pathology.STShiftMV = *o.STShiftMV
	}
	if o.TInverted != nil {
		out.Pathology.TInverted = *o.TInverted
	}
	if o.PVCBigeminy != nil {
		out.Pathology.PVCBigeminy = *o.PVCBigeminy
	}
	if o.BaselineWanderHz != nil {
		out.Artifacts.BaselineWanderHz = *o.BaselineWanderHz
	}
	if o.BaselineWanderMV != nil {
		out.Artifacts.BaselineWanderMV = *o.BaselineWanderMV
	}
	if o.MainsHz != nil {
		out.Artifacts.MainsHz = *o.MainsHz
	}
	if o.NoiseStdMV != nil {
		out.Artifacts.NoiseStdMV = *o.NoiseStdMV
	}
	if o.Template != nil {
		out.Template = *o.Template
	}
	if o.Seed != nil {
		out.Seed = *o.Seed
	}
	if len(o.Morphology) > 0 {
		if out.Morphology == nil {
			out.Morphology = make(map[string]model.WaveOverride, len(o.Morphology))
		}
		for k, v := range o.Morphology {
			key := waveKey(k)
			out.Morphology[key] = out.Morphology[key].Merge(v)
		}
	}
	return out
}

// MergeOverrides overlays set fields from override onto base.
// This is used when loading a base_file and then applying the including file's overrides.
func MergeOverrides(base, override Overrides) Overrides {
	out := base
	if override.DurationS != nil {
		out.DurationS = override.DurationS
	}
	if override.SamplingRateHz != nil {
		out.SamplingRateHz = override.SamplingRateHz
	}
	if override.HeartRateBPM != nil {
		out.HeartRateBPM = override.HeartRateBPM
	}
	if override.Rhythm != nil {
		out.Rhythm = override.Rhythm
	}
	if override.HRVariabilityBPM != nil {
		out.HRVariabilityBPM = override.HRVariabilityBPM
	}
	if override.WideQRS != nil {
		out.WideQRS = override.WideQRS
	}
	if override.RBBB != nil {
		out.RBBB = override.RBBB
	}
	if override.LBBB != nil {
		out.LBBB = override.LBBB
	}
	if override.STShiftMV != nil {
		out.STShiftMV = override.STShiftMV
	}
	if override.TInverted != nil {
		out.TInverted = override.TInverted
	}
	if override.PVCBigeminy != nil {
		out.PVCBigeminy = override.PVCBigeminy
	}
	if override.BaselineWanderHz != nil {
		out.BaselineWanderHz = override.BaselineWanderHz
	}
	if override.BaselineWanderMV != nil {
		out.BaselineWanderMV = override.BaselineWanderMV
	}
	if override.MainsHz != nil {
		out.MainsHz = override.MainsHz
	}
	if override.NoiseStdMV != nil {
		out.NoiseStdMV = override.NoiseStdMV
	}
	if override.Template != nil {
		out.Template = override.Template
	}
	if override.Seed != nil {
		out.Seed = override.Seed
	}
	if len(override.Morphology) > 0 {
		merged := make(map[string]model.WaveOverride, len(base.Morphology)+len(override.Morphology))
		for k, v := range base.Morphology {
			key := waveKey(k)
			merged[key] = merged[key].Merge(v)
		}
		for k, v := range override.Morphology {
			key := waveKey(k)
			merged[key] = merged[key].Merge(v)
		}
		out.Morphology = merged
	}
	return out
}

func waveKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}
