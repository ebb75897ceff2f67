// Package preset maps named clinical scenarios to simulation configs.
package preset

import (
	"strings"

	"ecg-synth/internal/model"
)

// Preset is one named scenario: the base config plus scenario-specific changes.
type Preset struct {
	Name        string
	Description string
	apply       func(c *model.SimulationConfig)
}

// Config returns the preset's full configuration.
func (p Preset) Config() model.SimulationConfig {
	c := Base()
	if p.apply != nil {
		p.apply(&c)
	}
	return c
}

// Base is the configuration every preset starts from.
func Base() model.SimulationConfig {
	return model.SimulationConfig{
		DurationS:      8.0,
		SamplingRateHz: 500,
		HeartRateBPM:   70,
		Rhythm:         model.RhythmRegular,
		Artifacts: model.ArtifactParams{
			BaselineWanderHz: 0.25,
			BaselineWanderMV: 0.02,
			NoiseStdMV:       0.02,
		},
		Seed: 13,
	}
}

const DefaultName = "normal"

var catalog = []Preset{
	{
		Name:        "normal",
		Description: "Normal sinus rhythm with light noise and respiratory wander",
	},
	{
		Name:        "afib",
		Description: "AFib-like irregular RR at 90 bpm, no organized P waves",
		apply: func(c *model.SimulationConfig) {
			c.Rhythm = model.RhythmIrregular
			c.HeartRateBPM = 90
		},
	},
	{
		Name:        "lbbb",
		Description: "Left bundle branch block: wide QRS with delayed R",
		apply: func(c *model.SimulationConfig) {
			c.Pathology.WideQRS = true
			c.Pathology.LBBB = true
		},
	},
	{
		Name:        "rbbb",
		Description: "Right bundle branch block: wide QRS with late terminal S",
		apply: func(c *model.SimulationConfig) {
			c.Pathology.WideQRS = true
			c.Pathology.RBBB = true
		},
	},
	{
		Name:        "stemi",
		Description: "ST elevation of 0.2 mV",
		apply: func(c *model.SimulationConfig) {
			c.Pathology.STShiftMV = 0.2
		},
	},
	{
		Name:        "pvc_bigeminy",
		Description: "Every second beat is a premature ventricular contraction",
		apply: func(c *model.SimulationConfig) {
			c.Pathology.PVCBigeminy = true
			c.HeartRateBPM = 72
		},
	},
	{
		Name:        "t_inversion",
		Description: "Inverted T waves",
		apply: func(c *model.SimulationConfig) {
			c.Pathology.TInverted = true
		},
	},
	{
		Name:        "minimal",
		Description: "Clean sum-of-Gaussians beat train, no artifacts",
		apply: func(c *model.SimulationConfig) {
			c.DurationS = 10
			c.Artifacts = model.ArtifactParams{}
		},
	},
	{
		Name:        "toggle_wide_qrs",
		Description: "Wide QRS with light measurement noise, no wander",
		apply: func(c *model.SimulationConfig) {
			c.Pathology.WideQRS = true
			c.Artifacts = model.ArtifactParams{NoiseStdMV: 0.02}
			c.Seed = 0
		},
	},
	{
		Name:        "standard",
		Description: "Standard template at 72 bpm with 2 bpm beat-to-beat variability",
		apply: func(c *model.SimulationConfig) {
			c.DurationS = 12
			c.HeartRateBPM = 72
			c.HRVariabilityBPM = 2.0
			c.Template = model.TemplateStandard
			c.Artifacts.BaselineWanderMV = 0.03
			c.Seed = 42
		},
	},
}

// All lists every preset in catalog order.
func All() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// Names lists the preset names in catalog order.
func Names() []string {
	out := make([]string, len(catalog))
	for i, p := range catalog {
		out[i] = p.Name
	}
	return out
}

// Lookup finds a preset by case-insensitive name.
func Lookup(name string) (Preset, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range catalog {
		if p.Name == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Resolve returns the named preset's config. Unknown names fall back to Base() rather
// than failing, so a typo silently yields the normal scenario.
func Resolve(name string) model.SimulationConfig {
	if p, ok := Lookup(name); ok {
		return p.Config()
	}
	return Base()
}
