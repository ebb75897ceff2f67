package model

import (
	"math"
	"strings"
)

// Rhythm selects the RR interval statistics.
type Rhythm string

const (
	RhythmRegular   Rhythm = "regular"
	RhythmIrregular Rhythm = "irregular"
)

// Normalize maps the empty value to regular and lower-cases the rest.
func (r Rhythm) Normalize() Rhythm {
	s := strings.ToLower(strings.TrimSpace(string(r)))
	if s == "" {
		return RhythmRegular
	}
	return Rhythm(s)
}

func (r Rhythm) IsIrregular() bool { return r.Normalize() == RhythmIrregular }

// PathologyFlags toggles the clinically named morphology and rhythm patterns.
type PathologyFlags struct {
	WideQRS     bool    `yaml:"wide_qrs" json:"wide_qrs"`
	RBBB        bool    `yaml:"rbbb" json:"rbbb"`
	LBBB        bool    `yaml:"lbbb" json:"lbbb"`
	STShiftMV   float64 `yaml:"st_shift_mv" json:"st_shift_mv"`
	TInverted   bool    `yaml:"t_inverted" json:"t_inverted"`
	PVCBigeminy bool    `yaml:"pvc_bigeminy" json:"pvc_bigeminy"`
}

// Widened reports whether any bundle-branch style widening applies.
func (p PathologyFlags) Widened() bool { return p.WideQRS || p.RBBB || p.LBBB }

// ArtifactParams describes the additive overlays applied to the whole record.
// MainsHz is only honored at exactly 50 or 60; anything else disables the hum.
type ArtifactParams struct {
	BaselineWanderHz float64 `yaml:"baseline_wander_hz" json:"baseline_wander_hz"`
	BaselineWanderMV float64 `yaml:"baseline_wander_mv" json:"baseline_wander_mv"`
	MainsHz          int     `yaml:"mains_hz" json:"mains_hz"`
	NoiseStdMV       float64 `yaml:"noise_std_mv" json:"noise_std_mv"`
}

// MainsEnabled reports whether MainsHz names a supported power-line frequency.
func (a ArtifactParams) MainsEnabled() bool { return a.MainsHz == 50 || a.MainsHz == 60 }

// SimulationConfig is the complete parameter bundle for one run.
// Units:
// - DurationS: seconds
// - SamplingRateHz: samples per second
// - HeartRateBPM: beats per minute
// - HRVariabilityBPM: optional beat-to-beat std in bpm (regular rhythm only; 0 = 2% of RR)
type SimulationConfig struct {
	DurationS        float64                 `yaml:"duration_s" json:"duration_s"`
	SamplingRateHz   int                     `yaml:"sampling_rate_hz" json:"sampling_rate_hz"`
	HeartRateBPM     float64                 `yaml:"heart_rate_bpm" json:"heart_rate_bpm"`
	Rhythm           Rhythm                  `yaml:"rhythm" json:"rhythm"`
	HRVariabilityBPM float64                 `yaml:"hr_variability_bpm" json:"hr_variability_bpm"`
	Pathology        PathologyFlags          `yaml:"pathology" json:"pathology"`
	Artifacts        ArtifactParams          `yaml:"artifacts" json:"artifacts"`
	Template         string                  `yaml:"template" json:"template"`
	Morphology       map[string]WaveOverride `yaml:"morphology" json:"morphology,omitempty"`
	Seed             int64                   `yaml:"seed" json:"seed"`
}

// Clone returns a copy that shares no map with c.
func (c SimulationConfig) Clone() SimulationConfig {
	out := c
	if c.Morphology != nil {
		out.Morphology = make(map[string]WaveOverride, len(c.Morphology))
		for k, v := range c.Morphology {
			out.Morphology[k] = v
		}
	}
	return out
}

// SampleCount is floor(duration * fs), or 0 for a non-positive duration.
func (c SimulationConfig) SampleCount() int {
	if c.DurationS <= 0 || c.SamplingRateHz <= 0 {
		return 0
	}
	return int(math.Floor(c.DurationS * float64(c.SamplingRateHz)))
}

// BaseMorphology is the selected template with caller overrides merged in,
// before any pathology flag is applied.
func (c SimulationConfig) BaseMorphology() (Morphology, error) {
	m, err := TemplateMorphology(c.Template)
	if err != nil {
		return Morphology{}, err
	}
	if err := m.ApplyOverrides(c.Morphology); err != nil {
		return Morphology{}, err
	}
	return m, nil
}

// Validate returns a *ConfigurationError for any parameter that cannot be simulated.
// A non-positive duration is valid and yields an empty record.
func (c SimulationConfig) Validate() error {
	if c.SamplingRateHz <= 0 {
		return configErrorf("sampling_rate_hz", "must be > 0, got %d", c.SamplingRateHz)
	}
	if c.HeartRateBPM <= 0 || math.IsNaN(c.HeartRateBPM) || math.IsInf(c.HeartRateBPM, 0) {
		return configErrorf("heart_rate_bpm", "must be > 0, got %g", c.HeartRateBPM)
	}
	if math.IsNaN(c.DurationS) || math.IsInf(c.DurationS, 0) {
		return configErrorf("duration_s", "must be finite")
	}
	switch c.Rhythm.Normalize() {
	case RhythmRegular, RhythmIrregular:
	default:
		return configErrorf("rhythm", "unknown rhythm %q (want regular or irregular)", c.Rhythm)
	}
	if c.HRVariabilityBPM < 0 {
		return configErrorf("hr_variability_bpm", "must be >= 0, got %g", c.HRVariabilityBPM)
	}
	if c.Artifacts.NoiseStdMV < 0 {
		return configErrorf("artifacts.noise_std_mv", "must be >= 0, got %g", c.Artifacts.NoiseStdMV)
	}
	if c.Artifacts.BaselineWanderHz < 0 {
		return configErrorf("artifacts.baseline_wander_hz", "must be >= 0, got %g", c.Artifacts.BaselineWanderHz)
	}
	if c.Artifacts.BaselineWanderMV < 0 {
		return configErrorf("artifacts.baseline_wander_mv", "must be >= 0, got %g", c.Artifacts.BaselineWanderMV)
	}
	if _, err := c.BaseMorphology(); err != nil {
		return err
	}
	return nil
}
