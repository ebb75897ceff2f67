package model

import (
	"sort"
	"strings"
)

// WaveName identifies one deflection of a beat.
type WaveName int

const (
	WaveP WaveName = iota
	WaveQ
	WaveR
	WaveS
	WaveT

	NumWaves = 5
)

var waveLetters = [NumWaves]string{"P", "Q", "R", "S", "T"}

// WaveNames lists the waves in beat order.
func WaveNames() []WaveName {
	return []WaveName{WaveP, WaveQ, WaveR, WaveS, WaveT}
}

func (w WaveName) String() string {
	if w < 0 || int(w) >= NumWaves {
		return "?"
	}
	return waveLetters[w]
}

// ParseWaveName accepts a single wave letter, case-insensitive.
func ParseWaveName(s string) (WaveName, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for i, l := range waveLetters {
		if l == key {
			return WaveName(i), nil
		}
	}
	return 0, configErrorf("morphology", "unknown wave %q (want one of P, Q, R, S, T)", s)
}

// WaveComponent is one Gaussian pulse of a beat.
// Units:
// - Amplitude: mV (signed)
// - Offset: seconds relative to the beat's R peak
// - Width: seconds (Gaussian sigma)
type WaveComponent struct {
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Offset    float64 `yaml:"offset" json:"offset"`
	Width     float64 `yaml:"width" json:"width"`
}

// WaveOverride is a partial update of a WaveComponent. Nil fields are left untouched.
type WaveOverride struct {
	Amplitude *float64 `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`
	Offset    *float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
	Width     *float64 `yaml:"width,omitempty" json:"width,omitempty"`
}

// IsZero reports whether the override sets no field.
func (o WaveOverride) IsZero() bool {
	return o.Amplitude == nil && o.Offset == nil && o.Width == nil
}

// Merge overlays the set fields of other onto o.
func (o WaveOverride) Merge(other WaveOverride) WaveOverride {
	out := o
	if other.Amplitude != nil {
		out.Amplitude = other.Amplitude
	}
	if other.Offset != nil {
		out.Offset = other.Offset
	}
	if other.Width != nil {
		out.Width = other.Width
	}
	return out
}

// Morphology holds all five waves of a beat. It is a value type; copies are independent.
type Morphology [NumWaves]WaveComponent

func (m Morphology) Wave(w WaveName) WaveComponent { return m[w] }

// Apply updates only the fields set in o on wave w.
func (m *Morphology) Apply(w WaveName, o WaveOverride) error {
	if w < 0 || int(w) >= NumWaves {
		return configErrorf("morphology", "unknown wave index %d", int(w))
	}
	next := m[w]
	if o.Amplitude != nil {
		next.Amplitude = *o.Amplitude
	}
	if o.Offset != nil {
		next.Offset = *o.Offset
	}
	if o.Width != nil {
		next.Width = *o.Width
	}
	if !(next.Width > 0) {
		return configErrorf("morphology."+w.String()+".width", "must be > 0, got %g", next.Width)
	}
	m[w] = next
	return nil
}

// ApplyOverrides validates every wave name before changing anything, then applies the
// overrides in beat order. On error m is left unchanged.
func (m *Morphology) ApplyOverrides(overrides map[string]WaveOverride) error {
	if len(overrides) == 0 {
		return nil
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byWave := make(map[WaveName]WaveOverride, len(keys))
	for _, k := range keys {
		w, err := ParseWaveName(k)
		if err != nil {
			return err
		}
		byWave[w] = byWave[w].Merge(overrides[k])
	}

	next := *m
	for _, w := range WaveNames() {
		o, ok := byWave[w]
		if !ok {
			continue
		}
		if err := next.Apply(w, o); err != nil {
			return err
		}
	}
	*m = next
	return nil
}

// Validate checks that every wave has a positive width.
func (m Morphology) Validate() error {
	for _, w := range WaveNames() {
		if !(m[w].Width > 0) {
			return configErrorf("morphology."+w.String()+".width", "must be > 0, got %g", m[w].Width)
		}
	}
	return nil
}

// DefaultMorphology is the reference beat, R peak at offset 0.
func DefaultMorphology() Morphology {
	return Morphology{
		WaveP: {Amplitude: 0.20, Offset: -0.200, Width: 0.025},
		WaveQ: {Amplitude: -0.05, Offset: -0.040, Width: 0.010},
		WaveR: {Amplitude: 1.00, Offset: 0.000, Width: 0.012},
		WaveS: {Amplitude: -0.15, Offset: 0.040, Width: 0.010},
		WaveT: {Amplitude: 0.30, Offset: 0.300, Width: 0.060},
	}
}

// StandardMorphology has a slightly taller P and T and an earlier Q.
func StandardMorphology() Morphology {
	m := DefaultMorphology()
	m[WaveP].Amplitude = 0.25
	m[WaveQ].Offset = -0.035
	m[WaveT].Amplitude = 0.35
	return m
}

// EctopicMorphology is the premature ventricular beat: no P, wide QRS, opposite-polarity T.
func EctopicMorphology() Morphology {
	return Morphology{
		WaveP: {Amplitude: 0.0, Offset: -0.200, Width: 0.025},
		WaveQ: {Amplitude: -0.10, Offset: -0.060, Width: 0.020},
		WaveR: {Amplitude: 0.90, Offset: 0.000, Width: 0.040},
		WaveS: {Amplitude: -0.20, Offset: 0.060, Width: 0.030},
		WaveT: {Amplitude: -0.25, Offset: 0.320, Width: 0.070},
	}
}

const (
	TemplateDefault  = "default"
	TemplateStandard = "standard"
)

// TemplateMorphology returns the named base template ("" means default).
func TemplateMorphology(name string) (Morphology, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TemplateDefault:
		return DefaultMorphology(), nil
	case TemplateStandard:
		return StandardMorphology(), nil
	default:
		return Morphology{}, configErrorf("template", "unknown template %q", name)
	}
}
