// Package pathology derives the effective per-beat morphology from the configured flags.
package pathology

import (
	"math"

	"ecg-synth/internal/model"
)

// Widening floors applied to Q, R and S when any bundle-branch pattern is on.
// They only ever widen: caller-set widths above the floor are kept.
const (
	WideQWidth = 0.016
	WideRWidth = 0.026
	WideSWidth = 0.020

	// RBBB pushes the terminal S later, LBBB delays the R peak.
	RBBBSDelay = 0.010
	LBBBRDelay = 0.008

	// STEdgeSigmas is how many widths past S and before T the ST segment starts and ends.
	STEdgeSigmas = 2.5
)

// Beat is a BeatEvent with its morphology resolved.
type Beat struct {
	model.BeatEvent
	Morphology model.Morphology
}

// Transform holds the normal and ectopic morphologies of one run.
type Transform struct {
	normal   model.Morphology
	ectopic  model.Morphology
	bigeminy bool
}

// New resolves the template, caller overrides and pathology flags of cfg.
func New(cfg model.SimulationConfig) (*Transform, error) {
	base, err := cfg.BaseMorphology()
	if err != nil {
		return nil, err
	}
	return &Transform{
		normal:   Apply(base, cfg.Pathology, cfg.Rhythm),
		ectopic:  model.EctopicMorphology(),
		bigeminy: cfg.Pathology.PVCBigeminy,
	}, nil
}

// Apply returns m with the flag-driven changes. The flags commute with each other.
func Apply(m model.Morphology, flags model.PathologyFlags, rhythm model.Rhythm) model.Morphology {
	if flags.Widened() {
		m[model.WaveQ].Width = math.Max(m[model.WaveQ].Width, WideQWidth)
		m[model.WaveR].Width = math.Max(m[model.WaveR].Width, WideRWidth)
		m[model.WaveS].Width = math.Max(m[model.WaveS].Width, WideSWidth)
		if flags.RBBB {
			m[model.WaveS].Offset += RBBBSDelay
		}
		if flags.LBBB {
			m[model.WaveR].Offset += LBBBRDelay
		}
	}
	if flags.TInverted {
		m[model.WaveT].Amplitude = -math.Abs(m[model.WaveT].Amplitude)
	}
	// No organized atrial activity; f-waves are not modeled.
	if rhythm.IsIrregular() {
		m[model.WaveP].Amplitude = 0
	}
	return m
}

// Normal is the morphology of every non-ectopic beat.
func (t *Transform) Normal() model.Morphology { return t.normal }

// ForBeat returns the morphology for the beat at index and whether it is ectopic.
// With bigeminy every odd index is replaced wholesale by the ectopic template.
func (t *Transform) ForBeat(index int) (model.Morphology, bool) {
	if t.bigeminy && index%2 == 1 {
		return t.ectopic, true
	}
	return t.normal, false
}

// Resolve assigns index, ectopic state and morphology to every onset, in series order.
func (t *Transform) Resolve(onsets []float64) []Beat {
	beats := make([]Beat, len(onsets))
	for i, onset := range onsets {
		m, ectopic := t.ForBeat(i)
		beats[i] = Beat{
			BeatEvent:  model.BeatEvent{Index: i, OnsetS: onset, Ectopic: ectopic},
			Morphology: m,
		}
	}
	return beats
}

// STWindow returns the ST segment relative to the beat onset. The window is empty when
// start >= end.
func STWindow(m model.Morphology) (start, end float64) {
	s := m[model.WaveS]
	tw := m[model.WaveT]
	return s.Offset + STEdgeSigmas*s.Width, tw.Offset - STEdgeSigmas*tw.Width
}
