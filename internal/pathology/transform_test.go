package pathology

import (
	"testing"

	"ecg-synth/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func baseConfig() model.SimulationConfig {
	return model.SimulationConfig{DurationS: 5, SamplingRateHz: 500, HeartRateBPM: 70}
}

func TestNewWithoutFlagsIsTemplate(t *testing.T) {
	tr, err := New(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMorphology(), tr.Normal())
}

func TestWidenedQRS(t *testing.T) {
	tests := []struct {
		name   string
		flags  model.PathologyFlags
		sDelay float64
		rDelay float64
	}{
		{name: "wide", flags: model.PathologyFlags{WideQRS: true}},
		{name: "rbbb", flags: model.PathologyFlags{RBBB: true}, sDelay: RBBBSDelay},
		{name: "lbbb", flags: model.PathologyFlags{LBBB: true}, rDelay: LBBBRDelay},
		{name: "both", flags: model.PathologyFlags{WideQRS: true, RBBB: true, LBBB: true}, sDelay: RBBBSDelay, rDelay: LBBBRDelay},
	}
	def := model.DefaultMorphology()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Apply(def, tt.flags, model.RhythmRegular)
			assert.Equal(t, WideQWidth, m[model.WaveQ].Width)
			assert.Equal(t, WideRWidth, m[model.WaveR].Width)
			assert.Equal(t, WideSWidth, m[model.WaveS].Width)
			assert.InDelta(t, def[model.WaveS].Offset+tt.sDelay, m[model.WaveS].Offset, 1e-12)
			assert.InDelta(t, def[model.WaveR].Offset+tt.rDelay, m[model.WaveR].Offset, 1e-12)
			assert.Equal(t, def[model.WaveT], m[model.WaveT])
		})
	}
}

func TestWideningNeverNarrows(t *testing.T) {
	cfg := baseConfig()
	cfg.Pathology.WideQRS = true
	cfg.Morphology = map[string]model.WaveOverride{"R": {Width: ptr(0.05)}}
	tr, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.05, tr.Normal()[model.WaveR].Width)
}

func TestTInversion(t *testing.T) {
	m := Apply(model.DefaultMorphology(), model.PathologyFlags{TInverted: true}, "")
	assert.Equal(t, -0.30, m[model.WaveT].Amplitude)

	// Already negative stays negative.
	neg := model.DefaultMorphology()
	neg[model.WaveT].Amplitude = -0.2
	m = Apply(neg, model.PathologyFlags{TInverted: true}, "")
	assert.Equal(t, -0.2, m[model.WaveT].Amplitude)
}

func TestIrregularRhythmSuppressesPEvenWhenOverridden(t *testing.T) {
	cfg := baseConfig()
	cfg.Rhythm = model.RhythmIrregular
	cfg.Morphology = map[string]model.WaveOverride{"P": {Amplitude: ptr(0.5)}}
	tr, err := New(cfg)
	require.NoError(t, err)
	assert.Zero(t, tr.Normal()[model.WaveP].Amplitude)
}

func TestFlagsCommute(t *testing.T) {
	def := model.DefaultMorphology()
	all := model.PathologyFlags{WideQRS: true, RBBB: true, TInverted: true}
	a := Apply(Apply(def, model.PathologyFlags{TInverted: true}, ""), model.PathologyFlags{RBBB: true}, model.RhythmIrregular)
	b := Apply(def, all, model.RhythmIrregular)
	assert.Equal(t, b, a)
}

func TestBigeminyAlternates(t *testing.T) {
	cfg := baseConfig()
	cfg.Pathology.PVCBigeminy = true
	cfg.Pathology.TInverted = true
	tr, err := New(cfg)
	require.NoError(t, err)

	beats := tr.Resolve([]float64{0, 0.8, 1.6, 2.4, 3.2})
	require.Len(t, beats, 5)
	for i, b := range beats {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, i%2 == 1, b.Ectopic)
		if b.Ectopic {
			assert.Equal(t, model.EctopicMorphology(), b.Morphology)
		} else {
			assert.Equal(t, tr.Normal(), b.Morphology)
		}
	}
	assert.Equal(t, 1.6, beats[2].OnsetS)
}

func TestNoBigeminyMeansNoEctopics(t *testing.T) {
	tr, err := New(baseConfig())
	require.NoError(t, err)
	for _, b := range tr.Resolve([]float64{0, 1, 2, 3}) {
		assert.False(t, b.Ectopic)
	}
}

func TestSTWindow(t *testing.T) {
	start, end := STWindow(model.DefaultMorphology())
	assert.InDelta(t, 0.040+2.5*0.010, start, 1e-12)
	assert.InDelta(t, 0.300-2.5*0.060, end, 1e-12)

	m := model.DefaultMorphology()
	m[model.WaveT].Offset = 0.05
	start, end = STWindow(m)
	assert.GreaterOrEqual(t, start, end)
}

func TestNewPropagatesConfigurationErrors(t *testing.T) {
	cfg := baseConfig()
	cfg.Morphology = map[string]model.WaveOverride{"Z": {}}
	_, err := New(cfg)
	assert.True(t, model.IsConfigurationError(err))
}
