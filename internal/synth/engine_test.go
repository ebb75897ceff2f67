package synth

import (
	"context"
	"math"
	"testing"

	"ecg-synth/internal/model"
	"ecg-synth/internal/pathology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// cleanConfig has every artifact disabled.
func cleanConfig() model.SimulationConfig {
	return model.SimulationConfig{
		DurationS:      6,
		SamplingRateHz: 500,
		HeartRateBPM:   70,
		Seed:           13,
	}
}

func run(t *testing.T, cfg model.SimulationConfig) *model.SimulationResult {
	t.Helper()
	res, err := New(nil).Run(cfg)
	require.NoError(t, err)
	return res
}

func sampleAt(res *model.SimulationResult, t float64) float64 {
	i := int(math.Round(t * float64(res.Meta.SamplingRateHz)))
	return res.Signal[i]
}

// referenceSum evaluates every beat's Gaussians over the whole grid with no window.
func referenceSum(t *testing.T, cfg model.SimulationConfig, res *model.SimulationResult) []float64 {
	t.Helper()
	tr, err := pathology.New(cfg)
	require.NoError(t, err)
	out := make([]float64, len(res.Time))
	for _, b := range res.Beats {
		m, _ := tr.ForBeat(b.Index)
		for i, tt := range res.Time {
			for _, w := range model.WaveNames() {
				c := m[w]
				out[i] += gauss(tt, b.OnsetS+c.Offset, c.Width, c.Amplitude)
			}
		}
	}
	return out
}

func TestRunLengths(t *testing.T) {
	tests := []struct {
		duration float64
		fs       int
		want     int
	}{
		{2, 500, 1000},
		{1.0015, 500, 500},
		{3.3, 250, 825},
		{0.5, 1000, 500},
	}
	for _, tt := range tests {
		cfg := cleanConfig()
		cfg.DurationS = tt.duration
		cfg.SamplingRateHz = tt.fs
		res := run(t, cfg)
		require.Len(t, res.Time, tt.want)
		require.Len(t, res.Signal, tt.want)
		for i := 1; i < len(res.Time); i++ {
			assert.InDelta(t, 1/float64(tt.fs), res.Time[i]-res.Time[i-1], 1e-12)
		}
		assert.Equal(t, 0.0, res.Time[0])
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg := cleanConfig()
	cfg.Rhythm = model.RhythmIrregular
	cfg.Artifacts = model.ArtifactParams{BaselineWanderHz: 0.25, BaselineWanderMV: 0.03, MainsHz: 50, NoiseStdMV: 0.02}
	cfg.Pathology.PVCBigeminy = true

	a := run(t, cfg)
	b := run(t, cfg)
	assert.Equal(t, a.Time, b.Time)
	assert.Equal(t, a.Signal, b.Signal)
	assert.Equal(t, a.Beats, b.Beats)

	cfg.Seed++
	c := run(t, cfg)
	assert.NotEqual(t, a.Signal, c.Signal)
}

func TestRunWithoutArtifactsIsPureGaussianSum(t *testing.T) {
	for _, seed := range []int64{1, 2, 99} {
		cfg := cleanConfig()
		cfg.Seed = seed
		cfg.Pathology.PVCBigeminy = true
		res := run(t, cfg)
		ref := referenceSum(t, cfg, res)
		for i := range ref {
			require.InDelta(t, ref[i], res.Signal[i], 1e-6, "seed %d sample %d", seed, i)
		}
		assert.Equal(t, res.Signal, run(t, cfg).Signal)
	}
}

func TestPVCBigeminyOddBeats(t *testing.T) {
	// 30 bpm keeps beat windows apart so each beat can be read in isolation.
	cfg := cleanConfig()
	cfg.DurationS = 14
	cfg.HeartRateBPM = 30
	cfg.Pathology.PVCBigeminy = true
	res := run(t, cfg)

	var checkedEctopic, checkedNormal int
	for _, b := range res.Beats {
		if b.OnsetS-0.25 < 0 || b.OnsetS+0.45 > cfg.DurationS {
			continue
		}
		assert.Equal(t, b.Index%2 == 1, b.Ectopic)
		p := sampleAt(res, b.OnsetS-0.2)
		if b.Ectopic {
			assert.InDelta(t, 0, p, 1e-3, "beat %d P", b.Index)
			assert.Less(t, sampleAt(res, b.OnsetS+0.32), -0.2, "beat %d T", b.Index)
			checkedEctopic++
		} else {
			assert.InDelta(t, 0.2, p, 0.01, "beat %d P", b.Index)
			assert.Greater(t, sampleAt(res, b.OnsetS+0.3), 0.25, "beat %d T", b.Index)
			checkedNormal++
		}
	}
	assert.Positive(t, checkedEctopic)
	assert.Positive(t, checkedNormal)
}

func TestTInversionFlipsTWave(t *testing.T) {
	cfg := cleanConfig()
	cfg.HeartRateBPM = 30
	cfg.DurationS = 10
	base := run(t, cfg)

	cfg.Pathology.TInverted = true
	inv := run(t, cfg)
	require.Equal(t, base.Beats, inv.Beats)

	for _, b := range base.Beats {
		at := b.OnsetS + 0.3
		if at >= cfg.DurationS-0.01 {
			continue
		}
		up := sampleAt(base, at)
		down := sampleAt(inv, at)
		assert.Greater(t, up, 0.25)
		assert.InDelta(t, -up, down, 1e-3)
	}
}

func TestSTShiftConfinedToWindow(t *testing.T) {
	for _, bigeminy := range []bool{false, true} {
		cfg := cleanConfig()
		cfg.Pathology.PVCBigeminy = bigeminy
		plain := run(t, cfg)

		cfg.Pathology.STShiftMV = 0.2
		shifted := run(t, cfg)
		require.Equal(t, plain.Beats, shifted.Beats)

		tr, err := pathology.New(cfg)
		require.NoError(t, err)

		inside := 0
		for i, tt := range plain.Time {
			want := 0.0
			for _, b := range plain.Beats {
				m, _ := tr.ForBeat(b.Index)
				start, end := pathology.STWindow(m)
				if tt >= b.OnsetS+start && tt <= b.OnsetS+end {
					want += 0.2
				}
			}
			if want != 0 {
				inside++
			}
			require.InDelta(t, want, shifted.Signal[i]-plain.Signal[i], 1e-9, "sample %d bigeminy=%v", i, bigeminy)
		}
		assert.Positive(t, inside)
	}
}

func TestSTShiftEmptyWindowIsNoop(t *testing.T) {
	cfg := cleanConfig()
	// T pulled onto S: the ST segment collapses.
	cfg.Morphology = map[string]model.WaveOverride{"T": {Offset: ptr(0.06)}}
	plain := run(t, cfg)
	cfg.Pathology.STShiftMV = -0.3
	shifted := run(t, cfg)
	assert.Equal(t, plain.Signal, shifted.Signal)
}

func TestIrregularRhythmIgnoresPOverride(t *testing.T) {
	cfg := cleanConfig()
	cfg.Rhythm = model.RhythmIrregular
	plain := run(t, cfg)

	cfg.Morphology = map[string]model.WaveOverride{"P": {Amplitude: ptr(0.6)}}
	overridden := run(t, cfg)
	assert.Equal(t, plain.Beats, overridden.Beats)
	assert.Equal(t, plain.Signal, overridden.Signal)

	tr, err := pathology.New(cfg)
	require.NoError(t, err)
	for _, b := range overridden.Beats {
		m, _ := tr.ForBeat(b.Index)
		assert.Zero(t, m[model.WaveP].Amplitude)
	}
	assert.True(t, overridden.Meta.Flags.IrregularRR)
}

func TestTwoSecondSixtyBPMExample(t *testing.T) {
	cfg := model.SimulationConfig{DurationS: 2, SamplingRateHz: 500, HeartRateBPM: 60, Seed: 13}
	res := run(t, cfg)
	require.Len(t, res.Signal, 1000)
	require.GreaterOrEqual(t, len(res.Beats), 3)
	assert.Equal(t, len(res.Beats), res.Meta.BeatCount)

	visible := 0
	for _, b := range res.Beats {
		if b.OnsetS < 1.5 {
			visible++
		}
	}
	assert.Equal(t, 2, visible)
	assert.Equal(t, 0.0, res.Beats[0].OnsetS)
	assert.InDelta(t, 1.0, res.Beats[1].OnsetS, 0.06)

	for _, b := range res.Beats[:2] {
		center := int(math.Round(b.OnsetS * 500))
		peak := math.Inf(-1)
		for i := max(0, center-5); i <= min(len(res.Signal)-1, center+5); i++ {
			peak = math.Max(peak, res.Signal[i])
		}
		assert.InDelta(t, 1.0, peak, 0.01, "beat %d", b.Index)
	}
}

func TestRunEmptyDuration(t *testing.T) {
	for _, d := range []float64{0, -2} {
		cfg := cleanConfig()
		cfg.DurationS = d
		res := run(t, cfg)
		assert.Empty(t, res.Time)
		assert.Empty(t, res.Signal)
		assert.Empty(t, res.Beats)
		assert.Zero(t, res.Meta.BeatCount)
	}
}

func TestRunAbsurdHeartRate(t *testing.T) {
	cfg := cleanConfig()
	cfg.HeartRateBPM = 1e300
	require.NoError(t, cfg.Validate())

	res := run(t, cfg)
	assert.Len(t, res.Signal, cfg.SampleCount())
	// (6 s + 1 s margin) / 0.40 s floor
	assert.Len(t, res.Beats, 18)
}

func TestRunConfigurationErrors(t *testing.T) {
	tests := map[string]func(c *model.SimulationConfig){
		"heart rate":    func(c *model.SimulationConfig) { c.HeartRateBPM = 0 },
		"sampling rate": func(c *model.SimulationConfig) { c.SamplingRateHz = -1 },
		"wave name":     func(c *model.SimulationConfig) { c.Morphology = map[string]model.WaveOverride{"U": {}} },
		"wave width":    func(c *model.SimulationConfig) { c.Morphology = map[string]model.WaveOverride{"Q": {Width: ptr(-1)}} },
		"NaN width":     func(c *model.SimulationConfig) { c.Morphology = map[string]model.WaveOverride{"T": {Width: ptr(math.NaN())}} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := cleanConfig()
			mutate(&cfg)
			res, err := New(nil).Run(cfg)
			assert.Nil(t, res)
			assert.True(t, model.IsConfigurationError(err))
		})
	}
}

func TestBeatOutsideGridContributesNothing(t *testing.T) {
	const fs = 500.0
	n := 1000
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / fs
	}
	buf := make([]float64, n)
	for _, onset := range []float64{2.75, 5, -1} {
		accumulateBeat(buf, times, fs, pathology.Beat{
			BeatEvent:  model.BeatEvent{OnsetS: onset},
			Morphology: model.DefaultMorphology(),
		}, 0.2)
	}
	for i, v := range buf {
		require.Zero(t, v, "sample %d", i)
	}
}

func TestBeatWindowBounds(t *testing.T) {
	const fs = 500.0
	n := 2000
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / fs
	}
	buf := make([]float64, n)
	accumulateBeat(buf, times, fs, pathology.Beat{
		BeatEvent:  model.BeatEvent{OnsetS: 2},
		Morphology: model.DefaultMorphology(),
	}, 0)
	for i, tt := range times {
		if tt < 2-windowBeforeS-1e-9 || tt > 2+windowAfterS+1e-9 {
			require.Zero(t, buf[i], "sample %d at %.3f", i, tt)
		}
	}
	assert.InDelta(t, 1.0, buf[1000], 1e-3)
}

func TestRunAllKeepsOrder(t *testing.T) {
	cfgs := make([]model.SimulationConfig, 6)
	for i := range cfgs {
		c := cleanConfig()
		c.DurationS = 2
		c.HeartRateBPM = 50 + float64(i)*10
		c.Seed = int64(i)
		cfgs[i] = c
	}
	out, err := New(nil).RunAll(context.Background(), cfgs)
	require.NoError(t, err)
	require.Len(t, out, len(cfgs))
	for i, c := range cfgs {
		assert.Equal(t, c.HeartRateBPM, out[i].Meta.HeartRateBPM)
		assert.Equal(t, run(t, c).Signal, out[i].Signal)
	}

	cfgs[3].HeartRateBPM = -1
	_, err = New(nil).RunAll(context.Background(), cfgs)
	assert.True(t, model.IsConfigurationError(err))
}
