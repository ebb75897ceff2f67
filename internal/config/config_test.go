package config

import (
	"os"
	"path/filepath"
	"testing"

	"ecg-synth/internal/model"
	"ecg-synth/internal/preset"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadPresetWithOverrides(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "scenario.yaml", `
preset: stemi
simulation:
  duration_s: 4
  heart_rate_bpm: 80
  noise_std_mv: 0
  morphology:
    r:
      amplitude: 1.5
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "stemi", c.Preset)

	cfg, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.DurationS)
	assert.Equal(t, 80.0, cfg.HeartRateBPM)
	assert.Equal(t, 0.0, cfg.Artifacts.NoiseStdMV)
	assert.Equal(t, 0.2, cfg.Pathology.STShiftMV)
	require.Contains(t, cfg.Morphology, "R")
	assert.Equal(t, 1.5, *cfg.Morphology["R"].Amplitude)
}

func TestLoadBaseFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
preset: afib
simulation:
  duration_s: 20
  seed: 7
  morphology:
    T:
      width: 0.05
`)
	p := writeFile(t, dir, "child.yaml", `
base_file: base.yaml
simulation:
  seed: 99
  morphology:
    t:
      amplitude: -0.2
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "afib", c.Preset)

	cfg, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.DurationS)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, model.RhythmIrregular, cfg.Rhythm)
	tw := cfg.Morphology["T"]
	require.NotNil(t, tw.Width)
	require.NotNil(t, tw.Amplitude)
	assert.Equal(t, 0.05, *tw.Width)
	assert.Equal(t, -0.2, *tw.Amplitude)
}

func TestLoadRejectsInvalidSimulation(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bad.yaml", `
preset: normal
simulation:
  sampling_rate_hz: 0
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))

	c, err := LoadUnchecked(p)
	require.NoError(t, err)
	assert.Equal(t, 0, *c.Simulation.SamplingRateHz)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestUnknownPresetResolvesToBase(t *testing.T) {
	c := &Config{Preset: "does_not_exist"}
	cfg, err := c.Resolve()
	require.NoError(t, err)
	if diff := cmp.Diff(preset.Base(), cfg); diff != "" {
		t.Errorf("unknown preset should resolve to base (-want +got):\n%s", diff)
	}
}

func TestApplyToDoesNotMutateBase(t *testing.T) {
	amp := 2.0
	base := preset.Base()
	base.Morphology = map[string]model.WaveOverride{"R": {Amplitude: &amp}}

	width := 0.02
	off := false
	out := Overrides{
		WideQRS:    &off,
		Morphology: map[string]model.WaveOverride{"r": {Width: &width}},
	}.ApplyTo(base)

	assert.Nil(t, base.Morphology["R"].Width)
	require.NotNil(t, out.Morphology["R"].Width)
	assert.Equal(t, 2.0, *out.Morphology["R"].Amplitude)
	assert.False(t, out.Pathology.WideQRS)
}

func TestMergeOverridesLaterWins(t *testing.T) {
	a, b := 60.0, 90.0
	rhythm := "irregular"
	merged := MergeOverrides(
		Overrides{HeartRateBPM: &a, Rhythm: &rhythm},
		Overrides{HeartRateBPM: &b},
	)
	assert.Equal(t, 90.0, *merged.HeartRateBPM)
	assert.Equal(t, "irregular", *merged.Rhythm)
}

func TestShippedScenariosLoad(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			c, err := Load(p)
			require.NoError(t, err)
			_, err = c.Resolve()
			require.NoError(t, err)
		})
	}

	c, err := Load(filepath.Join("..", "..", "examples", "scenarios", "afib_noisy_lbbb.yaml"))
	require.NoError(t, err)
	cfg, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 110.0, cfg.HeartRateBPM)
	assert.True(t, cfg.Pathology.LBBB)
	assert.Equal(t, 50, cfg.Artifacts.MainsHz)
}
