package synth

import (
	"math"
	"math/rand/v2"

	"ecg-synth/internal/model"

	"gonum.org/v1/gonum/stat/distuv"
)

// MainsAmplitudeMV is the fixed power-line hum amplitude.
const MainsAmplitudeMV = 0.01

// applyArtifacts overlays baseline wander, mains hum and white noise on buf.
// Noise is drawn from rng, the same generator that produced the RR series.
func applyArtifacts(buf, times []float64, a model.ArtifactParams, rng *rand.Rand) {
	if a.BaselineWanderMV > 0 && a.BaselineWanderHz > 0 {
		addSine(buf, times, a.BaselineWanderMV, a.BaselineWanderHz)
	}
	if a.MainsEnabled() {
		addSine(buf, times, MainsAmplitudeMV, float64(a.MainsHz))
	}
	if a.NoiseStdMV > 0 {
		noise := distuv.Normal{Mu: 0, Sigma: a.NoiseStdMV, Src: rng}
		for i := range buf {
			buf[i] += noise.Rand()
		}
	}
}

func addSine(buf, times []float64, amp, hz float64) {
	w := 2 * math.Pi * hz
	for i, t := range times {
		buf[i] += amp * math.Sin(w*t)
	}
}
