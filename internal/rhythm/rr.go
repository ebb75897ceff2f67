// Package rhythm produces beat onset times under regular or AFib-like RR statistics.
package rhythm

import (
	"math"
	"math/rand/v2"

	"ecg-synth/internal/model"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MinRR and MaxRR bound every drawn interval (150 to 30 bpm).
	MinRR = 0.40
	MaxRR = 2.0

	// TailMarginS lets a beat whose onset lies just past the record still contribute its tail.
	TailMarginS = 1.0

	regularRelStd  = 0.02
	irregularSigma = 0.25
)

// Params are the inputs of one onset series.
type Params struct {
	DurationS    float64
	HeartRateBPM float64
	Mode         model.Rhythm
	// VariabilityBPM, when > 0, sets the regular-mode RR std as VariabilityBPM/HR^2*60 seconds.
	VariabilityBPM float64
}

// ParamsFor extracts the rhythm parameters of a simulation config.
func ParamsFor(cfg model.SimulationConfig) Params {
	return Params{
		DurationS:      cfg.DurationS,
		HeartRateBPM:   cfg.HeartRateBPM,
		Mode:           cfg.Rhythm,
		VariabilityBPM: cfg.HRVariabilityBPM,
	}
}

// MeanRR is the nominal interval in seconds for the heart rate.
func (p Params) MeanRR() float64 { return 60.0 / p.HeartRateBPM }

// RegularStd is the standard deviation of regular-mode intervals in seconds.
func (p Params) RegularStd() float64 {
	if p.VariabilityBPM > 0 {
		return p.VariabilityBPM / (p.HeartRateBPM * p.HeartRateBPM) * 60.0
	}
	return regularRelStd * p.MeanRR()
}

type sampler interface {
	Rand() float64
}

func (p Params) sampler(rng *rand.Rand) sampler {
	base := p.MeanRR()
	if p.Mode.IsIrregular() {
		return distuv.LogNormal{Mu: math.Log(base), Sigma: irregularSigma, Src: rng}
	}
	return distuv.Normal{Mu: base, Sigma: p.RegularStd(), Src: rng}
}

// Generate returns strictly increasing onset times starting at 0 and stopping before
// DurationS + TailMarginS. Every successive spacing lies in [MinRR, MaxRR].
// The same params and generator state always give the same series.
func Generate(p Params, rng *rand.Rand) ([]float64, error) {
	if p.HeartRateBPM <= 0 || math.IsNaN(p.HeartRateBPM) {
		return nil, &model.ConfigurationError{Field: "heart_rate_bpm", Reason: "must be > 0"}
	}
	if p.DurationS <= 0 {
		return nil, nil
	}
	limit := p.DurationS + TailMarginS
	draw := p.sampler(rng)

	// Every spacing is clipped to at least MinRR, which bounds the series length
	// however fast the nominal rate is.
	capHint := int(limit/math.Max(p.MeanRR(), MinRR)) + 2
	onsets := make([]float64, 0, capHint)
	for t := 0.0; t < limit; t += ClipInterval(draw.Rand()) {
		onsets = append(onsets, t)
	}
	return onsets, nil
}

// ClipInterval bounds a drawn interval to the physiologic range. NaN maps to MinRR.
func ClipInterval(rr float64) float64 {
	if math.IsNaN(rr) || rr < MinRR {
		return MinRR
	}
	if rr > MaxRR {
		return MaxRR
	}
	return rr
}

// Intervals returns the spacing between successive onsets.
func Intervals(onsets []float64) []float64 {
	if len(onsets) < 2 {
		return nil
	}
	out := make([]float64, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		out[i-1] = onsets[i] - onsets[i-1]
	}
	return out
}
