package analysis

import (
	"sort"

	"ecg-synth/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is a per-run overview you can use for comparing scenarios.
type Summary struct {
	Preset string `json:"preset,omitempty"`

	Samples   int     `json:"samples"`
	DurationS float64 `json:"duration_s"`

	Min    float64 `json:"min_mv"`
	Max    float64 `json:"max_mv"`
	Mean   float64 `json:"mean_mv"`
	StdDev float64 `json:"std_mv"`
	P05    float64 `json:"p05_mv"`
	P95    float64 `json:"p95_mv"`

	Beats        int `json:"beats"`
	EctopicBeats int `json:"ectopic_beats"`

	// EstimatedHR is measured from detected R peaks, 0 when fewer than two were found.
	EstimatedHR float64 `json:"estimated_hr_bpm"`
	RPeaks      int     `json:"r_peaks"`
}

// Summarize computes signal statistics and an R-peak heart rate estimate for res.
func Summarize(res *model.SimulationResult) Summary {
	s := Summary{}
	if res == nil {
		return s
	}
	s.Beats = len(res.Beats)
	for _, b := range res.Beats {
		if b.Ectopic {
			s.EctopicBeats++
		}
	}
	s.Samples = len(res.Signal)
	if s.Samples == 0 {
		return s
	}
	fs := float64(res.Meta.SamplingRateHz)
	if fs > 0 {
		s.DurationS = float64(s.Samples) / fs
	}

	s.Min = floats.Min(res.Signal)
	s.Max = floats.Max(res.Signal)
	s.Mean, s.StdDev = stat.MeanStdDev(res.Signal, nil)

	sorted := make([]float64, len(res.Signal))
	copy(sorted, res.Signal)
	sort.Float64s(sorted)
	s.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	threshold := s.Min + DefaultThresholdFraction*(s.Max-s.Min)
	peaks := DetectRPeaks(res.Signal, fs, threshold)
	s.RPeaks = len(peaks)
	if hr, ok := EstimateHeartRate(peaks, fs); ok {
		s.EstimatedHR = hr
	}
	return s
}
