package stream

import (
	"ecg-synth/internal/analysis"
)

// HRMonitor consumes float32 frames and reports heart rate on each detected beat.
// Sample time is derived from the running sample count, so the result does not
// depend on delivery timing.
type HRMonitor struct {
	detector *analysis.HRDetector
	fs       float64
	samples  int
}

func NewHRMonitor(fs, threshold float64) *HRMonitor {
	return &HRMonitor{detector: analysis.NewHRDetector(threshold), fs: fs}
}

// Feed decodes one frame and returns the bpm values detected within it.
func (m *HRMonitor) Feed(frame []byte) ([]float64, error) {
	values, err := DecodeFloat32LE(frame)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, v := range values {
		t := float64(m.samples) / m.fs
		m.samples++
		if bpm, ok := m.detector.Process(float64(v), t); ok {
			out = append(out, bpm)
		}
	}
	return out, nil
}

// Samples is the number of samples consumed so far.
func (m *HRMonitor) Samples() int { return m.samples }
