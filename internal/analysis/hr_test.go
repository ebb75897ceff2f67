package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spikes builds a flat signal with unit spikes every period samples.
func spikes(n, period int) []float64 {
	out := make([]float64, n)
	for i := period / 2; i < n; i += period {
		out[i] = 1
	}
	return out
}

func TestDetectRPeaksSpacing(t *testing.T) {
	sig := spikes(5000, 500)
	peaks := DetectRPeaks(sig, 500, 0.5)
	require.Len(t, peaks, 10)
	for i := 1; i < len(peaks); i++ {
		assert.Equal(t, 500, peaks[i]-peaks[i-1])
	}

	hr, ok := EstimateHeartRate(peaks, 500)
	require.True(t, ok)
	assert.InDelta(t, 60.0, hr, 1e-9)
}

func TestDetectRPeaksRefractoryKeepsTallest(t *testing.T) {
	sig := make([]float64, 200)
	sig[50] = 0.8
	sig[60] = 1.0 // 20 ms later at 500 Hz
	sig[150] = 0.9
	peaks := DetectRPeaks(sig, 500, 0.5)
	assert.Equal(t, []int{60}, peaks)
}

func TestDetectRPeaksDegenerate(t *testing.T) {
	assert.Nil(t, DetectRPeaks(nil, 500, 0.5))
	assert.Nil(t, DetectRPeaks([]float64{1, 2, 1}, 0, 0.5))

	_, ok := EstimateHeartRate([]int{10}, 500)
	assert.False(t, ok)
}

func TestHRDetectorStreaming(t *testing.T) {
	d := NewHRDetector(0.5)
	fs := 250.0
	var got []float64
	for i := 0; i < 2500; i++ {
		tt := float64(i) / fs
		v := math.Max(0, math.Cos(2*math.Pi*1.25*tt)) // 75 bpm
		if bpm, ok := d.Process(v, tt); ok {
			got = append(got, bpm)
		}
	}
	require.NotEmpty(t, got)
	for _, bpm := range got {
		assert.InDelta(t, 75.0, bpm, 1.0)
	}
}
