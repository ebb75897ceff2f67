package synth

import (
	"math"

	"ecg-synth/internal/model"
	"ecg-synth/internal/pathology"
)

const (
	// Per-beat render window around the onset. Gaussian tails beyond it are negligible.
	windowBeforeS = 0.6
	windowAfterS  = 0.7

	stShiftEpsilon = 1e-6
)

func gauss(t, mu, sigma, amp float64) float64 {
	z := (t - mu) / sigma
	return amp * math.Exp(-0.5*z*z)
}

// sampleRange returns the inclusive index bounds of samples whose time may fall in
// [start, end]. The caller still checks each sample's time exactly.
func sampleRange(start, end, fs float64, n int) (lo, hi int) {
	lo = int(math.Floor(start*fs)) - 1
	hi = int(math.Ceil(end*fs)) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// accumulateBeat adds one beat, including its ST shift, into buf. Samples outside the
// beat window are never touched; a window outside the grid adds nothing.
func accumulateBeat(buf, times []float64, fs float64, beat pathology.Beat, stShift float64) {
	onset := beat.OnsetS
	start, end := onset-windowBeforeS, onset+windowAfterS
	lo, hi := sampleRange(start, end, fs, len(buf))
	if lo > hi {
		return
	}

	m := beat.Morphology
	applyST := math.Abs(stShift) > stShiftEpsilon
	stStart, stEnd := pathology.STWindow(m)
	stStart += onset
	stEnd += onset
	if stStart >= stEnd {
		applyST = false
	}

	for i := lo; i <= hi; i++ {
		t := times[i]
		if t < start || t > end {
			continue
		}
		v := 0.0
		for _, w := range model.WaveNames() {
			c := m[w]
			v += gauss(t, onset+c.Offset, c.Width, c.Amplitude)
		}
		if applyST && t >= stStart && t <= stEnd {
			v += stShift
		}
		buf[i] += v
	}
}
