package analysis

// RefractoryS is the minimum spacing between two detected R peaks.
const RefractoryS = 0.200

// DefaultThresholdFraction places the detection threshold at this fraction of the
// signal's range above its minimum.
const DefaultThresholdFraction = 0.6

// DetectRPeaks returns the sample indices of local maxima at or above threshold.
// Within one refractory period only the tallest candidate is kept.
func DetectRPeaks(signal []float64, fs, threshold float64) []int {
	if len(signal) < 3 || fs <= 0 {
		return nil
	}
	refractory := int(RefractoryS * fs)
	var peaks []int
	for i := 1; i < len(signal)-1; i++ {
		v := signal[i]
		if v < threshold || v < signal[i-1] || v < signal[i+1] {
			continue
		}
		if n := len(peaks); n > 0 && i-peaks[n-1] <= refractory {
			if v > signal[peaks[n-1]] {
				peaks[n-1] = i
			}
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}

// EstimateHeartRate converts peak spacing into beats per minute.
// It needs at least two peaks.
func EstimateHeartRate(peaks []int, fs float64) (float64, bool) {
	if len(peaks) < 2 || fs <= 0 {
		return 0, false
	}
	span := float64(peaks[len(peaks)-1]-peaks[0]) / fs
	if span <= 0 {
		return 0, false
	}
	meanRR := span / float64(len(peaks)-1)
	return 60.0 / meanRR, true
}

// HRDetector is the streaming counterpart of DetectRPeaks: it reports a bpm value
// on every upward threshold crossing that follows a previous one by more than the
// refractory period.
type HRDetector struct {
	threshold  float64
	refractory float64

	lastPeak    float64
	havePeak    bool
	lastValue   float64
	initialized bool
}

func NewHRDetector(threshold float64) *HRDetector {
	return &HRDetector{
		threshold:  threshold,
		refractory: RefractoryS,
	}
}

// Process feeds one sample taken at time t (seconds).
func (h *HRDetector) Process(value, t float64) (float64, bool) {
	if !h.initialized {
		h.initialized = true
		h.lastValue = value
		return 0, false
	}
	defer func() { h.lastValue = value }()

	if h.lastValue >= h.threshold || value < h.threshold {
		return 0, false
	}
	if h.havePeak && t-h.lastPeak <= h.refractory {
		return 0, false
	}
	prev, had := h.lastPeak, h.havePeak
	h.lastPeak, h.havePeak = t, true
	if !had {
		return 0, false
	}
	return 60.0 / (t - prev), true
}
