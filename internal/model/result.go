package model

// BeatKind is a stable label for a beat, intended for CSV output.
type BeatKind string

const (
	BeatNormal  BeatKind = "NORMAL"
	BeatEctopic BeatKind = "ECTOPIC"
)

// BeatEvent is one beat of a run. It is derived from the RR series and recomputed per run.
type BeatEvent struct {
	Index   int     `json:"index"`
	OnsetS  float64 `json:"onset_s"`
	Ectopic bool    `json:"ectopic"`
}

func (b BeatEvent) Kind() BeatKind {
	if b.Ectopic {
		return BeatEctopic
	}
	return BeatNormal
}

// ActiveFlags echoes the pathology and artifact switches that shaped a run.
type ActiveFlags struct {
	IrregularRR bool    `json:"irregular_rr"`
	WideQRS     bool    `json:"wide_qrs"`
	RBBB        bool    `json:"rbbb"`
	LBBB        bool    `json:"lbbb"`
	STShiftMV   float64 `json:"st_shift_mv"`
	TInverted   bool    `json:"t_inverted"`
	PVCBigeminy bool    `json:"pvc_bigeminy"`
	MainsHz     int     `json:"mains_hz,omitempty"`
}

// Metadata describes a finished run.
type Metadata struct {
	SamplingRateHz int         `json:"sampling_rate_hz"`
	HeartRateBPM   float64     `json:"heart_rate_bpm"`
	BeatCount      int         `json:"beat_count"`
	Seed           int64       `json:"seed"`
	Flags          ActiveFlags `json:"flags"`
}

// SimulationResult is the immutable output of one run.
// Time and Signal always have the same length, floor(duration * fs).
type SimulationResult struct {
	Time   []float64   `json:"time"`
	Signal []float64   `json:"signal"`
	Beats  []BeatEvent `json:"beats"`
	Meta   Metadata    `json:"meta"`
}

// FlagsFor builds the metadata flags for cfg.
func FlagsFor(cfg SimulationConfig) ActiveFlags {
	f := ActiveFlags{
		IrregularRR: cfg.Rhythm.IsIrregular(),
		WideQRS:     cfg.Pathology.WideQRS,
		RBBB:        cfg.Pathology.RBBB,
		LBBB:        cfg.Pathology.LBBB,
		STShiftMV:   cfg.Pathology.STShiftMV,
		TInverted:   cfg.Pathology.TInverted,
		PVCBigeminy: cfg.Pathology.PVCBigeminy,
	}
	if cfg.Artifacts.MainsEnabled() {
		f.MainsHz = cfg.Artifacts.MainsHz
	}
	return f
}
