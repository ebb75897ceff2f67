package models

import (
	"time"

	"ecg-synth/internal/analysis"
	"ecg-synth/internal/model"
)

// SimulateResponse represents the response from a simulation run
type SimulateResponse struct {
	ID      string            `json:"id,omitempty"`
	Status  string            `json:"status"`
	Preset  string            `json:"preset"`
	Cached  bool              `json:"cached,omitempty"`
	Meta    model.Metadata    `json:"meta"`
	Summary analysis.Summary  `json:"summary"`
	Beats   []model.BeatEvent `json:"beats"`
	Time    []float64         `json:"time,omitempty"`
	Signal  []float64         `json:"signal,omitempty"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
	// RankedBySpread lists variation names, widest amplitude range first
	RankedBySpread []string `json:"ranked_by_spread"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string           `json:"name"`
	Meta    model.Metadata   `json:"meta"`
	Summary analysis.Summary `json:"summary"`
}

// RunListResponse lists stored runs, newest first
type RunListResponse struct {
	Runs []RunInfo `json:"runs"`
}

// RunInfo represents one stored run without its samples
type RunInfo struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Preset         string    `json:"preset"`
	SamplingRateHz int       `json:"sampling_rate_hz"`
	BeatCount      int       `json:"beat_count"`
	Samples        int       `json:"samples"`
}

// PresetInfo represents a built-in scenario
type PresetInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Config      model.SimulationConfig `json:"config"`
}

// ScenarioInfo represents a scenario file found in the scenario directory
type ScenarioInfo struct {
	ID     string `json:"id"`
	Preset string `json:"preset"`
	File   string `json:"file"`
}

// StreamHeader is the first (text) frame of a websocket stream
type StreamHeader struct {
	Preset  string         `json:"preset"`
	Meta    model.Metadata `json:"meta"`
	Samples int            `json:"samples"`
	Batch   int            `json:"batch"`
	Format  string         `json:"format"` // "float32le"
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
