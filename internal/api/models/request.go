package models

import "ecg-synth/internal/config"

// SimulateRequest represents the request body for running a simulation
type SimulateRequest struct {
	Preset    string           `json:"preset"` // empty or unknown = base scenario
	Overrides config.Overrides `json:"overrides,omitempty"`
	Options   SimulateOptions  `json:"options,omitempty"`
}

// SimulateOptions controls what the response carries and whether the run is stored
type SimulateOptions struct {
	IncludeSignal bool `json:"include_signal,omitempty"` // default: false
	Persist       bool `json:"persist,omitempty"`        // requires a configured store
}

// CompareRequest runs a base scenario plus named variations of it
type CompareRequest struct {
	Preset     string           `json:"preset"`
	Overrides  config.Overrides `json:"overrides,omitempty"`
	Variations []Variation      `json:"variations" binding:"required,min=1,max=16,dive"`
}

// Variation overrides applied on top of the compare base
type Variation struct {
	Name      string           `json:"name" binding:"required"`
	Overrides config.Overrides `json:"overrides"`
}

// StreamQuery represents the query string of the websocket stream endpoint
type StreamQuery struct {
	Preset   string `form:"preset"`
	Batch    int    `form:"batch,omitempty"`    // samples per binary frame, default 10
	Realtime bool   `form:"realtime,omitempty"` // pace frames at the sampling rate
}

// ListQuery represents paging for stored runs
type ListQuery struct {
	Limit int `form:"limit,omitempty"` // default: 50
}
