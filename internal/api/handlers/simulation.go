package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"ecg-synth/internal/analysis"
	"ecg-synth/internal/api/models"
	"ecg-synth/internal/model"
	"ecg-synth/internal/preset"
	"ecg-synth/internal/render"
	"ecg-synth/internal/store"
	"ecg-synth/internal/synth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMaxSamples bounds one run to about an hour at 500 Hz.
const DefaultMaxSamples = 2_000_000

// SimulationHandler handles simulation requests and stored runs
type SimulationHandler struct {
	engine     *synth.Engine
	runs       *store.RunStore    // optional
	cache      *store.ResultCache // optional
	maxSamples int
	logger     *zap.Logger
}

// NewSimulationHandler creates a new simulation handler. runs and cache may be nil;
// a non-positive maxSamples means DefaultMaxSamples.
func NewSimulationHandler(engine *synth.Engine, runs *store.RunStore, cache *store.ResultCache, maxSamples int, logger *zap.Logger) *SimulationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = synth.New(logger)
	}
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &SimulationHandler{engine: engine, runs: runs, cache: cache, maxSamples: maxSamples, logger: logger}
}

// checkSize rejects configs whose sample grid exceeds the per-run limit. The product is
// taken in floating point so huge values cannot overflow before the comparison.
func (h *SimulationHandler) checkSize(c *gin.Context, cfg model.SimulationConfig, details map[string]interface{}) bool {
	samples := cfg.DurationS * float64(cfg.SamplingRateHz)
	if samples <= float64(h.maxSamples) || math.IsNaN(samples) {
		return true
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["max_samples"] = h.maxSamples
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
		fmt.Sprintf("duration_s * sampling_rate_hz = %g exceeds the limit of %d samples", samples, h.maxSamples), details)
	return false
}

// presetLabel keeps metric label values bounded to the catalog.
func presetLabel(name string) string {
	if p, ok := preset.Lookup(name); ok {
		return p.Name
	}
	return "custom"
}

// run serves cfg from the cache when possible and records metrics.
func (h *SimulationHandler) run(cfg model.SimulationConfig, label string) (*model.SimulationResult, bool, error) {
	key := store.CacheKey(cfg)
	if key != "" {
		if res, ok := h.cache.Get(key); ok {
			SimulationsTotal.WithLabelValues(label, "cached").Inc()
			return res, true, nil
		}
	}

	start := time.Now()
	res, err := h.engine.Run(cfg)
	if err != nil {
		SimulationsTotal.WithLabelValues(label, failureStatus(err)).Inc()
		return nil, false, err
	}
	recordRun(label, res, time.Since(start))
	if key != "" {
		h.cache.Set(key, res)
	}
	return res, false, nil
}

func recordRun(label string, res *model.SimulationResult, elapsed time.Duration) {
	SimulationsTotal.WithLabelValues(label, "ok").Inc()
	SimulationSeconds.Observe(elapsed.Seconds())
	BeatsTotal.Add(float64(len(res.Beats)))
}

func failureStatus(err error) string {
	if model.IsConfigurationError(err) {
		return "invalid"
	}
	return "error"
}

func buildResponse(label string, res *model.SimulationResult, includeSignal bool) models.SimulateResponse {
	summary := analysis.Summarize(res)
	summary.Preset = label
	resp := models.SimulateResponse{
		Status:  "completed",
		Preset:  label,
		Meta:    res.Meta,
		Summary: summary,
		Beats:   res.Beats,
	}
	if includeSignal {
		resp.Time = res.Time
		resp.Signal = res.Signal
	}
	return resp
}

// Simulate handles POST /api/v1/simulate
func (h *SimulationHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if req.Options.Persist && h.runs == nil {
		respondStoreUnavailable(c)
		return
	}

	cfg := req.Overrides.ApplyTo(preset.Resolve(req.Preset))
	if !h.checkSize(c, cfg, nil) {
		return
	}
	label := presetLabel(req.Preset)
	res, cached, err := h.run(cfg, label)
	if err != nil {
		respondSimulationError(c, err, nil)
		return
	}

	resp := buildResponse(label, res, req.Options.IncludeSignal)
	resp.Cached = cached
	if req.Options.Persist {
		saved, err := h.runs.Save(c.Request.Context(), store.Run{Preset: label, Config: cfg, Result: res})
		if err != nil {
			h.logger.Error("persist run failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
			return
		}
		resp.ID = saved.ID
	}
	c.JSON(http.StatusOK, resp)
}

// Compare handles POST /api/v1/simulate/compare
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	base := req.Overrides.ApplyTo(preset.Resolve(req.Preset))
	cfgs := make([]model.SimulationConfig, len(req.Variations))
	for i, v := range req.Variations {
		cfg := v.Overrides.ApplyTo(base)
		if !h.checkSize(c, cfg, map[string]interface{}{"variation": v.Name}) {
			return
		}
		if err := cfg.Validate(); err != nil {
			respondSimulationError(c, err, map[string]interface{}{"variation": v.Name})
			return
		}
		cfgs[i] = cfg
	}

	start := time.Now()
	results, err := h.engine.RunAll(c.Request.Context(), cfgs)
	if err != nil {
		respondSimulationError(c, err, nil)
		return
	}
	elapsed := time.Since(start) / time.Duration(len(results))

	label := presetLabel(req.Preset)
	resp := models.CompareResponse{Comparison: make([]models.ComparisonResult, len(results))}
	summaries := make([]analysis.Summary, len(results))
	for i, res := range results {
		recordRun(label, res, elapsed)
		s := analysis.Summarize(res)
		s.Preset = req.Variations[i].Name
		summaries[i] = s
		resp.Comparison[i] = models.ComparisonResult{
			Name:    req.Variations[i].Name,
			Meta:    res.Meta,
			Summary: s,
		}
	}
	for _, s := range analysis.RankBySpread(summaries) {
		resp.RankedBySpread = append(resp.RankedBySpread, s.Preset)
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /api/v1/simulations
func (h *SimulationHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		respondStoreUnavailable(c)
		return
	}
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	infos, err := h.runs.List(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
		return
	}
	out := models.RunListResponse{Runs: make([]models.RunInfo, 0, len(infos))}
	for _, ri := range infos {
		out.Runs = append(out.Runs, models.RunInfo(ri))
	}
	c.JSON(http.StatusOK, out)
}

// lookup loads the run named by the :id path parameter, writing the error response itself.
func (h *SimulationHandler) lookup(c *gin.Context) (store.Run, bool) {
	if h.runs == nil {
		respondStoreUnavailable(c)
		return store.Run{}, false
	}
	id := c.Param("id")
	run, err := h.runs.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("No stored run with id %q", id), nil)
		return store.Run{}, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
		return store.Run{}, false
	}
	return run, true
}

// GetRun handles GET /api/v1/simulations/:id
func (h *SimulationHandler) GetRun(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	includeSignal, _ := strconv.ParseBool(c.DefaultQuery("include_signal", "false"))
	resp := buildResponse(run.Preset, run.Result, includeSignal)
	resp.ID = run.ID
	resp.Status = "stored"
	c.JSON(http.StatusOK, resp)
}

// GetRunCSV handles GET /api/v1/simulations/:id/csv (?kind=beats for the beat table)
func (h *SimulationHandler) GetRunCSV(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	name := run.ID + ".csv"
	write := func() error { return synth.WriteSignalCSV(c.Writer, run.Result) }
	if c.Query("kind") == "beats" {
		name = run.ID + "_beats.csv"
		write = func() error { return synth.WriteBeatsCSV(c.Writer, run.Result.Beats) }
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Status(http.StatusOK)
	if err := write(); err != nil {
		h.logger.Warn("csv write failed", zap.String("id", run.ID), zap.Error(err))
	}
}

// GetRunPNG handles GET /api/v1/simulations/:id/png
func (h *SimulationHandler) GetRunPNG(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	width, _ := strconv.Atoi(c.Query("width"))
	height, _ := strconv.Atoi(c.Query("height"))
	img, err := render.Plot(run.Result.Time, run.Result.Signal, render.Options{Width: width, Height: height})
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "EMPTY_SIGNAL", err.Error(), nil)
		return
	}
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := render.EncodePNG(c.Writer, img); err != nil {
		h.logger.Warn("png write failed", zap.String("id", run.ID), zap.Error(err))
	}
}
