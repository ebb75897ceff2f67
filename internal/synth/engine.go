// Package synth renders simulation configs into sampled ECG-like signals.
package synth

import (
	"context"
	"fmt"
	"math/rand/v2"

	"ecg-synth/internal/model"
	"ecg-synth/internal/pathology"
	"ecg-synth/internal/rhythm"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs simulations. It holds no per-run state, so one Engine may serve
// concurrent runs.
type Engine struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// NewRand returns the generator that drives every stochastic step of a run.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Run synthesizes one record. Configuration errors are returned before any work is done;
// a non-positive duration yields an empty, valid result.
func (e *Engine) Run(cfg model.SimulationConfig) (*model.SimulationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tr, err := pathology.New(cfg)
	if err != nil {
		return nil, err
	}

	rng := NewRand(cfg.Seed)
	onsets, err := rhythm.Generate(rhythm.ParamsFor(cfg), rng)
	if err != nil {
		return nil, err
	}
	beats := tr.Resolve(onsets)

	fs := float64(cfg.SamplingRateHz)
	n := cfg.SampleCount()
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / fs
	}
	buf := make([]float64, n)

	for _, b := range beats {
		accumulateBeat(buf, times, fs, b, cfg.Pathology.STShiftMV)
	}
	applyArtifacts(buf, times, cfg.Artifacts, rng)

	events := make([]model.BeatEvent, len(beats))
	for i, b := range beats {
		events[i] = b.BeatEvent
	}

	e.logger.Debug("simulation complete",
		zap.Int("samples", n),
		zap.Int("beats", len(beats)),
		zap.Float64("heart_rate_bpm", cfg.HeartRateBPM),
		zap.String("rhythm", string(cfg.Rhythm.Normalize())),
		zap.Int64("seed", cfg.Seed),
	)

	return &model.SimulationResult{
		Time:   times,
		Signal: buf,
		Beats:  events,
		Meta: model.Metadata{
			SamplingRateHz: cfg.SamplingRateHz,
			HeartRateBPM:   cfg.HeartRateBPM,
			BeatCount:      len(events),
			Seed:           cfg.Seed,
			Flags:          model.FlagsFor(cfg),
		},
	}, nil
}

// RunAll runs independent configs in parallel. Results keep the input order.
// The first error cancels the remaining runs.
func (e *Engine) RunAll(ctx context.Context, cfgs []model.SimulationConfig) ([]*model.SimulationResult, error) {
	out := make([]*model.SimulationResult, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Run(cfg.Clone())
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
