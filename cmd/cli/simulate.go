package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ecg-synth/internal/analysis"
	"ecg-synth/internal/config"
	"ecg-synth/internal/model"
	"ecg-synth/internal/preset"
	"ecg-synth/internal/render"
	"ecg-synth/internal/store"
	"ecg-synth/internal/synth"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type simulateOptions struct {
	presetName string
	configPath string

	overrides config.Overrides

	out      string
	beatsOut string
	jsonOut  string
	pngOut   string
	dbPath   string
}

func newSimulateCmd(a *app) *cobra.Command {
	var (
		opts     simulateOptions
		duration float64
		fs       int
		hr       float64
		rhythm   string
		seed     int64
		noise    float64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulation and write the signal as CSV",
		Example: `  ecgsim simulate --preset afib --duration 20 --out results/afib.csv
  ecgsim simulate --config examples/scenarios/stemi_long.yaml --png results/stemi.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("duration") {
				opts.overrides.DurationS = &duration
			}
			if f.Changed("fs") {
				opts.overrides.SamplingRateHz = &fs
			}
			if f.Changed("hr") {
				opts.overrides.HeartRateBPM = &hr
			}
			if f.Changed("rhythm") {
				opts.overrides.Rhythm = &rhythm
			}
			if f.Changed("seed") {
				opts.overrides.Seed = &seed
			}
			if f.Changed("noise") {
				opts.overrides.NoiseStdMV = &noise
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), a.logger, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.presetName, "preset", "p", preset.DefaultName, "preset name (see: ecgsim presets)")
	f.StringVarP(&opts.configPath, "config", "c", "", "scenario YAML; its preset wins over --preset")
	f.Float64Var(&duration, "duration", 0, "override duration in seconds")
	f.IntVar(&fs, "fs", 0, "override sampling rate in Hz")
	f.Float64Var(&hr, "hr", 0, "override heart rate in bpm")
	f.StringVar(&rhythm, "rhythm", "", "override rhythm (regular|irregular)")
	f.Int64Var(&seed, "seed", 0, "override random seed")
	f.Float64Var(&noise, "noise", 0, "override white noise std in mV")
	f.StringVarP(&opts.out, "out", "o", "results/ecg.csv", "signal CSV path")
	f.StringVar(&opts.beatsOut, "beats", "", "optional beats CSV path")
	f.StringVar(&opts.jsonOut, "json", "", "optional full result JSON path")
	f.StringVar(&opts.pngOut, "png", "", "optional PNG plot path")
	f.StringVar(&opts.dbPath, "db", "", "optional SQLite database to store the run in")
	return cmd
}

// resolveConfig picks the scenario file if given, else the preset, then applies overrides.
func resolveConfig(opts simulateOptions) (string, model.SimulationConfig, error) {
	name := opts.presetName
	base := preset.Resolve(name)
	if opts.configPath != "" {
		c, err := config.LoadUnchecked(opts.configPath)
		if err != nil {
			return "", model.SimulationConfig{}, err
		}
		name = c.Preset
		base = c.Simulation.ApplyTo(preset.Resolve(c.Preset))
	}
	cfg := opts.overrides.ApplyTo(base)
	return name, cfg, cfg.Validate()
}

func runSimulate(ctx context.Context, stdout io.Writer, logger *zap.Logger, opts simulateOptions) error {
	name, cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	if _, ok := preset.Lookup(name); !ok {
		logger.Warn("unknown preset, using base configuration", zap.String("preset", name))
	}

	res, err := synth.New(logger).Run(cfg)
	if err != nil {
		return err
	}

	if err := synth.WriteSignalCSVFile(opts.out, res); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d samples to %s\n", len(res.Signal), opts.out)

	if opts.beatsOut != "" {
		if err := writeFile(opts.beatsOut, func(w io.Writer) error { return synth.WriteBeatsCSV(w, res.Beats) }); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d beats to %s\n", len(res.Beats), opts.beatsOut)
	}
	if opts.jsonOut != "" {
		if err := writeFile(opts.jsonOut, func(w io.Writer) error { return synth.WriteResultJSON(w, res) }); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote JSON: %s\n", opts.jsonOut)
	}
	if opts.pngOut != "" {
		if err := writeFile(opts.pngOut, func(w io.Writer) error {
			return render.WritePNG(w, res.Time, res.Signal, render.Options{})
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote PNG: %s\n", opts.pngOut)
	}
	if opts.dbPath != "" {
		runs, err := store.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer runs.Close()
		saved, err := runs.Save(ctx, store.Run{Preset: name, Config: cfg, Result: res})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Stored run %s in %s\n", saved.ID, opts.dbPath)
	}

	printSummary(stdout, name, analysis.Summarize(res), res.Meta)
	return nil
}

func printSummary(w io.Writer, name string, s analysis.Summary, meta model.Metadata) {
	var flags []string
	f := meta.Flags
	for _, on := range []struct {
		set  bool
		name string
	}{
		{f.IrregularRR, "irregular_rr"},
		{f.WideQRS, "wide_qrs"},
		{f.RBBB, "rbbb"},
		{f.LBBB, "lbbb"},
		{f.STShiftMV != 0, fmt.Sprintf("st_shift=%.2fmV", f.STShiftMV)},
		{f.TInverted, "t_inverted"},
		{f.PVCBigeminy, "pvc_bigeminy"},
	} {
		if on.set {
			flags = append(flags, on.name)
		}
	}
	if len(flags) == 0 {
		flags = append(flags, "none")
	}

	fmt.Fprintf(w, "Preset=%s fs=%dHz duration=%.2fs seed=%d\n", name, meta.SamplingRateHz, s.DurationS, meta.Seed)
	fmt.Fprintf(w, "Beats=%d (ectopic %d) HR set=%.1f est=%.1f bpm\n", s.Beats, s.EctopicBeats, meta.HeartRateBPM, s.EstimatedHR)
	fmt.Fprintf(w, "Range=%.3f..%.3f mV mean=%.3f std=%.3f\n", s.Min, s.Max, s.Mean, s.StdDev)
	fmt.Fprintf(w, "Flags=%s\n", strings.Join(flags, ","))
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
