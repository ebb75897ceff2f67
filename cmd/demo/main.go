package main

import (
	"flag"
	"fmt"
	"math"

	"ecg-synth/internal/analysis"
	"ecg-synth/internal/config"
	"ecg-synth/internal/model"
	"ecg-synth/internal/preset"
	"ecg-synth/internal/synth"
)

// Demo:
// - Resolve a preset (or a scenario YAML)
// - Run one simulation
// - Print the first beats and the signal value at each R peak to show how the pieces fit together
func main() {
	presetName := flag.String("preset", preset.DefaultName, "Preset name")
	cfgPath := flag.String("config", "", "Path to scenario YAML (optional, overrides --preset)")
	n := flag.Int("n", 12, "Number of beats to print")
	outCSV := flag.String("out", "", "Optional path to write signal CSV (e.g. results/ecg.csv)")
	flag.Parse()

	cfg := preset.Resolve(*presetName)
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		*presetName = c.Preset
		if cfg, err = c.Resolve(); err != nil {
			panic(err)
		}
	}

	res, err := synth.New(nil).Run(cfg)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Preset=%s duration=%.1fs fs=%dHz hr=%.0f rhythm=%s seed=%d\n",
		*presetName, cfg.DurationS, cfg.SamplingRateHz, cfg.HeartRateBPM, cfg.Rhythm, cfg.Seed)
	fmt.Printf("Samples=%d Beats=%d\n\n", len(res.Signal), len(res.Beats))

	var prev float64
	for i := 0; i < min(*n, len(res.Beats)); i++ {
		b := res.Beats[i]
		rr := math.NaN()
		if i > 0 {
			rr = b.OnsetS - prev
		}
		prev = b.OnsetS
		fmt.Printf("#%-3d onset=%7.3fs  rr=%6.3fs  kind=%-8s  ecg@onset=%s\n",
			b.Index, b.OnsetS, rr, b.Kind(), valueAt(res, b.OnsetS))
	}

	s := analysis.Summarize(res)
	if *outCSV != "" {
		if err := synth.WriteSignalCSVFile(*outCSV, res); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	fmt.Printf("\nDone. Range=%.3f..%.3f mV  Estimated HR=%.1f bpm\n", s.Min, s.Max, s.EstimatedHR)
}

// valueAt reads the sample nearest to t, or "-" past the end of the record.
func valueAt(res *model.SimulationResult, t float64) string {
	i := int(math.Round(t * float64(res.Meta.SamplingRateHz)))
	if i < 0 || i >= len(res.Signal) {
		return "-"
	}
	return fmt.Sprintf("%7.3f", res.Signal[i])
}
