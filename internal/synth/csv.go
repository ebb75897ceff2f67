package synth

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"ecg-synth/internal/model"
)

// WriteSignalCSVFile writes the two-column record to path, creating parent directories.
func WriteSignalCSVFile(path string, res *model.SimulationResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteSignalCSV(f, res); err != nil {
		return err
	}
	return f.Close()
}

// WriteSignalCSV writes one "time_s,ecg_mV" row per sample.
func WriteSignalCSV(out io.Writer, res *model.SimulationResult) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"time_s", "ecg_mV"}); err != nil {
		return err
	}
	for i := range res.Signal {
		if err := w.Write([]string{fmtFloat(res.Time[i]), fmtFloat(res.Signal[i])}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteBeatsCSV writes the beat table: index, onset and NORMAL/ECTOPIC kind.
func WriteBeatsCSV(out io.Writer, beats []model.BeatEvent) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"index", "onset_s", "kind"}); err != nil {
		return err
	}
	for _, b := range beats {
		row := []string{
			strconv.Itoa(b.Index),
			fmtFloat(b.OnsetS),
			string(b.Kind()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteResultJSON writes the full result as indented JSON.
func WriteResultJSON(out io.Writer, res *model.SimulationResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
