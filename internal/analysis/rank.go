package analysis

import (
	"sort"
)

// Spread is the P95-P05 amplitude range, a noise-robust peak-to-peak measure.
func (s Summary) Spread() float64 { return s.P95 - s.P05 }

// RankBySpread sorts summaries descending by Spread, ties broken by preset name.
// The input slice is not modified.
func RankBySpread(in []Summary) []Summary {
	out := make([]Summary, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Spread() != out[j].Spread() {
			return out[i].Spread() > out[j].Spread()
		}
		return out[i].Preset < out[j].Preset
	})
	return out
}
