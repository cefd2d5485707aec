package alpha

import (
	"gonum.org/v1/gonum/stat"
)

// ExpandingZScores normalizes a year-ordered series with an expanding window
// and no look-ahead: the value at position i only ever sees positions 0..i of
// the same series. Standard deviation is the sample estimator (N-1); the
// choice matters because N vs N-1 changes every downstream alpha.
//
// Degenerate windows (fewer than 2 non-null observations, or zero sample
// stddev) yield 0.0 rather than an error or a spurious large z-score. A nil
// input stays nil at that position and contributes nothing to later windows.
func ExpandingZScores(series []*float64) []*float64 {
	out := make([]*float64, len(series))
	window := make([]float64, 0, len(series))
	for i, v := range series {
		if v == nil {
			continue
		}
		window = append(window, *v)
		if len(window) < 2 {
			out[i] = fptr(0.0)
			continue
		}
		sd := stat.StdDev(window, nil)
		if sd == 0 {
			out[i] = fptr(0.0)
			continue
		}
		z := (*v - stat.Mean(window, nil)) / sd
		out[i] = &z
	}
	return out
}

func fptr(v float64) *float64 { return &v }
