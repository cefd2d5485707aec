package alpha

import (
	"sort"

	"ForAlpha/internal/domain/models"
)

// Assemble merges the four score series into one table: a row per year in
// the union of all year keys, a per-year count of non-null scores, and only
// rows with at least minSignals scores kept. Dropped years are removed
// entirely so they never enter any later normalization window.
//
// The result is empty (zero rows, never nil) when no year qualifies; that is
// a valid "insufficient data" outcome, not an error.
func Assemble(beneish, sloan, piotroski, altman models.SignalSeries, minSignals int) []models.AssembledRow {
	yearSet := make(map[int]struct{})
	for _, s := range []models.SignalSeries{beneish, sloan, piotroski, altman} {
		for y := range s {
			yearSet[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]models.AssembledRow, 0, len(years))
	for _, y := range years {
		row := models.AssembledRow{
			Year:      y,
			Beneish:   lookup(beneish, y),
			Sloan:     lookup(sloan, y),
			Piotroski: lookup(piotroski, y),
			Altman:    lookup(altman, y),
		}
		for _, v := range []*float64{row.Beneish, row.Sloan, row.Piotroski, row.Altman} {
			if v != nil {
				row.SignalCount++
			}
		}
		if row.SignalCount >= minSignals {
			rows = append(rows, row)
		}
	}
	return rows
}

func lookup(s models.SignalSeries, year int) *float64 {
	if v, ok := s[year]; ok {
		return &v
	}
	return nil
}
