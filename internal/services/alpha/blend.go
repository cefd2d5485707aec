package alpha

import (
	"fmt"
	"math"

	"ForAlpha/internal/domain/models"
)

// Compute runs the full core pipeline: assemble the four series, normalize
// each surviving column with an expanding window, direction-correct, blend
// with dynamic renormalization and label. It is a pure function of its
// inputs; repeated calls with identical inputs are bit-reproducible.
func Compute(beneish, sloan, piotroski, altman models.SignalSeries, cfg BlendConfig) ([]models.AlphaRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("blend config: %w", err)
	}
	rows := Assemble(beneish, sloan, piotroski, altman, cfg.MinSignals)
	return Blend(rows, cfg)
}

// Blend turns assembled rows into alpha records. Each metric column is
// normalized independently (its window never sees another metric), inverted
// metrics are negated, and the per-year composite divides by the weight sum
// of only the signals present that year, so a year with three signals is not
// silently scaled against a year with four. A year where no signal carries
// weight gets a nil alpha and no label.
func Blend(rows []models.AssembledRow, cfg BlendConfig) ([]models.AlphaRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("blend config: %w", err)
	}

	signals := make(map[models.Metric][]*float64, len(models.Metrics))
	for _, m := range models.Metrics {
		col := ExpandingZScores(column(rows, m))
		if cfg.Inverted[m] {
			for i, v := range col {
				if v != nil {
					col[i] = fptr(-*v)
				}
			}
		}
		signals[m] = col
	}

	out := make([]models.AlphaRecord, 0, len(rows))
	for i, row := range rows {
		rec := models.AlphaRecord{
			Year:            row.Year,
			BeneishSignal:   signals[models.MetricBeneish][i],
			SloanSignal:     signals[models.MetricSloan][i],
			PiotroskiSignal: signals[models.MetricPiotroski][i],
			AltmanSignal:    signals[models.MetricAltman][i],
			SignalCount:     row.SignalCount,
		}

		weighted := 0.0
		effective := 0.0
		for _, m := range models.Metrics {
			if sig := signals[m][i]; sig != nil {
				weighted += cfg.Weights[m] * *sig
				effective += cfg.Weights[m]
			}
		}
		if effective > 0 {
			a := round4(weighted / effective)
			rec.ForensicAlpha = &a
			rec.Signal = Label(a)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Label classifies a rounded alpha into one of five buckets. Thresholds are
// strict: 1.0 is "Positive", 0.3 and -0.3 are "Neutral". Callers must not
// label a nil alpha; there is no bucket for missing data.
func Label(alpha float64) string {
	switch {
	case alpha > 1.0:
		return models.SignalStrongPositive
	case alpha > 0.3:
		return models.SignalPositive
	case alpha < -1.0:
		return models.SignalStrongNegative
	case alpha < -0.3:
		return models.SignalNegative
	default:
		return models.SignalNeutral
	}
}

func column(rows []models.AssembledRow, m models.Metric) []*float64 {
	col := make([]*float64, len(rows))
	for i, r := range rows {
		switch m {
		case models.MetricBeneish:
			col[i] = r.Beneish
		case models.MetricSloan:
			col[i] = r.Sloan
		case models.MetricPiotroski:
			col[i] = r.Piotroski
		case models.MetricAltman:
			col[i] = r.Altman
		}
	}
	return col
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
