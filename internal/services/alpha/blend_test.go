package alpha

import (
	"math"
	"testing"

	"ForAlpha/internal/domain/models"
)

func TestLabelBoundaries(t *testing.T) {
	tests := []struct {
		alpha float64
		want  string
	}{
		{1.0, models.SignalPositive},
		{1.0001, models.SignalStrongPositive},
		{0.3, models.SignalNeutral},
		{0.3001, models.SignalPositive},
		{-0.3, models.SignalNeutral},
		{-0.3001, models.SignalNegative},
		{-1.0, models.SignalNegative},
		{-1.0001, models.SignalStrongNegative},
		{0.0, models.SignalNeutral},
	}
	for _, tt := range tests {
		if got := Label(tt.alpha); got != tt.want {
			t.Fatalf("Label(%v) = %q, want %q", tt.alpha, got, tt.want)
		}
	}
}

func TestRound4(t *testing.T) {
	if got := round4(0.123449); got != 0.1234 {
		t.Fatalf("got %v", got)
	}
	if got := round4(-0.70710678); got != -0.7071 {
		t.Fatalf("got %v", got)
	}
	if round4(1.00004) != round4(1.00009-0.00005) {
		t.Fatalf("values differing beyond the 4th decimal must round identically")
	}
}

func TestComputeEndToEnd(t *testing.T) {
	beneish := models.SignalSeries{2020: -2.2, 2021: -2.0, 2022: -1.8}
	sloan := models.SignalSeries{2020: 0.02, 2021: 0.03, 2022: 0.05}
	piotroski := models.SignalSeries{2020: 6, 2021: 7, 2022: 8}
	altman := models.SignalSeries{2020: 3.0, 2021: 3.2, 2022: 2.9}

	recs, err := Compute(beneish, sloan, piotroski, altman, DefaultBlendConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 surviving years, got %d", len(recs))
	}
	for i, y := range []int{2020, 2021, 2022} {
		r := recs[i]
		if r.Year != y {
			t.Fatalf("row %d: year %d, want %d", i, r.Year, y)
		}
		if r.SignalCount != 4 {
			t.Fatalf("year %d: signal_count %d, want 4", y, r.SignalCount)
		}
		if r.ForensicAlpha == nil {
			t.Fatalf("year %d: expected non-null alpha", y)
		}
		if round4(*r.ForensicAlpha) != *r.ForensicAlpha {
			t.Fatalf("year %d: alpha %v not rounded to 4 decimals", y, *r.ForensicAlpha)
		}
		if r.Signal == "" {
			t.Fatalf("year %d: expected a label for a non-null alpha", y)
		}
	}
	// first year of every expanding window normalizes to exactly 0.0
	first := recs[0]
	for _, sig := range []*float64{first.BeneishSignal, first.SloanSignal, first.PiotroskiSignal, first.AltmanSignal} {
		if sig == nil || *sig != 0.0 {
			t.Fatalf("first-year signals must be 0.0, got %v", sig)
		}
	}
}

func TestComputeNoLookAheadAcrossYears(t *testing.T) {
	beneish := models.SignalSeries{2020: -2.2, 2021: -2.0, 2022: -1.8}
	sloan := models.SignalSeries{2020: 0.02, 2021: 0.03, 2022: 0.05}
	piotroski := models.SignalSeries{2020: 6, 2021: 7, 2022: 8}
	altman := models.SignalSeries{2020: 3.0, 2021: 3.2, 2022: 2.9}

	base, err := Compute(beneish, sloan, piotroski, altman, DefaultBlendConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// appending a future year must not change any earlier record
	beneish[2023] = 5.5
	sloan[2023] = -0.9
	piotroski[2023] = 1
	altman[2023] = 0.4
	extended, err := Compute(beneish, sloan, piotroski, altman, DefaultBlendConfig())
	if err != nil {
		t.Fatalf("compute extended: %v", err)
	}
	if len(extended) != len(base)+1 {
		t.Fatalf("expected one extra row, got %d vs %d", len(extended), len(base))
	}
	for i := range base {
		if *base[i].ForensicAlpha != *extended[i].ForensicAlpha {
			t.Fatalf("year %d alpha changed after appending future data: %v vs %v",
				base[i].Year, *base[i].ForensicAlpha, *extended[i].ForensicAlpha)
		}
	}
}

func TestBlendDynamicRenormalization(t *testing.T) {
	cfg := DefaultBlendConfig()
	beneish := models.SignalSeries{2019: -2.1, 2020: -2.3, 2021: -1.9}
	sloan := models.SignalSeries{2019: 0.04, 2021: 0.06} // missing 2020
	piotroski := models.SignalSeries{2019: 5, 2020: 6, 2021: 7}
	altman := models.SignalSeries{2019: 2.8, 2020: 3.1, 2021: 3.4}

	recs, err := Compute(beneish, sloan, piotroski, altman, cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(recs))
	}

	r := recs[1] // 2020, sloan absent
	if r.SloanSignal != nil {
		t.Fatalf("sloan signal must be nil for the missing year")
	}
	wb := cfg.Weights[models.MetricBeneish]
	wp := cfg.Weights[models.MetricPiotroski]
	wa := cfg.Weights[models.MetricAltman]
	want := round4((wb**r.BeneishSignal + wp**r.PiotroskiSignal + wa**r.AltmanSignal) / (wb + wp + wa))
	if math.Abs(*r.ForensicAlpha-want) > 1e-12 {
		t.Fatalf("alpha %v, want weighted sum over present signals %v", *r.ForensicAlpha, want)
	}
}

func TestBlendZeroEffectiveWeight(t *testing.T) {
	rows := []models.AssembledRow{{Year: 2020, SignalCount: 0}}
	recs, err := Blend(rows, DefaultBlendConfig())
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if recs[0].ForensicAlpha != nil {
		t.Fatalf("expected nil alpha when no signal carries weight, got %v", *recs[0].ForensicAlpha)
	}
	if recs[0].Signal != "" {
		t.Fatalf("a nil alpha must not be labeled, got %q", recs[0].Signal)
	}
}

func TestComputeInvertedPolarity(t *testing.T) {
	cfg := DefaultBlendConfig()
	cfg.MinSignals = 1
	recs, err := Compute(models.SignalSeries{2020: 1, 2021: 2}, nil, nil, nil, cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// beneish z at 2021 is +0.5/sqrt(0.5); inverted polarity flips the sign,
	// and with only beneish present the alpha equals its corrected signal.
	want := round4(-0.5 / math.Sqrt(0.5))
	if recs[1].ForensicAlpha == nil || *recs[1].ForensicAlpha != want {
		t.Fatalf("alpha %v, want %v", recs[1].ForensicAlpha, want)
	}
	if recs[1].Signal != models.SignalNegative {
		t.Fatalf("label %q, want %q", recs[1].Signal, models.SignalNegative)
	}
}

func TestBlendConfigValidate(t *testing.T) {
	bad := DefaultBlendConfig()
	bad.Weights[models.MetricAltman] = 0.5
	if _, err := Blend(nil, bad); err == nil {
		t.Fatalf("expected error for weights not summing to 1.0")
	}

	badMin := DefaultBlendConfig()
	badMin.MinSignals = 0
	if _, err := Compute(nil, nil, nil, nil, badMin); err == nil {
		t.Fatalf("expected error for min_signals out of range")
	}

	missing := DefaultBlendConfig()
	delete(missing.Weights, models.MetricSloan)
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected error for missing metric weight")
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	recs, err := Compute(nil, nil, nil, nil, DefaultBlendConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(recs))
	}
}
