package alpha

import (
	"testing"

	"ForAlpha/internal/domain/models"
)

func TestAssembleMinSignalExclusion(t *testing.T) {
	// counts per year: 2019=4, 2020=2, 2021=4, 2022=1, 2023=3
	beneish := models.SignalSeries{2019: 1, 2020: 1, 2021: 1, 2023: 1}
	sloan := models.SignalSeries{2019: 1, 2021: 1, 2023: 1}
	piotroski := models.SignalSeries{2019: 1, 2020: 1, 2021: 1, 2022: 1, 2023: 1}
	altman := models.SignalSeries{2019: 1, 2021: 1}

	rows := Assemble(beneish, sloan, piotroski, altman, 3)

	wantYears := []int{2019, 2021, 2023}
	wantCounts := []int{4, 4, 3}
	if len(rows) != len(wantYears) {
		t.Fatalf("expected %d rows, got %d", len(wantYears), len(rows))
	}
	for i, r := range rows {
		if r.Year != wantYears[i] || r.SignalCount != wantCounts[i] {
			t.Fatalf("row %d: got year=%d count=%d, want year=%d count=%d",
				i, r.Year, r.SignalCount, wantYears[i], wantCounts[i])
		}
	}
}

func TestAssembleEmptyResultIsNotAnError(t *testing.T) {
	rows := Assemble(models.SignalSeries{2020: 1}, nil, nil, nil, 3)
	if rows == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(rows) != 0 {
		t.Fatalf("expected zero rows, got %d", len(rows))
	}
}

func TestAssembleUnionOfYears(t *testing.T) {
	rows := Assemble(
		models.SignalSeries{2018: 1.1},
		models.SignalSeries{2020: 2.2},
		nil,
		nil,
		1,
	)
	if len(rows) != 2 {
		t.Fatalf("expected union of years, got %d rows", len(rows))
	}
	if rows[0].Year != 2018 || rows[1].Year != 2020 {
		t.Fatalf("rows out of year order: %v, %v", rows[0].Year, rows[1].Year)
	}
	if rows[0].Beneish == nil || rows[0].Sloan != nil {
		t.Fatalf("2018 should carry beneish only")
	}
	if rows[0].SignalCount != 1 || rows[1].SignalCount != 1 {
		t.Fatalf("unexpected signal counts: %d, %d", rows[0].SignalCount, rows[1].SignalCount)
	}
}

func TestAssembleNonContiguousYears(t *testing.T) {
	s := models.SignalSeries{1998: 1, 2005: 2, 2021: 3}
	rows := Assemble(s, s, s, s, 4)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, y := range []int{1998, 2005, 2021} {
		if rows[i].Year != y {
			t.Fatalf("row %d: got year %d, want %d", i, rows[i].Year, y)
		}
	}
}
