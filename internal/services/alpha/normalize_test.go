package alpha

import (
	"math"
	"testing"
)

func vals(xs ...float64) []*float64 {
	out := make([]*float64, len(xs))
	for i := range xs {
		out[i] = &xs[i]
	}
	return out
}

func TestExpandingZScoresFirstPositionIsZero(t *testing.T) {
	got := ExpandingZScores(vals(123.45))
	if got[0] == nil || *got[0] != 0.0 {
		t.Fatalf("expected 0.0 at position 0, got %v", got[0])
	}
}

func TestExpandingZScoresConstantSeries(t *testing.T) {
	got := ExpandingZScores(vals(5, 5, 5, 5))
	for i, v := range got {
		if v == nil || *v != 0.0 {
			t.Fatalf("position %d: expected 0.0 for constant series, got %v", i, v)
		}
	}
}

func TestExpandingZScoresSampleStdDev(t *testing.T) {
	// window [1,2]: mean 1.5, sample stddev sqrt(0.5) -> z = 0.5/sqrt(0.5)
	got := ExpandingZScores(vals(1, 2))
	want := 0.5 / math.Sqrt(0.5)
	if got[1] == nil || math.Abs(*got[1]-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got[1])
	}
}

func TestExpandingZScoresNoLookAhead(t *testing.T) {
	full := ExpandingZScores(vals(3, 1, 4, 1, 5, 9, 2, 6))
	prefix := ExpandingZScores(vals(3, 1, 4, 1))
	for i := range prefix {
		if *full[i] != *prefix[i] {
			t.Fatalf("position %d changed when future values were appended: %v vs %v", i, *full[i], *prefix[i])
		}
	}
}

func TestExpandingZScoresNilHandling(t *testing.T) {
	series := []*float64{fptr(1), nil, fptr(2), fptr(3)}
	got := ExpandingZScores(series)

	if got[1] != nil {
		t.Fatalf("nil input must stay nil, got %v", *got[1])
	}
	// nil at position 1 must not enter the window: position 2 sees [1,2]
	want := 0.5 / math.Sqrt(0.5)
	if got[2] == nil || math.Abs(*got[2]-want) > 1e-12 {
		t.Fatalf("expected window to skip nil: want %v, got %v", want, got[2])
	}
}

func TestExpandingZScoresSingleObservationAfterNils(t *testing.T) {
	series := []*float64{nil, nil, fptr(7)}
	got := ExpandingZScores(series)
	if got[0] != nil || got[1] != nil {
		t.Fatalf("leading nils must stay nil")
	}
	if got[2] == nil || *got[2] != 0.0 {
		t.Fatalf("first observation must normalize to 0.0, got %v", got[2])
	}
}

func TestExpandingZScoresReproducible(t *testing.T) {
	in := vals(0.1, -0.4, 2.2, 1.1, -3.3)
	a := ExpandingZScores(in)
	b := ExpandingZScores(in)
	for i := range a {
		if *a[i] != *b[i] {
			t.Fatalf("position %d not bit-reproducible: %v vs %v", i, *a[i], *b[i])
		}
	}
}
