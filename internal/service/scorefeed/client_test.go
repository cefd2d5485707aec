package scorefeed

import (
	"testing"

	"ForAlpha/internal/domain/models"
)

type dropCounter struct {
	errors []string
}

func (m *dropCounter) RecordScoreIngested(backend, symbol string)   {}
func (m *dropCounter) RecordError(kind string)                      { m.errors = append(m.errors, kind) }
func (m *dropCounter) RecordLastAlpha(symbol string, alpha float64) {}
func (m *dropCounter) RecordLatency(op string, seconds float64)     {}

func TestDispatchCountsDrops(t *testing.T) {
	rec := &dropCounter{}
	c := &Client{metrics: rec}

	updates := make(chan *models.ScoreUpdate, 1)
	u := &models.ScoreUpdate{Symbol: "ACME", Metric: models.MetricAltman, Year: 2021, Value: 3.2}

	c.dispatch(updates, u)
	if len(rec.errors) != 0 {
		t.Fatalf("drop counted with buffer space free: %v", rec.errors)
	}

	c.dispatch(updates, u) // buffer full now
	if len(rec.errors) != 1 || rec.errors[0] != "scorefeed_drop" {
		t.Fatalf("errors = %v, want one scorefeed_drop", rec.errors)
	}

	got := <-updates
	if got.Symbol != "ACME" {
		t.Errorf("delivered update symbol = %q, want ACME", got.Symbol)
	}
}

func TestDispatchNilMetrics(t *testing.T) {
	c := &Client{}
	updates := make(chan *models.ScoreUpdate) // unbuffered, nobody reading
	c.dispatch(updates, &models.ScoreUpdate{Symbol: "ACME"})
}
