package usecase

import (
	"context"
	"errors"
	"testing"

	"ForAlpha/internal/domain/models"
)

type memScoreStore struct {
	series map[string]map[models.Metric]models.SignalSeries
	err    error
}

func newMemScoreStore() *memScoreStore {
	return &memScoreStore{series: make(map[string]map[models.Metric]models.SignalSeries)}
}

func (m *memScoreStore) Init(ctx context.Context) error { return nil }

func (m *memScoreStore) Store(ctx context.Context, u *models.ScoreUpdate) error {
	if m.err != nil {
		return m.err
	}
	bySym, ok := m.series[u.Symbol]
	if !ok {
		bySym = make(map[models.Metric]models.SignalSeries)
		m.series[u.Symbol] = bySym
	}
	s, ok := bySym[u.Metric]
	if !ok {
		s = models.SignalSeries{}
		bySym[u.Metric] = s
	}
	s[u.Year] = u.Value
	return nil
}

func (m *memScoreStore) StoreBatch(ctx context.Context, updates []*models.ScoreUpdate) error {
	for _, u := range updates {
		if err := m.Store(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (m *memScoreStore) GetSeries(ctx context.Context, symbol string) (map[models.Metric]models.SignalSeries, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[models.Metric]models.SignalSeries, len(models.Metrics))
	for _, metric := range models.Metrics {
		out[metric] = models.SignalSeries{}
	}
	for metric, s := range m.series[symbol] {
		out[metric] = s
	}
	return out, nil
}

func (m *memScoreStore) Health(ctx context.Context) error { return m.err }
func (m *memScoreStore) Close() error                     { return nil }

type recordedAlpha struct {
	symbol string
	alpha  float64
}

type memMetrics struct {
	lastAlphas []recordedAlpha
	errors     []string
	ingested   int
}

func (m *memMetrics) RecordScoreIngested(backend, symbol string) { m.ingested++ }
func (m *memMetrics) RecordError(kind string)                    { m.errors = append(m.errors, kind) }
func (m *memMetrics) RecordLastAlpha(symbol string, alpha float64) {
	m.lastAlphas = append(m.lastAlphas, recordedAlpha{symbol: symbol, alpha: alpha})
}
func (m *memMetrics) RecordLatency(op string, seconds float64) {}

type cannedAdvisor struct {
	advice models.Advice
	calls  int
}

func (a *cannedAdvisor) Advise(ctx context.Context, symbol string, table []models.AlphaRecord) models.Advice {
	a.calls++
	return a.advice
}

func seedStore(t *testing.T, store *memScoreStore, symbol string) {
	t.Helper()
	for year := 2020; year <= 2022; year++ {
		for _, metric := range models.Metrics {
			err := store.Store(context.Background(), &models.ScoreUpdate{
				Symbol: symbol,
				Metric: metric,
				Year:   year,
				Value:  float64(year - 2019),
			})
			if err != nil {
				t.Fatalf("seed store: %v", err)
			}
		}
	}
}

func TestAlphaServiceTable(t *testing.T) {
	store := newMemScoreStore()
	seedStore(t, store, "ACME")
	svc := NewAlphaService(store, &cannedAdvisor{}, nil, 3)

	recs, err := svc.Table(context.Background(), "ACME", 0)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(recs))
	}
	for i, year := range []int{2020, 2021, 2022} {
		if recs[i].Year != year {
			t.Errorf("row %d: year = %d, want %d", i, recs[i].Year, year)
		}
		if recs[i].ForensicAlpha == nil {
			t.Errorf("row %d: alpha is nil", i)
		}
	}
}

func TestAlphaServiceTableRecordsLastAlpha(t *testing.T) {
	store := newMemScoreStore()
	seedStore(t, store, "ACME")
	rec := &memMetrics{}
	svc := NewAlphaService(store, &cannedAdvisor{}, rec, 3)

	recs, err := svc.Table(context.Background(), "ACME", 0)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(recs) == 0 || recs[len(recs)-1].ForensicAlpha == nil {
		t.Fatal("expected a non-null alpha in the latest row")
	}
	if len(rec.lastAlphas) != 1 {
		t.Fatalf("RecordLastAlpha called %d times, want 1", len(rec.lastAlphas))
	}
	got := rec.lastAlphas[0]
	if got.symbol != "ACME" {
		t.Errorf("recorded symbol = %q, want ACME", got.symbol)
	}
	if want := *recs[len(recs)-1].ForensicAlpha; got.alpha != want {
		t.Errorf("recorded alpha = %v, want latest %v", got.alpha, want)
	}
}

func TestAlphaServiceTableUnknownSymbol(t *testing.T) {
	store := newMemScoreStore()
	svc := NewAlphaService(store, &cannedAdvisor{}, nil, 3)

	recs, err := svc.Table(context.Background(), "NOPE", 0)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if recs == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(recs) != 0 {
		t.Fatalf("expected no rows, got %d", len(recs))
	}
}

func TestAlphaServiceTableStoreError(t *testing.T) {
	store := newMemScoreStore()
	store.err = errors.New("connection refused")
	svc := NewAlphaService(store, &cannedAdvisor{}, nil, 3)

	if _, err := svc.Table(context.Background(), "ACME", 0); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestAlphaServiceTableMinSignalsOverride(t *testing.T) {
	store := newMemScoreStore()
	// Only two metrics present: rows survive min_signals=2 but not the default 3.
	for year := 2020; year <= 2021; year++ {
		for _, metric := range []models.Metric{models.MetricPiotroski, models.MetricAltman} {
			_ = store.Store(context.Background(), &models.ScoreUpdate{
				Symbol: "ACME", Metric: metric, Year: year, Value: float64(year),
			})
		}
	}
	svc := NewAlphaService(store, &cannedAdvisor{}, nil, 3)

	recs, err := svc.Table(context.Background(), "ACME", 0)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("default min_signals: expected 0 rows, got %d", len(recs))
	}

	recs, err = svc.Table(context.Background(), "ACME", 2)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("min_signals=2: expected 2 rows, got %d", len(recs))
	}
}

func TestAlphaServiceAssembled(t *testing.T) {
	store := newMemScoreStore()
	// A single score in a year keeps the row in the assembled table.
	_ = store.Store(context.Background(), &models.ScoreUpdate{
		Symbol: "ACME", Metric: models.MetricBeneish, Year: 2019, Value: -2.5,
	})
	seedStore(t, store, "ACME")
	svc := NewAlphaService(store, &cannedAdvisor{}, nil, 3)

	rows, err := svc.Assembled(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("Assembled: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Year != 2019 || rows[0].SignalCount != 1 {
		t.Errorf("first row = year %d count %d, want 2019/1", rows[0].Year, rows[0].SignalCount)
	}
}

func TestAlphaServiceAdvise(t *testing.T) {
	store := newMemScoreStore()
	seedStore(t, store, "ACME")
	adv := &cannedAdvisor{advice: models.Advice{
		Recommendation: models.RecommendationLong,
		Confidence:     models.ConfidenceMedium,
		Reasoning:      "improving accrual quality",
	}}
	svc := NewAlphaService(store, adv, nil, 3)

	recs, advice, err := svc.Advise(context.Background(), "ACME", 0)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected non-empty table")
	}
	if adv.calls != 1 {
		t.Fatalf("advisor called %d times, want 1", adv.calls)
	}
	if advice.Recommendation != models.RecommendationLong {
		t.Errorf("recommendation = %q, want %q", advice.Recommendation, models.RecommendationLong)
	}
}

func TestAlphaServiceUpload(t *testing.T) {
	store := newMemScoreStore()
	svc := NewAlphaService(store, &cannedAdvisor{}, nil, 3)

	req := &models.ScoreUploadRequest{
		Symbol: "ACME",
		Metric: "piotroski",
		Points: []models.ScorePoint{
			{Year: 2020, Value: 6},
			{Year: 2021, Value: 8},
		},
	}
	if err := svc.Upload(context.Background(), req, 1700000000); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	series, err := store.GetSeries(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	s := series[models.MetricPiotroski]
	if len(s) != 2 || s[2020] != 6 || s[2021] != 8 {
		t.Fatalf("stored series = %v", s)
	}
}
