package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	models "ForAlpha/internal/domain/models"
	icache "ForAlpha/internal/service/cache"
	"ForAlpha/internal/usecase"
	xlogger "ForAlpha/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubScoreStore struct {
	series map[models.Metric]models.SignalSeries
}

func (s *stubScoreStore) Init(ctx context.Context) error                           { return nil }
func (s *stubScoreStore) Store(ctx context.Context, u *models.ScoreUpdate) error   { return nil }
func (s *stubScoreStore) StoreBatch(ctx context.Context, u []*models.ScoreUpdate) error { return nil }
func (s *stubScoreStore) Health(ctx context.Context) error                         { return nil }
func (s *stubScoreStore) Close() error                                             { return nil }

func (s *stubScoreStore) GetSeries(ctx context.Context, symbol string) (map[models.Metric]models.SignalSeries, error) {
	out := make(map[models.Metric]models.SignalSeries, len(models.Metrics))
	for _, m := range models.Metrics {
		out[m] = models.SignalSeries{}
	}
	for m, v := range s.series {
		out[m] = v
	}
	return out, nil
}

type stubAdvisor struct{}

func (stubAdvisor) Advise(ctx context.Context, symbol string, table []models.AlphaRecord) models.Advice {
	return models.Advice{Recommendation: models.RecommendationHold, Confidence: models.ConfidenceLow}
}

func newScoresHandler(t *testing.T) *AlphaEchoHandler {
	t.Helper()
	store := &stubScoreStore{series: map[models.Metric]models.SignalSeries{
		models.MetricBeneish: {2020: -2.1, 2021: -1.8},
	}}
	svc := usecase.NewAlphaService(store, stubAdvisor{}, nil, 3)
	l, err := xlogger.New(&xlogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewAlphaEchoHandler(l, svc, icache.NewTTLCache(), CacheTTLs{Scores: time.Minute})
}

func getScores(t *testing.T, h *AlphaEchoHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/scores?symbol=ACME", nil)
	rec := httptest.NewRecorder()
	if err := h.Scores(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Scores: %v", err)
	}
	return rec
}

func TestScoresListEnvelope(t *testing.T) {
	h := newScoresHandler(t)
	rec := getScores(t, h)

	var body struct {
		Status int `json:"status"`
		Data   struct {
			Rows  []models.AssembledRow `json:"rows"`
			Total int64                 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusOK {
		t.Errorf("status = %d, want %d", body.Status, http.StatusOK)
	}
	if body.Data.Total != 2 || len(body.Data.Rows) != 2 {
		t.Fatalf("rows/total = %d/%d, want 2/2", len(body.Data.Rows), body.Data.Total)
	}
	if body.Data.Rows[0].Year != 2020 || body.Data.Rows[0].SignalCount != 1 {
		t.Errorf("first row = year %d count %d, want 2020/1", body.Data.Rows[0].Year, body.Data.Rows[0].SignalCount)
	}
}

func TestScoresCachedReplyMatches(t *testing.T) {
	h := newScoresHandler(t)
	first := getScores(t, h)
	second := getScores(t, h)

	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached reply differs:\nfirst:  %s\nsecond: %s", first.Body.String(), second.Body.String())
	}
}
