package usecase

import (
	"context"
	"fmt"

	"ForAlpha/internal/domain/models"
	domrepo "ForAlpha/internal/domain/repository"
	domsvc "ForAlpha/internal/domain/service"
	"ForAlpha/internal/services/alpha"
)

// AlphaService loads a symbol's score series and runs the blending core.
// The core itself is pure; this usecase owns the store round-trip and the
// advisor hand-off.
type AlphaService struct {
	store      domrepo.ScoreStore
	advisor    domsvc.Advisor
	metrics    domrepo.Metrics
	defaultMin int
}

func NewAlphaService(store domrepo.ScoreStore, advisor domsvc.Advisor, metrics domrepo.Metrics, defaultMinSignals int) *AlphaService {
	if defaultMinSignals < 1 || defaultMinSignals > 4 {
		defaultMinSignals = alpha.DefaultMinSignals
	}
	return &AlphaService{store: store, advisor: advisor, metrics: metrics, defaultMin: defaultMinSignals}
}

// Table computes the alpha table for a symbol. minSignals <= 0 selects the
// configured default. An empty table is a valid outcome, not an error.
func (s *AlphaService) Table(ctx context.Context, symbol string, minSignals int) ([]models.AlphaRecord, error) {
	series, err := s.store.GetSeries(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	cfg := alpha.DefaultBlendConfig()
	if minSignals > 0 {
		cfg.MinSignals = minSignals
	} else {
		cfg.MinSignals = s.defaultMin
	}

	recs, err := alpha.Compute(
		series[models.MetricBeneish],
		series[models.MetricSloan],
		series[models.MetricPiotroski],
		series[models.MetricAltman],
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("compute alpha: %w", err)
	}

	if s.metrics != nil {
		for i := len(recs) - 1; i >= 0; i-- {
			if recs[i].ForensicAlpha != nil {
				s.metrics.RecordLastAlpha(symbol, *recs[i].ForensicAlpha)
				break
			}
		}
	}
	return recs, nil
}

// Assembled returns the merged raw table for a symbol, every year with at
// least one score, for dashboard display.
func (s *AlphaService) Assembled(ctx context.Context, symbol string) ([]models.AssembledRow, error) {
	series, err := s.store.GetSeries(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	return alpha.Assemble(
		series[models.MetricBeneish],
		series[models.MetricSloan],
		series[models.MetricPiotroski],
		series[models.MetricAltman],
		1,
	), nil
}

// Advise computes the table and asks the advisor collaborator for a
// recommendation. The advisor never fails; at worst it hands back the
// conservative fallback.
func (s *AlphaService) Advise(ctx context.Context, symbol string, minSignals int) ([]models.AlphaRecord, models.Advice, error) {
	recs, err := s.Table(ctx, symbol, minSignals)
	if err != nil {
		return nil, models.Advice{}, err
	}
	return recs, s.advisor.Advise(ctx, symbol, recs), nil
}

// Health reports whether the backing store is reachable.
func (s *AlphaService) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// Upload writes a posted score series into the store.
func (s *AlphaService) Upload(ctx context.Context, req *models.ScoreUploadRequest, now int64) error {
	updates := make([]*models.ScoreUpdate, 0, len(req.Points))
	for _, p := range req.Points {
		updates = append(updates, &models.ScoreUpdate{
			Symbol:    req.Symbol,
			Metric:    models.Metric(req.Metric),
			Year:      p.Year,
			Value:     p.Value,
			Source:    "upload",
			Timestamp: now,
		})
	}
	if err := s.store.StoreBatch(ctx, updates); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordScoreIngested("clickhouse", req.Symbol)
	}
	return nil
}
