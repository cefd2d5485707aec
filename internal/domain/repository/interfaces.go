package repository

import (
	"context"

	"ForAlpha/internal/domain/models"
)

// ScoreStream is a live feed of score updates from the scoring vendor.
type ScoreStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.ScoreUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards score updates to the message bus.
type Publisher interface {
	Publish(ctx context.Context, u *models.ScoreUpdate) error
	PublishBatch(ctx context.Context, updates []*models.ScoreUpdate) error
	Close() error
}

// ScoreStore persists score updates and reads series back per symbol.
type ScoreStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, u *models.ScoreUpdate) error
	StoreBatch(ctx context.Context, updates []*models.ScoreUpdate) error
	// GetSeries returns the latest value per (metric, year) for a symbol.
	GetSeries(ctx context.Context, symbol string) (map[models.Metric]models.SignalSeries, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics records operational counters for the ingest and read paths.
type Metrics interface {
	RecordScoreIngested(backend, symbol string)
	RecordError(kind string)
	RecordLastAlpha(symbol string, alpha float64)
	RecordLatency(op string, seconds float64)
}
