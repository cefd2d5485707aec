package usecase

import (
	"context"
	"fmt"
	"time"

	"ForAlpha/internal/domain/models"
	drepo "ForAlpha/internal/domain/repository"
)

// ScoreProcessor routes score updates to the configured backend.
type ScoreProcessor struct {
	pub     drepo.Publisher
	store   drepo.ScoreStore
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewScoreProcessor creates a new ScoreProcessor instance.
func NewScoreProcessor(
	pub drepo.Publisher,
	store drepo.ScoreStore,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *ScoreProcessor {
	return &ScoreProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single score update to the configured backend.
func (p *ScoreProcessor) Process(ctx context.Context, u *models.ScoreUpdate) error {
	if u == nil {
		return fmt.Errorf("score update is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, u)
	case "clickhouse":
		err = p.store.Store(ctx, u)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process score update: %w", err)
	}

	p.metrics.RecordScoreIngested(p.backend, u.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple score updates in a batch.
func (p *ScoreProcessor) ProcessBatch(ctx context.Context, updates []*models.ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, updates)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, updates)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, u := range updates {
		p.metrics.RecordScoreIngested(p.backend, u.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *ScoreProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
