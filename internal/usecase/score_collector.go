package usecase

import (
	"context"

	"ForAlpha/internal/domain/models"
	drepo "ForAlpha/internal/domain/repository"
	mid "ForAlpha/internal/middleware"
)

// ScoreCollector consumes the vendor score feed and hands updates to the
// ingest pipeline.
type ScoreCollector struct {
	stream  drepo.ScoreStream
	proc    *ScoreProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewScoreCollector creates a new ScoreCollector instance.
func NewScoreCollector(stream drepo.ScoreStream, proc *ScoreProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *ScoreCollector {
	return &ScoreCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the score feed is connected.
func (c *ScoreCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *ScoreCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	upCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, upCh, errCh)
	return nil
}

func (c *ScoreCollector) consume(ctx context.Context, upCh <-chan *models.ScoreUpdate, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case u := <-upCh:
			if u == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, u)
			} else {
				_ = c.proc.Process(ctx, u)
			}
		}
	}
}

func (c *ScoreCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying ScoreProcessor for lifecycle management.
func (c *ScoreCollector) Processor() *ScoreProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *ScoreCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
