package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ForAlpha/internal/domain/models"
	"ForAlpha/internal/domain/repository"
	pkgkafka "ForAlpha/pkg/kafka"
)

// ClickHouseScoreStore implements ScoreStore for ClickHouse. The table is a
// ReplacingMergeTree keyed by (symbol, metric, fy); reads resolve the latest
// value per key with argMax, so re-ingested revisions win by update time.
type ClickHouseScoreStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseScoreStore creates ClickHouse score storage.
func NewClickHouseScoreStore(db *sql.DB, table string) repository.ScoreStore {
	return &ClickHouseScoreStore{db: db, table: table}
}

func (s *ClickHouseScoreStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseScoreStore) Store(ctx context.Context, u *models.ScoreUpdate) error {
	q := fmt.Sprintf("INSERT INTO %s (symbol, metric, fy, value, source, updated) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		u.Symbol,
		string(u.Metric),
		int32(u.Year),
		u.Value,
		u.Source,
		updateTime(u),
	)
	return err
}

func (s *ClickHouseScoreStore) StoreBatch(ctx context.Context, updates []*models.ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(updates); start += chunkSize {
		end := start + chunkSize
		if end > len(updates) {
			end = len(updates)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, u := range updates[start:end] {
			if u == nil || u.Symbol == "" || !models.IsValidMetric(u.Metric) || u.Year <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				u.Symbol,
				string(u.Metric),
				int32(u.Year),
				u.Value,
				u.Source,
				updateTime(u),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, metric, fy, value, source, updated) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// GetSeries returns the latest value per (metric, year) for a symbol.
func (s *ClickHouseScoreStore) GetSeries(ctx context.Context, symbol string) (map[models.Metric]models.SignalSeries, error) {
	q := fmt.Sprintf(`
        SELECT metric, fy, argMax(value, updated) AS value
        FROM %s
        WHERE symbol = ?
        GROUP BY metric, fy
        ORDER BY metric, fy ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Metric]models.SignalSeries, len(models.Metrics))
	for _, m := range models.Metrics {
		out[m] = models.SignalSeries{}
	}
	for rows.Next() {
		var metric string
		var fy int32
		var value float64
		if err := rows.Scan(&metric, &fy, &value); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		m := models.Metric(metric)
		if !models.IsValidMetric(m) {
			continue
		}
		out[m][int(fy)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseScoreStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseScoreStore) Close() error {
	return nil // Managed by pkg
}

func updateTime(u *models.ScoreUpdate) time.Time {
	if u.Timestamp > 0 {
		return time.Unix(u.Timestamp, 0)
	}
	return time.Now()
}

// KafkaScorePublisher implements Publisher for Kafka.
type KafkaScorePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaScorePublisher creates a Kafka score publisher.
func NewKafkaScorePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaScorePublisher{producer: producer, topic: topic}
}

func (p *KafkaScorePublisher) Publish(ctx context.Context, u *models.ScoreUpdate) error {
	return p.producer.Publish(ctx, p.topic, []byte(u.Symbol), scorePayload(u))
}

func (p *KafkaScorePublisher) PublishBatch(ctx context.Context, updates []*models.ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(updates))
	for i, u := range updates {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(u.Symbol),
			Value: scorePayload(u),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaScorePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func scorePayload(u *models.ScoreUpdate) map[string]interface{} {
	return map[string]interface{}{
		"symbol": u.Symbol,
		"metric": string(u.Metric),
		"fy":     u.Year,
		"value":  u.Value,
		"source": u.Source,
		"t":      u.Timestamp,
	}
}
