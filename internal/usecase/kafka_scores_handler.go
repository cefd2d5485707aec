package usecase

import (
	"context"
	"encoding/json"
	"time"

	"ForAlpha/internal/domain/models"
	domrepo "ForAlpha/internal/domain/repository"
	pkgkafka "ForAlpha/pkg/kafka"
)

// KafkaScoresHandler consumes score updates from Kafka and writes them to
// the score store.
type KafkaScoresHandler struct {
	topic   string
	storage domrepo.ScoreStore
	metrics domrepo.Metrics
}

func NewKafkaScoresHandler(topic string, storage domrepo.ScoreStore, metrics domrepo.Metrics) *KafkaScoresHandler {
	return &KafkaScoresHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaScoresHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, metric, fy, value, source, t}
func (h *KafkaScoresHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		Metric string  `json:"metric"`
		FY     int     `json:"fy"`
		Value  float64 `json:"value"`
		Source string  `json:"source"`
		T      int64   `json:"t"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.ScoreUpdate{
		Symbol:    m.Symbol,
		Metric:    models.Metric(m.Metric),
		Year:      m.FY,
		Value:     m.Value,
		Source:    m.Source,
		Timestamp: m.T,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordScoreIngested("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaScoresHandler)(nil)
