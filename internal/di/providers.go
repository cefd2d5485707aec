package di

import (
	"context"
	"fmt"
	"time"

	"ForAlpha/internal/domain/repository"
	mid "ForAlpha/internal/middleware"
	internalrepo "ForAlpha/internal/repository"
	"ForAlpha/internal/service/scorefeed"
	"ForAlpha/internal/usecase"
	pkgch "ForAlpha/pkg/clickhouse"
	"ForAlpha/pkg/config"
	pkgkafka "ForAlpha/pkg/kafka"
	"ForAlpha/pkg/metrics"
	"ForAlpha/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema. Scores are keyed by (symbol, metric, fy); the
	// ReplacingMergeTree keeps the latest revision per key and reads resolve
	// it with argMax on the update time.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".forensic_scores (symbol String, metric String, fy Int32, value Float64, source String, updated DateTime) ENGINE=ReplacingMergeTree(updated) ORDER BY (symbol, metric, fy)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideScoreStore creates ClickHouse score storage.
func ProvideScoreStore(chClient *pkgch.Client, cfg *config.Config) repository.ScoreStore {
	return internalrepo.NewClickHouseScoreStore(chClient.DB(), cfg.ClickHouse.Database+".forensic_scores")
}

// ProvideScorePublisher creates the Kafka score publisher.
func ProvideScorePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaScorePublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaScoresHandler registers the handler for the scores topic.
func ProvideKafkaScoresHandler(store repository.ScoreStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaScoresHandler {
	return usecase.NewKafkaScoresHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideScoreFeed creates the vendor score WebSocket stream.
func ProvideScoreFeed(cfg *config.Config, metrics repository.Metrics) repository.ScoreStream {
	return scorefeed.New(
		cfg.ScoreFeed.APIKey,
		cfg.ScoreFeed.WebSocketURL,
		cfg.ScoreFeed.Symbols,
		cfg.ScoreFeed.ReconnectDelay,
		cfg.ScoreFeed.PingInterval,
		metrics,
	)
}

// ProvideScoreProcessor creates the score processor use case.
func ProvideScoreProcessor(
	pub repository.Publisher,
	store repository.ScoreStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ScoreProcessor {
	return usecase.NewScoreProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideScoreCollector creates the score collector use case.
func ProvideScoreCollector(
	stream repository.ScoreStream,
	processor *usecase.ScoreProcessor,
	metrics repository.Metrics,
) *usecase.ScoreCollector {
	// Build middleware pipeline between WebSocket and the backend. Forensic
	// scores arrive far slower than ticks, but vendor replays can still burst.
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewScoreCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.ScoreCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaScoresHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	metrics repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, producer, metrics)
	// attach score processor to app for closing resources via collector
	if collector != nil {
		app.ScoreProc = collector.Processor()
	}
	return app
}
