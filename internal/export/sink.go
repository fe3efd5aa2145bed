package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/redis"
)

const (
	SinkFile     = "file"
	SinkRedis    = "redis"
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"

	contentTypeJSON = "application/json"
)

// Sink stores one named JSON document per output. Put must be safe for
// concurrent use.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Close() error
}

// NewSink builds the sink named by cfg.Sink, connecting to its backend.
func NewSink(ctx context.Context, cfg config.OutputConfig) (Sink, error) {
	switch strings.ToLower(cfg.Sink) {
	case "", SinkFile:
		return FileSink{}, nil
	case SinkRedis:
		client, err := redis.NewClient(ctx, cfg.Redis, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return NewRedisSink(client, cfg.Redis.TTL), nil
	case SinkKafka:
		return NewKafkaSink(kafka.NewProducer(cfg.Kafka)), nil
	case SinkPostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return NewPostgresSink(client), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrUnknownSink, apperrors.ExitUsage, "%q (want file, redis, kafka or postgres)", cfg.Sink)
	}
}

// FileSink writes each document to the path given as its name.
type FileSink struct{}

func (FileSink) Put(_ context.Context, name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (FileSink) Close() error { return nil }

type keyValueStore interface {
	Set(ctx context.Context, name string, value []byte, ttl time.Duration) error
	Close() error
}

// RedisSink stores each document under the configured key prefix.
type RedisSink struct {
	store keyValueStore
	ttl   time.Duration
}

func NewRedisSink(store keyValueStore, ttl time.Duration) *RedisSink {
	return &RedisSink{store: store, ttl: ttl}
}

func (s *RedisSink) Put(ctx context.Context, name string, data []byte) error {
	return s.store.Set(ctx, name, data, s.ttl)
}

func (s *RedisSink) Close() error { return s.store.Close() }

type publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each document as one message keyed by its name.
type KafkaSink struct {
	producer publisher
}

func NewKafkaSink(p publisher) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (s *KafkaSink) Put(ctx context.Context, name string, data []byte) error {
	return s.producer.Publish(ctx, kafka.Message{Key: name, Value: data, ContentType: contentTypeJSON})
}

func (s *KafkaSink) Close() error { return s.producer.Close() }

type txRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Close() error
}

const insertExport = `INSERT INTO search_exports (name, data, exported_at) VALUES ($1, $2, $3)`

// PostgresSink appends each document as a row of search_exports.
type PostgresSink struct {
	db     txRunner
	now    func() time.Time
	logger *slog.Logger
}

func NewPostgresSink(db txRunner) *PostgresSink {
	return &PostgresSink{
		db:     db,
		now:    time.Now,
		logger: slog.Default().With("component", "postgres-sink"),
	}
}

func (s *PostgresSink) Put(ctx context.Context, name string, data []byte) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertExport, name, string(data), s.now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("storing export %s: %w", name, err)
	}
	s.logger.Debug("export stored", "name", name, "bytes", len(data))
	return nil
}

func (s *PostgresSink) Close() error { return s.db.Close() }

var (
	_ Sink = FileSink{}
	_ Sink = (*RedisSink)(nil)
	_ Sink = (*KafkaSink)(nil)
	_ Sink = (*PostgresSink)(nil)
)
