// Package config loads application configuration from YAML files with
// environment-variable overrides. It provides typed structs for the engine,
// crawler, tokenizer, logging, metrics and output sinks.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Output    OutputConfig    `yaml:"output"`
}

// EngineConfig controls the worker pool and search mode.
type EngineConfig struct {
	Threads int  `yaml:"threads"`
	MaxURLs int  `yaml:"maxUrls"`
	Exact   bool `yaml:"exact"`
}

// CrawlerConfig holds HTTP fetch settings used by the web crawler.
type CrawlerConfig struct {
	UserAgent     string        `yaml:"userAgent"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRedirects  int           `yaml:"maxRedirects"`
	RetryAttempts int           `yaml:"retryAttempts"`
	RetryDelay    time.Duration `yaml:"retryDelay"`
}

// TokenizerConfig controls stemming.
type TokenizerConfig struct {
	StemCacheSize int `yaml:"stemCacheSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// OutputConfig selects where the index, counts and results are written.
type OutputConfig struct {
	Sink      string         `yaml:"sink"`
	KeyPrefix string         `yaml:"keyPrefix"`
	Redis     RedisConfig    `yaml:"redis"`
	Kafka     KafkaConfig    `yaml:"kafka"`
	Postgres  PostgresConfig `yaml:"postgres"`
}

// RedisConfig holds Redis connection parameters for the redis sink.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	TTL      time.Duration `yaml:"ttl"`
}

// KafkaConfig holds Kafka broker and topic settings for the kafka sink.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// PostgresConfig holds PostgreSQL connection parameters for the postgres sink.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

const (
	DefaultThreads = 5
	DefaultMaxURLs = 1
)

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Threads: DefaultThreads,
			MaxURLs: DefaultMaxURLs,
		},
		Crawler: CrawlerConfig{
			UserAgent:     "concurrent-search-engine/1.0 (Go)",
			Timeout:       30 * time.Second,
			MaxRedirects:  3,
			RetryAttempts: 3,
			RetryDelay:    200 * time.Millisecond,
		},
		Tokenizer: TokenizerConfig{
			StemCacheSize: 50000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Output: OutputConfig{
			Sink:      "file",
			KeyPrefix: "searchengine:",
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "search-exports",
			},
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				Database:        "searchengine",
				User:            "searchengine",
				Password:        "localdev",
				SSLMode:         "disable",
				MaxOpenConns:    5,
				MaxIdleConns:    2,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
	}
}

// applyEnvOverrides reads SE_* environment variables. A variable that is
// unset or empty leaves the field untouched.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SE_ENGINE_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Threads = n
		}
	}
	if v := os.Getenv("SE_ENGINE_MAX_URLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxURLs = n
		}
	}
	if v := os.Getenv("SE_CRAWLER_USER_AGENT"); v != "" {
		cfg.Crawler.UserAgent = v
	}
	if v := os.Getenv("SE_CRAWLER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Crawler.Timeout = d
		}
	}
	if v := os.Getenv("SE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SE_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
			cfg.Metrics.Enabled = true
		}
	}
	if v := os.Getenv("SE_OUTPUT_SINK"); v != "" {
		cfg.Output.Sink = v
	}
	if v := os.Getenv("SE_REDIS_ADDR"); v != "" {
		cfg.Output.Redis.Addr = v
	}
	if v := os.Getenv("SE_REDIS_PASSWORD"); v != "" {
		cfg.Output.Redis.Password = v
	}
	if v := os.Getenv("SE_KAFKA_BROKERS"); v != "" {
		cfg.Output.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SE_POSTGRES_HOST"); v != "" {
		cfg.Output.Postgres.Host = v
	}
	if v := os.Getenv("SE_POSTGRES_PASSWORD"); v != "" {
		cfg.Output.Postgres.Password = v
	}
}
