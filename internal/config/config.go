package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SinkPostgres = "postgres"
	SinkKafka    = "kafka"
)

type DB struct {
	URL             string        `env:"DATABASE_URL,required,notEmpty"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"file://db/migrations"`
}

type Kafka struct {
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS" envDefault:"localhost:9092"`
	AuditTopic       string `env:"KAFKA_AUDIT_TOPIC" envDefault:"custom-audit-log"`
}

// Audit controls how the interceptor resolves policies and writes entries.
type Audit struct {
	Sink             string        `env:"AUDIT_SINK" envDefault:"postgres"`
	StopOnWriteError bool          `env:"STOP_ON_WRITE_ERROR" envDefault:"false"`
	AtomicBatch      bool          `env:"AUDIT_ATOMIC_BATCH" envDefault:"false"`
	PolicyCacheSize  int           `env:"POLICY_CACHE_SIZE" envDefault:"0"`
	PolicyCacheTTL   time.Duration `env:"POLICY_CACHE_TTL" envDefault:"1m"`
}

type Config struct {
	DB       DB
	Kafka    Kafka
	Audit    Audit
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
