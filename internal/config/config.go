package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the service configuration read from the environment.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8081"`
	GinMode         string        `envconfig:"GIN_MODE" default:"release"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	DBDriver        string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseURL     string        `envconfig:"DATABASE_URL" default:"./sales.db"`
	DBMaxOpenConns  int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	KafkaBrokers    []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic      string        `envconfig:"KAFKA_TOPIC" default:"sale-events"`
	MetricsEnabled  bool          `envconfig:"METRICS_ENABLED" default:"true"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EventsEnabled reports whether change events should be sent to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDriver != DriverMemory && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
	return nil
}
