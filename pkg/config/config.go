package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	StatsPort string `envconfig:"STATS_PORT" default:"8081"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// Postgres
	BookingDSN string `envconfig:"BOOKING_DSN" default:"host=localhost user=booking password=booking dbname=booking port=5432 sslmode=disable"`
	StatsDSN   string `envconfig:"STATS_DSN" default:"host=localhost user=stats password=stats dbname=stats port=5432 sslmode=disable"`

	// Kafka
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"booking-created"`
	KafkaGroupID string `envconfig:"KAFKA_GROUP_ID" default:"booking-aggregator"`

	// Policy gateway (the monolith)
	MonolithBaseURL string        `envconfig:"MONOLITH_BASE_URL" default:"http://monolith:8080"`
	MonolithTimeout time.Duration `envconfig:"MONOLITH_TIMEOUT" default:"3s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
