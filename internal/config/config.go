package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	CRDBDSN         string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RabbitURL       string
	SessionTTL      time.Duration
	SeatMapCacheTTL time.Duration
	IdempotencyTTL  time.Duration
	OTLPEndpoint    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:            envOr("PORT", "8080"),
		CRDBDSN:         os.Getenv("CRDB_DSN"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   envOr("MONGO_DATABASE", "movietix"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RabbitURL:       os.Getenv("RABBIT_URL"),
		SessionTTL:      durationOr("SESSION_TTL", 7*24*time.Hour),
		SeatMapCacheTTL: durationOr("SEATMAP_CACHE_TTL", 5*time.Second),
		IdempotencyTTL:  durationOr("IDEMPOTENCY_TTL", time.Hour),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
