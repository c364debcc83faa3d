package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, "chronicle.version-changes", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.URL, "cache is opt-in")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHRONICLE_DATABASE_URL", "postgres://example/db")
	t.Setenv("CHRONICLE_REDIS_URL", "redis://example:6379")
	t.Setenv("CHRONICLE_KAFKA_BROKERS", "b1:9092, b2:9092,")
	t.Setenv("CHRONICLE_KAFKA_TOPIC", "custom.topic")

	cfg := FromEnv()

	assert.Equal(t, "postgres://example/db", cfg.DatabaseURL)
	assert.Equal(t, "redis://example:6379", cfg.Redis.URL)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "custom.topic", cfg.Kafka.Topic)
}
