package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("SHAREITTEST_SERVICE_PORT", "9090")
	t.Setenv("SHAREITTEST_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SHAREITTEST_DB_NAME", "shareit")
	t.Setenv("SHAREITTEST_REDIS_TTL", "30s")

	v, err := Load("SHAREITTEST")
	require.NoError(t, err)

	assert.Equal(t, "development", GetAppEnv(v))
	assert.Equal(t, ":9090", GetServicePort(v, "SERVICE_PORT"))

	db := LoadDatabaseConfig(v, "DB_NAME")
	assert.Equal(t, "shareit", db.DBName)
	assert.Equal(t, "localhost", db.Host)

	kafka := LoadKafkaConfig(v)
	assert.True(t, kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, kafka.Brokers)

	redis := LoadRedisConfig(v)
	assert.False(t, redis.Enabled)
	assert.Equal(t, 30*time.Second, redis.TTL)
}
