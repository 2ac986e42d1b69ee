package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
DB_HOST: db
DB_NAME: jobportal
KAFKA_BROKERS: [kafka:9092]
JWT_SECRET: s3cret
DB_CONNECT_TIMEOUT: 45s
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, 45*time.Second, cfg.DBConnectTimeout)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 50051, cfg.GRPCPort, "defaults fill unset keys")
	assert.Equal(t, "jobportal-events", cfg.Topic)

	dbCfg := cfg.Database()
	assert.Equal(t, "host=db port=5432 user= password= dbname=jobportal sslmode=disable", dbCfg.DSN())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "postgres.internal")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, "postgres.internal", cfg.DBHost)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(5), cfg.RateLimitPerMinute)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "jobportal")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.DBHost)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed yaml", body: "DB_HOST: [unterminated"},
		{name: "bad port in env", body: minimal, env: map[string]string{"GRPC_PORT": "grpc"}},
		{name: "bad duration in env", body: minimal, env: map[string]string{"DB_CONNECT_TIMEOUT": "soon"}},
		{name: "missing secret", body: "DB_HOST: db\nDB_NAME: x\nKAFKA_BROKERS: [k:1]\n"},
		{name: "same ports", body: minimal + "GRPC_PORT: 8080\n"},
		{name: "unknown log level", body: minimal + "LOG_LEVEL: loud\n"},
		{name: "limiter without budget", body: minimal + "REDIS_ADDR: r:6379\nRATE_LIMIT_PER_MINUTE: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := defaults()
	cfg.LogLevel = "debug"
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}
