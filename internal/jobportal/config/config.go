// Package config loads the service configuration from a YAML file and lets
// environment variables of the same name override individual keys.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the service looks for its configuration file.
const DefaultPath = "internal/jobportal/config/config.yaml"

type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	DBHost           string        `yaml:"DB_HOST"`
	DBPort           int           `yaml:"DB_PORT"`
	DBUser           string        `yaml:"DB_USER"`
	DBPassword       string        `yaml:"DB_PASSWORD"`
	DBName           string        `yaml:"DB_NAME"`
	DBSSLMode        string        `yaml:"DB_SSLMODE"`
	DBConnectTimeout time.Duration `yaml:"DB_CONNECT_TIMEOUT"`

	KafkaBrokers   []string `yaml:"KAFKA_BROKERS"`
	Topic          string   `yaml:"TOPIC"`
	EventQueueSize int      `yaml:"EVENT_QUEUE_SIZE"`
	AuditGroupID   string   `yaml:"AUDIT_GROUP_ID"`

	JWTSecret string `yaml:"JWT_SECRET"`

	// An empty RedisAddr disables rate limiting.
	RedisAddr          string `yaml:"REDIS_ADDR"`
	RedisPassword      string `yaml:"REDIS_PASSWORD"`
	RedisDB            int    `yaml:"REDIS_DB"`
	RateLimitPerMinute int64  `yaml:"RATE_LIMIT_PER_MINUTE"`

	LogLevel string `yaml:"LOG_LEVEL"`
}

func defaults() *Config {
	return &Config{
		GRPCPort:           50051,
		HTTPPort:           8080,
		DBPort:             5432,
		DBSSLMode:          "disable",
		DBConnectTimeout:   30 * time.Second,
		Topic:              "jobportal-events",
		EventQueueSize:     1000,
		AuditGroupID:       "jobportal-audit",
		RateLimitPerMinute: 60,
		LogLevel:           "info",
	}
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result. A missing file is not an error when the
// environment supplies everything required.
func Load(path string) (*Config, error) {
	cfg := defaults()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DB_HOST", &c.DBHost)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_SSLMODE", &c.DBSSLMode)
	str("TOPIC", &c.Topic)
	str("AUDIT_GROUP_ID", &c.AuditGroupID)
	str("JWT_SECRET", &c.JWTSecret)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("LOG_LEVEL", &c.LogLevel)

	for key, dst := range map[string]*int{
		"GRPC_PORT":        &c.GRPCPort,
		"HTTP_PORT":        &c.HTTPPort,
		"DB_PORT":          &c.DBPort,
		"EVENT_QUEUE_SIZE": &c.EventQueueSize,
		"REDIS_DB":         &c.RedisDB,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("RATE_LIMIT_PER_MINUTE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
		}
		c.RateLimitPerMinute = n
	}
	if v, ok := lookup("DB_CONNECT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
		}
		c.DBConnectTimeout = d
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		return fmt.Errorf("ports must be positive")
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("gRPC and HTTP ports must differ")
	}
	if c.DBHost == "" || c.DBName == "" {
		return fmt.Errorf("database host and name are required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("kafka topic is empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is empty")
	}
	if c.RedisAddr != "" && c.RateLimitPerMinute < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per minute")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// Database returns the storage settings.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Host:           c.DBHost,
		Port:           c.DBPort,
		User:           c.DBUser,
		Password:       c.DBPassword,
		DBName:         c.DBName,
		SSLMode:        c.DBSSLMode,
		ConnectTimeout: c.DBConnectTimeout,
	}
}

// NewLogger builds a production logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
