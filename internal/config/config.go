package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at configPath, the optional .env file, and the
// environment. A missing default config file is not an error; a missing
// explicit one is. The Mongo URI is mandatory.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:           defaultPort,
		Env:            defaultEnv,
		RequestTimeout: defaultRequestTimeout,
		RateLimit:      defaultRateLimit,
		Mongo: MongoRuntimeConfig{
			ConnectTimeout: defaultConnectTimeout,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Kafka: KafkaRuntimeConfig{
			Topic: defaultKafkaTopic,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}

	if v := strings.TrimSpace(raw.Mongo.URI); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.Mongo.URL); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.MongoURI); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.Mongo.Database); v != "" {
		cfg.Mongo.Database = v
	}
	if v := strings.TrimSpace(raw.Mongo.DBName); v != "" {
		cfg.Mongo.Database = v
	}
	if v := strings.TrimSpace(raw.MongoDatabase); v != "" {
		cfg.Mongo.Database = v
	}
	if raw.Mongo.ConnectTimeout > 0 {
		cfg.Mongo.ConnectTimeout = raw.Mongo.ConnectTimeout
	}

	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)

	if len(raw.Kafka.Brokers) > 0 {
		cfg.Kafka.Brokers = raw.Kafka.Brokers
	}
	if len(raw.KafkaBrokers) > 0 {
		cfg.Kafka.Brokers = raw.KafkaBrokers
	}
	if v := strings.TrimSpace(raw.Kafka.Topic); v != "" {
		cfg.Kafka.Topic = v
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = raw.AllowedOrigins
	case raw.CORSOrigins != nil:
		cfg.AllowedOrigins = raw.CORSOrigins
	}

	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = raw.RequestTimeout
	}
	if raw.RateLimit > 0 {
		cfg.RateLimit = raw.RateLimit
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TZ); v != "" {
		cfg.Timezone = v
	}

	normalize(cfg)
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = v
		cfg.Enable = cfg.Enable || raw.Redis.Enable == nil
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
		cfg.Enable = cfg.Enable || raw.Redis.Enable == nil
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	return cfg
}

func applyEnvOverrides(cfg *AppConfig) error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}

	if v := strings.TrimSpace(env.MongoURI); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(env.MongoDatabase); v != "" {
		cfg.Mongo.Database = v
	}
	if env.Port != 0 {
		cfg.Port = env.Port
	}
	if v := strings.TrimSpace(env.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(env.RedisURL); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enable = true
	}
	if v := strings.TrimSpace(env.KafkaBrokers); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(env.KafkaTopic); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := strings.TrimSpace(env.LogDir); v != "" {
		cfg.Paths.Logs = v
	}

	normalize(cfg)
	return nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri is required (set MONGODB_URI)")
	}
	cs, err := connstring.ParseAndValidate(c.Mongo.URI)
	if err != nil {
		return fmt.Errorf("invalid mongo.uri: %w", err)
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = cs.Database
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = defaultMongoDatabase
	}
	if c.Redis.Enable && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// RequestTimeoutDuration is the per-request deadline applied at the boundary.
func (c *AppConfig) RequestTimeoutDuration() time.Duration {
	if c.RequestTimeout <= 0 {
		return defaultRequestTimeout * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *AppConfig) ConnectTimeoutDuration() time.Duration {
	if c.Mongo.ConnectTimeout <= 0 {
		return defaultConnectTimeout * time.Second
	}
	return time.Duration(c.Mongo.ConnectTimeout) * time.Second
}
