package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MONGODB_URI", "MONGODB_DATABASE", "PORT", "APP_ENV", "REDIS_URL", "KAFKA_BROKERS", "KAFKA_TOPIC", "LOG_DIR"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: 8080
env: Production
mongo:
  uri: mongodb://localhost:27017/acme
redis:
  host: cache
  port: 6380
kafka:
  brokers: [" kafka-1:9092 ", ""]
allowed_origins: ["https://app.example.com", " "]
request_timeout_seconds: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "acme", cfg.Mongo.Database, "database name falls back to the uri path")
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, defaultKafkaTopic, cfg.Kafka.Topic)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeoutDuration())
	assert.False(t, cfg.Redis.Enable)
	assert.Equal(t, "redis://cache:6380/0", cfg.Redis.URLValue())
}

func TestLoadAliases(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
mongodb_uri: mongodb://db:27017
mongodb_database: forms
redis_url: cache:6379/2
node_env: test
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "forms", cfg.Mongo.Database)
	assert.True(t, cfg.Redis.Enable)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URLValue())
	assert.Equal(t, "test", cfg.Env)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "mongo:\n  uri: mongodb://file:27017\nport: 4000\n")
	t.Setenv("MONGODB_URI", "mongodb://env:27017")
	t.Setenv("PORT", "5000")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://env:27017", cfg.Mongo.URI)
	assert.Equal(t, defaultMongoDatabase, cfg.Mongo.Database)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err, "an explicit config path must exist")

	_, err = Load(writeConfig(t, "port: 3000\n"))
	assert.ErrorContains(t, err, "mongo.uri is required")

	_, err = Load(writeConfig(t, "mongo:\n  uri: http://nope\n"))
	assert.ErrorContains(t, err, "invalid mongo.uri")

	_, err = Load(writeConfig(t, "mongo:\n  uri: mongodb://x\nunknown_key: 1\n"))
	assert.ErrorContains(t, err, "parse config file")

	_, err = Load(writeConfig(t, "mongo:\n  uri: mongodb://x\nport: 70000\n"))
	assert.ErrorContains(t, err, "invalid port")
}

func TestURLValueWithCredentials(t *testing.T) {
	cfg := RedisRuntimeConfig{Host: "cache", Port: 6379, Username: "u", Password: "p", DB: 1, TLS: true}
	assert.Equal(t, "rediss://u:p@cache:6379/1", cfg.URLValue())
}

func TestRedactedURI(t *testing.T) {
	m := MongoRuntimeConfig{URI: "mongodb://admin:s3cret@db:27017/negocios"}
	assert.Equal(t, "mongodb://admin:xxxxx@db:27017/negocios", m.RedactedURI())

	m.URI = "mongodb://db:27017"
	assert.Equal(t, "mongodb://db:27017", m.RedactedURI())
}

func TestLocation(t *testing.T) {
	cfg := AppConfig{Timezone: "-06:00"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -6*3600, offset)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
