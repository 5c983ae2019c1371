package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	// DefaultEnvFile is loaded into the process environment when present.
	DefaultEnvFile = ".env"

	defaultPort           = 3000
	defaultEnv            = "development"
	defaultMongoDatabase  = "negocios"
	defaultConnectTimeout = 10
	defaultRequestTimeout = 15
	defaultRateLimit      = 50
	defaultRedisHost      = "localhost"
	defaultRedisPort      = 6379
	defaultRedisDB        = 0
	defaultKafkaTopic     = "negocios.forms"
)
