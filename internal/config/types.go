package config

// AppConfig holds runtime startup configuration loaded from YAML and the
// process environment.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production" | "test"
	Mongo          MongoRuntimeConfig `yaml:"mongo"`
	Redis          RedisRuntimeConfig `yaml:"redis"`
	Kafka          KafkaRuntimeConfig `yaml:"kafka"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RequestTimeout int                `yaml:"request_timeout_seconds"`
	RateLimit      int                `yaml:"rate_limit_per_second"`
	Timezone       string             `yaml:"timezone"`
}

type MongoRuntimeConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	ConnectTimeout int    `yaml:"connect_timeout_seconds"`
}

type RedisRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type KafkaRuntimeConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"`
	NodeEnv        string             `yaml:"node_env"`
	Mongo          rawMongoConfig     `yaml:"mongo"`
	MongoURI       string             `yaml:"mongodb_uri"`
	MongoDatabase  string             `yaml:"mongodb_database"`
	Redis          rawRedisConfig     `yaml:"redis"`
	RedisURL       string             `yaml:"redis_url"`
	Kafka          KafkaRuntimeConfig `yaml:"kafka"`
	KafkaBrokers   []string           `yaml:"kafka_brokers"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	LogDir         string             `yaml:"log_dir"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	CORSOrigins    []string           `yaml:"cors_allowed_origins"`
	RequestTimeout int                `yaml:"request_timeout_seconds"`
	RateLimit      int                `yaml:"rate_limit_per_second"`
	Timezone       string             `yaml:"timezone"`
	TZ             string             `yaml:"tz"`
}

type rawMongoConfig struct {
	URI            string `yaml:"uri"`
	URL            string `yaml:"url"`
	Database       string `yaml:"database"`
	DBName         string `yaml:"db_name"`
	ConnectTimeout int    `yaml:"connect_timeout_seconds"`
}

type rawRedisConfig struct {
	Enable   *bool  `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

// envOverrides are read from the process environment after the YAML file;
// non-empty values win.
type envOverrides struct {
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE"`
	Port          int    `env:"PORT"`
	Env           string `env:"APP_ENV"`
	RedisURL      string `env:"REDIS_URL"`
	KafkaBrokers  string `env:"KAFKA_BROKERS"`
	KafkaTopic    string `env:"KAFKA_TOPIC"`
	LogDir        string `env:"LOG_DIR"`
}
