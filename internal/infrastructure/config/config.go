package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	// DeviceActiveWindow is the trailing window a device must have been seen
	// in to count against an account's ceiling. Defaults to seven days.
	DeviceActiveWindow time.Duration `env:"DEVICE_ACTIVE_WINDOW, default=168h"`
	// DeviceCacheTTL bounds how long a returning device's record is served
	// from the cache instead of the store.
	DeviceCacheTTL time.Duration `env:"DEVICE_CACHE_TTL, default=15m"`

	Bootstrap BootstrapConfig
	Audit     AuditConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// BootstrapConfig seeds the first administrator account on an empty
// database.
type BootstrapConfig struct {
	AdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

type AuditConfig struct {
	Workers   int `env:"AUDIT_WORKERS,    default=4"`
	QueueSize int `env:"AUDIT_QUEUE_SIZE, default=256"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=vidvault"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
