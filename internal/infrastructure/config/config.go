package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Bcrypt    BcryptConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
}

type JWTConfig struct {
	Secret string `env:"JWT_SECRET"`
	// Access tokens are unusually long-lived; the blacklist is the operative
	// logout mechanism.
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=168h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=720h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type BcryptConfig struct {
	Cost int `env:"BCRYPT_COST, default=12"`
}

type RateLimitConfig struct {
	LoginMax    int           `env:"LOGIN_RATE_MAX,    default=10"`
	LoginWindow time.Duration `env:"LOGIN_RATE_WINDOW, default=1m"`
}

type AuditConfig struct {
	QueueSize int `env:"AUDIT_QUEUE_SIZE, default=256"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
