package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Secure    SecureConfig
	Webhook   WebhookConfig
	LogLevel  string
}

type ServerConfig struct {
	Port string
}

type StoreConfig struct {
	Driver string // mongo | memory
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	OpTimeout  time.Duration
}

type RedisConfig struct {
	URL string // empty disables asynq and the shared rate-limit store
}

type RateLimitConfig struct {
	RatePerIP string // "100-M"; empty disables
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SecureConfig struct {
	IsDevelopment bool
}

type WebhookConfig struct {
	URL    string
	Secret string
}

// Load reads .env (if present), the environment, and an optional CONFIG_FILE.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore error if no .env

	v := viper.New()
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.SetDefault("PORT", "3000")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "taskboard")
	v.SetDefault("MONGO_COLLECTION", "users")
	v.SetDefault("MONGO_OP_TIMEOUT", "5s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DATABASE"),
			Collection: v.GetString("MONGO_COLLECTION"),
			OpTimeout:  v.GetDuration("MONGO_OP_TIMEOUT"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		RateLimit: RateLimitConfig{
			RatePerIP: v.GetString("RATE_LIMIT_PER_IP"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Secure: SecureConfig{
			IsDevelopment: v.GetBool("SECURE_DEV"),
		},
		Webhook: WebhookConfig{
			URL:    v.GetString("WEBHOOK_URL"),
			Secret: v.GetString("WEBHOOK_SECRET"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
	if cfg.Store.Driver != StoreMongo && cfg.Store.Driver != StoreMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store.Driver)
	}
	if cfg.Mongo.OpTimeout <= 0 {
		cfg.Mongo.OpTimeout = 5 * time.Second
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
