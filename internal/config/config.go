package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	SeedDemo bool
}

type ServerConfig struct {
	AppEnv      string
	Port        string
	CORSOrigins string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type StoreConfig struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// RedisConfig configures the listing cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// RabbitMQConfig configures product events. An empty URL disables them.
type RabbitMQConfig struct {
	URL string
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("DATABASE_DSN", "file:bookheaven.db?cache=shared")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "bookheaven")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEED_DEMO", true)
}

// Load reads configuration from the environment, after loading a .env file
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			AppEnv:      v.GetString("APP_ENV"),
			Port:        v.GetString("APP_PORT"),
			CORSOrigins: v.GetString("CORS_ORIGINS"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			DSN:           v.GetString("DATABASE_DSN"),
			MongoURI:      v.GetString("MONGO_URI"),
			MongoDatabase: v.GetString("MONGO_DATABASE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		SeedDemo: v.GetBool("SEED_DEMO"),
	}

	if !strings.HasPrefix(cfg.Server.Port, ":") && !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.Logger.Encoding == "" {
		cfg.Logger.Encoding = "json"
		if cfg.IsDevelopment() {
			cfg.Logger.Encoding = "console"
		}
	}

	switch cfg.Store.Driver {
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.Redis.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.Redis.CacheTTL)
	}
	return cfg, nil
}
