package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends for the persisted session snapshot.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	API     APIConfig
	Storage StorageConfig
	UI      UIConfig
	DevAPI  DevAPIConfig

	Mongo MongoConfig
	Redis RedisConfig
}

// APIConfig points the auth client at the dashboard backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:8000"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

// StorageConfig selects where the session snapshot lives.
type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND, default=redis"`
	Name    string `env:"STORAGE_NAME,    default=auth-storage"`
	// Async enables the write-behind queue in front of remote backends.
	Async bool `env:"STORAGE_ASYNC, default=true"`
}

// UIConfig carries the user-facing defaults of both stores.
type UIConfig struct {
	LoginRoute           string        `env:"LOGIN_ROUTE,           default=/login"`
	NotificationDuration time.Duration `env:"NOTIFICATION_DURATION, default=5s"`
	LoadingText          string        `env:"LOADING_TEXT,          default=Загрузка..."`
	LoginErrorText       string        `env:"LOGIN_ERROR_TEXT,      default=Ошибка входа в систему"`
}

// DevAPIConfig configures the stub backend used for local development.
type DevAPIConfig struct {
	Port      string        `env:"DEVAPI_PORT, default=8000"`
	JWTSecret string        `env:"JWT_SECRET,  default=dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,   default=24h"`
	// Directory is where dev API accounts are kept: memory or mongo.
	Directory string `env:"DEVAPI_DIRECTORY, default=memory"`
	Seed      bool   `env:"DEVAPI_SEED,      default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=repair_dashboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through an arbitrary lookuper. Tests pass an
// envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the stores cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Name == "" {
		return fmt.Errorf("config: storage name must not be empty")
	}
	switch c.DevAPI.Directory {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("config: unknown dev API directory %q", c.DevAPI.Directory)
	}
	if c.UI.NotificationDuration < 0 {
		return fmt.Errorf("config: notification duration must not be negative")
	}
	return nil
}
