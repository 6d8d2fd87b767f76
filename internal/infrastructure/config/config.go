// Package config loads runtime settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreFeishu = "feishu"
	StoreSQLite = "sqlite"

	WeatherQWeather    = "qweather"
	WeatherOpenWeather = "openweather"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	JWTSecret       string        `env:"JWT_SECRET,       required"`
	SessionTTL      time.Duration `env:"SESSION_TTL,      default=24h"`
	WeatherProvider string        `env:"WEATHER_PROVIDER, default=qweather"`

	Mongo      MongoConfig
	Redis      RedisConfig
	NATS       NATSConfig
	DeepSeek   DeepSeekConfig
	Feishu     FeishuConfig
	Weather    WeatherConfig
	Amap       AmapConfig
	Store      StoreConfig
	Dispatcher DispatcherConfig
	RateLimit  RateLimitConfig
}

// MongoConfig is optional: an empty URI disables the guide archive.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=travel_guide"`
}

// RedisConfig is optional: an empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// NATSConfig is optional: an empty URL logs events instead of publishing.
type NATSConfig struct {
	URL string `env:"NATS_URL"`
}

type DeepSeekConfig struct {
	APIKey            string  `env:"DEEPSEEK_API_KEY, required"`
	BaseURL           string  `env:"DEEPSEEK_BASE_URL"`
	Model             string  `env:"DEEPSEEK_MODEL"`
	RequestsPerSecond float64 `env:"DEEPSEEK_RPS, default=0"`
}

type FeishuConfig struct {
	AppID           string `env:"FEISHU_APP_ID"`
	AppSecret       string `env:"FEISHU_APP_SECRET"`
	RequestAppToken string `env:"FEISHU_APP_TOKEN_REQUEST"`
	RequestTableID  string `env:"FEISHU_TABLE_ID_REQUEST"`
	GuideAppToken   string `env:"FEISHU_APP_TOKEN_GUIDE"`
	GuideTableID    string `env:"FEISHU_TABLE_ID_GUIDE"`
	UserAppToken    string `env:"FEISHU_APP_TOKEN_USER"`
	UserTableID     string `env:"FEISHU_TABLE_ID_USER"`
}

type WeatherConfig struct {
	APIKey string `env:"WEATHER_API_KEY"`
}

type AmapConfig struct {
	APIKey string `env:"AMAP_API_KEY"`
}

type StoreConfig struct {
	Backend    string `env:"STORE_BACKEND, default=feishu"`
	SQLitePath string `env:"SQLITE_PATH,   default=data/travel.db"`
}

type DispatcherConfig struct {
	Workers int `env:"DISPATCHER_WORKERS, default=4"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS,   default=0.2"`
	Burst int     `env:"RATE_LIMIT_BURST, default=3"`
}

// Load reads configuration from environment variables using go-envconfig.
// It panics when a required key is missing or a value is malformed.
func Load() *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreFeishu:
		if missing := c.Feishu.missing(); len(missing) > 0 {
			return fmt.Errorf("missing required keys for STORE_BACKEND=feishu: %s", strings.Join(missing, ", "))
		}
	case StoreSQLite:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.WeatherProvider {
	case WeatherQWeather, WeatherOpenWeather:
	default:
		return fmt.Errorf("unknown WEATHER_PROVIDER %q", c.WeatherProvider)
	}

	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func (f FeishuConfig) missing() []string {
	var out []string
	for _, kv := range []struct{ key, val string }{
		{"FEISHU_APP_ID", f.AppID},
		{"FEISHU_APP_SECRET", f.AppSecret},
		{"FEISHU_APP_TOKEN_REQUEST", f.RequestAppToken},
		{"FEISHU_TABLE_ID_REQUEST", f.RequestTableID},
		{"FEISHU_APP_TOKEN_GUIDE", f.GuideAppToken},
		{"FEISHU_TABLE_ID_GUIDE", f.GuideTableID},
		{"FEISHU_APP_TOKEN_USER", f.UserAppToken},
		{"FEISHU_TABLE_ID_USER", f.UserTableID},
	} {
		if kv.val == "" {
			out = append(out, kv.key)
		}
	}
	return out
}
