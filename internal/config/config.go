package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string        `mapstructure:"port"`
	ServerURL   string        `mapstructure:"server_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	SessionStore  string `mapstructure:"session_store"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
	TokenSecret   string `mapstructure:"token_secret"`

	PageSize   int    `mapstructure:"page_size"`
	SearchMode string `mapstructure:"search_mode"`

	DatabaseURL   string `mapstructure:"database_url"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	DBMaxOpen     int    `mapstructure:"db_max_open"`
	DBMaxIdle     int    `mapstructure:"db_max_idle"`
	DBMaxLifetime int    `mapstructure:"db_max_lifetime"` // seconds

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"

	SearchRemote = "remote"
	SearchLocal  = "local"
)

var defaults = map[string]any{
	"port":            "4000",
	"server_url":      "",
	"http_timeout":    10 * time.Second,
	"session_store":   StoreMemory,
	"secure_cookies":  false,
	"token_secret":    "",
	"page_size":       6,
	"search_mode":     SearchRemote,
	"database_url":    "",
	"sqlite_path":     "educatech.db",
	"db_max_open":     25,
	"db_max_idle":     25,
	"db_max_lifetime": 300,
	"redis_addr":      "localhost:6379",
	"redis_password":  "",
	"redis_db":        0,
}

// Load reads .env (if present), then an optional config file, then the
// environment. path may be empty, in which case config.yaml in the working
// directory is used when it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("config: SERVER_URL is required")
	}

	switch c.SessionStore {
	case StoreMemory, StoreSQLite, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres session store")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}

	switch c.SearchMode {
	case SearchRemote, SearchLocal:
	default:
		return fmt.Errorf("config: unknown SEARCH_MODE %q", c.SearchMode)
	}

	if c.PageSize < 1 {
		c.PageSize = defaults["page_size"].(int)
	}
	return nil
}
