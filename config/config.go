package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string        `mapstructure:"secret_key"`
		TTL       time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Bcrypt struct {
		Cost int `mapstructure:"cost"`
	} `mapstructure:"bcrypt"`
	Ledger struct {
		MaxRetries     int           `mapstructure:"max_retries"`
		AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
		BackoffInitial time.Duration `mapstructure:"backoff_initial"`
		BackoffMax     time.Duration `mapstructure:"backoff_max"`
	} `mapstructure:"ledger"`
	Admin struct {
		Handles []string `mapstructure:"handles"`
	} `mapstructure:"admin"`
	Store struct {
		// Driver is "postgres" or "memory".
		Driver        string `mapstructure:"driver"`
		MigrationsDir string `mapstructure:"migrations_dir"`
	} `mapstructure:"store"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var AppConfig Config

var defaults = map[string]any{
	"database.host":          "localhost",
	"database.port":          "5432",
	"database.user":          "postgres",
	"database.password":      "",
	"database.name":          "wallet",
	"database.sslmode":       "disable",
	"redis.host":             "",
	"redis.port":             "6379",
	"redis.password":         "",
	"redis.db":               0,
	"kafka.brokers":          []string{},
	"kafka.topic":            "transaction.committed",
	"server.port":            "8080",
	"jwt.secret_key":         "",
	"jwt.ttl":                time.Hour,
	"bcrypt.cost":            10,
	"ledger.max_retries":     5,
	"ledger.attempt_timeout": 2 * time.Second,
	"ledger.backoff_initial": 5 * time.Millisecond,
	"ledger.backoff_max":     200 * time.Millisecond,
	"admin.handles":          []string{},
	"store.driver":           "postgres",
	"store.migrations_dir":   "db/migrations",
	"log.level":              "info",
}

// Load reads <path>/.env (optional), then <path>/config.yml (optional), then the
// environment. DATABASE_HOST overrides database.host and so on.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Ledger.MaxRetries < 1 {
		return nil, fmt.Errorf("ledger.max_retries must be at least 1, got %d", cfg.Ledger.MaxRetries)
	}
	return &cfg, nil
}

func LoadConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Unable to load configuration, %v", err)
	}
	AppConfig = *cfg
}

// IsAdminHandle reports whether handle is configured as an administrator.
func (c *Config) IsAdminHandle(handle string) bool {
	for _, h := range c.Admin.Handles {
		if h == handle {
			return true
		}
	}
	return false
}
