// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	validLogLevels   = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers     = []string{"postgres", "sqlite"}
	validQueues      = []string{"local", "asynq"}
	validAlgorithms  = []string{"HS256", "HS384", "HS512"}
	errMissingSecret = errors.New("jwt.secret is missing")
)

type App struct {
	LogLevel string
}

type Host struct {
	Port        int
	CORSOrigins []string
}

type Database struct {
	Driver          string
	DSN             string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWT struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Mail struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

type Queue struct {
	Backend  string
	Workers  int
	Size     int
	MaxRetry int
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Cleanup struct {
	Schedule string
	Grace    time.Duration
}

type List struct {
	DefaultPageSize int
	MaxPageSize     int
}

type Cache struct {
	TTL time.Duration
}

type Security struct {
	RateLimit int
}

type Storage struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	MaxSize         int64
}

type Turnstile struct {
	Enabled bool
	Secret  string
}

// Config is built once by Load and handed to every component that needs it.
// Nothing in the application reads the environment on its own.
type Config struct {
	App       App
	Host      Host
	Database  Database
	JWT       JWT
	Mail      Mail
	Queue     Queue
	Redis     Redis
	Cleanup   Cleanup
	List      List
	Cache     Cache
	Security  Security
	Storage   Storage
	Turnstile Turnstile
}

// GenSecret returns a random hex string usable as jwt.secret
func GenSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Load reads .env, config.toml, the environment and the provided flags (may be nil)
// in that order of increasing priority and validates the result.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env is optional, the real environment always wins
	_ = godotenv.Load()

	v := viper.New()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags, %w", err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.host", "DB_HOST")
	v.BindEnv("db.port", "DB_PORT")
	v.BindEnv("db.name", "DB_NAME")
	v.BindEnv("db.user", "DB_USER")
	v.BindEnv("db.password", "DB_PASS")
	v.BindEnv("db.sslmode", "DB_SSLMODE")

	v.BindEnv("jwt.secret", "JWT_SECRET_KEY")
	v.BindEnv("jwt.algorithm", "JWT_ALGORITHM")
	v.BindEnv("jwt.access_ttl", "JWT_ACCESS_TTL")
	v.BindEnv("jwt.refresh_ttl", "JWT_REFRESH_TTL")

	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.sender", "MAIL_SENDER_ADDRESS")
	v.BindEnv("mail.password", "MAIL_PASSWORD")

	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	v.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")

	v.BindEnv("turnstile.secret", "TURNSTILE_SECRET_TOKEN")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.access_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("mail.port", 587)

	v.SetDefault("queue.backend", "local")
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.size", 100)
	v.SetDefault("queue.max_retry", 0)

	v.SetDefault("cleanup.schedule", "@daily")
	v.SetDefault("cleanup.grace", 24*time.Hour)

	v.SetDefault("list.default_page_size", 10)
	v.SetDefault("list.max_page_size", 100)

	v.SetDefault("cache.ttl", 0)

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.max_size", 5)

	v.SetDefault("turnstile.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	c := &Config{
		App: App{LogLevel: v.GetString("app.log_level")},
		Host: Host{
			Port:        v.GetInt("host.port"),
			CORSOrigins: splitList(v.GetStringSlice("host.cors_origins")),
		},
		Database: Database{
			Driver:          v.GetString("db.driver"),
			DSN:             v.GetString("db.dsn"),
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			Name:            v.GetString("db.name"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			SSLMode:         v.GetString("db.sslmode"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		JWT: JWT{
			Secret:     v.GetString("jwt.secret"),
			Algorithm:  v.GetString("jwt.algorithm"),
			AccessTTL:  v.GetDuration("jwt.access_ttl"),
			RefreshTTL: v.GetDuration("jwt.refresh_ttl"),
		},
		Mail: Mail{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Sender:   v.GetString("mail.sender"),
			Password: v.GetString("mail.password"),
		},
		Queue: Queue{
			Backend:  v.GetString("queue.backend"),
			Workers:  v.GetInt("queue.workers"),
			Size:     v.GetInt("queue.size"),
			MaxRetry: v.GetInt("queue.max_retry"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cleanup: Cleanup{
			Schedule: v.GetString("cleanup.schedule"),
			Grace:    v.GetDuration("cleanup.grace"),
		},
		List: List{
			DefaultPageSize: v.GetInt("list.default_page_size"),
			MaxPageSize:     v.GetInt("list.max_page_size"),
		},
		Cache:    Cache{TTL: v.GetDuration("cache.ttl")},
		Security: Security{RateLimit: v.GetInt("security.rate_limit")},
		Storage: Storage{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			MaxSize:         v.GetInt64("storage.max_size") << 20,
		},
		Turnstile: Turnstile{
			Enabled: v.GetBool("turnstile.enabled"),
			Secret:  v.GetString("turnstile.secret"),
		},
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate returns the first problem that keeps the application from starting
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver %q", c.Database.Driver)
	}

	if c.Database.Driver == "postgres" && c.Database.DSN == "" && c.Database.Host == "" {
		return errors.New("postgres needs either db.dsn or db.host")
	}

	if c.JWT.Secret == "" {
		return errMissingSecret
	}

	if !slices.Contains(validAlgorithms, c.JWT.Algorithm) {
		return fmt.Errorf("unsupported jwt algorithm %q", c.JWT.Algorithm)
	}

	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be bigger than 0")
	}

	if !slices.Contains(validQueues, c.Queue.Backend) {
		return fmt.Errorf("invalid queue backend %q", c.Queue.Backend)
	}

	if c.Queue.Backend == "asynq" && c.Redis.Addr == "" {
		return errors.New("queue backend asynq needs redis.addr")
	}

	if c.Queue.Workers <= 0 || c.Queue.Size <= 0 {
		return errors.New("queue.workers and queue.size must be bigger than 0")
	}

	if c.Queue.MaxRetry < 0 {
		return errors.New("queue.max_retry can't be negative")
	}

	if c.Cleanup.Grace <= 0 {
		return errors.New("cleanup.grace must be bigger than 0")
	}

	if c.List.DefaultPageSize <= 0 || c.List.MaxPageSize < c.List.DefaultPageSize {
		return errors.New("list.max_page_size must be at least list.default_page_size")
	}

	if c.Storage.Enabled {
		if c.Storage.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
			return errors.New("storage credentials are missing")
		}
		if c.Storage.MaxSize <= 0 {
			return errors.New("storage.max_size must be bigger than 0")
		}
	}

	if c.Turnstile.Enabled && c.Turnstile.Secret == "" {
		return errors.New("turnstile secret token is missing")
	}

	if c.Mail.Host == "" {
		zap.L().Warn("No mail.host configured, notification emails will fail to send")
	}

	return nil
}

// IsMissingSecret reports whether err came from an empty jwt.secret
func IsMissingSecret(err error) bool {
	return errors.Is(err, errMissingSecret)
}

// splitList accepts both a real list and a comma separated env value
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
