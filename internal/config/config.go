package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the full application configuration
type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	GinMode         string        `yaml:"gin_mode"`
}

type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	InitialAdminEmail string        `yaml:"initial_admin_email"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // mongo, postgres or memory
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type PostgresConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	DBName         string        `yaml:"dbname"`
	SSLMode        string        `yaml:"sslmode"`
	MaxConnections int           `yaml:"max_connections"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // bounds all connect retries
}

// DSN builds the libpq connection string understood by pgx
func (c PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	if c.MaxConnections > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", c.MaxConnections)
	}
	return dsn
}

type RedisConfig struct {
	Address  string        `yaml:"address"` // empty disables the cab cache
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"pool_size"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"` // empty keeps events in-process
	Exchange string `yaml:"exchange"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"` // zero disables limiting
	Burst int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	MetricsPath       string `yaml:"metrics_path"`
}

// Load reads an optional .env file, an optional YAML file and the environment.
// Environment variables win over the YAML file.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			expanded := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expanded, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Mongo.URI, "MONGODB_URI")
	setString(&c.Mongo.Database, "MONGODB_DATABASE")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.InitialAdminEmail, "INITIAL_ADMIN_EMAIL")
	setString(&c.Postgres.Host, "DB_HOST")
	setString(&c.Postgres.User, "DB_USER")
	setString(&c.Postgres.Password, "DB_PASSWORD")
	setString(&c.Postgres.DBName, "DB_NAME")
	setString(&c.Redis.Address, "REDIS_ADDR")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.App.Environment, "APP_ENV")

	if err := setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Postgres.Port, "DB_PORT"); err != nil {
		return err
	}
	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION %q: %w", v, err)
		}
		c.Auth.TokenTTL = ttl
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "cab-booking"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 4000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	c.Auth.InitialAdminEmail = strings.ToLower(strings.TrimSpace(c.Auth.InitialAdminEmail))
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMongo
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "cab_booking"
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = 10 * time.Second
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.ConnectTimeout == 0 {
		c.Postgres.ConnectTimeout = 45 * time.Second
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = 30 * time.Second
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "cab_booking.events"
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 20
	}
	if c.Monitoring.MetricsPath == "" {
		c.Monitoring.MetricsPath = "/metrics"
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required (auth.jwt_secret or JWT_SECRET)")
	}
	if c.Auth.TokenTTL < 0 {
		return errors.New("auth.token_ttl must be positive")
	}

	switch c.Storage.Driver {
	case StorageMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo uri is required")
		}
	case StoragePostgres:
		if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DBName == "" {
			return errors.New("postgres host, user and dbname are required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
