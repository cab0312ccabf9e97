package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported token revocation stores
const (
	RevocationStoreDatabase = "database"
	RevocationStoreRedis    = "redis"
)

// Supported event drivers
const (
	EventsDriverNone      = "none"
	EventsDriverGoChannel = "gochannel"
	EventsDriverKafka     = "kafka"
)

// Config structure represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Seed     SeedConfig     `yaml:"seed"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port         string `yaml:"port" env:"SERVER_PORT"`
	Mode         string `yaml:"mode" env:"SERVER_MODE"`
	ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  string `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER"`
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            string `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	Path            string `yaml:"path" env:"DB_PATH"` // sqlite file, or ":memory:"
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

type JWTConfig struct {
	Secret                string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
}

type AuthConfig struct {
	BcryptCost      int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
	RevocationStore string `yaml:"revocation_store" env:"AUTH_REVOCATION_STORE"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type EventsConfig struct {
	Driver  string   `yaml:"driver" env:"EVENTS_DRIVER"`
	Brokers []string `yaml:"brokers" env:"EVENTS_BROKERS"`
	Topic   string   `yaml:"topic" env:"EVENTS_TOPIC"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
}

// SeedConfig describes the bootstrap admin created at startup. Seeding is
// skipped when the email or password is empty.
type SeedConfig struct {
	AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
	AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// LoadConfig loads configuration from a file, an optional .env file and
// environment variables, in that order of precedence (lowest first).
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"
	config.Server.IdleTimeout = "60s"

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "learnhub"
	config.Database.SSLMode = "disable"
	config.Database.Path = "learnhub.db"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "learnhub.app"

	config.Auth.BcryptCost = bcrypt.DefaultCost + 2
	config.Auth.RevocationStore = RevocationStoreDatabase

	config.Redis.Addr = "localhost:6379"

	config.Events.Driver = EventsDriverNone
	config.Events.Topic = "learnhub.events"

	config.Metrics.Enabled = true

	config.Seed.AdminName = "admin"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"database conn max lifetime":  config.Database.ConnMaxLifetime,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
		"server idle timeout":         config.Server.IdleTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Auth.BcryptCost < bcrypt.MinCost || config.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch config.Auth.RevocationStore {
	case RevocationStoreDatabase:
	case RevocationStoreRedis:
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis revocation store")
		}
	default:
		return fmt.Errorf("unsupported revocation store %q", config.Auth.RevocationStore)
	}

	switch config.Events.Driver {
	case EventsDriverNone, EventsDriverGoChannel:
	case EventsDriverKafka:
		if len(config.Events.Brokers) == 0 {
			return fmt.Errorf("at least one kafka broker is required")
		}
	default:
		return fmt.Errorf("unsupported events driver %q", config.Events.Driver)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return dsn.String()
}

// AccessTokenTTL returns the parsed access token lifetime. The value is
// validated at load time.
func (c *Config) AccessTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTokenExpiration)
	return d
}

// ConnMaxLifetime returns the parsed pool connection lifetime.
func (c *Config) ConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Database.ConnMaxLifetime)
	return d
}

// Timeouts returns the parsed server read, write and idle timeouts.
func (c *Config) Timeouts() (read, write, idle time.Duration) {
	read, _ = time.ParseDuration(c.Server.ReadTimeout)
	write, _ = time.ParseDuration(c.Server.WriteTimeout)
	idle, _ = time.ParseDuration(c.Server.IdleTimeout)
	return read, write, idle
}
