package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageTypePostgres = "postgres"
	StorageTypeMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Logging  LoggingConfig
	Match    MatchConfig
	Profile  ProfileConfig
	Gemini   GeminiConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IsDevelopment reports whether development-only routes may be mounted.
func (c *ServerConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	QueryTimeout time.Duration
	MaxRetries   int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type AuthConfig struct {
	Secret    string
	PublicKey string
	Issuer    string
	Audience  string
	DevTTL    time.Duration
}

type StorageConfig struct {
	Type string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MatchConfig struct {
	Limit    int
	PageSize int
}

type ProfileConfig struct {
	EmailDomain string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")

	v.SetDefault("STORAGE_TYPE", StorageTypePostgres)

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_QUERY_TIMEOUT", "3s")
	v.SetDefault("DB_MAX_RETRIES", 3)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MATCH_CACHE_TTL", "30s")

	v.SetDefault("JWT_DEV_TTL", "24h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MATCH_LIMIT", 20)
	v.SetDefault("MATCH_PAGE_SIZE", 500)

	v.SetDefault("INSTITUTION_EMAIL_DOMAIN", "@uic.edu")

	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_TIMEOUT", "5s")

	v.SetDefault("OTEL_SERVICE_NAME", "recapp-backend")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			QueryTimeout: v.GetDuration("DB_QUERY_TIMEOUT"),
			MaxRetries:   v.GetInt("DB_MAX_RETRIES"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("MATCH_CACHE_TTL"),
		},
		Auth: AuthConfig{
			Secret:    v.GetString("JWT_SECRET"),
			PublicKey: v.GetString("JWT_PUBLIC_KEY"),
			Issuer:    v.GetString("JWT_ISSUER"),
			Audience:  v.GetString("JWT_AUDIENCE"),
			DevTTL:    v.GetDuration("JWT_DEV_TTL"),
		},
		Storage: StorageConfig{
			Type: strings.ToLower(v.GetString("STORAGE_TYPE")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Match: MatchConfig{
			Limit:    v.GetInt("MATCH_LIMIT"),
			PageSize: v.GetInt("MATCH_PAGE_SIZE"),
		},
		Profile: ProfileConfig{
			EmailDomain: v.GetString("INSTITUTION_EMAIL_DOMAIN"),
		},
		Gemini: GeminiConfig{
			APIKey:  v.GetString("GEMINI_API_KEY"),
			Model:   v.GetString("GEMINI_MODEL"),
			Timeout: v.GetDuration("GEMINI_TIMEOUT"),
		},
		Tracing: TracingConfig{
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database query timeout must be positive")
	}
	if c.Database.MaxRetries < 1 {
		return fmt.Errorf("database max retries must be at least 1")
	}
	if c.Auth.Secret == "" && c.Auth.PublicKey == "" {
		return fmt.Errorf("JWT secret or public key is required")
	}
	if c.Auth.Secret != "" && len(c.Auth.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Match.Limit <= 0 {
		return fmt.Errorf("match limit must be positive")
	}
	if c.Match.PageSize <= 0 {
		return fmt.Errorf("match page size must be positive")
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return fmt.Errorf("match cache TTL must be positive when redis is enabled")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr returns the HTTP listen address
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
