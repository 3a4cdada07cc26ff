package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath     string `yaml:"storage_path" env:"STORAGE_PATH"`
		MaxUploadBytes  int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		PortalURL       string `yaml:"portal_url" env:"PORTAL_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsPath  string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		RememberMeExpiration   string `yaml:"remember_me_expiration" env:"JWT_REMEMBER_ME_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host          string `yaml:"host" env:"SMTP_HOST"`
		Port          int    `yaml:"port" env:"SMTP_PORT"`
		Username      string `yaml:"username" env:"SMTP_USERNAME"`
		Password      string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName      string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail     string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		SkipTLSVerify bool   `yaml:"skip_tls_verify" env:"SMTP_SKIP_TLS_VERIFY"`
	} `yaml:"smtp"`

	Security struct {
		GuardStore           string  `yaml:"guard_store" env:"GUARD_STORE"`
		MaxLoginAttempts     int     `yaml:"max_login_attempts" env:"MAX_LOGIN_ATTEMPTS"`
		LoginWindow          string  `yaml:"login_window" env:"LOGIN_WINDOW"`
		LockoutDuration      string  `yaml:"lockout_duration" env:"LOCKOUT_DURATION"`
		RateLimitRPS         float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
		RateLimitBurst       int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
		SweepSchedule        string  `yaml:"sweep_schedule" env:"SWEEP_SCHEDULE"`
		TokenCleanupSchedule string  `yaml:"token_cleanup_schedule" env:"TOKEN_CLEANUP_SCHEDULE"`
	} `yaml:"security"`

	Redis struct {
		URL       string `yaml:"url" env:"REDIS_URL"`
		KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`
	} `yaml:"redis"`

	Admin struct {
		Username string `yaml:"username" env:"ADMIN_USERNAME"`
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`
}

// Guard store backends
const (
	GuardStoreMemory = "memory"
	GuardStoreRedis  = "redis"
)

// LoadConfig loads configuration from a file, a .env file and environment variables.
// Precedence, lowest first: defaults, YAML file, .env, process environment.
func LoadConfig(configPath string) (*Config, error) {
	return load(configPath, ".env")
}

func load(configPath, envFile string) (*Config, error) {
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

	// godotenv.Load never overrides variables already set in the process
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration. Credentials have no defaults.
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./uploads"
	config.Server.MaxUploadBytes = 5 * 1024 * 1024
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.DBName = "admission"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsPath = "migrations"

	config.JWT.AccessTokenExpiration = "30m"
	config.JWT.RefreshTokenExpiration = "24h"
	config.JWT.RememberMeExpiration = "720h"
	config.JWT.Issuer = "admission-portal"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Admissions Office"

	config.Security.GuardStore = GuardStoreMemory
	config.Security.MaxLoginAttempts = 5
	config.Security.LoginWindow = "15m"
	config.Security.LockoutDuration = "15m"
	config.Security.RateLimitRPS = 2
	config.Security.RateLimitBurst = 10
	config.Security.SweepSchedule = "@every 5m"
	config.Security.TokenCleanupSchedule = "@hourly"

	config.Redis.KeyPrefix = "admission:guard:"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(reflect.ValueOf(config))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return errors.New("database host is required")
	}
	if config.Database.User == "" {
		return errors.New("database user is required (DB_USER)")
	}

	if config.JWT.Secret == "" {
		return errors.New("JWT secret is required (JWT_SECRET)")
	}
	if len(config.JWT.Secret) < 32 {
		return errors.New("JWT secret must be at least 32 characters")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"JWT remember-me expiration":   config.JWT.RememberMeExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"login window":                 config.Security.LoginWindow,
		"lockout duration":             config.Security.LockoutDuration,
		"shutdown timeout":             config.Server.ShutdownTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Security.GuardStore {
	case GuardStoreMemory:
	case GuardStoreRedis:
		if config.Redis.URL == "" {
			return errors.New("redis url is required when guard_store is redis (REDIS_URL)")
		}
	default:
		return fmt.Errorf("unknown guard store %q", config.Security.GuardStore)
	}

	if config.Security.MaxLoginAttempts <= 0 {
		return errors.New("max login attempts must be positive")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	if c.Database.Password == "" {
		u.User = url.User(c.Database.User)
	}
	return u.String()
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "production" || mode == "release"
}

// SMTPConfigured reports whether outgoing email has a host and credentials
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.Host != "" && c.SMTP.Username != "" && c.SMTP.Password != ""
}
