package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
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
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Path              string   `yaml:"path" env:"STORAGE_PATH"`
		BaseURL           string   `yaml:"base_url" env:"STORAGE_BASE_URL"`
		MaxUploadBytes    int64    `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES"`
		AllowedExtensions []string `yaml:"allowed_extensions" env:"STORAGE_ALLOWED_EXTENSIONS"`
	} `yaml:"storage"`

	Bursary struct {
		ApplicationPrefix    string `yaml:"application_prefix" env:"BURSARY_APPLICATION_PREFIX"`
		DisbursementPrefix   string `yaml:"disbursement_prefix" env:"BURSARY_DISBURSEMENT_PREFIX"`
		FinancialYear        string `yaml:"financial_year" env:"BURSARY_FINANCIAL_YEAR"`
		MaxAmount            string `yaml:"max_amount" env:"BURSARY_MAX_AMOUNT"`
		NumberAttempts       int    `yaml:"number_attempts" env:"BURSARY_NUMBER_ATTEMPTS"`
		DefaultStaffPassword string `yaml:"default_staff_password" env:"BURSARY_DEFAULT_STAFF_PASSWORD"`
	} `yaml:"bursary"`

	RateLimit struct {
		TrackRPS   float64 `yaml:"track_rps" env:"RATE_LIMIT_TRACK_RPS"`
		TrackBurst int     `yaml:"track_burst" env:"RATE_LIMIT_TRACK_BURST"`
	} `yaml:"rate_limit"`
}

// LoadConfig loads configuration from a YAML file, an optional .env file and
// environment variables, in that order of precedence (last wins).
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

	// .env only fills variables that are not already set in the process
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
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

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "bobasi_bursary"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "8h"
	config.JWT.Issuer = "bobasi-bursary"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Path = "uploads"
	config.Storage.MaxUploadBytes = 10 << 20
	config.Storage.AllowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "doc", "docx"}

	config.Bursary.ApplicationPrefix = "BOB"
	config.Bursary.DisbursementPrefix = "BOB-DISB"
	config.Bursary.FinancialYear = "2025/2026"
	config.Bursary.MaxAmount = "0"
	config.Bursary.NumberAttempts = 5
	config.Bursary.DefaultStaffPassword = "Admin@1234"

	config.RateLimit.TrackRPS = 2
	config.RateLimit.TrackBurst = 10
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if strings.TrimSpace(config.Bursary.ApplicationPrefix) == "" {
		return fmt.Errorf("bursary application prefix is required")
	}

	if config.Bursary.NumberAttempts < 1 {
		return fmt.Errorf("bursary number attempts must be at least 1")
	}

	if _, err := config.MaxRequestedAmount(); err != nil {
		return err
	}

	if config.RateLimit.TrackRPS <= 0 || config.RateLimit.TrackBurst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}

	return nil
}

// MaxRequestedAmount returns the configured cap on a single application's
// requested amount. A zero value disables the cap.
func (c *Config) MaxRequestedAmount() (decimal.Decimal, error) {
	if strings.TrimSpace(c.Bursary.MaxAmount) == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Bursary.MaxAmount))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid bursary max amount %q", c.Bursary.MaxAmount)
	}
	return amount, nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
