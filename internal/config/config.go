// Package config loads the settings of the siteinfo service from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Logger   LoggerConfig   `json:"logger"`
	Service  ServiceConfig  `json:"service"`
	Postgres PostgresConfig `json:"postgres"`
}

type LoggerConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error fatal"`
	Format string `json:"format" validate:"oneof=console json"`
}

type ServiceConfig struct {
	HTTPAddr        string        `json:"http_addr" validate:"required"`
	Files           []string      `json:"files"` // SINEX, SSC and sitelog files or glob patterns
	LoadConcurrency int           `json:"load_concurrency" validate:"min=1,max=64"`
	ReadTimeout     time.Duration `json:"read_timeout" validate:"gt=0"`
}

type PostgresConfig struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"min=1,max=65535"`
	User     string `json:"user" validate:"required"`
	Password string `json:"password"`
	Database string `json:"database" validate:"required"`
	SSLMode  string `json:"ssl_mode" validate:"oneof=disable require verify-ca verify-full"`
	Dsn      string `json:"-"`
}

var validate = validator.New()

// Load reads the configuration. The env files are loaded first, without overriding variables
// already set. Without env files, .env in the working directory is loaded if it exists.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	config := &Config{
		Logger: LoggerConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
		Service: ServiceConfig{
			HTTPAddr:        getEnv("SITEINFO_HTTP_ADDR", ":8080"),
			Files:           getEnvAsList("SITEINFO_FILES"),
			LoadConcurrency: getEnvAsInt("SITEINFO_LOAD_CONCURRENCY", 4),
			ReadTimeout:     getEnvAsDuration("SITEINFO_READ_TIMEOUT", "10s"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "siteinfo"),
			SSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
		},
	}

	config.Postgres.Dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		config.Postgres.Host, config.Postgres.Port, config.Postgres.User, config.Postgres.Password,
		config.Postgres.Database, config.Postgres.SSLMode)

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config, nil
}

// ExpandFiles resolves the glob patterns in files. Patterns without match are kept as they are,
// so that opening them reports the error.
func ExpandFiles(files []string) ([]string, error) {
	var res []string
	for _, pattern := range files {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("file pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			res = append(res, pattern)
			continue
		}
		res = append(res, matches...)
	}
	return res, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getEnvAsList splits a comma or whitespace separated list.
func getEnvAsList(key string) []string {
	return strings.FieldsFunc(os.Getenv(key), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
