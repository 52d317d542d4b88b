// Package config loads runtime settings from an optional config file, a
// .env file and BUDGET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server       ServerConfig
	Log          LogConfig
	Session      SessionConfig
	Jobs         JobsConfig
	GCS          GCSConfig
	BigQuery     BigQueryConfig
	Presentation PresentationConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	AllowedOrigin  string        `mapstructure:"allowed_origin"`
}

// LogConfig selects log verbosity and output format ("console" or "json").
type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig bounds the per-session report cache.
type SessionConfig struct {
	TTL             time.Duration
	MaxEntries      int           `mapstructure:"max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// JobsConfig sizes the background report queue.
type JobsConfig struct {
	Workers    int
	Buffer     int
	MaxRetries int `mapstructure:"max_retries"`
}

// GCSConfig holds Cloud Storage settings. Bucket is the default upload
// target for the CLI.
type GCSConfig struct {
	Bucket string
}

// BigQueryConfig holds the project that bq:// reads are billed to. The API
// and worker only accept bq:// sources when it is set; the CLI falls back to
// the project named in the URI.
type BigQueryConfig struct {
	Project string
}

// PresentationConfig is the page setup handed to clients once at startup.
type PresentationConfig struct {
	Title          string
	Icon           string
	Layout         string
	Heading        string
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// Load reads configuration from file and env. A .env file in the working
// directory is applied first; env var overrides use prefix BUDGET_.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	cfgPath := os.Getenv("BUDGET_CONFIG")
	explicit := cfgPath != ""
	if explicit {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("budget")
	}

	v.SetEnvPrefix("BUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing default config file is fine; an explicit one must load
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.allowed_origin", "*")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.max_entries", 1000)
	v.SetDefault("session.cleanup_interval", time.Minute)

	v.SetDefault("jobs.workers", 5)
	v.SetDefault("jobs.buffer", 100)
	v.SetDefault("jobs.max_retries", 3)

	v.SetDefault("gcs.bucket", "")
	v.SetDefault("bigquery.project", "")

	v.SetDefault("presentation.title", "My Finance App")
	v.SetDefault("presentation.icon", "💷")
	v.SetDefault("presentation.layout", "wide")
	v.SetDefault("presentation.heading", "Budgeting App")
	v.SetDefault("presentation.currency_symbol", "£")
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		problems = append(problems, "max upload bytes must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be console or json", c.Log.Format))
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session ttl must be positive")
	}
	if c.Session.MaxEntries < 1 {
		problems = append(problems, "session max entries must be at least 1")
	}
	if c.Session.CleanupInterval <= 0 {
		problems = append(problems, "session cleanup interval must be positive")
	}
	if c.Jobs.Workers < 1 {
		problems = append(problems, "jobs workers must be at least 1")
	}
	if c.Jobs.Buffer < 0 {
		problems = append(problems, "jobs buffer cannot be negative")
	}
	if c.Jobs.MaxRetries < 0 {
		problems = append(problems, "jobs max retries cannot be negative")
	}
	if c.Presentation.Layout != "wide" && c.Presentation.Layout != "centered" {
		problems = append(problems, fmt.Sprintf("invalid layout %q: must be wide or centered", c.Presentation.Layout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
