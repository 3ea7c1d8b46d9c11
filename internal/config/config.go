package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the watcher
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Webhook   WebhookConfig   `mapstructure:"webhook" yaml:"webhook"`
	Reconnect ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Debug     bool            `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings for the n8n database
type DatabaseConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// ConnString builds a pgx-compatible connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// WebhookConfig holds the outbound webhook settings
type WebhookConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	AuthHeaderName  string        `mapstructure:"auth_header_name" yaml:"auth_header_name"`
	AuthHeaderValue string        `mapstructure:"auth_header_value" yaml:"auth_header_value"`
}

// ReconnectConfig holds the bounded retry settings for lost connections
type ReconnectConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
}

// ServerConfig holds the operational HTTP endpoint configuration.
// Port 0 disables the endpoint.
type ServerConfig struct {
	Port         int           `mapstructure:"port" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "n8n")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.auth_header_name", "")
	v.SetDefault("webhook.auth_header_value", "")

	v.SetDefault("reconnect.max_attempts", 10)
	v.SetDefault("reconnect.delay", "5s")

	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("debug", false)

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/n8n-webhook-watcher")
	}

	// Environment variables override file config
	v.SetEnvPrefix("WATCHER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// placeholders are values that mean "not configured yet". Shipping one of
// these to production is treated the same as leaving the field empty.
var placeholders = map[string]bool{
	"changeme":                  true,
	"change-me":                 true,
	"change-this-in-production": true,
	"your-password-here":        true,
	"your-webhook-url-here":     true,
	"your-user-here":            true,
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	if placeholders[lower] {
		return true
	}
	return strings.HasPrefix(lower, "your-") && strings.HasSuffix(lower, "-here")
}

// Validate checks that required fields are present, non-placeholder, and
// well-formed. Any error here is fatal at startup.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Webhook.Validate(); err != nil {
		return err
	}
	if err := c.Reconnect.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535")
	}
	if d.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if d.User == "" || isPlaceholder(d.User) {
		return fmt.Errorf("database.user is required")
	}
	if d.Password == "" || isPlaceholder(d.Password) {
		return fmt.Errorf("database.password is required")
	}
	return nil
}

func (w WebhookConfig) Validate() error {
	if w.URL == "" || isPlaceholder(w.URL) {
		return fmt.Errorf("webhook.url is required")
	}
	u, err := url.Parse(w.URL)
	if err != nil {
		return fmt.Errorf("invalid webhook.url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook.url must be an absolute http or https URL")
	}
	if host := u.Hostname(); host == "example.com" || strings.HasSuffix(host, ".example.com") {
		return fmt.Errorf("webhook.url still points at example.com")
	}
	if w.Timeout <= 0 {
		return fmt.Errorf("webhook.timeout must be greater than 0")
	}
	if (w.AuthHeaderName == "") != (w.AuthHeaderValue == "") {
		return fmt.Errorf("webhook.auth_header_name and webhook.auth_header_value must be set together")
	}
	return nil
}

func (r ReconnectConfig) Validate() error {
	if r.MaxAttempts < 1 {
		return fmt.Errorf("reconnect.max_attempts must be at least 1")
	}
	if r.Delay < 0 {
		return fmt.Errorf("reconnect.delay must be non-negative")
	}
	return nil
}

func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	return nil
}

const redactedValue = "********"

// Redacted returns a copy of the config safe for printing: secrets are
// replaced with a mask, never echoed back.
func (c *Config) Redacted() Config {
	out := *c
	if out.Database.Password != "" {
		out.Database.Password = redactedValue
	}
	if out.Webhook.AuthHeaderValue != "" {
		out.Webhook.AuthHeaderValue = redactedValue
	}
	return out
}
