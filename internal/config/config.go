package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Priya8975/newsletter-delivery-system/internal/email"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port           string
	DatabaseURL    string
	RedisURL       string
	BaseURL        string
	FanOutWorkers  int
	SendTimeout    time.Duration
	StoreTimeout   time.Duration
	IdempotencyTTL time.Duration
	LogLevel       slog.Level
	MigrationsDir  string
	Email          email.Config
}

var defaults = map[string]any{
	"port":            "8080",
	"base_url":        "http://localhost:8080",
	"fanout_workers":  10,
	"send_timeout":    "10s",
	"store_timeout":   "5s",
	"idempotency_ttl": "10m",
	"log_level":       "info",
	"migrations_dir":  "migrations",
	"email_provider":  email.ProviderLog,
	"email_sender":    "newsletter@localhost",
	"smtp_port":       587,
	"smtp_timeout":    "10s",
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE
// and from environment variables, which take precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:           v.GetString("port"),
		DatabaseURL:    v.GetString("database_url"),
		RedisURL:       v.GetString("redis_url"),
		BaseURL:        v.GetString("base_url"),
		FanOutWorkers:  v.GetInt("fanout_workers"),
		SendTimeout:    v.GetDuration("send_timeout"),
		StoreTimeout:   v.GetDuration("store_timeout"),
		IdempotencyTTL: v.GetDuration("idempotency_ttl"),
		MigrationsDir:  v.GetString("migrations_dir"),
		Email: email.Config{
			Provider: v.GetString("email_provider"),
			From:     v.GetString("email_sender"),
			SES: email.SESConfig{
				Region:          v.GetString("aws_region"),
				AccessKeyID:     v.GetString("aws_access_key_id"),
				SecretAccessKey: v.GetString("aws_secret_access_key"),
				Endpoint:        v.GetString("ses_endpoint"),
			},
			SMTP: email.SMTPConfig{
				Host:     v.GetString("smtp_host"),
				Port:     v.GetInt("smtp_port"),
				Username: v.GetString("smtp_username"),
				Password: v.GetString("smtp_password"),
				Timeout:  v.GetDuration("smtp_timeout"),
			},
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("BASE_URL is required"))
	}
	if c.FanOutWorkers < 1 {
		errs = append(errs, fmt.Errorf("FANOUT_WORKERS must be positive, got %d", c.FanOutWorkers))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, errors.New("SEND_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
