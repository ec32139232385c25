// Package config provides configuration management for policystore.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/solatis/policystore/internal/core/store"
)

// Config is the complete runtime configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// DatabaseConfig selects the policy table and its backing database.
type DatabaseConfig struct {
	URL   string `validate:"required"`
	Table string `validate:"required,sql_identifier"`
}

// ServerConfig holds configuration for the gRPC policy service.
type ServerConfig struct {
	Host           string        `validate:"required"`
	Port           int           `validate:"min=1,max=65535"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

// MetricsConfig holds the Prometheus listener address. Empty disables it.
type MetricsConfig struct {
	Addr string `validate:"omitempty,hostname_port"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:   "sqlite://policystore.db",
			Table: store.DefaultTable,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           50061,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr returns the gRPC listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the struct tags, including the table name rule shared
// with the store.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("sql_identifier", validateSQLIdentifier); err != nil {
		return fmt.Errorf("failed to register sql_identifier validator: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func validateSQLIdentifier(fl validator.FieldLevel) bool {
	return store.ValidateIdentifier(fl.Field().String()) == nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatFieldError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 65535, got %v", field, e.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive, got %v", field, e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "sql_identifier":
		return fmt.Sprintf("%s must match [A-Za-z0-9_.]+, got %q", field, e.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
