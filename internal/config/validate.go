package config

import (
	"errors"
	"fmt"

	"kdrama-dashboard/internal/quiz"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateQuiz(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.Path == "" {
		return errors.New("dataset.path is required. Set KDRAMA_DATASET or edit the config file (create with 'kdrama config init')")
	}
	return nil
}

func (c *Config) validateQuiz() error {
	if err := quiz.ValidateOffsets(c.Quiz.Offsets); err != nil {
		return fmt.Errorf("quiz.offsets: %w", err)
	}
	return nil
}

func (c *Config) validateSessions() error {
	switch c.Sessions.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Sessions.RedisAddr == "" {
			return errors.New("sessions.redis_addr is required when sessions.backend is redis")
		}
	default:
		return fmt.Errorf("sessions.backend: unsupported value %q (want memory, sqlite, or redis)", c.Sessions.Backend)
	}
	if c.Sessions.TTLMinutes < 0 {
		return errors.New("sessions.ttl_minutes must be >= 0")
	}
	if c.Sessions.RedisDB < 0 {
		return errors.New("sessions.redis_db must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want auto, console, or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
