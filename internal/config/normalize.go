package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	if err := c.normalizeSessions(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeEvents()
	c.normalizeLogging()
	return nil
}

// applyEnv lets the environment override the file.
func (c *Config) applyEnv() {
	if value, ok := lookupEnv("KDRAMA_DATASET"); ok {
		c.Dataset.Path = value
	}
	if value, ok := lookupEnv("KDRAMA_ADDR"); ok {
		c.Server.Addr = value
	}
	if value, ok := lookupEnv("KDRAMA_REDIS_ADDR"); ok {
		c.Sessions.RedisAddr = value
		if strings.TrimSpace(c.Sessions.Backend) == "" || c.Sessions.Backend == BackendMemory {
			c.Sessions.Backend = BackendRedis
		}
	}
	if value, ok := lookupEnv("KDRAMA_AMQP_URL"); ok {
		c.Events.AMQPURL = value
	}
}

func (c *Config) normalizeDataset() error {
	c.Dataset.Path = strings.TrimSpace(c.Dataset.Path)
	if c.Dataset.Path != "" && !isURL(c.Dataset.Path) {
		expanded, err := expandPath(c.Dataset.Path)
		if err != nil {
			return fmt.Errorf("dataset.path: %w", err)
		}
		c.Dataset.Path = expanded
	}
	if c.Dataset.GenreDelimiter == "" {
		c.Dataset.GenreDelimiter = defaultGenreDelimiter
	}
	if c.Dataset.FetchTimeoutSeconds <= 0 {
		c.Dataset.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Quiz.Offsets == nil {
		c.Quiz.Offsets = defaultOffsets()
	}
	return nil
}

func (c *Config) normalizeSessions() error {
	c.Sessions.Backend = strings.ToLower(strings.TrimSpace(c.Sessions.Backend))
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = defaultSessionBackend
	}
	if strings.TrimSpace(c.Sessions.SQLitePath) == "" {
		c.Sessions.SQLitePath = defaultSQLitePath
	}
	var err error
	if c.Sessions.SQLitePath, err = expandPath(c.Sessions.SQLitePath); err != nil {
		return fmt.Errorf("sessions.sqlite_path: %w", err)
	}
	c.Sessions.RedisAddr = strings.TrimSpace(c.Sessions.RedisAddr)
	if c.Sessions.SweepIntervalSeconds <= 0 {
		c.Sessions.SweepIntervalSeconds = defaultSweepIntervalSeconds
	}
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Server.ReadHeaderTimeoutSeconds <= 0 {
		c.Server.ReadHeaderTimeoutSeconds = defaultReadHeaderTimeout
	}
	if strings.TrimSpace(c.Server.LockPath) == "" {
		c.Server.LockPath = defaultLockPath
	}
	var err error
	if c.Server.LockPath, err = expandPath(c.Server.LockPath); err != nil {
		return fmt.Errorf("server.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeEvents() {
	c.Events.AMQPURL = strings.TrimSpace(c.Events.AMQPURL)
	c.Events.Exchange = strings.TrimSpace(c.Events.Exchange)
	if c.Events.Exchange == "" {
		c.Events.Exchange = defaultEventsExchange
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "text":
		c.Logging.Format = "console"
	default:
		c.Logging.Format = format
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func isURL(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
