package config

import (
	"slices"

	"kdrama-dashboard/internal/quiz"
)

const (
	defaultDatasetPath          = "kdrama.csv"
	defaultGenreDelimiter       = ", "
	defaultFetchTimeoutSeconds  = 30
	defaultSessionBackend       = BackendMemory
	defaultSQLitePath           = "~/.local/share/kdrama/sessions.db"
	defaultSessionTTLMinutes    = 120
	defaultSweepIntervalSeconds = 300
	defaultServerAddr           = "127.0.0.1:8080"
	defaultReadHeaderTimeout    = 10
	defaultLockPath             = "~/.local/share/kdrama/serve.lock"
	defaultEventsExchange       = "kdrama.quiz"
	defaultLogFormat            = "auto"
	defaultLogLevel             = "info"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

func defaultOffsets() []int {
	return slices.Clone(quiz.DefaultOffsets)
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Path:                defaultDatasetPath,
			GenreDelimiter:      defaultGenreDelimiter,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Quiz: Quiz{
			Offsets: defaultOffsets(),
		},
		Sessions: Sessions{
			Backend:              defaultSessionBackend,
			SQLitePath:           defaultSQLitePath,
			TTLMinutes:           defaultSessionTTLMinutes,
			SweepIntervalSeconds: defaultSweepIntervalSeconds,
		},
		Server: Server{
			Addr:                     defaultServerAddr,
			ReadHeaderTimeoutSeconds: defaultReadHeaderTimeout,
			LockPath:                 defaultLockPath,
		},
		Events: Events{
			Exchange: defaultEventsExchange,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
