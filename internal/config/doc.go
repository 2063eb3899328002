// Package config loads, normalizes, and validates kdrama-dashboard
// configuration.
//
// Settings come from a TOML file (optional), then environment overrides such
// as KDRAMA_DATASET and KDRAMA_REDIS_ADDR. Callers that want .env support load
// it before calling Load so the overrides see those values.
package config
