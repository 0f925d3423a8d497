package models

import "time"

// Configuration models

// Config holds database configuration
type Config struct {
	Provider      string            // mysql, postgres, sqlite3, memory, mongodb
	URI           string            // Connection string or URI
	Database      string            // Database name (mongodb)
	ServerVersion string            // Expected server version, e.g. 8.0.29
	Options       map[string]string // Provider-specific options

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
