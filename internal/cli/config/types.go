// Package config provides configuration management for the SQLPad CLI.
//
// Values are layered with koanf: defaults, then the YAML config file, then
// SQLPAD_* environment variables, then explicitly set command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	DatabasePath      string        `koanf:"database"`
	Port              int           `koanf:"port"`
	SessionSecret     string        `koanf:"session_secret"`
	SessionMaxAge     time.Duration `koanf:"session_max_age"`
	CookieName        string        `koanf:"cookie_name"`
	LogLevel          string        `koanf:"log_level"`
	LogFormat         string        `koanf:"log_format"`
	SchemaConcurrency int           `koanf:"schema_concurrency"`
	OutputFormat      string        `koanf:"output"`
}

// Default configuration values.
const (
	DefaultDatabase          = "practice.db"
	DefaultPort              = 3000
	DefaultSessionMaxAge     = time.Hour
	DefaultCookieName        = "sqlpad.sid"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultSchemaConcurrency = 4
	DefaultOutput            = "auto" // TTY gets a table, pipes get JSON
)

// Output formats accepted by --output.
var OutputFormats = []string{"auto", "table", "json", "yaml"}

// Log formats accepted by --log-format.
var LogFormats = []string{"text", "json"}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		DatabasePath:      DefaultDatabase,
		Port:              DefaultPort,
		SessionMaxAge:     DefaultSessionMaxAge,
		CookieName:        DefaultCookieName,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		SchemaConcurrency: DefaultSchemaConcurrency,
		OutputFormat:      DefaultOutput,
	}
}
