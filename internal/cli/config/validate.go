package config

import (
	"fmt"
	"log/slog"
	"slices"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive, got %s", c.SessionMaxAge)
	}
	if c.CookieName == "" {
		return fmt.Errorf("cookie_name is required")
	}
	if c.SchemaConcurrency < 1 {
		return fmt.Errorf("schema_concurrency must be at least 1, got %d", c.SchemaConcurrency)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("unknown log_format %q (want one of %v)", c.LogFormat, LogFormats)
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %v)", c.OutputFormat, OutputFormats)
	}
	return nil
}

// ParseLevel parses a log level name such as "debug" or "WARN".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
	return level, nil
}
