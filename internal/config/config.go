// Package config loads the service's process-wide settings from the
// environment. Settings are read once at startup into an immutable Config
// value which is injected into the components that need it; nothing reads
// the environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvDebug   = "DEBUG"
	EnvTempDir = "MARKITDOWN_TMPDIR"
	EnvPort    = "PORT"
)

// Defaults for unset environment variables.
const (
	DefaultTempDir = "/tmp/"
	DefaultPort    = 8585
)

// Config holds the service's process-wide settings.
type Config struct {
	// Debug selects verbose logging when true.
	Debug bool

	// TempDir is the base directory under which per-request working
	// directories are created.
	TempDir string

	// Port is the TCP port the HTTP server listens on.
	Port int
}

// Load reads the configuration from the environment. DEBUG is true only when
// set to "true" (any case); an unset MARKITDOWN_TMPDIR falls back to /tmp/
// and an unset PORT to 8585. A non-numeric PORT is an error.
func Load() (Config, error) {
	cfg := Config{
		Debug:   strings.EqualFold(os.Getenv(EnvDebug), "true"),
		TempDir: DefaultTempDir,
		Port:    DefaultPort,
	}

	if dir := os.Getenv(EnvTempDir); dir != "" {
		cfg.TempDir = dir
	}

	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvPort, port, err)
		}
		cfg.Port = p
	}

	return cfg, nil
}
