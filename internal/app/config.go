package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath points at a settings .hcl file or a directory of them.
	// Optional; -s overrides alone can drive a build.
	ConfigPath string
	// CacheDir is the root of the on-disk artifact cache.
	CacheDir string
	// Overrides are raw KEY=VALUE settings from the command line, applied
	// after the settings files.
	Overrides []string

	// List prints the port summary instead of building.
	List bool
	// ClearPort erases one port's cached artifact instead of building.
	ClearPort string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CacheDir == "" {
		return nil, errors.New("CacheDir is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
