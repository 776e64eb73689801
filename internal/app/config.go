package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RecipePath  string // XML recipe document
	Basedir     string // build working directory
	ProfilePath string // optional HCL runner profile
	VarsPath    string // optional YAML variables file

	// Vars are caller-supplied name=value overrides, applied last.
	Vars map[string]string

	ResultPath string        // optional YAML build-result output file
	OnError    string        // build-level onerror override, empty to inherit
	Timeout    time.Duration // per-command timeout override, 0 to inherit
	DryRun     bool          // parse and validate only

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RecipePath == "" {
		return nil, errors.New("RecipePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
