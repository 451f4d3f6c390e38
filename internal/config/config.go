// Package config loads settings for the workflowtest command line tool from
// an optional YAML file layered over defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the dev-server settings the CLI can run with.
type Config struct {
	// Namespace is registered on the dev server and targeted by dump.
	Namespace string `yaml:"namespace"`
	// Port fixes the frontend port; 0 picks an ephemeral one.
	Port int `yaml:"port"`
	// LogLevel controls the dev server's own logging.
	LogLevel string `yaml:"logLevel"`
	// UI enables the Temporal web UI.
	UI bool `yaml:"ui"`
	// DBFile persists server state across restarts when set; empty keeps
	// everything in memory.
	DBFile string `yaml:"dbFile"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Namespace: "default",
		LogLevel:  "warn",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
