package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssdajoker/sologit/internal/gate"
)

// Load reads and parses a sologit configuration from the given YAML file
// path. After parsing, it applies defaults to test configs that don't
// specify their own values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a sologit config in standard locations and loads
// the first one found. Search order: ./sologit.yaml, ~/.sologit/config.yaml
func LoadDefault() (*Config, error) {
	candidates := []string{"sologit.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".sologit", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	d := Default()
	return &d, nil
}

// applyDefaults merges Sologit.Defaults into tests and smoke tests that
// don't set their own timeout, and resolves the state root's leading "~"
// the way os.UserHomeDir-aware tools in this ecosystem do.
func applyDefaults(cfg *Config) {
	s := &cfg.Sologit

	for i := range s.Tests {
		if s.Tests[i].TimeoutSeconds == 0 && s.Defaults.TimeoutSeconds != 0 {
			s.Tests[i].TimeoutSeconds = s.Defaults.TimeoutSeconds
		}
	}
	for i := range s.SmokeTests {
		if s.SmokeTests[i].TimeoutSeconds == 0 && s.Defaults.TimeoutSeconds != 0 {
			s.SmokeTests[i].TimeoutSeconds = s.Defaults.TimeoutSeconds
		}
	}

	if s.StateRoot == "" {
		s.StateRoot = "~/.sologit"
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(s.StateRoot, "~/") {
		s.StateRoot = filepath.Join(home, s.StateRoot[2:])
	}
}

// Default returns a Config with sologit's out-of-the-box defaults: state
// under ~/.sologit, a conservative gate, no preconfigured test batches.
func Default() Config {
	cfg := Config{
		Sologit: Sologit{
			StateRoot: "~/.sologit",
			Sandbox:   SandboxLimits{MaxParallelism: 8},
		},
	}
	cfg.Sologit.GateRules = gate.DefaultRules()
	applyDefaults(&cfg)
	return cfg
}
