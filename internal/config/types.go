package config

import (
	"github.com/ssdajoker/sologit/internal/gate"
	"github.com/ssdajoker/sologit/internal/testorch"
)

// Config is the top-level configuration structure parsed from sologit's
// config YAML.
type Config struct {
	Sologit Sologit `yaml:"sologit"`
}

// Sologit holds the state root override, promotion gate rules, default test
// batches, and sandbox limits.
type Sologit struct {
	StateRoot  string                `yaml:"state_root"`
	Defaults   Defaults              `yaml:"defaults"`
	GateRules  gate.Rules            `yaml:"gate_rules"`
	Tests      []testorch.TestConfig `yaml:"tests"`
	SmokeTests []testorch.TestConfig `yaml:"smoke_tests"`
	Sandbox    SandboxLimits         `yaml:"sandbox"`
}

// Defaults holds values applied to TestConfigs that don't specify their
// own (mirroring lucasnoah-taintfactory's StageDefaults merge step).
type Defaults struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// SandboxLimits configures the test orchestrator's process-sandbox policy.
type SandboxLimits struct {
	MaxParallelism int `yaml:"max_parallelism"`
}
