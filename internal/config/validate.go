package config

import (
	"fmt"

	"github.com/ssdajoker/sologit/internal/testorch"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for structural and semantic errors. It returns
// every error found rather than stopping at the first (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	s := cfg.Sologit

	if s.StateRoot == "" {
		errs = append(errs, ValidationError{Field: "sologit.state_root", Message: "is required"})
	}
	if s.Sandbox.MaxParallelism < 0 {
		errs = append(errs, ValidationError{
			Field: "sologit.sandbox.max_parallelism", Message: "must not be negative",
		})
	}
	if s.GateRules.MaxFilesChanged != nil && *s.GateRules.MaxFilesChanged < 0 {
		errs = append(errs, ValidationError{
			Field: "sologit.gate_rules.max_files_changed", Message: "must not be negative",
		})
	}
	if s.GateRules.MaxLinesChanged != nil && *s.GateRules.MaxLinesChanged < 0 {
		errs = append(errs, ValidationError{
			Field: "sologit.gate_rules.max_lines_changed", Message: "must not be negative",
		})
	}

	validateTestBatch(s.Tests, "sologit.tests", &errs)
	validateTestBatch(s.SmokeTests, "sologit.smoke_tests", &errs)

	return errs
}

// validateTestBatch checks that every test in a batch has a name and
// command, that names are unique within the batch, and that depends_on
// references resolve within it — the same partial-order invariant
// internal/testorch's plan validation enforces at run time, caught here
// earlier at config load time instead.
func validateTestBatch(tests []testorch.TestConfig, field string, errs *[]ValidationError) {
	names := make(map[string]bool, len(tests))
	for i, tc := range tests {
		if tc.Name == "" {
			*errs = append(*errs, ValidationError{
				Field: fmt.Sprintf("%s[%d].name", field, i), Message: "is required",
			})
			continue
		}
		if names[tc.Name] {
			*errs = append(*errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d].name", field, i),
				Message: fmt.Sprintf("duplicate test name %q", tc.Name),
			})
		}
		names[tc.Name] = true
		if len(tc.Command) == 0 {
			*errs = append(*errs, ValidationError{
				Field: fmt.Sprintf("%s[%d].command", field, i), Message: "must not be empty",
			})
		}
		if tc.TimeoutSeconds < 0 {
			*errs = append(*errs, ValidationError{
				Field: fmt.Sprintf("%s[%d].timeout_seconds", field, i), Message: "must not be negative",
			})
		}
		if tc.TimeoutSeconds == 0 {
			*errs = append(*errs, ValidationError{
				Field: fmt.Sprintf("%s[%d].timeout_seconds", field, i), Message: "must be a positive number of seconds; zero is rejected, not defaulted",
			})
		}
	}

	for i, tc := range tests {
		for _, dep := range tc.DependsOn {
			if dep == tc.Name {
				*errs = append(*errs, ValidationError{
					Field:   fmt.Sprintf("%s[%d].depends_on", field, i),
					Message: fmt.Sprintf("test %q cannot depend on itself", tc.Name),
				})
				continue
			}
			if !names[dep] {
				*errs = append(*errs, ValidationError{
					Field:   fmt.Sprintf("%s[%d].depends_on", field, i),
					Message: fmt.Sprintf("references undefined test %q", dep),
				})
			}
		}
	}
}
