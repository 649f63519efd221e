package testorch

import "github.com/ssdajoker/sologit/internal/errs"

// plan validates a batch's depends_on graph and returns it in a
// dependency-respecting (topological) order. Detects unknown dependencies
// and cycles up front, per spec §4.4: "no execution" on either.
func plan(tests []TestConfig) ([]TestConfig, error) {
	for _, tc := range tests {
		if tc.TimeoutSeconds == 0 {
			return nil, &errs.PreconditionError{Op: "plan_tests", Reason: "invalid_timeout",
				Details: map[string]any{"test": tc.Name}}
		}
	}

	byName := make(map[string]TestConfig, len(tests))
	for _, tc := range tests {
		byName[tc.Name] = tc
	}
	for _, tc := range tests {
		for _, dep := range tc.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, &errs.PreconditionError{Op: "plan_tests", Reason: "unknown_dependency",
					Details: map[string]any{"test": tc.Name, "dependency": dep}}
			}
		}
	}

	// Kahn's algorithm.
	inDegree := make(map[string]int, len(tests))
	dependents := make(map[string][]string, len(tests))
	for _, tc := range tests {
		inDegree[tc.Name] = len(tc.DependsOn)
		for _, dep := range tc.DependsOn {
			dependents[dep] = append(dependents[dep], tc.Name)
		}
	}

	var queue []string
	for _, tc := range tests {
		if inDegree[tc.Name] == 0 {
			queue = append(queue, tc.Name)
		}
	}

	var order []TestConfig
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, byName[name])
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(tests) {
		var cycle []string
		for name, deg := range inDegree {
			if deg > 0 {
				cycle = append(cycle, name)
			}
		}
		return nil, &errs.PreconditionError{Op: "plan_tests", Reason: "invalid_test_plan_cycle",
			Details: map[string]any{"cycle": cycle}}
	}
	return order, nil
}

// dependenciesSatisfied reports whether every entry in dependsOn is present
// in completed with status passed.
func dependenciesSatisfied(dependsOn []string, completed map[string]Status) bool {
	for _, dep := range dependsOn {
		if completed[dep] != StatusPassed {
			return false
		}
	}
	return true
}

// allDependenciesTerminal reports whether every entry in dependsOn has a
// terminal (non-pending) status recorded in completed.
func allDependenciesTerminal(dependsOn []string, completed map[string]Status) bool {
	for _, dep := range dependsOn {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}
