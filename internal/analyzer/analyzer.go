package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ssdajoker/sologit/internal/testorch"
)

// failureStatuses are the TestResult statuses that feed the categorizer;
// passed and skipped tests never produce a pattern.
var failureStatuses = map[testorch.Status]bool{
	testorch.StatusFailed:  true,
	testorch.StatusTimeout: true,
	testorch.StatusError:   true,
}

// Analyze consumes a batch of test results and produces a Report: each
// failure is categorized, canonicalized, and merged into a Pattern; the
// whole batch is scored for overall_complexity.
func Analyze(results []testorch.TestResult) Report {
	totals := make(map[string]int, len(results))
	type key struct {
		category Category
		message  string
	}
	merged := make(map[key]*Pattern)
	var order []key

	for _, r := range results {
		totals[string(r.Status)]++
		if !failureStatuses[r.Status] {
			continue
		}

		text := r.Stdout + "\n" + r.Stderr + "\n" + r.Cause
		var category Category
		if r.Status == testorch.StatusTimeout {
			category = CategoryTimeout
		} else {
			category = categorize(text)
		}
		message := canonicalMessage(text)
		if message == "" {
			message = string(r.Status)
		}

		k := key{category, message}
		p, ok := merged[k]
		if !ok {
			p = &Pattern{
				Category:         category,
				Message:          message,
				Location:         extractLocation(text),
				SuggestedActions: suggestedActions[category],
				Complexity:       patternComplexity[category],
			}
			merged[k] = p
			order = append(order, k)
		}
		p.Count++
		p.Tests = append(p.Tests, r.Name)
	}

	patterns := make([]Pattern, 0, len(order))
	for _, k := range order {
		patterns = append(patterns, *merged[k])
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Message < patterns[j].Message
	})

	status := StatusGreen
	if totals[string(testorch.StatusFailed)] > 0 ||
		totals[string(testorch.StatusTimeout)] > 0 ||
		totals[string(testorch.StatusError)] > 0 {
		status = StatusRed
	}

	overall := assignOverallComplexity(patterns)

	return Report{
		Status:            status,
		Totals:            totals,
		Patterns:          patterns,
		OverallComplexity: overall,
		FormattedReport:   formatReport(status, totals, patterns, overall),
	}
}

func formatReport(status Status, totals map[string]int, patterns []Pattern, overall Complexity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "status: %s\n", status)
	fmt.Fprintf(&b, "totals: passed=%d failed=%d timeout=%d error=%d skipped=%d\n",
		totals[string(testorch.StatusPassed)],
		totals[string(testorch.StatusFailed)],
		totals[string(testorch.StatusTimeout)],
		totals[string(testorch.StatusError)],
		totals[string(testorch.StatusSkipped)])
	if len(patterns) == 0 {
		b.WriteString("no failure patterns\n")
		return b.String()
	}
	fmt.Fprintf(&b, "overall_complexity: %s\n", overall)
	for _, p := range patterns {
		fmt.Fprintf(&b, "- [%s] %s (x%d)", p.Category, p.Message, p.Count)
		if p.Location != nil {
			fmt.Fprintf(&b, " at %s:%d", p.Location.File, p.Location.Line)
		}
		b.WriteString("\n")
		for _, action := range p.SuggestedActions {
			fmt.Fprintf(&b, "    - %s\n", action)
		}
	}
	return b.String()
}
