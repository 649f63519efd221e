package analyzer

import (
	"testing"

	"github.com/ssdajoker/sologit/internal/testorch"
)

func TestAnalyzeAllPassedIsGreen(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusPassed},
		{Name: "b", Status: testorch.StatusPassed},
	}
	report := Analyze(results)
	if report.Status != StatusGreen {
		t.Fatalf("Status = %q, want green", report.Status)
	}
	if len(report.Patterns) != 0 {
		t.Fatalf("Patterns = %v, want none", report.Patterns)
	}
}

func TestAnalyzeCategorizesAssertionFailure(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: "AssertionError: expected 200 got 500"},
	}
	report := Analyze(results)
	if report.Status != StatusRed {
		t.Fatalf("Status = %q, want red", report.Status)
	}
	if len(report.Patterns) != 1 {
		t.Fatalf("len(Patterns) = %d, want 1", len(report.Patterns))
	}
	if report.Patterns[0].Category != CategoryAssertion {
		t.Errorf("Category = %q, want assertion", report.Patterns[0].Category)
	}
}

func TestAnalyzeMergesIdenticalFailures(t *testing.T) {
	stderr := "File \"src/app.py\", line 10, in handler\nModuleNotFoundError: no module named 'requests'"
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: stderr},
		{Name: "b", Status: testorch.StatusFailed, Stderr: stderr},
	}
	report := Analyze(results)
	if len(report.Patterns) != 1 {
		t.Fatalf("len(Patterns) = %d, want 1 (should merge identical failures)", len(report.Patterns))
	}
	if report.Patterns[0].Count != 2 {
		t.Errorf("Count = %d, want 2", report.Patterns[0].Count)
	}
	if len(report.Patterns[0].Tests) != 2 {
		t.Errorf("Tests = %v, want 2 entries", report.Patterns[0].Tests)
	}
}

func TestAnalyzeTimeoutUsesOrchestratorStatus(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "slow", Status: testorch.StatusTimeout, Cause: "timeout"},
	}
	report := Analyze(results)
	if report.Patterns[0].Category != CategoryTimeout {
		t.Errorf("Category = %q, want timeout", report.Patterns[0].Category)
	}
}

func TestAnalyzeExtractsPythonTraceback(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: `Traceback (most recent call last):
  File "src/app.py", line 42, in handler
    raise ValueError("boom")
AssertionError: expected 200 got 500`},
	}
	report := Analyze(results)
	loc := report.Patterns[0].Location
	if loc == nil {
		t.Fatal("Location = nil, want extracted frame")
	}
	if loc.File != "src/app.py" || loc.Line != 42 {
		t.Errorf("Location = %+v, want src/app.py:42", loc)
	}
}

func TestAnalyzeUnknownCategoryFallback(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusError, Cause: "gremlins in the sandbox"},
	}
	report := Analyze(results)
	if report.Patterns[0].Category != CategoryUnknown {
		t.Errorf("Category = %q, want unknown", report.Patterns[0].Category)
	}
}

func TestOverallComplexityLowForSingleSimplePattern(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: "AssertionError: expected 200 got 500"},
	}
	report := Analyze(results)
	if report.OverallComplexity != ComplexityLow {
		t.Errorf("OverallComplexity = %q, want low", report.OverallComplexity)
	}
}

func TestOverallComplexityHighForResourcePattern(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: "fatal: out of memory"},
	}
	report := Analyze(results)
	if report.OverallComplexity != ComplexityHigh {
		t.Errorf("OverallComplexity = %q, want high", report.OverallComplexity)
	}
}

func TestOverallComplexityMediumForManySimplePatterns(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: "AssertionError: one"},
		{Name: "b", Status: testorch.StatusFailed, Stderr: "AssertionError: two"},
		{Name: "c", Status: testorch.StatusFailed, Stderr: "AssertionError: three"},
	}
	report := Analyze(results)
	if report.OverallComplexity != ComplexityMedium {
		t.Errorf("OverallComplexity = %q, want medium (3 patterns > low's cap of 2)", report.OverallComplexity)
	}
}

func TestFormattedReportNonEmpty(t *testing.T) {
	results := []testorch.TestResult{
		{Name: "a", Status: testorch.StatusFailed, Stderr: "AssertionError: expected 200 got 500"},
	}
	report := Analyze(results)
	if report.FormattedReport == "" {
		t.Error("FormattedReport is empty")
	}
}
