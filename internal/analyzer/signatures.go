package analyzer

import "regexp"

// signature is one category's detection rule, tried in order against a
// failing test's combined output. The first matching signature wins.
type signature struct {
	Category Category
	Pattern  *regexp.Regexp
}

var (
	assertionRe  = regexp.MustCompile(`(?i)assert(ion)?error|expected .* got|assertion failed`)
	importRe     = regexp.MustCompile(`(?i)modulenotfounderror|importerror|cannot find (package|module)|no such module`)
	syntaxRe     = regexp.MustCompile(`(?i)syntaxerror|unexpected token|unexpected EOF|parse error`)
	timeoutRe    = regexp.MustCompile(`(?i)^timeout$|timed out after`)
	dependencyRe = regexp.MustCompile(`(?i)command not found|executable file not found|no matching (package|version)|dependency resolution failed`)
	networkRe    = regexp.MustCompile(`(?i)connection refused|no such host|network is unreachable|dns lookup failed|i/o timeout`)
	permissionRe = regexp.MustCompile(`(?i)permission denied|operation not permitted|access is denied`)
	resourceRe   = regexp.MustCompile(`(?i)out of memory|cannot allocate memory|no space left on device|too many open files`)
)

// signatures is ordered most-specific-first: timeout and network sentinels
// are narrow and checked before the broader dependency/assertion patterns
// they could otherwise be swallowed by.
var signatures = []signature{
	{CategoryTimeout, timeoutRe},
	{CategoryNetwork, networkRe},
	{CategoryPermission, permissionRe},
	{CategoryResource, resourceRe},
	{CategoryImport, importRe},
	{CategorySyntax, syntaxRe},
	{CategoryDependency, dependencyRe},
	{CategoryAssertion, assertionRe},
}

// categorize scans text (a test's combined stdout+stderr, plus an explicit
// cause for orchestrator-level failures) and returns the first matching
// category, or unknown.
func categorize(text string) Category {
	for _, s := range signatures {
		if s.Pattern.MatchString(text) {
			return s.Category
		}
	}
	return CategoryUnknown
}

// suggestedActions is a fixed category → ordered hints mapping.
var suggestedActions = map[Category][]string{
	CategoryAssertion:  {"review the failing expectation", "check recent changes to the code under test"},
	CategoryImport:     {"verify dependency install", "check module paths"},
	CategorySyntax:     {"run a linter/formatter locally", "check for stray brackets or indentation"},
	CategoryTimeout:    {"profile the slow path", "raise timeout_seconds if the work is expected to be slow"},
	CategoryDependency: {"install the missing tool", "pin the dependency version"},
	CategoryNetwork:    {"check network/firewall access from the sandbox", "mock the external call in tests"},
	CategoryPermission: {"check file ownership and mode bits", "avoid running tests as a restricted user"},
	CategoryResource:   {"reduce test parallelism", "check for a resource leak"},
	CategoryUnknown:    {"inspect the raw stdout/stderr for this test"},
}

// patternComplexity maps a single pattern's category to its own estimated
// fix complexity, independent of the report's overall_complexity.
var patternComplexity = map[Category]Complexity{
	CategoryAssertion:  ComplexityLow,
	CategoryImport:     ComplexityLow,
	CategorySyntax:     ComplexityLow,
	CategoryTimeout:    ComplexityMedium,
	CategoryDependency: ComplexityMedium,
	CategoryNetwork:    ComplexityMedium,
	CategoryPermission: ComplexityMedium,
	CategoryResource:   ComplexityHigh,
	CategoryUnknown:    ComplexityHigh,
}
