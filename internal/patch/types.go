// Package patch parses, validates, previews, and applies unified diffs
// against a workpad's working tree.
package patch

// Hunk is one `@@ -a,b +c,d @@` block of a file's diff.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Header   string
	Body     []string // raw lines including the leading +/-/space marker
}

// FileDiff is the parsed diff for a single file.
type FileDiff struct {
	OldPath  string
	NewPath  string
	IsNew    bool
	IsDelete bool
	Hunks    []Hunk
}

// Parsed is the result of parsing a full unified diff.
type Parsed struct {
	Files []FileDiff
}

// Complexity is the size tier assigned to a set of changes.
type Complexity string

const (
	ComplexityTrivial      Complexity = "trivial"
	ComplexitySimple       Complexity = "simple"
	ComplexityModerate     Complexity = "moderate"
	ComplexityComplex      Complexity = "complex"
	ComplexityVeryComplex  Complexity = "very_complex"
)

// tier is one row of the complexity table, walked in order; the first row
// whose predicate matches wins.
type tier struct {
	Complexity Complexity
	Match      func(totalChanges, filesAffected int) bool
}

// tiers is ordered most-specific-first, mirroring a tier-assignment walk
// over an ordered table rather than nested conditionals.
var tiers = []tier{
	{ComplexityTrivial, func(tc, fa int) bool { return tc < 10 && fa == 1 }},
	{ComplexitySimple, func(tc, fa int) bool { return tc < 50 && fa <= 3 }},
	{ComplexityModerate, func(tc, fa int) bool { return tc < 200 && fa <= 10 }},
	{ComplexityComplex, func(tc, fa int) bool { return tc < 500 && fa <= 20 }},
}

func assignComplexity(totalChanges, filesAffected int) Complexity {
	for _, t := range tiers {
		if t.Match(totalChanges, filesAffected) {
			return t.Complexity
		}
	}
	return ComplexityVeryComplex
}

// Stats is the result of get_stats.
type Stats struct {
	FilesAffected int        `json:"files_affected"`
	Additions     int        `json:"additions"`
	Deletions     int        `json:"deletions"`
	Complexity    Complexity `json:"complexity"`
	FilesList     []string   `json:"files_list"`
	TotalChanges  int        `json:"total_changes"`
}

// ValidationResult is the result of validate_syntax.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ConflictReport is the result of detect_conflicts.
type ConflictReport struct {
	HasConflicts     bool     `json:"has_conflicts"`
	ConflictingFiles []string `json:"conflicting_files"`
	Details          []string `json:"details"`
}

// Recommendation is preview's advisory verdict.
type Recommendation string

const (
	RecommendationSafeToApply            Recommendation = "safe_to_apply"
	RecommendationReviewRecommended      Recommendation = "review_recommended"
	RecommendationCarefulReviewRequired  Recommendation = "careful_review_required"
	RecommendationManualResolutionNeeded Recommendation = "manual_resolution_required"
)

// Preview is the result of preview.
type Preview struct {
	CanApply       bool           `json:"can_apply"`
	Stats          Stats          `json:"stats"`
	ConflictFiles  []string       `json:"conflict_files"`
	Recommendation Recommendation `json:"recommendation"`
}

func recommendFor(stats Stats, conflicts []string) Recommendation {
	if len(conflicts) > 0 {
		return RecommendationManualResolutionNeeded
	}
	switch stats.Complexity {
	case ComplexityTrivial, ComplexitySimple:
		return RecommendationSafeToApply
	case ComplexityModerate:
		return RecommendationReviewRecommended
	default:
		return RecommendationCarefulReviewRequired
	}
}
