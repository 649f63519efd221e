package patch

import "testing"

func TestGetStatsTiers(t *testing.T) {
	cases := []struct {
		name       string
		totalLines int
		files      int
		want       Complexity
	}{
		{"trivial", 5, 1, ComplexityTrivial},
		{"simple", 30, 3, ComplexitySimple},
		{"moderate", 150, 8, ComplexityModerate},
		{"complex", 400, 15, ComplexityComplex},
		{"very_complex_by_size", 600, 2, ComplexityVeryComplex},
		{"very_complex_by_breadth", 5, 25, ComplexityVeryComplex},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := assignComplexity(c.totalLines, c.files)
			if got != c.want {
				t.Errorf("assignComplexity(%d, %d) = %q, want %q", c.totalLines, c.files, got, c.want)
			}
		})
	}
}

func TestGetStatsCountsAdditionsAndDeletions(t *testing.T) {
	diff := "--- a/x.go\n+++ b/x.go\n@@ -1,2 +1,2 @@\n-old line\n+new line\n context\n"
	stats, err := GetStats(diff)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Additions != 1 || stats.Deletions != 1 {
		t.Errorf("Additions/Deletions = %d/%d, want 1/1", stats.Additions, stats.Deletions)
	}
	if stats.FilesAffected != 1 {
		t.Errorf("FilesAffected = %d, want 1", stats.FilesAffected)
	}
	if stats.Complexity != ComplexityTrivial {
		t.Errorf("Complexity = %q, want trivial", stats.Complexity)
	}
}
