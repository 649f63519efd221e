package patch

import "strings"

// GetStats computes size/shape statistics for a unified diff.
func GetStats(diffText string) (Stats, error) {
	parsed, err := Parse(diffText)
	if err != nil {
		return Stats{}, err
	}

	var additions, deletions int
	files := make([]string, 0, len(parsed.Files))
	for _, f := range parsed.Files {
		files = append(files, f.displayPath())
		for _, h := range f.Hunks {
			for _, line := range h.Body {
				switch {
				case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
					additions++
				case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
					deletions++
				}
			}
		}
	}

	total := additions + deletions
	return Stats{
		FilesAffected: len(parsed.Files),
		Additions:     additions,
		Deletions:     deletions,
		Complexity:    assignComplexity(total, len(parsed.Files)),
		FilesList:     files,
		TotalChanges:  total,
	}, nil
}
