package patch

import (
	"strings"

	"github.com/ssdajoker/sologit/internal/errs"
)

// SplitByFile breaks a multi-file unified diff into one raw diff snippet
// per affected path. The split is purely textual (keyed off "--- "/"+++ "
// markers) so Combine can losslessly reassemble the original input.
func SplitByFile(diffText string) (map[string]string, error) {
	lines := strings.Split(diffText, "\n")
	out := make(map[string]string)

	var curPath string
	var buf []string
	flush := func() {
		if curPath != "" && len(buf) > 0 {
			out[curPath] = strings.Join(buf, "\n")
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "--- ") {
			flush()
			buf = nil
			curPath = ""
		}
		buf = append(buf, line)
		if strings.HasPrefix(line, "+++ ") {
			p := trimDiffPath(line[4:])
			if p == "/dev/null" {
				// deletion: the path lives on the "--- " line instead.
				for _, l := range buf {
					if strings.HasPrefix(l, "--- ") {
						p = trimDiffPath(l[4:])
						break
					}
				}
			}
			curPath = p
		}
	}
	flush()

	if len(out) == 0 {
		return nil, &errs.MalformedError{What: "patch", Hint: "no file sections found to split"}
	}
	return out, nil
}

// Combine reassembles per-file diffs (in the given path order) into one
// unified diff, the inverse of SplitByFile.
func Combine(diffs map[string]string, order []string) string {
	var b strings.Builder
	for i, path := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(diffs[path])
	}
	return b.String()
}
