package patch

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/ssdajoker/sologit/internal/errs"
)

// Parse parses a unified diff, grounded on the teacher's hand-rolled
// line-oriented output parsers (internal/checks/parser_*.go): scan line by
// line, recognize a small set of fixed-prefix markers, build structured
// records as they're found.
func Parse(diffText string) (Parsed, error) {
	var parsed Parsed
	var cur *FileDiff
	var curHunk *Hunk

	lineNo := 0
	scanner := bufio.NewScanner(strings.NewReader(diffText))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	flushHunk := func() {
		if cur != nil && curHunk != nil {
			cur.Hunks = append(cur.Hunks, *curHunk)
			curHunk = nil
		}
	}
	flushFile := func() {
		flushHunk()
		if cur != nil {
			parsed.Files = append(parsed.Files, *cur)
			cur = nil
		}
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "--- "):
			flushFile()
			cur = &FileDiff{}
			cur.OldPath = trimDiffPath(line[4:])
			if cur.OldPath == "/dev/null" {
				cur.IsNew = true
			}
		case strings.HasPrefix(line, "+++ "):
			if cur == nil {
				return Parsed{}, &errs.MalformedError{What: "patch", Line: lineNo, Hint: "'+++' with no preceding '---'"}
			}
			cur.NewPath = trimDiffPath(line[4:])
			if cur.NewPath == "/dev/null" {
				cur.IsDelete = true
			}
		case strings.HasPrefix(line, "@@ "):
			if cur == nil {
				return Parsed{}, &errs.MalformedError{What: "patch", Line: lineNo, Hint: "hunk header outside any file"}
			}
			flushHunk()
			h, err := parseHunkHeader(line, lineNo)
			if err != nil {
				return Parsed{}, err
			}
			curHunk = &h
		case strings.HasPrefix(line, "diff --git "):
			flushFile()
		case line == "" || strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "new file mode") || strings.HasPrefix(line, "deleted file mode"):
			// structural noise between file headers; ignore
		default:
			if curHunk != nil {
				curHunk.Body = append(curHunk.Body, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Parsed{}, &errs.MalformedError{What: "patch", Hint: err.Error()}
	}
	flushFile()

	if len(parsed.Files) == 0 {
		return Parsed{}, &errs.MalformedError{What: "patch", Hint: "no file headers found"}
	}
	return parsed, nil
}

func trimDiffPath(s string) string {
	s = strings.TrimSpace(s)
	// strip a/ b/ prefixes if present; tolerate raw paths or timestamps.
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	if strings.HasPrefix(s, "a/") || strings.HasPrefix(s, "b/") {
		s = s[2:]
	}
	return s
}

// parseHunkHeader parses "@@ -oldStart,oldLines +newStart,newLines @@ ..."
func parseHunkHeader(line string, lineNo int) (Hunk, error) {
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end < 0 {
		return Hunk{}, &errs.MalformedError{What: "patch", Line: lineNo, Hint: "unterminated hunk header"}
	}
	ranges := strings.Fields(rest[:end])
	if len(ranges) != 2 || !strings.HasPrefix(ranges[0], "-") || !strings.HasPrefix(ranges[1], "+") {
		return Hunk{}, &errs.MalformedError{What: "patch", Line: lineNo, Hint: fmt.Sprintf("malformed hunk range %q", rest[:end])}
	}
	oldStart, oldLines, err := parseRange(ranges[0][1:])
	if err != nil {
		return Hunk{}, &errs.MalformedError{What: "patch", Line: lineNo, Hint: err.Error()}
	}
	newStart, newLines, err := parseRange(ranges[1][1:])
	if err != nil {
		return Hunk{}, &errs.MalformedError{What: "patch", Line: lineNo, Hint: err.Error()}
	}
	return Hunk{
		OldStart: oldStart,
		OldLines: oldLines,
		NewStart: newStart,
		NewLines: newLines,
		Header:   line,
	}, nil
}

func parseRange(s string) (start, count int, err error) {
	parts := strings.SplitN(s, ",", 2)
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad range start %q", parts[0])
	}
	count = 1
	if len(parts) == 2 {
		count, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("bad range count %q", parts[1])
		}
	}
	return start, count, nil
}

// ValidateSyntax runs a format-only check: never touches the filesystem.
func ValidateSyntax(diffText string) ValidationResult {
	var errsOut, warnings []string
	parsed, err := Parse(diffText)
	if err != nil {
		var me *errs.MalformedError
		if e, ok := err.(*errs.MalformedError); ok {
			me = e
		}
		if me != nil {
			errsOut = append(errsOut, me.Error())
		} else {
			errsOut = append(errsOut, err.Error())
		}
		return ValidationResult{Valid: false, Errors: errsOut, Warnings: warnings}
	}
	for _, f := range parsed.Files {
		if len(f.Hunks) == 0 {
			warnings = append(warnings, fmt.Sprintf("file %q has a header but no hunks", f.displayPath()))
		}
	}
	return ValidationResult{Valid: true, Errors: errsOut, Warnings: warnings}
}

func (f FileDiff) displayPath() string {
	if f.NewPath != "" && f.NewPath != "/dev/null" {
		return f.NewPath
	}
	return f.OldPath
}
