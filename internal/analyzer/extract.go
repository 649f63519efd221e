package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// tracebackFrameRe matches a Python-style traceback frame line:
//
//	File "src/app.py", line 42, in handler
var tracebackFrameRe = regexp.MustCompile(`File "([^"]+)", line (\d+)`)

// goPanicFrameRe matches a Go panic frame line:
//
//	/repo/internal/app/handler.go:42 +0x1a
var goPanicFrameRe = regexp.MustCompile(`([\w./-]+\.go):(\d+)(?:\s|$)`)

// extractLocation returns the file:line of the first traceback frame found
// in text, trying Python-style frames before Go-style ones.
func extractLocation(text string) *Location {
	if m := tracebackFrameRe.FindStringSubmatch(text); m != nil {
		if line, err := strconv.Atoi(m[2]); err == nil {
			return &Location{File: m[1], Line: line}
		}
	}
	if m := goPanicFrameRe.FindStringSubmatch(text); m != nil {
		if line, err := strconv.Atoi(m[2]); err == nil {
			return &Location{File: m[1], Line: line}
		}
	}
	return nil
}

// canonicalMessage collapses a failure's text into a stable key for pattern
// merging: the first non-blank line, with hex memory addresses, quoted
// strings (such as quoted file paths), numbers (such as line numbers) and
// runs of whitespace normalized. Unquoted paths are kept as they are.
var (
	hexAddrRe  = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	numberRe   = regexp.MustCompile(`\b\d+\b`)
	quotedRe   = regexp.MustCompile(`"[^"]*"`)
	whitespace = regexp.MustCompile(`\s+`)
)

func canonicalMessage(text string) string {
	line := firstNonBlankLine(text)
	line = hexAddrRe.ReplaceAllString(line, "0xN")
	line = quotedRe.ReplaceAllString(line, `"…"`)
	line = numberRe.ReplaceAllString(line, "N")
	line = whitespace.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
