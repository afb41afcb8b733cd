package domain

import (
	"regexp"
	"strings"
)

// MaxRefinementLength is the rune limit of sanitized refinement instructions.
const MaxRefinementLength = 300

//nolint:gochecknoglobals // compiled once
var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	htmlTagPattern     = regexp.MustCompile(`<[^<>]*>`)
	jsSchemePattern    = regexp.MustCompile(`(?i)javascript\s*:`)
)

// SanitizeInstructions strips script blocks, HTML tags and javascript: schemes from
// user-supplied instructions and truncates them to MaxRefinementLength runes.
// Stripping repeats until nothing changes, so nested input cannot reassemble a
// removed pattern.
func SanitizeInstructions(instructions string) string {
	s := instructions
	for {
		next := stripUnsafe(s)
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > MaxRefinementLength {
		s = string(runes[:MaxRefinementLength])
	}

	return s
}

func stripUnsafe(s string) string {
	s = scriptBlockPattern.ReplaceAllString(s, "")
	s = htmlTagPattern.ReplaceAllString(s, "")
	return jsSchemePattern.ReplaceAllString(s, "")
}
