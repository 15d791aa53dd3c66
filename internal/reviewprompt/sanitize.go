// Package reviewprompt assembles the prompts sent to the AI client from
// changed files, file-type guidance, and learning context, sanitizing
// every user-controlled string before interpolation.
package reviewprompt

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/logger"
)

var (
	collapseNewlines = regexp.MustCompile(`\n{3,}`)

	// injectionMarkers extends internal/llm's injection-pattern list;
	// stripping more is strictly safer here since this package removes
	// markers rather than merely detecting them.
	injectionMarkers = []string{
		"ignore previous instructions",
		"ignore all previous instructions",
		"forget previous instructions",
		"disregard previous instructions",
		"system override",
		"</system>",
		"<system_override",
	}

	leadingRolePrefix = regexp.MustCompile(`(?i)^\s*(system|assistant)\s*:\s*`)
)

// Sanitize applies the full sanitization pipeline to a single
// user-controlled string before it is interpolated into a prompt:
// strip null bytes and other non-whitespace control characters, collapse
// 3+ newlines to 2, strip leading role prefixes and injection markers,
// and escape backticks. maxLen truncates the result; 0 means no cap.
func Sanitize(s string, maxLen int) string {
	s = stripControlChars(s)
	s = collapseNewlines.ReplaceAllString(s, "\n\n")
	s = leadingRolePrefix.ReplaceAllString(s, "")
	s = stripInjectionMarkers(s)
	s = escapeBackticks(s)
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// stripControlChars drops ASCII control bytes other than tab, CR, LF —
// including the null byte.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\r' || r == '\n' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripInjectionMarkers(s string) string {
	lower := strings.ToLower(s)
	for _, marker := range injectionMarkers {
		for {
			idx := strings.Index(strings.ToLower(lower), marker)
			if idx < 0 {
				break
			}
			s = s[:idx] + s[idx+len(marker):]
			lower = strings.ToLower(s)
		}
	}
	return s
}

func escapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

// SanitizePath sanitizes a file path for display within a prompt,
// truncating at reviewmodel.PromptMaxPathLength (distinct from the
// larger MaxPathLength used for FileChange validation).
func SanitizePath(p string) string {
	return Sanitize(p, reviewmodel.PromptMaxPathLength)
}

// SanitizeTitle, SanitizeMessage, SanitizeIssueType apply the prompt
// builder's per-field caps.
func SanitizeTitle(s string) string { return Sanitize(s, reviewmodel.MaxTitleLength) }

func SanitizeMessage(s string) string { return Sanitize(s, reviewmodel.MaxMessageLength) }

func SanitizeIssueType(s string) string { return Sanitize(s, reviewmodel.MaxIssueTypeLength) }

func warnDropped(field string) {
	logger.Warn("reviewprompt: dropped invalid field", zap.String("field", field))
}
