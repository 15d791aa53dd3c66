package diffparse

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/logger"
)

var (
	diffGitHeaderPattern = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	oldFileHeaderPattern = regexp.MustCompile(`^--- (?:a/)?(.+)$`)
	newFileHeaderPattern = regexp.MustCompile(`^\+\+\+ (?:b/)?(.+)$`)
	hunkHeaderPattern    = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

type lenientFileBuilder struct {
	path     string
	kind     reviewmodel.ChangeKind
	sections []reviewmodel.ChangedSection
	current  *reviewmodel.ChangedSection
	rawLines []string
}

// parseLenient re-splits hunks on "@@ ... @@" markers and classifies each
// subsequent line by its first byte. It never throws for
// a malformed file: errors are logged and the file is skipped.
func parseLenient(text string) []*reviewmodel.FileChange {
	lines := strings.Split(text, "\n")

	var changes []*reviewmodel.FileChange
	var builder *lenientFileBuilder
	globalLineCount := 0

	flush := func() {
		if builder == nil {
			return
		}
		if builder.current != nil {
			builder.sections = append(builder.sections, *builder.current)
			builder.current = nil
		}
		fc, err := reviewmodel.NewFileChange(builder.path, builder.kind, "", builder.sections, strings.Join(builder.rawLines, "\n"))
		if err != nil {
			logger.Warn("diffparse: skipping malformed file in lenient parse",
				zap.String("path", builder.path), zap.Error(err))
		} else {
			changes = append(changes, fc)
		}
		builder = nil
	}

	for _, line := range lines {
		if globalLineCount >= reviewmodel.MaxDiffLines {
			logger.Warn("diffparse: max diff lines exceeded, truncating remaining input")
			break
		}

		if m := diffGitHeaderPattern.FindStringSubmatch(line); m != nil {
			flush()
			builder = &lenientFileBuilder{path: m[2], kind: reviewmodel.ChangeKindEdit}
			continue
		}
		if m := oldFileHeaderPattern.FindStringSubmatch(line); m != nil {
			if builder == nil {
				builder = &lenientFileBuilder{kind: reviewmodel.ChangeKindEdit}
			}
			if m[1] == "/dev/null" {
				builder.kind = reviewmodel.ChangeKindAdd
			}
			builder.rawLines = append(builder.rawLines, line)
			continue
		}
		if m := newFileHeaderPattern.FindStringSubmatch(line); m != nil {
			if builder == nil {
				builder = &lenientFileBuilder{kind: reviewmodel.ChangeKindEdit}
			}
			if m[1] == "/dev/null" {
				builder.kind = reviewmodel.ChangeKindDelete
			} else if builder.path == "" {
				builder.path = m[1]
			}
			builder.rawLines = append(builder.rawLines, line)
			continue
		}
		if m := hunkHeaderPattern.FindStringSubmatch(line); m != nil {
			if builder == nil {
				// A hunk with no preceding file header is not recoverable.
				continue
			}
			if builder.current != nil {
				builder.sections = append(builder.sections, *builder.current)
			}
			builder.current = &reviewmodel.ChangedSection{
				BaseStart:   atoiDefault(m[1], 0),
				BaseLines:   atoiDefault(m[2], 1),
				TargetStart: atoiDefault(m[3], 0),
				TargetLines: atoiDefault(m[4], 1),
			}
			builder.rawLines = append(builder.rawLines, line)
			continue
		}

		if builder == nil || builder.current == nil {
			continue
		}
		if line == "" {
			continue
		}
		globalLineCount++

		var kind reviewmodel.LineKind
		switch line[0] {
		case '+':
			kind = reviewmodel.LineKindAdd
		case '-':
			kind = reviewmodel.LineKindRemove
		case ' ':
			kind = reviewmodel.LineKindContext
		case '\\':
			continue
		default:
			// Unrecognized prefix inside a hunk body: treat as context
			// rather than abandoning the whole file, per the lenient
			// parser's tolerance mandate.
			kind = reviewmodel.LineKindContext
		}

		if len(builder.current.Lines) >= reviewmodel.MaxHunkLines {
			builder.current.Truncated = true
			logger.Warn("diffparse: hunk exceeds max lines, truncating",
				zap.String("path", builder.path))
			continue
		}
		text := line
		if len(text) > 0 {
			text = text[1:]
		}
		builder.current.Lines = append(builder.current.Lines, reviewmodel.ChangedLine{Kind: kind, Text: text})
		builder.rawLines = append(builder.rawLines, line)
	}
	flush()

	return changes
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
