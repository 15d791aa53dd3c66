// Package diffparse turns unified-diff text into a sequence of per-file
// FileChange/ChangedSection values. It attempts a strict structural parse
// first and falls back to a tolerant line-oriented parser when the strict
// parser rejects the input — mirroring how a production reviewer tolerates
// the CRLF-mixed, partially-synthesized diffs real Git-platform APIs return.
package diffparse

import (
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Parse converts a blob of unified-diff text into FileChanges. It never
// returns an error for a single malformed file: per-file failures are
// logged and the file is skipped.
func Parse(unifiedDiffText string) []*reviewmodel.FileChange {
	normalized := normalizeCRLF(unifiedDiffText)

	changes, err := parseStrict(normalized)
	if err != nil {
		logger.Warn("unidiff_parse_failed_using_fallback",
			zap.Error(err),
		)
		changes = parseLenient(normalized)
	}
	return changes
}

// ParseFile parses a single file's diff text, trying strict then lenient,
// and returns nil (logging) if both fail. Used when the orchestrator
// fetches a diff scoped to one path.
func ParseFile(path, unifiedDiffText string) *reviewmodel.FileChange {
	changes := Parse(unifiedDiffText)
	for _, c := range changes {
		if c.Path == path {
			return c
		}
	}
	if len(changes) == 1 {
		return changes[0]
	}
	return nil
}

func normalizeCRLF(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
