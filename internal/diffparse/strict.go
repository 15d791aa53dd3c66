package diffparse

import (
	"fmt"
	"strings"

	diff "github.com/sourcegraph/go-diff/diff"

	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// parseStrict attempts a structural unified-diff parse via go-diff. It
// rejects the whole input if go-diff cannot parse it (e.g. a hunk's
// claimed line counts don't match its body), the structural-rejection
// trigger for the lenient fallback.
func parseStrict(unifiedDiffText string) ([]*reviewmodel.FileChange, error) {
	if strings.TrimSpace(unifiedDiffText) == "" {
		return nil, fmt.Errorf("diffparse: empty input")
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(unifiedDiffText))
	if err != nil {
		return nil, fmt.Errorf("diffparse: strict parse rejected input: %w", err)
	}

	var changes []*reviewmodel.FileChange
	for _, fd := range fileDiffs {
		fc, err := fileChangeFromFileDiff(fd)
		if err != nil {
			// Per-file errors are logged and the file is skipped, never
			// aborting the whole batch.
			continue
		}
		changes = append(changes, fc)
	}
	if len(changes) == 0 && len(fileDiffs) > 0 {
		return nil, fmt.Errorf("diffparse: all files failed validation after strict parse")
	}
	return changes, nil
}

func fileChangeFromFileDiff(fd *diff.FileDiff) (*reviewmodel.FileChange, error) {
	path := pickPath(fd)
	kind := classifyKind(fd)

	var sections []reviewmodel.ChangedSection
	totalLines := 0
	for _, h := range fd.Hunks {
		lines, err := splitHunkLines(h.Body)
		if err != nil {
			continue
		}
		totalLines += len(lines)
		if totalLines > reviewmodel.MaxDiffLines {
			break
		}
		sections = append(sections, reviewmodel.ChangedSection{
			BaseStart:   int(h.OrigStartLine),
			BaseLines:   int(h.OrigLines),
			TargetStart: int(h.NewStartLine),
			TargetLines: int(h.NewLines),
			Lines:       lines,
		})
	}

	raw, err := diff.PrintFileDiff(fd)
	if err != nil {
		return nil, fmt.Errorf("diffparse: failed to render file diff: %w", err)
	}

	return reviewmodel.NewFileChange(path, kind, "", sections, string(raw))
}

func pickPath(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	return strings.TrimPrefix(name, "b/")
}

func classifyKind(fd *diff.FileDiff) reviewmodel.ChangeKind {
	switch {
	case fd.OrigName == "/dev/null":
		return reviewmodel.ChangeKindAdd
	case fd.NewName == "/dev/null":
		return reviewmodel.ChangeKindDelete
	case fd.OrigName != "" && fd.NewName != "" && fd.OrigName != fd.NewName:
		return reviewmodel.ChangeKindRename
	default:
		return reviewmodel.ChangeKindEdit
	}
}

// splitHunkLines classifies each line in a hunk body by its first byte,
// applied here even in the strict path so both parsers produce
// identical ChangedLine shapes.
func splitHunkLines(body []byte) ([]reviewmodel.ChangedLine, error) {
	var lines []reviewmodel.ChangedLine
	for _, raw := range strings.Split(string(body), "\n") {
		if raw == "" {
			continue
		}
		switch raw[0] {
		case '+':
			lines = append(lines, reviewmodel.ChangedLine{Kind: reviewmodel.LineKindAdd, Text: raw[1:]})
		case '-':
			lines = append(lines, reviewmodel.ChangedLine{Kind: reviewmodel.LineKindRemove, Text: raw[1:]})
		case ' ':
			lines = append(lines, reviewmodel.ChangedLine{Kind: reviewmodel.LineKindContext, Text: raw[1:]})
		case '\\':
			// "\ No newline at end of file" marker — not a content line.
			continue
		default:
			return nil, fmt.Errorf("diffparse: unrecognized hunk line prefix")
		}
	}
	return lines, nil
}
