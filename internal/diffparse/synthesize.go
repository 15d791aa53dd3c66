package diffparse

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// SynthesizeFromContent builds a FileChange when the Git-platform client
// could only return file content, not a diff block. Adds
// emit every line as "+", deletes emit every line as "-", and edits run a
// unified-diff algorithm over before/after text.
func SynthesizeFromContent(path string, kind reviewmodel.ChangeKind, before, after string) (*reviewmodel.FileChange, error) {
	switch kind {
	case reviewmodel.ChangeKindAdd:
		return reviewmodel.NewFileChange(path, kind, "", []reviewmodel.ChangedSection{allLines(after, reviewmodel.LineKindAdd)}, "")
	case reviewmodel.ChangeKindDelete:
		return reviewmodel.NewFileChange(path, kind, "", []reviewmodel.ChangedSection{allLines(before, reviewmodel.LineKindRemove)}, "")
	default:
		return reviewmodel.NewFileChange(path, reviewmodel.ChangeKindEdit, "", diffLines(before, after), "")
	}
}

func allLines(content string, kind reviewmodel.LineKind) reviewmodel.ChangedSection {
	lines := strings.Split(content, "\n")
	out := make([]reviewmodel.ChangedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, reviewmodel.ChangedLine{Kind: kind, Text: l})
	}
	return reviewmodel.ChangedSection{BaseStart: 1, TargetStart: 1, Lines: out}
}

// diffLines runs Myers diff via diffmatchpatch at line granularity and
// converts the result into a single ChangedSection of context/add/remove
// lines, approximating a unified-diff hunk for edited files with no
// available diff block.
func diffLines(before, after string) []reviewmodel.ChangedSection {
	dmp := diffmatchpatch.New()
	beforeLines, afterLines, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeLines, afterLines, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []reviewmodel.ChangedLine
	for _, d := range diffs {
		for _, l := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				lines = append(lines, reviewmodel.ChangedLine{Kind: reviewmodel.LineKindAdd, Text: l})
			case diffmatchpatch.DiffDelete:
				lines = append(lines, reviewmodel.ChangedLine{Kind: reviewmodel.LineKindRemove, Text: l})
			default:
				lines = append(lines, reviewmodel.ChangedLine{Kind: reviewmodel.LineKindContext, Text: l})
			}
		}
	}

	return []reviewmodel.ChangedSection{{BaseStart: 1, TargetStart: 1, Lines: lines}}
}
