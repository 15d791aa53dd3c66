package reviewmodel

import (
	"strings"

	"github.com/verustcode/verustcode/pkg/errors"
)

// ChangedLine is a single line within a hunk, tagged with its role.
type ChangedLine struct {
	Kind LineKind
	Text string
}

// ChangedSection is a contiguous diff hunk with context.
type ChangedSection struct {
	BaseStart   int
	BaseLines   int
	TargetStart int
	TargetLines int
	Lines       []ChangedLine
	Truncated   bool
}

// FileChange is a single changed file. Derived per request,
// never persisted.
type FileChange struct {
	Path     string
	Kind     ChangeKind
	Category string
	Sections []ChangedSection
	RawDiff  string
}

// ValidatePath enforces the path invariant: length <= 2000, no
// null bytes, no ".." segments; a leading slash
// (as the Git-platform returns) is stripped before the absolute-path check.
func ValidatePath(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if strings.HasPrefix(path, "/") {
		return "", errors.ErrValidation("file path must be relative")
	}
	if len(path) > MaxPathLength {
		return "", errors.ErrValidation("file path exceeds maximum length")
	}
	if strings.ContainsRune(path, 0) {
		return "", errors.ErrValidation("file path contains null bytes")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", errors.ErrValidation("file path contains traversal segment")
		}
	}
	if path == "" {
		return "", errors.ErrValidation("file path must not be empty")
	}
	return path, nil
}

// NewFileChange validates and constructs a FileChange. A delete kind is
// exempt from the "at least one changed section" invariant.
func NewFileChange(path string, kind ChangeKind, category string, sections []ChangedSection, rawDiff string) (*FileChange, error) {
	cleanPath, err := ValidatePath(path)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, errors.ErrValidation("file change: invalid change kind")
	}
	if kind != ChangeKindDelete && len(sections) == 0 {
		return nil, errors.ErrValidation("file change: at least one changed section is required unless kind is delete")
	}
	return &FileChange{
		Path:     cleanPath,
		Kind:     kind,
		Category: category,
		Sections: truncateSections(sections),
		RawDiff:  rawDiff,
	}, nil
}

// truncateSections enforces the MaxHunkLines cap per hunk.
func truncateSections(sections []ChangedSection) []ChangedSection {
	out := make([]ChangedSection, 0, len(sections))
	for _, s := range sections {
		if len(s.Lines) > MaxHunkLines {
			s.Lines = s.Lines[:MaxHunkLines]
			s.Truncated = true
		}
		out = append(out, s)
	}
	return out
}

// ChangedLineCount returns the total number of lines across all sections.
func (f *FileChange) ChangedLineCount() int {
	n := 0
	for _, s := range f.Sections {
		n += len(s.Lines)
	}
	return n
}
