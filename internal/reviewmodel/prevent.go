package reviewmodel

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/verustcode/verustcode/pkg/errors"
)

// PREventType is a closed sum type for the two webhook occurrences this
// pipeline reacts to.
type PREventType string

const (
	PREventCreated PREventType = "created"
	PREventUpdated PREventType = "updated"
)

var branchRefPattern = regexp.MustCompile(`^refs/(heads|tags)/[\w\-./]+$`)

// PREvent is a single webhook occurrence, immutable once constructed.
type PREvent struct {
	Type           PREventType
	PRID           int
	ProjectID      string
	ProjectName    string
	RepositoryID   string
	RepositoryName string
	Title          string
	AuthorEmail    string
	SourceRef      string
	TargetRef      string
	SourceCommitID string
	ChangedFiles   []string
}

// NewPREvent validates and constructs a PREvent. All invariants from
// the event are enforced here rather than scattered across callers.
func NewPREvent(eventType PREventType, prID int, projectID, projectName, repoID, repoName, title, authorEmail, sourceRef, targetRef, sourceCommitID string, changedFiles []string) (*PREvent, error) {
	if eventType != PREventCreated && eventType != PREventUpdated {
		return nil, errors.ErrValidation("pr event: invalid event type")
	}
	if prID <= 0 {
		return nil, errors.ErrValidation("pr event: pr id must be positive")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.ErrValidation("pr event: title must be non-empty after trim")
	}
	if err := validateBranchRef(sourceRef); err != nil {
		return nil, err
	}
	if err := validateBranchRef(targetRef); err != nil {
		return nil, err
	}
	if err := validateNoControlChars("pr event", title); err != nil {
		return nil, err
	}
	if err := validateNoControlChars("pr event author", authorEmail); err != nil {
		return nil, err
	}

	return &PREvent{
		Type:           eventType,
		PRID:           prID,
		ProjectID:      projectID,
		ProjectName:    projectName,
		RepositoryID:   repoID,
		RepositoryName: repoName,
		Title:          title,
		AuthorEmail:    authorEmail,
		SourceRef:      sourceRef,
		TargetRef:      targetRef,
		SourceCommitID: sourceCommitID,
		ChangedFiles:   changedFiles,
	}, nil
}

// validateBranchRef enforces the branch ref invariant:
// must match refs/(heads|tags)/[\w\-./]+ with no "..", "//", trailing "/",
// or control characters.
func validateBranchRef(ref string) error {
	if ref == "" {
		return errors.ErrValidation("branch ref: must not be empty")
	}
	if strings.Contains(ref, "..") {
		return errors.ErrValidation("branch ref: must not contain '..'")
	}
	if strings.Contains(ref, "//") {
		return errors.ErrValidation("branch ref: must not contain '//'")
	}
	if strings.HasSuffix(ref, "/") {
		return errors.ErrValidation("branch ref: must not have a trailing slash")
	}
	if err := validateNoControlChars("branch ref", ref); err != nil {
		return err
	}
	if !branchRefPattern.MatchString(ref) {
		return errors.ErrValidation("branch ref: must match refs/(heads|tags)/[\\w\\-./]+")
	}
	return nil
}

func validateNoControlChars(field, s string) error {
	for _, r := range s {
		if r == 0 {
			return errors.ErrValidation(field + ": must not contain null bytes")
		}
		if r < 0x20 && r != '\t' && r != '\r' && r != '\n' {
			return errors.ErrValidation(field + ": must not contain control characters")
		}
	}
	return nil
}

// FingerprintInput returns the idempotency key input for this event: the
// (repository, pr id, source commit id) triple. Event type is deliberately
// excluded, so a "created" and an immediately-following "updated"
// webhook for the same commit coalesce.
func (e *PREvent) FingerprintInput() string {
	return e.RepositoryName + "\x00" + strconv.Itoa(e.PRID) + "\x00" + e.SourceCommitID
}
