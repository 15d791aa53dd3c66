package reviewmodel

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/verustcode/verustcode/pkg/errors"
)

// SuggestedFix is an optional proposed remediation attached to an issue.
type SuggestedFix struct {
	Description string
	Before      string
	After       string
	Explanation string
}

// ReviewIssue is a single finding. All text is length-bounded
// and null-byte-free; callers must route user/LLM-controlled text through
// Sanitize (internal/reviewprompt) before constructing one of these when
// the text originates outside the process.
type ReviewIssue struct {
	Severity   Severity
	IssueType  string
	FilePath   string
	LineNumber int
	Message    string
	Fix        *SuggestedFix
	AgentKind  string
}

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

// NewReviewIssue validates and constructs a ReviewIssue.
func NewReviewIssue(severity Severity, issueType, filePath string, lineNumber int, message string, fix *SuggestedFix, agentKind string) (*ReviewIssue, error) {
	if !severity.Valid() {
		return nil, errors.ErrValidation("review issue: invalid severity")
	}
	if lineNumber < 0 {
		return nil, errors.ErrValidation("review issue: line number must be >= 0 (0 means file-level)")
	}
	issueType = truncate(strings.TrimSpace(issueType), MaxIssueTypeLength)
	if issueType == "" {
		return nil, errors.ErrValidation("review issue: issue type must be non-empty")
	}
	cleanPath, err := ValidatePath(filePath)
	if err != nil {
		return nil, err
	}
	message = collapseNewlines.ReplaceAllString(message, "\n\n")
	message = truncate(message, MaxMessageLength)
	if err := validateNoControlChars("review issue message", message); err != nil {
		return nil, err
	}

	return &ReviewIssue{
		Severity:   severity,
		IssueType:  issueType,
		FilePath:   cleanPath,
		LineNumber: lineNumber,
		Message:    message,
		Fix:        fix,
		AgentKind:  agentKind,
	}, nil
}

// DedupeKey returns the (path, line, issue_type) tuple used for
// deduplication.
func (i *ReviewIssue) DedupeKey() string {
	return i.FilePath + "\x00" + strconv.Itoa(i.LineNumber) + "\x00" + i.IssueType
}

// InlineEligible reports whether this issue qualifies for an inline PR
// comment rather than only appearing in the summary: severity in
// {critical, high} AND line_number > 0.
func (i *ReviewIssue) InlineEligible() bool {
	return (i.Severity == SeverityCritical || i.Severity == SeverityHigh) && i.LineNumber > 0
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

