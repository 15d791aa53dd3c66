package aiclient

import (
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/llm"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// rawFix mirrors the wire shape of ReviewIssue.Fix.
type rawFix struct {
	Description string `json:"description"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Explanation string `json:"explanation"`
}

// rawIssue mirrors the wire JSON an AI response produces for one issue.
type rawIssue struct {
	Severity   string  `json:"severity"`
	IssueType  string  `json:"issue_type"`
	FilePath   string  `json:"file_path"`
	LineNumber int     `json:"line_number"`
	Message    string  `json:"message"`
	Fix        *rawFix `json:"fix,omitempty"`
	AgentKind  string  `json:"agent_kind,omitempty"`
}

// rawReviewResult mirrors the wire JSON envelope the model returns.
type rawReviewResult struct {
	Issues []rawIssue `json:"issues"`
}

// parseReviewResponse extracts the JSON object from raw LLM output
// (tolerating surrounding prose and code fences), validates each issue
// against reviewmodel's invariants, and returns a ReviewResult built from
// whatever parsed cleanly. Per-issue validation failures are logged
// (capped at reviewmodel.MaxLoggedErrors) and the offending issue is
// skipped rather than failing the whole call: an integrity failure
// degrades to a smaller result, it never aborts peers.
func parseReviewResponse(content string, tokensUsed int, cost float64) (*reviewmodel.ReviewResult, error) {
	var raw rawReviewResult
	if err := llm.ParseResponseJSON(content, &raw); err != nil {
		return nil, errors.ErrIntegrity("ai response is not valid JSON", err)
	}

	issues := make([]reviewmodel.ReviewIssue, 0, len(raw.Issues))
	loggedErrors := 0
	skipped := 0
	for _, ri := range raw.Issues {
		issue, err := toReviewIssue(ri)
		if err != nil {
			skipped++
			if loggedErrors < reviewmodel.MaxLoggedErrors {
				logger.Warn("ai response: skipping invalid issue",
					zap.String("issue_type", ri.IssueType), zap.Error(err))
				loggedErrors++
			}
			continue
		}
		issues = append(issues, *issue)
	}
	if skipped > 0 {
		logger.Warn("ai response: issues skipped for failing validation", zap.Int("skipped", skipped))
	}

	return reviewmodel.NewReviewResult(issues, tokensUsed, cost), nil
}

func toReviewIssue(ri rawIssue) (*reviewmodel.ReviewIssue, error) {
	var fix *reviewmodel.SuggestedFix
	if ri.Fix != nil {
		fix = &reviewmodel.SuggestedFix{
			Description: ri.Fix.Description,
			Before:      ri.Fix.Before,
			After:       ri.Fix.After,
			Explanation: ri.Fix.Explanation,
		}
	}
	return reviewmodel.NewReviewIssue(
		reviewmodel.Severity(ri.Severity),
		ri.IssueType,
		ri.FilePath,
		ri.LineNumber,
		ri.Message,
		fix,
		ri.AgentKind,
	)
}
