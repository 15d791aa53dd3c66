package reviewer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/logger"
)

// postComments writes through two channels: a single summary
// comment, and best-effort inline comments for eligible issues. One
// inline failure is logged and does not abort the rest. errorPaths
// names files skipped during fetch/parse or whose AI call failed
//; already deduped and sorted by the caller.
func (o *Orchestrator) postComments(ctx context.Context, req Request, result *reviewmodel.ReviewResult, errorPaths []string) error {
	summary := buildSummaryComment(result, errorPaths)
	if err := o.git.PostComment(ctx, req.Owner, req.Repo, &provider.CommentOptions{PRNumber: req.Event.PRID}, summary); err != nil {
		logger.Warn("post comments: failed to post summary comment", zap.Error(err))
	}

	var firstErr error
	for _, iss := range result.Issues {
		if !iss.InlineEligible() {
			continue
		}
		body := formatInlineComment(iss)
		if err := o.git.CreateInlineComment(ctx, req.Owner, req.Repo, req.Event.PRID, iss.FilePath, iss.LineNumber, body); err != nil {
			logger.Warn("post comments: failed to post inline comment",
				zap.String("path", iss.FilePath), zap.Int("line", iss.LineNumber), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// buildSummaryComment renders the markdown severity table, top issues,
// and any files with errors, truncated to MaxCommentLength.
func buildSummaryComment(result *reviewmodel.ReviewResult, errorPaths []string) string {
	var b strings.Builder
	b.WriteString("## Automated review summary\n\n")
	fmt.Fprintf(&b, "**Recommendation:** %s\n\n", result.Recommendation)
	b.WriteString("| Severity | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| critical | %d |\n", result.Counts.Critical)
	fmt.Fprintf(&b, "| high | %d |\n", result.Counts.High)
	fmt.Fprintf(&b, "| medium | %d |\n", result.Counts.Medium)
	fmt.Fprintf(&b, "| low | %d |\n", result.Counts.Low)
	fmt.Fprintf(&b, "| info | %d |\n", result.Counts.Info)

	if len(result.Issues) == 0 {
		b.WriteString("\nNo issues found.\n")
	} else {
		b.WriteString("\n### Top issues\n\n")
		for i, iss := range result.Issues {
			if i >= 20 {
				fmt.Fprintf(&b, "\n...and %d more (see inline comments).\n", len(result.Issues)-20)
				break
			}
			fmt.Fprintf(&b, "- **%s** `%s:%d` — %s\n", iss.Severity, iss.FilePath, iss.LineNumber, iss.Message)
		}
	}

	if len(errorPaths) > 0 {
		b.WriteString("\n### Files with errors\n\n")
		b.WriteString("The following files could not be reviewed and are excluded from the counts above:\n\n")
		for _, path := range errorPaths {
			fmt.Fprintf(&b, "- `%s`\n", path)
		}
	}

	out := b.String()
	if len(out) > reviewmodel.MaxCommentLength {
		out = out[:reviewmodel.MaxCommentLength]
	}
	return out
}

func formatInlineComment(iss reviewmodel.ReviewIssue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**[%s] %s**\n\n%s\n", iss.Severity, iss.IssueType, iss.Message)
	if iss.Fix != nil && iss.Fix.After != "" {
		b.WriteString("\n```suggestion\n")
		b.WriteString(iss.Fix.After)
		b.WriteString("\n```\n")
	}
	return b.String()
}
