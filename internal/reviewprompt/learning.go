package reviewprompt

import (
	"strings"

	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// renderLearningSection validates and renders a LearningContext into
// prompt text, or returns "" if the context doesn't carry enough
// evidence or fails structural validation. Invalid
// contexts are dropped with a warning rather than aborting the build.
func renderLearningSection(lc *reviewmodel.LearningContext) string {
	if lc == nil {
		return ""
	}
	if !lc.HasSufficientData() {
		return ""
	}
	if len(lc.Examples) == 0 && len(lc.RejectionPatterns) == 0 {
		warnDropped("learning_context")
		return ""
	}

	var b strings.Builder
	b.WriteString("### Prior review feedback for this repository\n\n")

	if len(lc.Examples) > 0 {
		b.WriteString("Examples of accepted findings:\n")
		for _, ex := range lc.Examples {
			b.WriteString("- [")
			b.WriteString(string(ex.Severity))
			b.WriteString("] ")
			b.WriteString(SanitizeIssueType(ex.IssueType))
			if ex.FilePath != "" {
				b.WriteString(" (")
				b.WriteString(SanitizePath(ex.FilePath))
				b.WriteString(")")
			}
			if ex.Suggestion != "" {
				b.WriteString(": ")
				b.WriteString(Sanitize(ex.Suggestion, 0))
			}
			b.WriteString("\n")
		}
	}

	if len(lc.RejectionPatterns) > 0 {
		b.WriteString("\nPatterns reviewers have rejected — avoid repeating these:\n")
		for _, rp := range lc.RejectionPatterns {
			b.WriteString("- ")
			b.WriteString(SanitizeIssueType(rp.IssueType))
			if rp.InferredReason != "" {
				b.WriteString(": ")
				b.WriteString(Sanitize(rp.InferredReason, 0))
			}
			b.WriteString("\n")
		}
	}

	out := b.String()
	if len(out) > reviewmodel.MaxLearningSectionLen {
		out = out[:reviewmodel.MaxLearningSectionLen]
	}
	return out
}
