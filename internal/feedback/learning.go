package feedback

import (
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/internal/reviewprompt"
	"github.com/verustcode/verustcode/pkg/logger"
)

// learningSampleLimit bounds how many recent feedback rows per
// repository feed the rebuild, avoiding an unbounded scan as history
// grows.
const learningSampleLimit = 2000

// rebuildLearningContext recomputes a repository's few-shot material:
// for each issue type with an acceptance rate >= MinExampleQualityRate,
// keep its most recent accepted suggestions as few-shot examples; for
// each issue type with >= MinRejectionsForPattern rejections, record a
// RejectionPattern.
func (h *Harvester) rebuildLearningContext(repository string) {
	rows, err := h.feedbackStore.ListByRepository(repository, learningSampleLimit)
	if err != nil {
		logger.Warn("feedback harvester: failed to list feedback for learning context rebuild",
			zap.String("repository", repository), zap.Error(err))
		return
	}
	if len(rows) == 0 {
		return
	}

	type tally struct {
		accepted int
		rejected int
		total    int
		examples []model.FeedbackRecord // accepted rows, most recent first (query already orders DESC)
	}
	byType := make(map[string]*tally)

	for _, r := range rows {
		t, ok := byType[r.IssueType]
		if !ok {
			t = &tally{}
			byType[r.IssueType] = t
		}
		t.total++
		switch r.Kind {
		case string(reviewmodel.FeedbackAccepted):
			t.accepted++
			t.examples = append(t.examples, r)
		case string(reviewmodel.FeedbackRejected):
			t.rejected++
		}
	}

	examplesByType := make(map[string][]reviewmodel.FeedbackExample)
	var patterns []reviewmodel.RejectionPattern

	for issueType, t := range byType {
		if t.total > 0 {
			rate := float64(t.accepted) / float64(t.total)
			if rate >= reviewmodel.MinExampleQualityRate {
				n := t.examples
				if len(n) > reviewmodel.MaxExamplesPerIssueType {
					n = n[:reviewmodel.MaxExamplesPerIssueType]
				}
				for _, rec := range n {
					examplesByType[issueType] = append(examplesByType[issueType], reviewmodel.NewFeedbackExample(
						issueType,
						"",
						reviewprompt.SanitizeMessage(rec.Suggestion),
						reviewprompt.SanitizePath(rec.FilePath),
						reviewmodel.Severity(rec.Severity),
						t.accepted,
					))
				}
			}
		}
		if t.rejected >= reviewmodel.MinRejectionsForPattern {
			patterns = append(patterns, reviewmodel.RejectionPattern{
				IssueType:      issueType,
				InferredReason: "repeatedly rejected by reviewers",
				RejectionCount: t.rejected,
			})
		}
	}

	lc := reviewmodel.NewLearningContext(repository, examplesByType, patterns, len(rows))

	h.mu.Lock()
	h.contexts[repository] = lc
	h.mu.Unlock()
}
