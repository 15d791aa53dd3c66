package feedback

import (
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// entityToRecord converts a validated FeedbackEntity into its gorm row
// shape, keeping reviewmodel free of any persistence-layer import
// (mirrors internal/reviewcache's entityToRecord).
func entityToRecord(e *reviewmodel.FeedbackEntity) *model.FeedbackRecord {
	return &model.FeedbackRecord{
		Repository: e.Repository,
		FeedbackID: e.FeedbackID,
		PRID:       e.PRID,
		ThreadID:   e.ThreadID,
		CommentID:  e.CommentID,
		IssueType:  e.IssueType,
		Severity:   string(e.Severity),
		Kind:       string(e.Kind),
		Author:     e.Author,
		Suggestion: e.Suggestion,
		FilePath:   e.FilePath,
		CreatedAt:  e.Timestamp,
	}
}
