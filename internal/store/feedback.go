package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// FeedbackStore defines operations for FeedbackRecord,
// written by the Feedback Harvester and read back to build LearningContext.
type FeedbackStore interface {
	Create(rec *model.FeedbackRecord) error
	ListByRepository(repository string, limit int) ([]model.FeedbackRecord, error)
	ListByRepositoryAndIssueType(repository, issueType string, limit int) ([]model.FeedbackRecord, error)
	CountByKind(repository, issueType, kind string) (int64, error)
}

type feedbackStore struct {
	db *gorm.DB
}

func newFeedbackStore(db *gorm.DB) FeedbackStore {
	return &feedbackStore{db: db}
}

func (s *feedbackStore) Create(rec *model.FeedbackRecord) error {
	return s.db.Create(rec).Error
}

func (s *feedbackStore) ListByRepository(repository string, limit int) ([]model.FeedbackRecord, error) {
	var recs []model.FeedbackRecord
	q := s.db.Where("repository = ?", repository).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recs).Error
	return recs, err
}

func (s *feedbackStore) ListByRepositoryAndIssueType(repository, issueType string, limit int) ([]model.FeedbackRecord, error) {
	var recs []model.FeedbackRecord
	q := s.db.Where("repository = ? AND issue_type = ?", repository, issueType).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recs).Error
	return recs, err
}

func (s *feedbackStore) CountByKind(repository, issueType, kind string) (int64, error) {
	var count int64
	err := s.db.Model(&model.FeedbackRecord{}).
		Where("repository = ? AND issue_type = ? AND kind = ?", repository, issueType, kind).
		Count(&count).Error
	return count, err
}
