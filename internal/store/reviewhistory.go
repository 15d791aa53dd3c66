package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// ReviewHistoryStore defines operations for ReviewHistoryRecord, one row per completed PR review.
type ReviewHistoryStore interface {
	Create(rec *model.ReviewHistoryRecord) error
	ListSince(since time.Time) ([]model.ReviewHistoryRecord, error)
	ListByRepositorySince(repository string, since time.Time) ([]model.ReviewHistoryRecord, error)
}

type reviewHistoryStore struct {
	db *gorm.DB
}

func newReviewHistoryStore(db *gorm.DB) ReviewHistoryStore {
	return &reviewHistoryStore{db: db}
}

func (s *reviewHistoryStore) Create(rec *model.ReviewHistoryRecord) error {
	return s.db.Create(rec).Error
}

func (s *reviewHistoryStore) ListSince(since time.Time) ([]model.ReviewHistoryRecord, error) {
	var recs []model.ReviewHistoryRecord
	err := s.db.Where("created_at >= ?", since).Order("created_at DESC").Find(&recs).Error
	return recs, err
}

func (s *reviewHistoryStore) ListByRepositorySince(repository string, since time.Time) ([]model.ReviewHistoryRecord, error) {
	var recs []model.ReviewHistoryRecord
	err := s.db.Where("repository = ? AND created_at >= ?", repository, since).
		Order("created_at DESC").Find(&recs).Error
	return recs, err
}
