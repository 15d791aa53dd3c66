package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// ResponseCacheStore defines operations for CacheRecord, the persisted
// half of the two-tier Response Cache.
type ResponseCacheStore interface {
	GetByContentHash(hash string) (*model.CacheRecord, error)
	Upsert(rec *model.CacheRecord) error
	RecordHit(hash string, at time.Time) error
	DeleteExpired(now time.Time) (int64, error)
}

type responseCacheStore struct {
	db *gorm.DB
}

func newResponseCacheStore(db *gorm.DB) ResponseCacheStore {
	return &responseCacheStore{db: db}
}

func (s *responseCacheStore) GetByContentHash(hash string) (*model.CacheRecord, error) {
	var rec model.CacheRecord
	if err := s.db.Where("content_hash = ?", hash).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *responseCacheStore) Upsert(rec *model.CacheRecord) error {
	var existing model.CacheRecord
	err := s.db.Where("content_hash = ?", rec.ContentHash).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(rec).Error
	}
	if err != nil {
		return err
	}
	rec.ID = existing.ID
	return s.db.Save(rec).Error
}

func (s *responseCacheStore) RecordHit(hash string, at time.Time) error {
	return s.db.Model(&model.CacheRecord{}).
		Where("content_hash = ?", hash).
		Updates(map[string]interface{}{
			"hit_count":   gorm.Expr("hit_count + 1"),
			"last_hit_at": at,
		}).Error
}

func (s *responseCacheStore) DeleteExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&model.CacheRecord{})
	return result.RowsAffected, result.Error
}
