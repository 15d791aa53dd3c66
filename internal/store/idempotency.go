package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// IdempotencyStore defines operations for IdempotencyRecord.
type IdempotencyStore interface {
	// Create inserts a new pending record. The fingerprint column is
	// unique, so a concurrent duplicate delivery fails here with a
	// constraint violation rather than racing on an in-memory map.
	Create(rec *model.IdempotencyRecord) error
	GetByFingerprint(fingerprint string) (*model.IdempotencyRecord, error)

	// CompleteIfPending and FailIfPending enforce the monotone
	// pending -> {completed, failed} transition at the database layer,
	// mirroring reviewmodel.IdempotencyEntity's in-memory guard.
	CompleteIfPending(fingerprint, summary string) (bool, error)
	FailIfPending(fingerprint, errorCode string) (bool, error)

	// DeleteExpired removes records whose ExpiresAt has passed,
	// called by a periodic sweep.
	DeleteExpired(now time.Time) (int64, error)
}

type idempotencyStore struct {
	db *gorm.DB
}

func newIdempotencyStore(db *gorm.DB) IdempotencyStore {
	return &idempotencyStore{db: db}
}

func (s *idempotencyStore) Create(rec *model.IdempotencyRecord) error {
	return s.db.Create(rec).Error
}

func (s *idempotencyStore) GetByFingerprint(fingerprint string) (*model.IdempotencyRecord, error) {
	var rec model.IdempotencyRecord
	if err := s.db.Where("fingerprint = ?", fingerprint).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *idempotencyStore) CompleteIfPending(fingerprint, summary string) (bool, error) {
	result := s.db.Model(&model.IdempotencyRecord{}).
		Where("fingerprint = ? AND status = ?", fingerprint, "pending").
		Updates(map[string]interface{}{"status": "completed", "summary": summary})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *idempotencyStore) FailIfPending(fingerprint, errorCode string) (bool, error) {
	result := s.db.Model(&model.IdempotencyRecord{}).
		Where("fingerprint = ? AND status = ?", fingerprint, "pending").
		Updates(map[string]interface{}{"status": "failed", "error_code": errorCode})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *idempotencyStore) DeleteExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&model.IdempotencyRecord{})
	return result.RowsAffected, result.Error
}
