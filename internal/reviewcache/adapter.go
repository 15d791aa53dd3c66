package reviewcache

import (
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// entityToRecord converts the validated value object into the gorm row
// shape, keeping reviewmodel free of any persistence-layer import.
func entityToRecord(e *reviewmodel.CacheEntity) *model.CacheRecord {
	return &model.CacheRecord{
		Repository:  e.Repository,
		ContentHash: e.ContentHash,
		ReviewJSON:  e.ReviewJSON,
		FilePath:    e.FilePath,
		Tokens:      e.Tokens,
		Cost:        e.Cost,
		HitCount:    e.HitCount,
		CreatedAt:   e.CreatedAt,
		ExpiresAt:   e.ExpiresAt,
	}
}
