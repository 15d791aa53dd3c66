// Package store provides data access layer interfaces and implementations.
// This package abstracts database operations to improve maintainability
// and decouple business logic from specific database implementations.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	Idempotency() IdempotencyStore
	ResponseCache() ResponseCacheStore
	Feedback() FeedbackStore
	ReviewHistory() ReviewHistoryStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db                 *gorm.DB
	idempotencyStore   IdempotencyStore
	responseCacheStore ResponseCacheStore
	feedbackStore      FeedbackStore
	reviewHistoryStore ReviewHistoryStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:                 db,
		idempotencyStore:   newIdempotencyStore(db),
		responseCacheStore: newResponseCacheStore(db),
		feedbackStore:      newFeedbackStore(db),
		reviewHistoryStore: newReviewHistoryStore(db),
	}
}

func (s *gormStore) Idempotency() IdempotencyStore {
	return s.idempotencyStore
}

func (s *gormStore) ResponseCache() ResponseCacheStore {
	return s.responseCacheStore
}

func (s *gormStore) Feedback() FeedbackStore {
	return s.feedbackStore
}

func (s *gormStore) ReviewHistory() ReviewHistoryStore {
	return s.reviewHistoryStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &gormStore{
			db:                 tx,
			idempotencyStore:   newIdempotencyStore(tx),
			responseCacheStore: newResponseCacheStore(tx),
			feedbackStore:      newFeedbackStore(tx),
			reviewHistoryStore: newReviewHistoryStore(tx),
		}
		return fn(txStore)
	})
}
