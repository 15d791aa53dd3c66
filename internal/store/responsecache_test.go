package store

import (
	"testing"
	"time"

	"github.com/verustcode/verustcode/internal/model"
)

func TestResponseCacheStore_UpsertInsertsThenUpdates(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	rec := &model.CacheRecord{
		Repository:  "org/repo",
		ContentHash: "hash-1",
		ReviewJSON:  `{"issues":[]}`,
		Tokens:      100,
		Cost:        0.01,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(3 * 24 * time.Hour),
	}
	if err := s.ResponseCache().Upsert(rec); err != nil {
		t.Fatalf("Upsert(insert) failed: %v", err)
	}

	updated := &model.CacheRecord{
		Repository:  "org/repo",
		ContentHash: "hash-1",
		ReviewJSON:  `{"issues":[{"x":1}]}`,
		Tokens:      200,
		Cost:        0.02,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(3 * 24 * time.Hour),
	}
	if err := s.ResponseCache().Upsert(updated); err != nil {
		t.Fatalf("Upsert(update) failed: %v", err)
	}

	got, err := s.ResponseCache().GetByContentHash("hash-1")
	if err != nil {
		t.Fatalf("GetByContentHash() failed: %v", err)
	}
	if got.Tokens != 200 {
		t.Fatalf("expected upsert to update tokens to 200, got %d", got.Tokens)
	}
}

func TestResponseCacheStore_RecordHitIncrementsCounter(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	rec := &model.CacheRecord{
		ContentHash: "hash-2",
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	if err := s.ResponseCache().Upsert(rec); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	if err := s.ResponseCache().RecordHit("hash-2", time.Now()); err != nil {
		t.Fatalf("RecordHit() failed: %v", err)
	}
	if err := s.ResponseCache().RecordHit("hash-2", time.Now()); err != nil {
		t.Fatalf("RecordHit() failed: %v", err)
	}

	got, err := s.ResponseCache().GetByContentHash("hash-2")
	if err != nil {
		t.Fatalf("GetByContentHash() failed: %v", err)
	}
	if got.HitCount != 2 {
		t.Fatalf("expected hit count 2, got %d", got.HitCount)
	}
}

func TestResponseCacheStore_DeleteExpired(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	expired := &model.CacheRecord{
		ContentHash: "hash-expired",
		CreatedAt:   time.Now().Add(-4 * 24 * time.Hour),
		ExpiresAt:   time.Now().Add(-24 * time.Hour),
	}
	if err := s.ResponseCache().Upsert(expired); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	n, err := s.ResponseCache().DeleteExpired(time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired() failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired cache row deleted, got %d", n)
	}
}
