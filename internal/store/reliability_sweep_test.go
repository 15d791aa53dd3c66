package store

import (
	"testing"
	"time"

	"github.com/verustcode/verustcode/internal/model"
)

func TestReliabilitySweep_DeletesExpiredRowsFromBothTables(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	if err := s.Idempotency().Create(&model.IdempotencyRecord{
		Partition:   "2026-07-30",
		Fingerprint: "fp-expired",
		Status:      "completed",
		CreatedAt:   now.Add(-72 * time.Hour),
		ExpiresAt:   now.Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := s.Idempotency().Create(&model.IdempotencyRecord{
		Partition:   "2026-08-01",
		Fingerprint: "fp-live",
		Status:      "pending",
		CreatedAt:   now,
		ExpiresAt:   now.Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := s.ResponseCache().Upsert(&model.CacheRecord{
		Repository:  "org/repo",
		ContentHash: "hash-expired",
		ReviewJSON:  "{}",
		CreatedAt:   now.Add(-96 * time.Hour),
		ExpiresAt:   now.Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	svc := NewReliabilitySweepService(s.Idempotency(), s.ResponseCache())
	svc.sweep()

	if _, err := s.Idempotency().GetByFingerprint("fp-expired"); err == nil {
		t.Fatal("expected the expired idempotency row to be deleted")
	}
	if _, err := s.Idempotency().GetByFingerprint("fp-live"); err != nil {
		t.Fatalf("expected the live idempotency row to survive, got %v", err)
	}
	if _, err := s.ResponseCache().GetByContentHash("hash-expired"); err == nil {
		t.Fatal("expected the expired cache row to be deleted")
	}
}
