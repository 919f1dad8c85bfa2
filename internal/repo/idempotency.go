package repo

// Repository helpers for the Idempotency model used to implement safe-retry
// semantics for POST /diets.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// IdempotencyDocID derives the deterministic document id of a (user, key)
// pair so lookups are a single Get.
func IdempotencyDocID(userID, key string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + key))
	return hex.EncodeToString(sum[:])
}

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, s store.Client, userID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	doc, err := s.Get(ctx, CollectionIdempotencyKeys, IdempotencyDocID(userID, key))
	if err != nil {
		return nil, err
	}
	var rec domain.Idempotency
	if err := doc.DataTo(&rec); err != nil {
		return nil, err
	}
	rec.ID = doc.ID
	if rec.Expired(now) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// CreateIdempotency records that key produced dietID for userID. An existing
// expired record for the same pair is overwritten.
func CreateIdempotency(ctx context.Context, s store.Client, userID, key, dietID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("empty idempotency key")
	}
	now := time.Now().UTC()
	rec := domain.Idempotency{
		ID:        IdempotencyDocID(userID, key),
		UserID:    userID,
		Key:       key,
		DietID:    dietID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.Set(ctx, CollectionIdempotencyKeys, rec.ID, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
