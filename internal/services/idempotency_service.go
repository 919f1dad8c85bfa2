package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// IdempotencyRepo defines the repository contract required by
// IdempotencyService.
type IdempotencyRepo interface {
	GetIdempotency(ctx context.Context, s store.Client, userID, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, s store.Client, userID, key, dietID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// IdempotencyService remembers which diet a (user, Idempotency-Key) pair
// created so a retried POST /diets replays instead of creating a duplicate.
// Recording is best effort: failures are logged and never fail the request.
type IdempotencyService struct {
	Store store.Client
	Repo  IdempotencyRepo
	TTL   time.Duration
	Log   zerolog.Logger
}

// NewIdempotencyService constructs an IdempotencyService. A non-positive ttl
// defaults to 24h.
func NewIdempotencyService(s store.Client, r IdempotencyRepo, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyService{Store: s, Repo: r, TTL: ttl, Log: log.Logger}
}

// Lookup returns the diet id recorded for (userID, key), or false when no
// live record exists.
func (s *IdempotencyService) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	rec, err := s.Repo.GetIdempotency(ctx, s.Store, userID, key, time.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr(err, nil)
	}
	return rec.DietID, true, nil
}

// Remember records that key produced dietID for userID.
func (s *IdempotencyService) Remember(ctx context.Context, userID, key, dietID string, status int) {
	if _, err := s.Repo.CreateIdempotency(ctx, s.Store, userID, key, dietID, status, s.TTL); err != nil {
		s.Log.Warn().Err(err).Str("user_id", userID).Msg("idempotency record not stored")
	}
}
