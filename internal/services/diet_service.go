// Package services – DietService
//
// DietService owns the consistency rules for diets:
//
//   - Reads go through the cache. The full collection is cached in the
//     entity region under a fixed key, single diets under their id and
//     per-user lists in the list region under the user id.
//   - Every mutation evicts both regions entirely. List results are derived
//     from predicates the cache cannot re-evaluate, so no key-level
//     invalidation is attempted.
//   - Updates to one diet are serialized by a per-id mutex held from the
//     load of the existing record until the cache eviction after persisting.
//     Updates to different diets run in parallel.
//   - Deletes run the cascade (dependents first, parent last) and evict only
//     after the whole cascade succeeded.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-diet-backend/internal/cache"
	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// allDietsKey is the entity-region key holding the full diet collection.
const allDietsKey = "allDiets"

// DietRepo defines the repository contract required by DietService.
type DietRepo interface {
	// ListDiets returns every diet.
	ListDiets(ctx context.Context, s store.Client) ([]domain.Diet, error)

	// ListDietsByUser returns the diets owned by userID.
	ListDietsByUser(ctx context.Context, s store.Client, userID string) ([]domain.Diet, error)

	// GetDiet fetches one diet or returns store.ErrNotFound.
	GetDiet(ctx context.Context, s store.Client, id string) (*domain.Diet, error)

	// CreateDiet persists a new diet and returns it with its generated id.
	CreateDiet(ctx context.Context, s store.Client, diet domain.Diet) (*domain.Diet, error)

	// SaveDiet fully replaces an existing diet.
	SaveDiet(ctx context.Context, s store.Client, diet domain.Diet) error
}

// Cascader removes a diet together with its dependents.
type Cascader interface {
	Delete(ctx context.Context, dietID string) error
}

// DietService provides the diet operations.
type DietService struct {
	// Store is the document store handed to the repository.
	Store store.Client
	// Repo is the diet repository.
	Repo DietRepo
	// Cascade deletes a diet and its dependents.
	Cascade Cascader
	// Cache is the read-through cache. Nil disables caching.
	Cache *cache.Cache

	// Now returns the server clock. Defaults to time.Now in UTC.
	Now func() time.Time
	// Log receives service-level events.
	Log zerolog.Logger

	locks keyedMutex
}

// NewDietService constructs a DietService with the global logger and the
// system clock.
func NewDietService(s store.Client, r DietRepo, cascade Cascader, c *cache.Cache) *DietService {
	return &DietService{
		Store:   s,
		Repo:    r,
		Cascade: cascade,
		Cache:   c,
		Now:     func() time.Time { return time.Now().UTC() },
		Log:     log.Logger,
	}
}

func (s *DietService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DietService) tracer() trace.Tracer { return otel.Tracer("services/DietService") }

// GetAllDiets returns every diet, served from the cache when possible.
// Staleness is bounded by the cache TTL.
func (s *DietService) GetAllDiets(ctx context.Context) ([]domain.Diet, error) {
	ctx, span := s.tracer().Start(ctx, "GetAllDiets")
	defer span.End()

	diets, err := cache.Fetch(ctx, s.Cache, cache.RegionDiets, allDietsKey, func(ctx context.Context) ([]domain.Diet, error) {
		ds, err := s.Repo.ListDiets(ctx, s.Store)
		return ds, storeErr(err, nil)
	})
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("diets.count", len(diets)))
	return diets, nil
}

// GetDietByID returns one diet or ErrDietNotFound.
func (s *DietService) GetDietByID(ctx context.Context, id string) (*domain.Diet, error) {
	ctx, span := s.tracer().Start(ctx, "GetDietByID",
		trace.WithAttributes(attribute.String("diet.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	d, err := cache.Fetch(ctx, s.Cache, cache.RegionDiets, id, func(ctx context.Context) (domain.Diet, error) {
		d, err := s.Repo.GetDiet(ctx, s.Store, id)
		if err != nil {
			return domain.Diet{}, storeErr(err, ErrDietNotFound)
		}
		return *d, nil
	})
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	return &d, nil
}

// GetDietsByUserID returns the diets owned by userID through the list region.
func (s *DietService) GetDietsByUserID(ctx context.Context, userID string) ([]domain.Diet, error) {
	ctx, span := s.tracer().Start(ctx, "GetDietsByUserID",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	diets, err := cache.Fetch(ctx, s.Cache, cache.RegionDietLists, userID, func(ctx context.Context) ([]domain.Diet, error) {
		ds, err := s.Repo.ListDietsByUser(ctx, s.Store, userID)
		return ds, storeErr(err, nil)
	})
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	return diets, nil
}

// GetDietsInfoForUsers reports, per user id, whether the user has any diet
// and the earliest and latest day date across all of that user's diets.
// Days without a date are ignored. Duplicate and blank ids are skipped.
func (s *DietService) GetDietsInfoForUsers(ctx context.Context, userIDs []string) (map[string]domain.DietInfo, error) {
	ctx, span := s.tracer().Start(ctx, "GetDietsInfoForUsers",
		trace.WithAttributes(attribute.Int("users.count", len(userIDs))))
	defer span.End()

	out := make(map[string]domain.DietInfo, len(userIDs))
	for _, uid := range userIDs {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			continue
		}
		if _, done := out[uid]; done {
			continue
		}
		diets, err := s.GetDietsByUserID(ctx, uid)
		if err != nil {
			recordErr(span, err)
			return nil, err
		}
		out[uid] = summarize(diets)
	}
	return out, nil
}

// summarize reduces the day dates of diets to a DietInfo.
func summarize(diets []domain.Diet) domain.DietInfo {
	if len(diets) == 0 {
		return domain.DietInfo{}
	}
	var dates []time.Time
	for _, d := range diets {
		for _, day := range d.Days {
			if day.Date != nil {
				dates = append(dates, *day.Date)
			}
		}
	}
	info := domain.DietInfo{HasDiet: true}
	if len(dates) == 0 {
		return info
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	start, end := dates[0], dates[len(dates)-1]
	info.StartDate, info.EndDate = &start, &end
	return info
}

// CreateDiet stamps createdAt/updatedAt, persists the diet and evicts both
// cache regions. The store assigns the id.
func (s *DietService) CreateDiet(ctx context.Context, diet domain.Diet) (*domain.Diet, error) {
	ctx, span := s.tracer().Start(ctx, "CreateDiet",
		trace.WithAttributes(attribute.String("user.id", diet.UserID)))
	defer span.End()

	if strings.TrimSpace(diet.UserID) == "" {
		return nil, ErrMissingUserID
	}
	now := s.now()
	diet.ID = ""
	diet.CreatedAt = now
	diet.UpdatedAt = now
	diet.Normalize()

	created, err := s.Repo.CreateDiet(ctx, s.Store, diet)
	if err != nil {
		err = storeErr(err, nil)
		recordErr(span, err)
		return nil, err
	}
	s.evictAll(ctx)
	span.SetAttributes(attribute.String("diet.id", created.ID))
	s.Log.Info().Str("diet_id", created.ID).Str("user_id", created.UserID).Msg("diet created")
	return created, nil
}

// UpdateDiet replaces a diet while holding the diet's write lock.
//
// The stored owner must equal diet.UserID, otherwise ErrOwnershipChanged is
// returned and nothing is written or evicted. createdAt is always taken from
// the stored record, updatedAt and any missing day dates are set to the
// server clock.
func (s *DietService) UpdateDiet(ctx context.Context, diet domain.Diet) (*domain.Diet, error) {
	ctx, span := s.tracer().Start(ctx, "UpdateDiet",
		trace.WithAttributes(
			attribute.String("diet.id", diet.ID),
			attribute.String("user.id", diet.UserID),
		))
	defer span.End()

	if strings.TrimSpace(diet.ID) == "" {
		return nil, ErrMissingID
	}

	unlock := s.locks.Lock(diet.ID)
	defer unlock()

	// Always the store, never the cache: ownership is checked against the
	// authoritative record.
	existing, err := s.Repo.GetDiet(ctx, s.Store, diet.ID)
	if err != nil {
		err = storeErr(err, ErrDietNotFound)
		recordErr(span, err)
		return nil, err
	}
	if existing.UserID != diet.UserID {
		s.Log.Warn().Str("diet_id", diet.ID).Str("owner", existing.UserID).Str("requester", diet.UserID).
			Msg("diet update rejected: owner mismatch")
		recordErr(span, ErrOwnershipChanged)
		return nil, ErrOwnershipChanged
	}

	now := s.now()
	diet.CreatedAt = existing.CreatedAt
	diet.UpdatedAt = now
	diet.Normalize()
	for i := range diet.Days {
		if diet.Days[i].Date == nil {
			d := now
			diet.Days[i].Date = &d
		}
	}
	if err := s.Repo.SaveDiet(ctx, s.Store, diet); err != nil {
		err = storeErr(err, nil)
		recordErr(span, err)
		return nil, err
	}
	s.evictAll(ctx)
	s.Log.Info().Str("diet_id", diet.ID).Int("days", len(diet.Days)).Msg("diet updated")
	return &diet, nil
}

// DeleteDiet removes the diet and its dependents. Deleting an absent diet
// succeeds. On failure the cache is left untouched and the caller may retry.
func (s *DietService) DeleteDiet(ctx context.Context, id string) error {
	ctx, span := s.tracer().Start(ctx, "DeleteDiet",
		trace.WithAttributes(attribute.String("diet.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	if err := s.Cascade.Delete(ctx, id); err != nil {
		recordErr(span, err)
		s.Log.Error().Err(err).Str("diet_id", id).Msg("diet delete incomplete")
		return err
	}
	s.evictAll(ctx)
	s.Log.Info().Str("diet_id", id).Msg("diet deleted")
	return nil
}

func (s *DietService) evictAll(ctx context.Context) {
	s.Cache.EvictAll(ctx, cache.RegionDiets)
	s.Cache.EvictAll(ctx, cache.RegionDietLists)
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
