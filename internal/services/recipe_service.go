// Package services – RecipeService
//
// Recipes are read individually or in batches and updated in place. The
// server owns createdAt and photos once a recipe exists: values supplied by
// clients for those fields are replaced with the stored ones.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// RecipeRepo defines the repository contract required by RecipeService.
type RecipeRepo interface {
	GetRecipe(ctx context.Context, s store.Client, id string) (*domain.Recipe, error)
	GetRecipesByIDs(ctx context.Context, s store.Client, ids []string) ([]domain.Recipe, error)
	SaveRecipe(ctx context.Context, s store.Client, r domain.Recipe) error
}

// RecipeService provides recipe reads and updates.
type RecipeService struct {
	Store store.Client
	Repo  RecipeRepo

	// MaxBatch caps the number of ids accepted by GetRecipesByIDs. Values
	// <= 0 disable the cap.
	MaxBatch int

	locks keyedMutex
}

// NewRecipeService constructs a RecipeService.
func NewRecipeService(s store.Client, r RecipeRepo) *RecipeService {
	return &RecipeService{Store: s, Repo: r, MaxBatch: 100}
}

func (s *RecipeService) tracer() trace.Tracer { return otel.Tracer("services/RecipeService") }

// GetRecipe returns one recipe or ErrRecipeNotFound.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	ctx, span := s.tracer().Start(ctx, "GetRecipe",
		trace.WithAttributes(attribute.String("recipe.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	r, err := s.Repo.GetRecipe(ctx, s.Store, id)
	if err != nil {
		err = storeErr(err, ErrRecipeNotFound)
		recordErr(span, err)
		return nil, err
	}
	return r, nil
}

// GetRecipesByIDs returns the recipes for ids in request order. Unknown ids
// are skipped and duplicates are fetched once.
func (s *RecipeService) GetRecipesByIDs(ctx context.Context, ids []string) ([]domain.Recipe, error) {
	ctx, span := s.tracer().Start(ctx, "GetRecipesByIDs",
		trace.WithAttributes(attribute.Int("recipes.requested", len(ids))))
	defer span.End()

	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if s.MaxBatch > 0 && len(uniq) > s.MaxBatch {
		return nil, ErrTooManyIDs
	}
	if len(uniq) == 0 {
		return []domain.Recipe{}, nil
	}

	rs, err := s.Repo.GetRecipesByIDs(ctx, s.Store, uniq)
	if err != nil {
		err = storeErr(err, nil)
		recordErr(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("recipes.found", len(rs)))
	return rs, nil
}

// UpdateRecipe replaces the recipe stored under id, keeping the stored
// createdAt and photos.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, r domain.Recipe) (*domain.Recipe, error) {
	ctx, span := s.tracer().Start(ctx, "UpdateRecipe",
		trace.WithAttributes(attribute.String("recipe.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	if r.NutritionalValues != nil && !r.NutritionalValues.Valid() {
		return nil, ErrInvalidNutrition
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	existing, err := s.Repo.GetRecipe(ctx, s.Store, id)
	if err != nil {
		err = storeErr(err, ErrRecipeNotFound)
		recordErr(span, err)
		return nil, err
	}
	r.ID = id
	r.CreatedAt = existing.CreatedAt
	r.Photos = existing.Photos
	if r.Photos == nil {
		r.Photos = []string{}
	}

	if err := s.Repo.SaveRecipe(ctx, s.Store, r); err != nil {
		err = storeErr(err, nil)
		recordErr(span, err)
		return nil, err
	}
	return &r, nil
}
