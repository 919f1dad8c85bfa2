package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/repo"
)

func newRecipeFixture(t *testing.T) (*RecipeService, *memStore, time.Time) {
	t.Helper()
	ms := newMemStore()
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRecipe(context.Background(), ms, domain.Recipe{
		ID:        "r1",
		Name:      "Oats",
		CreatedAt: created,
		Photos:    []string{"oats.jpg"},
	}))
	require.NoError(t, repo.SaveRecipe(context.Background(), ms, domain.Recipe{ID: "r2", Name: "Soup"}))
	return NewRecipeService(ms, repoShim{}), ms, created
}

func TestRecipeService_Get(t *testing.T) {
	svc, _, _ := newRecipeFixture(t)
	r, err := svc.GetRecipe(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Oats", r.Name)

	_, err = svc.GetRecipe(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.GetRecipe(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecipeService_BatchDedupesAndSkipsMissing(t *testing.T) {
	svc, _, _ := newRecipeFixture(t)
	rs, err := svc.GetRecipesByIDs(context.Background(), []string{"r2", "r1", "r2", "ghost", ""})
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "r2", rs[0].ID)
	assert.Equal(t, "r1", rs[1].ID)

	empty, err := svc.GetRecipesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	svc.MaxBatch = 1
	_, err = svc.GetRecipesByIDs(context.Background(), []string{"r1", "r2"})
	assert.ErrorIs(t, err, ErrTooManyIDs)
}

func TestRecipeService_UpdateKeepsServerOwnedFields(t *testing.T) {
	ctx := context.Background()
	svc, ms, created := newRecipeFixture(t)

	out, err := svc.UpdateRecipe(ctx, "r1", domain.Recipe{
		Name:              "Overnight oats",
		CreatedAt:         time.Now(),
		Photos:            []string{"hijack.jpg"},
		NutritionalValues: &domain.NutritionalValues{Calories: 350, Protein: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", out.ID)
	assert.True(t, created.Equal(out.CreatedAt))
	assert.Equal(t, []string{"oats.jpg"}, out.Photos)

	stored, err := repo.GetRecipe(ctx, ms, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Overnight oats", stored.Name)
	assert.Equal(t, []string{"oats.jpg"}, stored.Photos)
}

func TestRecipeService_UpdateValidation(t *testing.T) {
	svc, _, _ := newRecipeFixture(t)
	_, err := svc.UpdateRecipe(context.Background(), "r1", domain.Recipe{
		NutritionalValues: &domain.NutritionalValues{Carbs: -5},
	})
	assert.ErrorIs(t, err, ErrInvalidNutrition)

	_, err = svc.UpdateRecipe(context.Background(), "ghost", domain.Recipe{Name: "x"})
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}
