package repo

import (
	"context"
	"errors"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

func decodeRecipe(doc *store.Document) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := doc.DataTo(&r); err != nil {
		return nil, err
	}
	r.ID = doc.ID
	if r.Photos == nil {
		r.Photos = []string{}
	}
	return &r, nil
}

// GetRecipe fetches a recipe by id, or ErrNotFound.
func GetRecipe(ctx context.Context, s store.Client, id string) (*domain.Recipe, error) {
	doc, err := s.Get(ctx, CollectionRecipes, id)
	if err != nil {
		return nil, err
	}
	return decodeRecipe(doc)
}

// GetRecipesByIDs fetches the recipes for ids in order. Missing ids are
// skipped; any other store error aborts the batch.
func GetRecipesByIDs(ctx context.Context, s store.Client, ids []string) ([]domain.Recipe, error) {
	out := make([]domain.Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := GetRecipe(ctx, s, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

// SaveRecipe fully replaces the stored recipe identified by r.ID.
func SaveRecipe(ctx context.Context, s store.Client, r domain.Recipe) error {
	if r.ID == "" {
		return ErrMissingID
	}
	return s.Set(ctx, CollectionRecipes, r.ID, r)
}

// ListRecipeReferencesByDiet returns every reference recorded for dietID.
func ListRecipeReferencesByDiet(ctx context.Context, s store.Client, dietID string) ([]domain.RecipeReference, error) {
	docs, err := s.QueryByField(ctx, CollectionRecipeReferences, FieldDietID, dietID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecipeReference, 0, len(docs))
	for _, doc := range docs {
		var ref domain.RecipeReference
		if err := doc.DataTo(&ref); err != nil {
			return nil, err
		}
		ref.ID = doc.ID
		out = append(out, ref)
	}
	return out, nil
}

// CreateRecipeReference stores ref under a generated id and returns it.
func CreateRecipeReference(ctx context.Context, s store.Client, ref domain.RecipeReference) (*domain.RecipeReference, error) {
	id, err := s.Create(ctx, CollectionRecipeReferences, ref)
	if err != nil {
		return nil, err
	}
	ref.ID = id
	return &ref, nil
}
