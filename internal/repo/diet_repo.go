// Package repo implements the data persistence layer for domain entities on
// top of a document store (see package store). This file provides repository
// functions for the Diet model.
//
// All functions are context-aware and accept a store.Client, so the same code
// runs against Firestore in production and the SQL document table locally.
// They follow the "thin repository" approach: no business logic, only
// document encoding and query composition.
//
// Error semantics:
//   - When a document is not found, functions return store.ErrNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Any other store error is propagated unchanged.
//
// Functions:
//
//   - ListDiets(ctx, s) -> []domain.Diet, error
//   - ListDietsByUser(ctx, s, userID) -> []domain.Diet, error
//   - GetDiet(ctx, s, id) -> *domain.Diet, error
//   - CreateDiet(ctx, s, diet) -> *domain.Diet, error
//   - SaveDiet(ctx, s, diet) -> error
//
// This repository is wrapped by services.DietService, which enforces
// ownership, serialization of writers and cache coherence.
package repo

import (
	"context"
	"errors"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// Collection names.
const (
	CollectionDiets            = "diets"
	CollectionShoppingLists    = "shopping_lists"
	CollectionRecipeReferences = "recipe_references"
	CollectionRecipes          = "recipes"
	CollectionIdempotencyKeys  = "idempotency_keys"
)

// Foreign-key fields used in queries.
const (
	FieldDietID = "dietId"
	FieldUserID = "userId"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = store.ErrNotFound

// ErrMissingID is returned by write helpers given an entity without an id.
var ErrMissingID = errors.New("missing document id")

func decodeDiet(doc *store.Document) (*domain.Diet, error) {
	var d domain.Diet
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	d.ID = doc.ID
	d.Normalize()
	return &d, nil
}

func decodeDiets(docs []*store.Document) ([]domain.Diet, error) {
	out := make([]domain.Diet, 0, len(docs))
	for _, doc := range docs {
		d, err := decodeDiet(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// ListDiets returns every diet in the store.
func ListDiets(ctx context.Context, s store.Client) ([]domain.Diet, error) {
	docs, err := s.List(ctx, CollectionDiets)
	if err != nil {
		return nil, err
	}
	return decodeDiets(docs)
}

// ListDietsByUser returns the diets owned by userID.
func ListDietsByUser(ctx context.Context, s store.Client, userID string) ([]domain.Diet, error) {
	docs, err := s.QueryByField(ctx, CollectionDiets, FieldUserID, userID)
	if err != nil {
		return nil, err
	}
	return decodeDiets(docs)
}

// GetDiet fetches a diet by id, or ErrNotFound.
func GetDiet(ctx context.Context, s store.Client, id string) (*domain.Diet, error) {
	doc, err := s.Get(ctx, CollectionDiets, id)
	if err != nil {
		return nil, err
	}
	return decodeDiet(doc)
}

// CreateDiet stores diet under a generated id and returns it with ID set.
func CreateDiet(ctx context.Context, s store.Client, diet domain.Diet) (*domain.Diet, error) {
	diet.Normalize()
	id, err := s.Create(ctx, CollectionDiets, diet)
	if err != nil {
		return nil, err
	}
	diet.ID = id
	return &diet, nil
}

// SaveDiet fully replaces the stored diet identified by diet.ID.
func SaveDiet(ctx context.Context, s store.Client, diet domain.Diet) error {
	if diet.ID == "" {
		return ErrMissingID
	}
	diet.Normalize()
	return s.Set(ctx, CollectionDiets, diet.ID, diet)
}
