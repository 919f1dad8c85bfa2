package repo

import (
	"context"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

func decodeShoppingList(doc *store.Document) (*domain.ShoppingList, error) {
	var l domain.ShoppingList
	if err := doc.DataTo(&l); err != nil {
		return nil, err
	}
	l.ID = doc.ID
	l.PruneEmpty()
	return &l, nil
}

// GetShoppingList fetches a shopping list by id, or ErrNotFound.
func GetShoppingList(ctx context.Context, s store.Client, id string) (*domain.ShoppingList, error) {
	doc, err := s.Get(ctx, CollectionShoppingLists, id)
	if err != nil {
		return nil, err
	}
	return decodeShoppingList(doc)
}

// FindShoppingListByDietID returns the first shopping list attached to
// dietID, or ErrNotFound when the diet has none.
func FindShoppingListByDietID(ctx context.Context, s store.Client, dietID string) (*domain.ShoppingList, error) {
	docs, err := s.QueryByField(ctx, CollectionShoppingLists, FieldDietID, dietID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return decodeShoppingList(docs[0])
}

// CreateShoppingList stores list under a generated id and returns it.
func CreateShoppingList(ctx context.Context, s store.Client, list domain.ShoppingList) (*domain.ShoppingList, error) {
	list.PruneEmpty()
	id, err := s.Create(ctx, CollectionShoppingLists, list)
	if err != nil {
		return nil, err
	}
	list.ID = id
	return &list, nil
}

// SaveShoppingList fully replaces the stored list identified by list.ID.
func SaveShoppingList(ctx context.Context, s store.Client, list domain.ShoppingList) error {
	if list.ID == "" {
		return ErrMissingID
	}
	list.PruneEmpty()
	return s.Set(ctx, CollectionShoppingLists, list.ID, list)
}
