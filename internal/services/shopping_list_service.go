// Package services – ShoppingListService
//
// ShoppingListService mutates the categorized items of a shopping list.
// Every mutation is a read-modify-write of the whole document held under a
// per-list lock, prunes empty categories and bumps the version counter.
// Category names are trimmed and NFC-normalized so visually identical names
// map to one key.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// ShoppingListRepo defines the repository contract required by
// ShoppingListService.
type ShoppingListRepo interface {
	GetShoppingList(ctx context.Context, s store.Client, id string) (*domain.ShoppingList, error)
	FindShoppingListByDietID(ctx context.Context, s store.Client, dietID string) (*domain.ShoppingList, error)
	SaveShoppingList(ctx context.Context, s store.Client, list domain.ShoppingList) error
}

// ShoppingListService provides shopping list reads and item mutations.
type ShoppingListService struct {
	Store store.Client
	Repo  ShoppingListRepo
	Log   zerolog.Logger

	locks keyedMutex
}

// NewShoppingListService constructs a ShoppingListService.
func NewShoppingListService(s store.Client, r ShoppingListRepo) *ShoppingListService {
	return &ShoppingListService{Store: s, Repo: r, Log: log.Logger}
}

func (s *ShoppingListService) tracer() trace.Tracer {
	return otel.Tracer("services/ShoppingListService")
}

// GetByDietID returns the shopping list attached to dietID.
func (s *ShoppingListService) GetByDietID(ctx context.Context, dietID string) (*domain.ShoppingList, error) {
	ctx, span := s.tracer().Start(ctx, "GetByDietID",
		trace.WithAttributes(attribute.String("diet.id", dietID)))
	defer span.End()

	if strings.TrimSpace(dietID) == "" {
		return nil, ErrMissingID
	}
	l, err := s.Repo.FindShoppingListByDietID(ctx, s.Store, dietID)
	if err != nil {
		err = storeErr(err, ErrShoppingListNotFound)
		recordErr(span, err)
		return nil, err
	}
	return l, nil
}

// Get returns a shopping list by id.
func (s *ShoppingListService) Get(ctx context.Context, id string) (*domain.ShoppingList, error) {
	ctx, span := s.tracer().Start(ctx, "Get",
		trace.WithAttributes(attribute.String("shopping_list.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	l, err := s.Repo.GetShoppingList(ctx, s.Store, id)
	if err != nil {
		err = storeErr(err, ErrShoppingListNotFound)
		recordErr(span, err)
		return nil, err
	}
	return l, nil
}

// UpdateItems replaces the whole item mapping of the list. Two categories
// that normalize to the same name are rejected with ErrDuplicateCategory.
func (s *ShoppingListService) UpdateItems(ctx context.Context, id string, items map[string][]domain.CategorizedItem) (*domain.ShoppingList, error) {
	ctx, span := s.tracer().Start(ctx, "UpdateItems",
		trace.WithAttributes(attribute.String("shopping_list.id", id)))
	defer span.End()

	normalized := make(map[string][]domain.CategorizedItem, len(items))
	for cat, its := range items {
		key, err := normalizeCategory(cat)
		if err != nil {
			return nil, err
		}
		for _, it := range its {
			if err := validateItem(it); err != nil {
				return nil, err
			}
		}
		if _, dup := normalized[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, key)
		}
		normalized[key] = its
	}

	l, err := s.mutate(ctx, id, func(l *domain.ShoppingList) error {
		l.Items = normalized
		return nil
	})
	if err != nil {
		recordErr(span, err)
	}
	return l, err
}

// AddItemToCategory appends item to category, creating the category when it
// does not exist yet.
func (s *ShoppingListService) AddItemToCategory(ctx context.Context, id, category string, item domain.CategorizedItem) (*domain.ShoppingList, error) {
	ctx, span := s.tracer().Start(ctx, "AddItemToCategory",
		trace.WithAttributes(
			attribute.String("shopping_list.id", id),
			attribute.String("category", category),
		))
	defer span.End()

	key, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if item.Recipes == nil {
		item.Recipes = []domain.ItemRecipeRef{}
	}

	l, err := s.mutate(ctx, id, func(l *domain.ShoppingList) error {
		l.Items[key] = append(l.Items[key], item)
		return nil
	})
	if err != nil {
		recordErr(span, err)
	}
	return l, err
}

// RemoveItemFromCategory removes the item at index from category. When the
// category becomes empty its key is removed from the mapping.
func (s *ShoppingListService) RemoveItemFromCategory(ctx context.Context, id, category string, index int) (*domain.ShoppingList, error) {
	ctx, span := s.tracer().Start(ctx, "RemoveItemFromCategory",
		trace.WithAttributes(
			attribute.String("shopping_list.id", id),
			attribute.String("category", category),
			attribute.Int("index", index),
		))
	defer span.End()

	key, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}

	l, err := s.mutate(ctx, id, func(l *domain.ShoppingList) error {
		items, ok := l.Items[key]
		if !ok {
			return ErrCategoryNotFound
		}
		if index < 0 || index >= len(items) {
			return ErrItemIndexOutOfRange
		}
		rest := make([]domain.CategorizedItem, 0, len(items)-1)
		rest = append(rest, items[:index]...)
		rest = append(rest, items[index+1:]...)
		l.Items[key] = rest
		return nil
	})
	if err != nil {
		recordErr(span, err)
	}
	return l, err
}

// mutate loads the list under its lock, applies fn, prunes, bumps the
// version and persists the whole document.
func (s *ShoppingListService) mutate(ctx context.Context, id string, fn func(*domain.ShoppingList) error) (*domain.ShoppingList, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	l, err := s.Repo.GetShoppingList(ctx, s.Store, id)
	if err != nil {
		return nil, storeErr(err, ErrShoppingListNotFound)
	}
	if l.Items == nil {
		l.Items = map[string][]domain.CategorizedItem{}
	}
	if err := fn(l); err != nil {
		return nil, err
	}
	l.PruneEmpty()
	l.Version++

	if err := s.Repo.SaveShoppingList(ctx, s.Store, *l); err != nil {
		return nil, storeErr(err, nil)
	}
	s.Log.Debug().Str("shopping_list_id", id).Int("version", l.Version).Msg("shopping list saved")
	return l, nil
}

func normalizeCategory(c string) (string, error) {
	c = norm.NFC.String(strings.TrimSpace(c))
	if c == "" {
		return "", ErrEmptyCategory
	}
	return c, nil
}

func validateItem(it domain.CategorizedItem) error {
	if it.Quantity < 0 {
		return ErrInvalidItem
	}
	return nil
}
