// Package services defines the business logic for diets, recipes and shopping
// lists. This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Errors come in four kinds (ErrNotFound, ErrPermissionDenied,
// ErrInvalidArgument, ErrStoreUnavailable). Specific errors wrap a kind, so
// handlers only need errors.Is against the kind to pick an HTTP status.
// Translation into user-facing messages happens at the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-diet-backend/internal/store"
)

// Error kinds.
var (
	// ErrNotFound indicates the requested entity is absent. Not retried.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates the caller does not own the entity.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidArgument indicates a request rejected before any store call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable wraps transport or store failures. This layer does
	// not retry; callers may retry the whole operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Diet-related errors.
var (
	ErrDietNotFound     = fmt.Errorf("diet %w", ErrNotFound)
	ErrMissingID        = fmt.Errorf("%w: missing id", ErrInvalidArgument)
	ErrMissingUserID    = fmt.Errorf("%w: missing user id", ErrInvalidArgument)
	ErrOwnershipChanged = fmt.Errorf("%w: diet belongs to another user", ErrPermissionDenied)
)

// Shopping-list errors.
var (
	ErrShoppingListNotFound = fmt.Errorf("shopping list %w", ErrNotFound)
	ErrCategoryNotFound     = fmt.Errorf("category %w", ErrNotFound)
	ErrEmptyCategory        = fmt.Errorf("%w: empty category name", ErrInvalidArgument)
	ErrDuplicateCategory    = fmt.Errorf("%w: duplicate category name", ErrInvalidArgument)
	ErrItemIndexOutOfRange  = fmt.Errorf("%w: item index out of range", ErrInvalidArgument)
	ErrInvalidItem          = fmt.Errorf("%w: item quantity must be non-negative", ErrInvalidArgument)
)

// Recipe errors.
var (
	ErrRecipeNotFound   = fmt.Errorf("recipe %w", ErrNotFound)
	ErrInvalidNutrition = fmt.Errorf("%w: nutritional values must be non-negative", ErrInvalidArgument)
	ErrTooManyIDs       = fmt.Errorf("%w: too many ids", ErrInvalidArgument)
)

// storeErr classifies a repository error: store.ErrNotFound becomes notFound,
// anything else is wrapped as ErrStoreUnavailable.
func storeErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) && notFound != nil {
		return notFound
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
