// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts consumed by the handlers, the
// Handlers wiring type and the principal helpers shared by every endpoint.
// Handlers are transport-thin: they validate input, resolve the caller,
// call application services and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/http/middleware"
)

//
// Service contracts (context-aware)
//

// DietService defines diet operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DietService interface {
	GetAllDiets(ctx context.Context) ([]domain.Diet, error)
	GetDietByID(ctx context.Context, id string) (*domain.Diet, error)
	GetDietsByUserID(ctx context.Context, userID string) ([]domain.Diet, error)
	GetDietsInfoForUsers(ctx context.Context, userIDs []string) (map[string]domain.DietInfo, error)
	CreateDiet(ctx context.Context, diet domain.Diet) (*domain.Diet, error)
	UpdateDiet(ctx context.Context, diet domain.Diet) (*domain.Diet, error)
	DeleteDiet(ctx context.Context, id string) error
}

// RecipeService defines recipe operations consumed by HTTP handlers.
type RecipeService interface {
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)
	GetRecipesByIDs(ctx context.Context, ids []string) ([]domain.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, r domain.Recipe) (*domain.Recipe, error)
}

// ShoppingListService defines shopping list operations consumed by HTTP
// handlers.
type ShoppingListService interface {
	GetByDietID(ctx context.Context, dietID string) (*domain.ShoppingList, error)
	Get(ctx context.Context, id string) (*domain.ShoppingList, error)
	UpdateItems(ctx context.Context, id string, items map[string][]domain.CategorizedItem) (*domain.ShoppingList, error)
	AddItemToCategory(ctx context.Context, id, category string, item domain.CategorizedItem) (*domain.ShoppingList, error)
	RemoveItemFromCategory(ctx context.Context, id, category string, index int) (*domain.ShoppingList, error)
}

// IdempotencyService records and looks up the diet produced by an
// Idempotency-Key.
type IdempotencyService interface {
	Lookup(ctx context.Context, userID, key string) (dietID string, found bool, err error)
	Remember(ctx context.Context, userID, key, dietID string, status int)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for diets, recipes and shopping lists.
type Handlers struct {
	dietSvc   DietService
	recipeSvc RecipeService
	listSvc   ShoppingListService
	idemSvc   IdempotencyService
}

// New constructs and returns a Handlers instance bound to the given services.
// idem may be nil, which disables idempotent replays.
func New(diets DietService, recipes RecipeService, lists ShoppingListService, idem IdempotencyService) *Handlers {
	return &Handlers{dietSvc: diets, recipeSvc: recipes, listSvc: lists, idemSvc: idem}
}

// principal returns the authenticated caller. When it is missing the request
// is aborted with 401 and ok is false.
func principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.ID == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return domain.Principal{}, false
	}
	return p, true
}

// canAccess reports whether p may act on a resource owned by ownerID.
func canAccess(p domain.Principal, ownerID string) bool {
	return p.IsAdmin() || p.ID == ownerID
}

// forbid aborts with the standard 403 envelope.
func forbid(c *gin.Context) {
	fail(c, http.StatusForbidden, ErrCodeForbidden, "access denied")
}
