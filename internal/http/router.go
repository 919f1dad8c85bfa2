// Package httpapi wires the HTTP transport (Gin) to the diet, recipe and
// shopping list services, the middleware chain and the route handlers.
//
// Middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured access log with PII scrubbing
//  4. Recovery: panics become JSON 500s carrying the request id
//  5. gzip and the body size limit
//  6. Metrics
//  7. CORS and security headers
//
// The API group then adds authentication, idempotency validation and the
// per-user rate limiter, in that order: the limiter keys on the principal and
// lets idempotent replays through.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-diet-backend/docs"
	"github.com/tbourn/go-diet-backend/internal/cache"
	"github.com/tbourn/go-diet-backend/internal/config"
	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/http/handlers"
	"github.com/tbourn/go-diet-backend/internal/http/middleware"
	"github.com/tbourn/go-diet-backend/internal/repo"
	"github.com/tbourn/go-diet-backend/internal/services"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// repoShim adapts the repository free functions to the repository interfaces
// of the services package, keeping services decoupled from package repo.
type repoShim struct{}

func (repoShim) ListDiets(ctx context.Context, s store.Client) ([]domain.Diet, error) {
	return repo.ListDiets(ctx, s)
}

func (repoShim) ListDietsByUser(ctx context.Context, s store.Client, userID string) ([]domain.Diet, error) {
	return repo.ListDietsByUser(ctx, s, userID)
}

func (repoShim) GetDiet(ctx context.Context, s store.Client, id string) (*domain.Diet, error) {
	return repo.GetDiet(ctx, s, id)
}

func (repoShim) CreateDiet(ctx context.Context, s store.Client, d domain.Diet) (*domain.Diet, error) {
	return repo.CreateDiet(ctx, s, d)
}

func (repoShim) SaveDiet(ctx context.Context, s store.Client, d domain.Diet) error {
	return repo.SaveDiet(ctx, s, d)
}

func (repoShim) GetShoppingList(ctx context.Context, s store.Client, id string) (*domain.ShoppingList, error) {
	return repo.GetShoppingList(ctx, s, id)
}

func (repoShim) FindShoppingListByDietID(ctx context.Context, s store.Client, dietID string) (*domain.ShoppingList, error) {
	return repo.FindShoppingListByDietID(ctx, s, dietID)
}

func (repoShim) SaveShoppingList(ctx context.Context, s store.Client, l domain.ShoppingList) error {
	return repo.SaveShoppingList(ctx, s, l)
}

func (repoShim) GetRecipe(ctx context.Context, s store.Client, id string) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, s, id)
}

func (repoShim) GetRecipesByIDs(ctx context.Context, s store.Client, ids []string) ([]domain.Recipe, error) {
	return repo.GetRecipesByIDs(ctx, s, ids)
}

func (repoShim) SaveRecipe(ctx context.Context, s store.Client, r domain.Recipe) error {
	return repo.SaveRecipe(ctx, s, r)
}

func (repoShim) GetIdempotency(ctx context.Context, s store.Client, userID, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s, userID, key, now)
}

func (repoShim) CreateIdempotency(ctx context.Context, s store.Client, userID, key, dietID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, s, userID, key, dietID, status, ttl)
}

// corsAllowHeaders lists the request headers browsers may send.
var corsAllowHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization",
	middleware.HeaderUserID, middleware.HeaderUserRole,
	middleware.HeaderIdempotencyKey, "If-None-Match",
}

var corsExposeHeaders = []string{
	"X-Request-ID", "Content-Length", "ETag", "Retry-After", middleware.HeaderIdempotentReplay,
}

// RegisterRoutes attaches all middleware and HTTP endpoints to r. dietCache
// may be nil, which disables caching of diet reads.
func RegisterRoutes(r *gin.Engine, s store.Client, dietCache *cache.Cache, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}
	r.Use(limitBody(maxBody))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// ACAO is forced even without an Origin header so simple probes see it.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     corsAllowHeaders,
			ExposeHeaders:    corsExposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     corsAllowHeaders,
			ExposeHeaders:    corsExposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		PrivateCache: true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services <- repo/store/cache
	shim := repoShim{}
	dietSvc := services.NewDietService(s, shim, services.NewDietCascade(s, cfg.CascadeConcurrency), dietCache)
	recipeSvc := services.NewRecipeService(s, shim)
	recipeSvc.MaxBatch = cfg.RecipeBatchMax
	listSvc := services.NewShoppingListService(s, shim)
	idemSvc := services.NewIdempotencyService(s, shim, cfg.IdempotencyTTL)

	h := handlers.New(dietSvc, recipeSvc, listSvc, idemSvc)

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Auth(middleware.AuthOptions{
		Secret:      []byte(cfg.Auth.JWTSecret),
		AllowHeader: cfg.Auth.AllowHeader,
	}))
	api.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, key string) (bool, error) {
			_, found, err := idemSvc.Lookup(ctx, userID, key)
			return found, err
		},
	))
	api.Use(rl.Handler())
	{
		// Diets. Static segments are registered before :id.
		api.GET("/diets", h.ListDiets)
		api.GET("/diets/info", h.DietsInfo)
		api.POST("/diets", h.CreateDiet)
		api.GET("/diets/:id", h.GetDiet)
		api.PUT("/diets/:id", h.UpdateDiet)
		api.DELETE("/diets/:id", h.DeleteDiet)
		api.GET("/diets/:id/shopping-list", h.GetShoppingList)

		// Recipes
		api.GET("/recipes/batch", h.GetRecipesBatch)
		api.GET("/recipes/:id", h.GetRecipe)
		api.PUT("/recipes/:id", h.UpdateRecipe)

		// Shopping lists
		api.PUT("/shopping-lists/:id/items", h.UpdateShoppingListItems)
		api.POST("/shopping-lists/:id/categories/:category/items", h.AddShoppingListItem)
		api.DELETE("/shopping-lists/:id/categories/:category/items/:index", h.RemoveShoppingListItem)
	}
}

// limitBody caps the request body at maxBytes. Reads past the cap fail, which
// the handlers report as a bad request.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
