// Diet HTTP handlers.
//
// This file exposes REST endpoints for diet resources:
//   - GET    /diets               (all diets for admins, own diets otherwise)
//   - GET    /diets/info          (per-user diet date ranges)
//   - GET    /diets/{id}          (single diet, ETag support)
//   - POST   /diets               (create, Idempotency-Key support)
//   - PUT    /diets/{id}          (replace)
//   - DELETE /diets/{id}          (cascading delete)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous create with
// the same key succeeded, the originally created diet is returned with 200
// and `Idempotent-Replay: true` instead of creating a second one.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/http/middleware"
	"github.com/tbourn/go-diet-backend/internal/services"
	"github.com/tbourn/go-diet-backend/internal/utils"
)

//
// DTOs
//

// DietRequest is the JSON payload for creating or replacing a diet.
type DietRequest struct {
	// UserID is honored for admins only; other callers always own the diet.
	UserID   string               `json:"userId,omitempty" example:"user123"`
	Days     []domain.Day         `json:"days"`
	Metadata *domain.DietMetadata `json:"metadata,omitempty"`
}

// DietInfoResponse maps user ids to their diet summary.
type DietInfoResponse map[string]domain.DietInfo

//
// Helpers
//

// ownerFor picks the owning user for a diet written by p.
func ownerFor(p domain.Principal, requested string) string {
	requested = strings.TrimSpace(requested)
	if p.IsAdmin() && requested != "" {
		return requested
	}
	return p.ID
}

// validateDays rejects unknown meal types.
func validateDays(days []domain.Day) error {
	for _, d := range days {
		for _, m := range d.Meals {
			if !m.MealType.Valid() {
				return fmt.Errorf("unknown meal type %q", m.MealType)
			}
		}
	}
	return nil
}

func dietETag(d *domain.Diet) string {
	return fmt.Sprintf(`W/"diet:%s:%d"`, d.ID, d.UpdatedAt.UnixNano())
}

// etagMatches reports whether an If-None-Match header value selects etag.
// The header may list several tags or be "*"; comparison is weak, so the W/
// prefix is ignored on both sides.
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		if tag != "" && strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}

//
// Handlers
//

// ListDiets godoc
// @ID          listDiets
// @Summary     List diets
// @Description Admins receive every diet, or the diets of `userId` when given. Other callers receive their own diets.
// @Tags        Diets
// @Produce     json
// @Security    BearerAuth
// @Param       userId  query  string  false  "Owner filter"
// @Success     200  {array}   domain.Diet
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets [get]
func (h *Handlers) ListDiets(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	ctx := c.Request.Context()
	uid := strings.TrimSpace(c.Query("userId"))

	var (
		diets []domain.Diet
		err   error
	)
	switch {
	case uid != "" && !canAccess(p, uid):
		forbid(c)
		return
	case uid != "":
		diets, err = h.dietSvc.GetDietsByUserID(ctx, uid)
	case p.IsAdmin():
		diets, err = h.dietSvc.GetAllDiets(ctx)
	default:
		diets, err = h.dietSvc.GetDietsByUserID(ctx, p.ID)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, diets)
}

// DietsInfo godoc
// @ID          dietsInfo
// @Summary     Diet date ranges per user
// @Description For each user id returns whether a diet exists and the first and last planned day.
// @Tags        Diets
// @Produce     json
// @Security    BearerAuth
// @Param       userIds  query  string  true  "Comma-separated user ids"
// @Success     200  {object}  handlers.DietInfoResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets/info [get]
func (h *Handlers) DietsInfo(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	ids := utils.SplitCSV(c.Query("userIds"))
	if len(ids) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "userIds required")
		return
	}
	for _, id := range ids {
		if !canAccess(p, id) {
			forbid(c)
			return
		}
	}
	info, err := h.dietSvc.GetDietsInfoForUsers(c.Request.Context(), ids)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, DietInfoResponse(info))
}

// GetDiet godoc
// @ID          getDiet
// @Summary     Get a diet
// @Description Returns one diet. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Diets
// @Produce     json
// @Security    BearerAuth
// @Param       id             path    string  true   "Diet ID"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  domain.Diet
// @Header      200  {string}  ETag  "Weak ETag for current representation"
// @Success     304  {string}  string "Not Modified"
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets/{id} [get]
func (h *Handlers) GetDiet(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	d, err := h.dietSvc.GetDietByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !canAccess(p, d.UserID) {
		forbid(c)
		return
	}
	etag := dietETag(d)
	c.Header("ETag", etag)
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	ok(c, http.StatusOK, d)
}

// CreateDiet godoc
// @ID          createDiet
// @Summary     Create a diet
// @Description Creates a diet owned by the caller (admins may set userId). Supports Idempotency-Key.
// @Tags        Diets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body  body  handlers.DietRequest  true  "Diet payload"
// @Success     201  {object}  domain.Diet
// @Success     200  {object}  domain.Diet  "Replayed result"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets [post]
func (h *Handlers) CreateDiet(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	ctx := c.Request.Context()

	var req DietRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := validateDays(req.Days); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	owner := ownerFor(p, req.UserID)

	// Idempotency (replay path).
	key, _ := middleware.GetIdempotencyKey(c)
	if key != "" && h.idemSvc != nil {
		if dietID, found, err := h.idemSvc.Lookup(ctx, p.ID, key); err == nil && found {
			d, err := h.dietSvc.GetDietByID(ctx, dietID)
			if err == nil {
				c.Header(middleware.HeaderIdempotentReplay, "true")
				ok(c, http.StatusOK, d)
				return
			}
			if !errors.Is(err, services.ErrNotFound) {
				writeServiceError(c, err)
				return
			}
			// The replayed diet was deleted since; create a fresh one.
		}
	}

	d, err := h.dietSvc.CreateDiet(ctx, domain.Diet{UserID: owner, Days: req.Days, Metadata: req.Metadata})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// Idempotency (store path), best effort.
	if key != "" && h.idemSvc != nil {
		h.idemSvc.Remember(ctx, p.ID, key, d.ID, http.StatusCreated)
	}
	ok(c, http.StatusCreated, d)
}

// UpdateDiet godoc
// @ID          updateDiet
// @Summary     Replace a diet
// @Description Replaces the days and metadata of a diet. createdAt is preserved and missing day dates are set to now.
// @Tags        Diets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                true  "Diet ID"
// @Param       body  body  handlers.DietRequest  true  "Diet payload"
// @Success     200  {object}  domain.Diet
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets/{id} [put]
func (h *Handlers) UpdateDiet(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	var req DietRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := validateDays(req.Days); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	d, err := h.dietSvc.UpdateDiet(c.Request.Context(), domain.Diet{
		ID:       c.Param("id"),
		UserID:   ownerFor(p, req.UserID),
		Days:     req.Days,
		Metadata: req.Metadata,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// DeleteDiet godoc
// @ID          deleteDiet
// @Summary     Delete a diet
// @Description Deletes a diet together with its shopping lists and recipe references. Deleting a missing diet succeeds.
// @Tags        Diets
// @Security    BearerAuth
// @Param       id  path  string  true  "Diet ID"
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets/{id} [delete]
func (h *Handlers) DeleteDiet(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if !p.IsAdmin() {
		d, err := h.dietSvc.GetDietByID(ctx, id)
		switch {
		case err == nil && d.UserID != p.ID:
			forbid(c)
			return
		case err != nil && !errors.Is(err, services.ErrNotFound):
			writeServiceError(c, err)
			return
		}
	}

	if err := h.dietSvc.DeleteDiet(ctx, id); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
