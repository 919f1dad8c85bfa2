// Recipe HTTP handlers.
//
// Endpoints:
//   - GET /recipes/{id}
//   - GET /recipes/batch?ids=a,b,c
//   - PUT /recipes/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/utils"
)

// RecipeRequest is the JSON payload for updating a recipe. createdAt and
// photos are owned by the server and cannot be changed here.
type RecipeRequest struct {
	Name              string                    `json:"name" example:"Overnight oats"`
	Instructions      string                    `json:"instructions"`
	NutritionalValues *domain.NutritionalValues `json:"nutritionalValues,omitempty"`
	ParentRecipeID    *string                   `json:"parentRecipeId,omitempty"`
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Get a recipe
// @Tags        Recipes
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Recipe ID"
// @Success     200  {object}  domain.Recipe
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	if _, okP := principal(c); !okP {
		return
	}
	r, err := h.recipeSvc.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// GetRecipesBatch godoc
// @ID          getRecipesBatch
// @Summary     Get several recipes
// @Description Returns the recipes for the given ids in request order. Unknown ids are skipped.
// @Tags        Recipes
// @Produce     json
// @Security    BearerAuth
// @Param       ids  query  string  true  "Comma-separated recipe ids"
// @Success     200  {array}   domain.Recipe
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/batch [get]
func (h *Handlers) GetRecipesBatch(c *gin.Context) {
	if _, okP := principal(c); !okP {
		return
	}
	ids := utils.SplitCSV(c.Query("ids"))
	if len(ids) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids required")
		return
	}
	rs, err := h.recipeSvc.GetRecipesByIDs(c.Request.Context(), ids)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, rs)
}

// UpdateRecipe godoc
// @ID          updateRecipe
// @Summary     Update a recipe
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                  true  "Recipe ID"
// @Param       body  body  handlers.RecipeRequest  true  "Recipe payload"
// @Success     200  {object}  domain.Recipe
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /recipes/{id} [put]
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	if _, okP := principal(c); !okP {
		return
	}
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.recipeSvc.UpdateRecipe(c.Request.Context(), c.Param("id"), domain.Recipe{
		Name:              req.Name,
		Instructions:      req.Instructions,
		NutritionalValues: req.NutritionalValues,
		ParentRecipeID:    req.ParentRecipeID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}
