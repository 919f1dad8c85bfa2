// Shopping list HTTP handlers.
//
// Endpoints:
//   - GET    /diets/{id}/shopping-list
//   - PUT    /shopping-lists/{id}/items
//   - POST   /shopping-lists/{id}/categories/{category}/items
//   - DELETE /shopping-lists/{id}/categories/{category}/items/{index}
//
// Only the owner of a list (or an admin) may read or change it.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/utils"
)

// ItemsRequest replaces every category of a shopping list.
type ItemsRequest struct {
	Items map[string][]domain.CategorizedItem `json:"items" binding:"required"`
}

// ownedList loads the list and checks the caller may act on it. It writes
// the error response itself and returns false when the request must stop.
func (h *Handlers) ownedList(c *gin.Context, p domain.Principal, id string) bool {
	l, err := h.listSvc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return false
	}
	if !canAccess(p, l.UserID) {
		forbid(c)
		return false
	}
	return true
}

// GetShoppingList godoc
// @ID          getShoppingListByDiet
// @Summary     Get the shopping list of a diet
// @Tags        ShoppingLists
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Diet ID"
// @Success     200  {object}  domain.ShoppingList
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /diets/{id}/shopping-list [get]
func (h *Handlers) GetShoppingList(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	l, err := h.listSvc.GetByDietID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !canAccess(p, l.UserID) {
		forbid(c)
		return
	}
	ok(c, http.StatusOK, l)
}

// UpdateShoppingListItems godoc
// @ID          updateShoppingListItems
// @Summary     Replace shopping list items
// @Description Replaces all categories. Categories with no items are dropped.
// @Tags        ShoppingLists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                 true  "Shopping list ID"
// @Param       body  body  handlers.ItemsRequest  true  "Items by category"
// @Success     200  {object}  domain.ShoppingList
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /shopping-lists/{id}/items [put]
func (h *Handlers) UpdateShoppingListItems(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	var req ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := c.Param("id")
	if !h.ownedList(c, p, id) {
		return
	}
	l, err := h.listSvc.UpdateItems(c.Request.Context(), id, req.Items)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

// AddShoppingListItem godoc
// @ID          addShoppingListItem
// @Summary     Add an item to a category
// @Description Appends the item, creating the category when needed.
// @Tags        ShoppingLists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string                  true  "Shopping list ID"
// @Param       category  path  string                  true  "Category name"
// @Param       body      body  domain.CategorizedItem  true  "Item"
// @Success     200  {object}  domain.ShoppingList
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /shopping-lists/{id}/categories/{category}/items [post]
func (h *Handlers) AddShoppingListItem(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	var item domain.CategorizedItem
	if err := c.ShouldBindJSON(&item); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := c.Param("id")
	if !h.ownedList(c, p, id) {
		return
	}
	l, err := h.listSvc.AddItemToCategory(c.Request.Context(), id, c.Param("category"), item)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, l)
}

// RemoveShoppingListItem godoc
// @ID          removeShoppingListItem
// @Summary     Remove an item from a category
// @Description Removes the item at index. A category left empty is removed.
// @Tags        ShoppingLists
// @Security    BearerAuth
// @Param       id        path  string   true  "Shopping list ID"
// @Param       category  path  string   true  "Category name"
// @Param       index     path  integer  true  "Zero-based item index"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /shopping-lists/{id}/categories/{category}/items/{index} [delete]
func (h *Handlers) RemoveShoppingListItem(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	index := utils.AtoiDefault(c.Param("index"), -1)
	id := c.Param("id")
	if !h.ownedList(c, p, id) {
		return
	}
	if _, err := h.listSvc.RemoveItemFromCategory(c.Request.Context(), id, c.Param("category"), index); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
