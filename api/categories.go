package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/expense-tracker/backend/events"
	"github.com/nemopss/expense-tracker/backend/logger"
	"github.com/nemopss/expense-tracker/backend/models"
)

// GetCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.DataResponse{data=[]models.Category}
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /category [get]
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.storage.GetCategories(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		handleError(c, logger.OpList, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Success 200 {object} models.DataResponse{data=models.Category}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /category/{id} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	category, err := h.storage.GetCategory(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		handleError(c, logger.OpRead, err)
		return
	}
	respond(c, http.StatusOK, category)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param category body models.CreateCategory true "Category"
// @Success 201 {object} models.DataResponse{data=models.Category}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /category [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var payload models.CreateCategory
	if !bindJSON(c, &payload) {
		return
	}

	user := currentUser(c)
	category := payload.Category(user.ID)
	if err := category.Validate(); err != nil {
		handleError(c, logger.OpCreate, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.storage.CreateCategory(ctx, &category); err != nil {
		handleError(c, logger.OpCreate, err)
		return
	}
	h.publish(ctx, events.Created, events.EntityCategory, category.ID, user.ID)
	respond(c, http.StatusCreated, category)
}

// PatchCategory godoc
// @Summary Partially update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Param category body models.UpdateCategory true "Fields to change"
// @Success 200 {object} models.DataResponse{data=models.Category}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /category/{id} [patch]
func (h *Handler) PatchCategory(c *gin.Context) {
	var payload models.UpdateCategory
	h.updateCategory(c, &payload, func(category *models.Category) { payload.Apply(category) })
}

// UpdateCategory godoc
// @Summary Replace a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Param category body models.CreateCategory true "Category"
// @Success 200 {object} models.DataResponse{data=models.Category}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /category/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	var payload models.CreateCategory
	h.updateCategory(c, &payload, func(category *models.Category) {
		category.Label = payload.Label
		category.Icon = payload.Icon
	})
}

// updateCategory decodes payload, applies it to the stored category and saves
// the result. apply runs after decoding.
func (h *Handler) updateCategory(c *gin.Context, payload any, apply func(*models.Category)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if !bindJSON(c, payload) {
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	category, err := h.storage.GetCategory(ctx, id, user.ID)
	if err != nil {
		handleError(c, logger.OpUpdate, err)
		return
	}

	apply(category)
	if err := category.Validate(); err != nil {
		handleError(c, logger.OpUpdate, err)
		return
	}
	if err := h.storage.UpdateCategory(ctx, category); err != nil {
		handleError(c, logger.OpUpdate, err)
		return
	}
	h.publish(ctx, events.Updated, events.EntityCategory, category.ID, user.ID)
	respond(c, http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Transactions referencing the category are kept
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Success 200 {object} models.DataResponse{data=models.DeletedResponse}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /category/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)
	if err := h.storage.DeleteCategory(ctx, id, user.ID); err != nil {
		handleError(c, logger.OpDelete, err)
		return
	}
	h.publish(ctx, events.Deleted, events.EntityCategory, id, user.ID)
	respond(c, http.StatusOK, models.DeletedResponse{ID: id})
}
