// category.go - Category endpoints, scoped to the caller

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-inventory-backend/middleware"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
)

type CategoryInput struct {
	Name        string  `json:"name" form:"name" binding:"required,min=3,max=50"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=200"`
}

// CreateCategory - Adds a category owned by the caller
func (h *Handler) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBind(&input); err != nil {
		bindFailed(c, &input, err)
		return
	}

	category := models.Category{
		Name:        input.Name,
		Description: input.Description,
		UserID:      middleware.CurrentUser(c).ID,
	}
	if err := h.categories.Create(c.Request.Context(), &category); err != nil {
		serverError(c, "create category", err)
		return
	}
	c.JSON(http.StatusCreated, categoryResponse(&category))
}

// ListCategories - The caller's categories in creation order
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListByOwner(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		serverError(c, "list categories", err)
		return
	}
	out := make([]*CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, categoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, out)
}

// DeleteCategory removes the category; its products stay, uncategorised.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "category_id")
	if !ok {
		return
	}

	deleted, err := h.categories.Delete(c.Request.Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, models.ErrNotFound) {
		detail(c, http.StatusNotFound, "Category not found or not authorized to delete")
		return
	}
	if err != nil {
		serverError(c, "delete category", err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse(deleted))
}

// pathID parses the :id route parameter, writing a 422 when it is not a
// positive integer.
func pathID(c *gin.Context, field string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		invalid(c, FieldError{Field: field, Message: "Input should be a valid integer", Type: "int_parsing"})
		return 0, false
	}
	return uint(id), true
}
