// product.go - Product endpoints, scoped to the caller

package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"go-inventory-backend/events"
	"go-inventory-backend/middleware"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductInput is the create form. A category_id of 0 means no category.
type ProductInput struct {
	Name        string                `form:"name" json:"name" binding:"required,min=3,max=100"`
	Description *string               `form:"description" json:"description" binding:"omitempty,max=500"`
	Price       *float64              `form:"price" json:"price" binding:"required,gt=0,lt=100000000"`
	Stock       *int                  `form:"stock" json:"stock" binding:"required,gt=0"`
	Sales       *int                  `form:"sales" json:"sales" binding:"omitnil,gte=0"`
	Code        string                `form:"code" json:"code" binding:"required,max=50"`
	CategoryID  *uint                 `form:"category_id" json:"category_id"`
	Image       *multipart.FileHeader `form:"image" json:"-"`
}

// ProductUpdateInput changes only the fields that are sent. Sending
// category_id=0 removes the category.
type ProductUpdateInput struct {
	Name        *string               `form:"name" json:"name" binding:"omitnil,min=3,max=100"`
	Description *string               `form:"description" json:"description" binding:"omitnil,max=500"`
	Price       *float64              `form:"price" json:"price" binding:"omitnil,gt=0,lt=100000000"`
	Stock       *int                  `form:"stock" json:"stock" binding:"omitnil,gt=0"`
	Sales       *int                  `form:"sales" json:"sales" binding:"omitnil,gte=0"`
	Code        *string               `form:"code" json:"code" binding:"omitnil,min=1,max=50"`
	CategoryID  *uint                 `form:"category_id" json:"category_id"`
	Image       *multipart.FileHeader `form:"image" json:"-"`
}

type ProductListQuery struct {
	Category          *uint  `form:"category"`
	LowStockThreshold *int   `form:"low_stock_threshold"`
	Search            string `form:"search"`
	OrderBy           string `form:"order_by"`
	Order             string `form:"order"` // "desc" in any case sorts descending, anything else ascending
	Page              int    `form:"page,default=1" binding:"gte=1"`
	PageSize          int    `form:"page_size,default=10" binding:"gte=1,lte=100"`
}

// CreateProduct - Adds a product to the caller's inventory
// Accepts a multipart form with an optional image.
//
// How it works:
// 1. Validates the form and rounds the price to cents
// 2. Rejects a code the caller already uses and a category they do not own
// 3. Stores the image, then the row; a failed insert removes the image
// 4. Emits product.created (and product.low_stock when stock <= 10)
func (h *Handler) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)

	// STEP 1: Validate the form
	var input ProductInput
	if err := c.ShouldBind(&input); err != nil {
		bindFailed(c, &input, err)
		return
	}
	price, ok := roundPrice(c, *input.Price)
	if !ok {
		return
	}
	if !h.codeAvailable(c, owner.ID, input.Code, 0) {
		return
	}
	categoryID, ok := h.ownedCategory(c, owner.ID, input.CategoryID)
	if !ok {
		return
	}

	product := models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       price,
		Stock:       *input.Stock,
		Code:        input.Code,
		CategoryID:  categoryID,
		UserID:      owner.ID,
	}
	if input.Sales != nil {
		product.Sales = *input.Sales
	}

	// STEP 2: Store the image before the row that points at it
	key, ok := h.uploadProductImage(c, owner.ID, input.Image)
	if !ok {
		return
	}
	if key != "" {
		product.Image = &key
	}

	// STEP 3: Save, removing the upload again if the row is not written
	if err := h.products.Create(ctx, &product); err != nil {
		h.discardMedia(ctx, key)
		serverError(c, "create product", err)
		return
	}

	h.emitProduct(events.ProductCreated, &product)
	c.JSON(http.StatusCreated, h.productResponse(c, &product))
}

// ListProducts - One page of the caller's products
// Filters by category, stock below a threshold and a name/description search,
// all combined. Sorting on an unknown column is ignored; rows always end in
// id order so pages never overlap.
func (h *Handler) ListProducts(c *gin.Context) {
	var query ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindFailed(c, &query, err)
		return
	}

	q := models.ProductQuery{
		LowStockThreshold: query.LowStockThreshold,
		Search:            query.Search,
		OrderBy:           query.OrderBy,
		Desc:              strings.EqualFold(strings.TrimSpace(query.Order), "desc"),
		Page:              query.Page,
		PageSize:          query.PageSize,
	}
	if query.Category != nil && *query.Category != 0 {
		q.CategoryID = query.Category
	}

	products, total, err := h.products.List(c.Request.Context(), middleware.CurrentUser(c).ID, q)
	if err != nil {
		serverError(c, "list products", err)
		return
	}

	page := ProductPage{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalPages: int((total + int64(query.PageSize) - 1) / int64(query.PageSize)),
		TotalItems: total,
		Products:   make([]ProductResponse, 0, len(products)),
	}
	for i := range products {
		page.Products = append(page.Products, h.productResponse(c, &products[i]))
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct - A single owned product; someone else's is a 404
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	product, ok := h.findProduct(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.productResponse(c, product))
}

// UpdateProduct - Partial update of an owned product
// Only fields present in the form are changed, so zero values such as
// sales=0 can be set. A new image replaces the old one, which is deleted
// once the row is saved.
func (h *Handler) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)

	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var input ProductUpdateInput
	if err := c.ShouldBind(&input); err != nil {
		bindFailed(c, &input, err)
		return
	}
	product, ok := h.findProduct(c, id)
	if !ok {
		return
	}

	// STEP 1: Apply the fields that were sent
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		price, ok := roundPrice(c, *input.Price)
		if !ok {
			return
		}
		product.Price = price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Sales != nil {
		product.Sales = *input.Sales
	}
	if input.Code != nil && *input.Code != product.Code {
		if !h.codeAvailable(c, owner.ID, *input.Code, product.ID) {
			return
		}
		product.Code = *input.Code
	}
	if input.CategoryID != nil {
		categoryID, ok := h.ownedCategory(c, owner.ID, input.CategoryID)
		if !ok {
			return
		}
		product.CategoryID = categoryID
	}

	// STEP 2: Swap in a new image if one was attached
	var oldImage string
	key, ok := h.uploadProductImage(c, owner.ID, input.Image)
	if !ok {
		return
	}
	if key != "" {
		if product.Image != nil {
			oldImage = *product.Image
		}
		product.Image = &key
	}

	// STEP 3: Save; only then is the replaced image unreferenced
	if err := h.products.Update(ctx, product); err != nil {
		h.discardMedia(ctx, key)
		serverError(c, "update product", err)
		return
	}
	h.discardMedia(ctx, oldImage)

	h.emitProduct(events.ProductUpdated, product)
	c.JSON(http.StatusOK, h.productResponse(c, product))
}

// DeleteProduct - Removes an owned product and its stored image
func (h *Handler) DeleteProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	deleted, err := h.products.Delete(ctx, id, middleware.CurrentUser(c).ID)
	if errors.Is(err, models.ErrNotFound) {
		detail(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		serverError(c, "delete product", err)
		return
	}
	if deleted.Image != nil {
		h.discardMedia(ctx, *deleted.Image)
	}

	h.emitProduct(events.ProductDeleted, deleted)
	c.Status(http.StatusNoContent)
}

// maxPrice is the first value the decimal(10,2) price column cannot hold.
var maxPrice = decimal.New(1, 8)

// roundPrice rounds v to cents and writes a 422 on price when the stored value
// would not be positive or would not fit the column.
func roundPrice(c *gin.Context, v float64) (decimal.Decimal, bool) {
	price := decimal.NewFromFloat(v).Round(2)
	if !price.IsPositive() {
		invalid(c, FieldError{Field: "price", Message: "Input should be at least 0.01", Type: "greater_than_equal"})
		return decimal.Decimal{}, false
	}
	if price.GreaterThanOrEqual(maxPrice) {
		invalid(c, FieldError{Field: "price", Message: "Input should be less than 100000000", Type: "less_than"})
		return decimal.Decimal{}, false
	}
	return price, true
}

func (h *Handler) findProduct(c *gin.Context, id uint) (*models.Product, bool) {
	product, err := h.products.FindOwned(c.Request.Context(), id, middleware.CurrentUser(c).ID)
	if errors.Is(err, models.ErrNotFound) {
		detail(c, http.StatusNotFound, "Product not found")
		return nil, false
	}
	if err != nil {
		serverError(c, "find product", err)
		return nil, false
	}
	return product, true
}

// codeAvailable enforces per owner product codes when enabled.
func (h *Handler) codeAvailable(c *gin.Context, ownerID uint, code string, excludeID uint) bool {
	if !h.uniqueCodes {
		return true
	}
	exists, err := h.products.CodeExists(c.Request.Context(), ownerID, code, excludeID)
	if err != nil {
		serverError(c, "check product code", err)
		return false
	}
	if exists {
		detail(c, http.StatusBadRequest, "Product code already exists")
		return false
	}
	return true
}

// ownedCategory checks that a requested category belongs to the owner. A nil
// or zero id yields no category.
func (h *Handler) ownedCategory(c *gin.Context, ownerID uint, id *uint) (*uint, bool) {
	if id == nil || *id == 0 {
		return nil, true
	}
	category, err := h.categories.FindOwned(c.Request.Context(), *id, ownerID)
	if errors.Is(err, models.ErrNotFound) {
		invalid(c, FieldError{Field: "category_id", Message: "Category not found", Type: "value_error"})
		return nil, false
	}
	if err != nil {
		serverError(c, "find category", err)
		return nil, false
	}
	return &category.ID, true
}

func (h *Handler) uploadProductImage(c *gin.Context, ownerID uint, fh *multipart.FileHeader) (string, bool) {
	if fh == nil {
		return "", true
	}
	key, err := h.upload(c.Request.Context(), productPrefix(ownerID), fh)
	if err != nil {
		serverError(c, "upload product image", err)
		return "", false
	}
	return key, true
}

func productPrefix(ownerID uint) string {
	return fmt.Sprintf("product_images/%d", ownerID)
}
