// response.go - JSON shapes returned by the API

package handlers

import (
	"time"

	"go-inventory-backend/models"
	"go-inventory-backend/storage"

	"github.com/gin-gonic/gin"
)

type UserResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CategoryResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ProductResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Price       float64           `json:"price"`
	Stock       int               `json:"stock"`
	Sales       int               `json:"sales"`
	Image       *string           `json:"image"`
	Code        string            `json:"code"`
	CategoryID  *uint             `json:"category_id"`
	Category    *CategoryResponse `json:"category"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type ProductPage struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	TotalItems int64             `json:"total_items"`
	Products   []ProductResponse `json:"products"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// baseURL is the scheme and host the client used to reach us.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

func (h *Handler) mediaURL(c *gin.Context, value string) string {
	return storage.Resolve(h.media, baseURL(c), value)
}

func (h *Handler) userResponse(c *gin.Context, u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: h.mediaURL(c, u.ProfileImage),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func categoryResponse(cat *models.Category) *CategoryResponse {
	if cat == nil {
		return nil
	}
	return &CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description}
}

func (h *Handler) productResponse(c *gin.Context, p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Sales:       p.Sales,
		Code:        p.Code,
		CategoryID:  p.CategoryID,
		Category:    categoryResponse(p.Category),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Image != nil && *p.Image != "" {
		url := h.mediaURL(c, *p.Image)
		resp.Image = &url
	}
	return resp
}
