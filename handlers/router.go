// router.go - Route table

package handlers

import (
	"time"

	"go-inventory-backend/middleware"
	"go-inventory-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	CORSOrigins []string
	UploadDir   string          // served at /uploads when set
	Limiter     gin.HandlerFunc // applied to registration and login when set
}

func NewRouter(h *Handler, resolver middleware.TokenResolver, opts RouterOptions) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(opts.CORSOrigins))

	if opts.UploadDir != "" {
		r.Static(storage.MountPath, opts.UploadDir)
	}

	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if opts.Limiter == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{opts.Limiter, handler}
	}

	// Public routes
	users := r.Group("/users")
	users.POST("", limited(h.Register)...)
	users.POST("/token", limited(h.Login)...)

	// Protected routes
	authed := r.Group("")
	authed.Use(middleware.Auth(resolver))
	{
		authed.GET("/users/me", h.Me)

		authed.POST("/products/categories", h.CreateCategory)
		authed.GET("/products/categories", h.ListCategories)
		authed.DELETE("/products/categories/:id", h.DeleteCategory)

		authed.POST("/products", h.CreateProduct)
		authed.GET("/products", h.ListProducts)
		authed.GET("/products/:id", h.GetProduct)
		authed.PUT("/products/:id", h.UpdateProduct)
		authed.DELETE("/products/:id", h.DeleteProduct)

		reports := authed.Group("/reports")
		reports.GET("/dashboard_metrics", h.DashboardMetrics)
		reports.GET("/products_by_category", h.ProductsByCategory)
		reports.GET("/most_sold_products", h.MostSoldProducts)
		reports.GET("/most_sold_categories", h.MostSoldCategories)
		reports.GET("/sales_over_time", h.SalesOverTime)
		reports.GET("/export", h.ExportReport)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
