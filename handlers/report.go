// report.go - Aggregate reports over the caller's products

package handlers

import (
	"net/http"
	"time"

	"go-inventory-backend/middleware"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// salesWindow is the default range of the sales over time report.
const salesWindow = 30 * 24 * time.Hour

type RangeQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type RankingQuery struct {
	RangeQuery
	Limit int `form:"limit,default=10" binding:"gte=1"`
}

type DashboardResponse struct {
	TotalProducts    int64   `json:"total_products"`
	LowStockProducts int64   `json:"low_stock_products"`
	TotalStockValue  float64 `json:"total_stock_value"`
	TotalSales       int64   `json:"total_sales"`
	TotalRevenue     float64 `json:"total_revenue"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
}

type CategoryCountResponse struct {
	Category     string `json:"category"`
	ProductCount int64  `json:"product_count"`
}

type ProductSalesResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	TotalSold int64  `json:"total_sold"`
}

type CategorySalesResponse struct {
	Category  string `json:"category"`
	TotalSold int64  `json:"total_sold"`
}

type SalesPointResponse struct {
	Date       string `json:"date"`
	TotalSales int64  `json:"total_sales"`
}

// DateRange covers whole days: start_date from 00:00:00, end_date through
// 23:59:59, both UTC.
func (q RangeQuery) DateRange() models.DateRange {
	var dr models.DateRange
	if start, err := time.Parse(dateLayout, q.StartDate); err == nil {
		dr.Start = &start
	}
	if end, err := time.Parse(dateLayout, q.EndDate); err == nil {
		end = endOfDay(end)
		dr.End = &end
	}
	return dr
}

func endOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Nanosecond)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DashboardMetrics - Totals over the caller's products
// Sums are zero, never null, when nothing matches. The requested range is
// echoed back.
func (h *Handler) DashboardMetrics(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, &q, err)
		return
	}

	m, err := h.reports.DashboardMetrics(c.Request.Context(), middleware.CurrentUser(c).ID, q.DateRange())
	if err != nil {
		serverError(c, "dashboard metrics", err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		TotalProducts:    m.TotalProducts,
		LowStockProducts: m.LowStockProducts,
		TotalStockValue:  m.TotalStockValue.Round(2).InexactFloat64(),
		TotalSales:       m.TotalSales,
		TotalRevenue:     m.TotalRevenue.Round(2).InexactFloat64(),
		StartDate:        optional(q.StartDate),
		EndDate:          optional(q.EndDate),
	})
}

func (h *Handler) ProductsByCategory(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, &q, err)
		return
	}

	rows, err := h.reports.ProductsByCategory(c.Request.Context(), middleware.CurrentUser(c).ID, q.DateRange())
	if err != nil {
		serverError(c, "products by category", err)
		return
	}
	out := make([]CategoryCountResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryCountResponse{Category: r.Category, ProductCount: r.ProductCount})
	}
	c.JSON(http.StatusOK, out)
}

// MostSoldProducts - Top products by sales, ties by id
func (h *Handler) MostSoldProducts(c *gin.Context) {
	var q RankingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, &q, err)
		return
	}

	rows, err := h.reports.MostSoldProducts(c.Request.Context(), middleware.CurrentUser(c).ID, q.DateRange(), q.Limit)
	if err != nil {
		serverError(c, "most sold products", err)
		return
	}
	out := make([]ProductSalesResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductSalesResponse{ID: r.ID, Name: r.Name, TotalSold: r.TotalSold})
	}
	c.JSON(http.StatusOK, out)
}

// MostSoldCategories - Top categories by summed sales, ties by name
func (h *Handler) MostSoldCategories(c *gin.Context) {
	var q RankingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, &q, err)
		return
	}

	rows, err := h.reports.MostSoldCategories(c.Request.Context(), middleware.CurrentUser(c).ID, q.DateRange(), q.Limit)
	if err != nil {
		serverError(c, "most sold categories", err)
		return
	}
	out := make([]CategorySalesResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategorySalesResponse{Category: r.Category, TotalSold: r.TotalSold})
	}
	c.JSON(http.StatusOK, out)
}

// SalesOverTime sums sales per day. Without a range it covers the last 30
// days. Bounds may be dates or RFC 3339 instants.
func (h *Handler) SalesOverTime(c *gin.Context) {
	now := h.now().UTC()
	start, end := now.Add(-salesWindow), now

	if raw := c.Query("start_date"); raw != "" {
		t, ok := parseInstant(raw, false)
		if !ok {
			invalid(c, FieldError{Field: "start_date", Message: "Input should be a valid date or datetime", Type: "datetime_parsing"})
			return
		}
		start = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, ok := parseInstant(raw, true)
		if !ok {
			invalid(c, FieldError{Field: "end_date", Message: "Input should be a valid date or datetime", Type: "datetime_parsing"})
			return
		}
		end = t
	}

	rows, err := h.reports.SalesOverTime(c.Request.Context(), middleware.CurrentUser(c).ID, models.DateRange{Start: &start, End: &end})
	if err != nil {
		serverError(c, "sales over time", err)
		return
	}
	out := make([]SalesPointResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SalesPointResponse{Date: r.Date, TotalSales: r.TotalSales})
	}
	c.JSON(http.StatusOK, out)
}

// parseInstant accepts a date, a zone-less datetime (read as UTC) or an RFC
// 3339 instant. A bare date used as an upper bound means the end of that day.
func parseInstant(raw string, upper bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if upper {
			t = endOfDay(t)
		}
		return t, true
	}
	return time.Time{}, false
}
