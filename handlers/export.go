// export.go - PDF inventory report

package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go-inventory-backend/middleware"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// ExportReport renders the dashboard metrics and the low stock table as a
// PDF download.
func (h *Handler) ExportReport(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, &q, err)
		return
	}
	owner := middleware.CurrentUser(c)

	metrics, err := h.reports.DashboardMetrics(c.Request.Context(), owner.ID, q.DateRange())
	if err != nil {
		serverError(c, "export: dashboard metrics", err)
		return
	}
	lowStock, err := h.reports.LowStock(c.Request.Context(), owner.ID)
	if err != nil {
		serverError(c, "export: low stock", err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderReport(&buf, owner, q, metrics, lowStock); err != nil {
		serverError(c, "export: render pdf", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=inventory_report_%s.pdf", h.now().UTC().Format("20060102")))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handler) renderReport(buf *bytes.Buffer, owner *models.User, q RangeQuery, m *models.DashboardMetrics, lowStock []models.Product) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Inventory Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s - generated %s", owner.Email, h.now().UTC().Format("2006-01-02 15:04 MST")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	if q.StartDate != "" || q.EndDate != "" {
		from, to := q.StartDate, q.EndDate
		if from == "" {
			from = "beginning"
		}
		if to == "" {
			to = "today"
		}
		pdf.CellFormat(0, 8, fmt.Sprintf("Date Range: %s to %s", from, to), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	// Summary
	summary := [][2]string{
		{"Total products", fmt.Sprintf("%d", m.TotalProducts)},
		{"Low stock products", fmt.Sprintf("%d", m.LowStockProducts)},
		{"Inventory value", m.TotalStockValue.StringFixed(2)},
		{"Units sold", fmt.Sprintf("%d", m.TotalSales)},
		{"Revenue", m.TotalRevenue.StringFixed(2)},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	// Low stock table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Low stock (%d or fewer)", models.LowStockThreshold), "", 1, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Code", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 8, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Stock", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	if len(lowStock) == 0 {
		pdf.CellFormat(170, 8, "No products are low on stock.", "1", 1, "C", false, 0, "")
	}
	for _, p := range lowStock {
		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}
		pdf.CellFormat(30, 8, p.Code, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 8, p.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", p.Stock), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(buf)
}
