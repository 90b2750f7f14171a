// handler.go - Shared dependencies for the HTTP handlers

package handlers

import (
	"context"
	"time"

	"go-inventory-backend/events"
	"go-inventory-backend/models"
	"go-inventory-backend/storage"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
}

type Credentials interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	IssueFor(user *models.User) (string, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Category, error)
	FindOwned(ctx context.Context, id, ownerID uint) (*models.Category, error)
	Delete(ctx context.Context, id, ownerID uint) (*models.Category, error)
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindOwned(ctx context.Context, id, ownerID uint) (*models.Product, error)
	List(ctx context.Context, ownerID uint, q models.ProductQuery) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id, ownerID uint) (*models.Product, error)
	CodeExists(ctx context.Context, ownerID uint, code string, excludeID uint) (bool, error)
}

type ReportStore interface {
	DashboardMetrics(ctx context.Context, ownerID uint, dr models.DateRange) (*models.DashboardMetrics, error)
	ProductsByCategory(ctx context.Context, ownerID uint, dr models.DateRange) ([]models.CategoryCount, error)
	MostSoldProducts(ctx context.Context, ownerID uint, dr models.DateRange, limit int) ([]models.ProductSales, error)
	MostSoldCategories(ctx context.Context, ownerID uint, dr models.DateRange, limit int) ([]models.CategorySales, error)
	SalesOverTime(ctx context.Context, ownerID uint, dr models.DateRange) ([]models.SalesPoint, error)
	LowStock(ctx context.Context, ownerID uint) ([]models.Product, error)
}

// Handler serves every API endpoint. Build it with New.
type Handler struct {
	users       UserStore
	credentials Credentials
	categories  CategoryStore
	products    ProductStore
	reports     ReportStore
	media       storage.Store
	events      events.Emitter

	uniqueCodes bool
	now         func() time.Time
}

type Options struct {
	Users       UserStore
	Credentials Credentials
	Categories  CategoryStore
	Products    ProductStore
	Reports     ReportStore
	Media       storage.Store
	Events      events.Emitter // optional

	UniqueProductCodes bool
}

func New(opts Options) *Handler {
	emitter := opts.Events
	if emitter == nil {
		emitter = discard{}
	}
	return &Handler{
		users:       opts.Users,
		credentials: opts.Credentials,
		categories:  opts.Categories,
		products:    opts.Products,
		reports:     opts.Reports,
		media:       opts.Media,
		events:      emitter,
		uniqueCodes: opts.UniqueProductCodes,
		now:         time.Now,
	}
}

type discard struct{}

func (discard) Emit(events.Event) {}

func (h *Handler) emitProduct(t events.Type, p *models.Product) {
	for _, e := range events.ForProduct(t, p, h.now()) {
		h.events.Emit(e)
	}
}
