// event.go - Inventory change events

package events

import (
	"context"
	"time"

	"go-inventory-backend/models"
)

type Type string

const (
	ProductCreated  Type = "product.created"
	ProductUpdated  Type = "product.updated"
	ProductDeleted  Type = "product.deleted"
	ProductLowStock Type = "product.low_stock"
)

type Event struct {
	Type      Type      `json:"type"`
	OwnerID   uint      `json:"owner_id"`
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	At        time.Time `json:"at"`
}

// Publisher delivers an event to some sink.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(e Event)
}

// ForProduct builds the events for a product write: the change itself and,
// for creates and updates leaving the product low on stock, a low stock alert.
func ForProduct(t Type, p *models.Product, at time.Time) []Event {
	base := Event{
		Type:      t,
		OwnerID:   p.UserID,
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		At:        at.UTC(),
	}
	out := []Event{base}
	if t != ProductDeleted && p.IsLowStock() {
		low := base
		low.Type = ProductLowStock
		out = append(out, low)
	}
	return out
}
