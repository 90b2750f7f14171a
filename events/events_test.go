package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-inventory-backend/models"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Type
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestForProduct(t *testing.T) {
	at := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)

	healthy := &models.Product{ID: 1, UserID: 2, Name: "Mouse", Stock: 11}
	assert.Len(t, ForProduct(ProductCreated, healthy, at), 1)

	low := &models.Product{ID: 1, UserID: 2, Name: "Mouse", Stock: 10}
	got := ForProduct(ProductUpdated, low, at)
	if assert.Len(t, got, 2) {
		assert.Equal(t, ProductUpdated, got[0].Type)
		assert.Equal(t, ProductLowStock, got[1].Type)
		assert.Equal(t, uint(2), got[1].OwnerID)
		assert.Equal(t, at, got[1].At)
	}

	assert.Len(t, ForProduct(ProductDeleted, low, at), 1)
}

func TestDispatcherPublishesInOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, 10)

	d.Emit(Event{Type: ProductCreated})
	d.Emit(Event{Type: ProductUpdated})
	d.Emit(Event{Type: ProductDeleted})
	d.Close()

	assert.Equal(t, []Type{ProductCreated, ProductUpdated, ProductDeleted}, rec.types())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	d := NewDispatcher(rec, 1)

	// The first event is taken by the worker and blocks it; the second
	// fills the queue; the rest are dropped.
	d.Emit(Event{Type: ProductCreated})
	assert.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	d.Emit(Event{Type: ProductUpdated})
	d.Emit(Event{Type: ProductDeleted})
	d.Emit(Event{Type: ProductLowStock})

	close(rec.block)
	d.Close()
	assert.Equal(t, []Type{ProductCreated, ProductUpdated}, rec.types())
}

func TestDispatcherSurvivesPublishErrorsAndClose(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	d := NewDispatcher(rec, 0)

	d.Emit(Event{Type: ProductCreated})
	d.Emit(Event{Type: ProductUpdated})
	d.Close()
	d.Close()
	d.Emit(Event{Type: ProductDeleted})

	assert.Equal(t, []Type{ProductCreated, ProductUpdated}, rec.types())
}
