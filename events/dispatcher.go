// dispatcher.go - Background event queue
//
// Events are queued on a buffered channel and published one at a time by a
// single goroutine, so request handlers never wait on the broker.

package events

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	DefaultQueueSize = 100
	publishTimeout   = 5 * time.Second
)

type Dispatcher struct {
	pub   Publisher
	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex // guards closed against sends on a closed queue
	closed bool
}

// NewDispatcher starts the worker goroutine. Call Close to drain and stop it.
func NewDispatcher(pub Publisher, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &Dispatcher{
		pub:   pub,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit queues e. When the queue is full or closed the event is dropped.
func (d *Dispatcher) Emit(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- e:
	default:
		log.Printf("events: queue full, dropping %s for product %d", e.Type, e.ProductID)
	}
}

// Close stops accepting events and waits until queued ones are published.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.pub.Publish(ctx, e); err != nil {
			log.Printf("events: publish %s for product %d: %v", e.Type, e.ProductID, err)
		}
		cancel()
	}
}
