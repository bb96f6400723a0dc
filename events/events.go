// Package events publishes order lifecycle events to interested consumers.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/foodiehub/ordering-api/models"
)

type Type string

const OrderCreated Type = "order.created"

type Event struct {
	ID         string        `json:"id"`
	Type       Type          `json:"type"`
	OccurredAt time.Time     `json:"occurredAt"`
	Order      *models.Order `json:"order"`
}

// NewOrderCreated wraps a freshly recorded order.
func NewOrderCreated(o *models.Order) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       OrderCreated,
		OccurredAt: time.Now().UTC(),
		Order:      o,
	}
}

// Key partitions events so one customer's orders stay in sequence.
func (e Event) Key() string {
	if e.Order == nil {
		return e.ID
	}
	return e.Order.UserID.Hex()
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi delivers to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
