package sales

import (
	"context"
	"time"
)

// EventType names the kind of mutation a change event describes.
type EventType string

const (
	EventCreated EventType = "sale.created"
	EventUpdated EventType = "sale.updated"
	EventDeleted EventType = "sale.deleted"
)

// Event describes a committed change to a sale.
type Event struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	SaleID    int64     `json:"sale_id"`
	Sale      *Sale     `json:"sale,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers change events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
