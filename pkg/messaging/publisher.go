// Package messaging defines the events published by the services and the publishers delivering them.
package messaging

import (
	"context"
)

// ProductsCreatedSubject is the subject product-created events are published on.
const ProductsCreatedSubject = "products.created"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
