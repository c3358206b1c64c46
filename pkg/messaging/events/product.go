package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/cafekiosk/pkg/messaging"
)

// ProductCreatedEvent is published after a product has been stored.
// Carrier holds the propagated trace context.
type ProductCreatedEvent struct {
	Carrier       map[string]string `json:"carrier,omitempty"`
	ProductID     int64             `json:"product_id"`
	ProductNumber string            `json:"product_number"`
	Name          string            `json:"name"`
	Price         int64             `json:"price"`
	Type          string            `json:"type"`
	SellingStatus string            `json:"selling_status"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
