// Package events contains the payloads published on product lifecycle changes.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/google/uuid"
)

// ProductEvent is emitted after a product has been created, updated or deleted.
// Name, Price and Quantity are absent for deletions; zero values are kept otherwise.
type ProductEvent struct {
	Kind       string    `json:"-"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	Quantity   *int32    `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductEvent) Subject() string {
	return e.Kind
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

func ProductCreated(id uuid.UUID, name string, price float64, quantity int32, at time.Time) ProductEvent {
	return ProductEvent{Kind: messaging.ProductCreatedSubject, ProductID: id, Name: name, Price: &price, Quantity: &quantity, OccurredAt: at}
}

func ProductUpdated(id uuid.UUID, name string, price float64, quantity int32, at time.Time) ProductEvent {
	return ProductEvent{Kind: messaging.ProductUpdatedSubject, ProductID: id, Name: name, Price: &price, Quantity: &quantity, OccurredAt: at}
}

func ProductDeleted(id uuid.UUID, at time.Time) ProductEvent {
	return ProductEvent{Kind: messaging.ProductDeletedSubject, ProductID: id, OccurredAt: at}
}
