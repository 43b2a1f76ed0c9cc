// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Product represents a product entity in the store.
type Product struct {
	ID       uuid.UUID
	Name     string
	Price    float64
	Quantity int32
}

// NewProduct builds a Product from already validated fields.
func NewProduct(id uuid.UUID, name string, price float64, quantity int32) Product {
	return Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Quantity: quantity,
	}
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., Cassandra, PostgreSQL, in-memory).
// Driver failures are reported as *errors.StorageError.
type ProductStore interface {
	// Save inserts the product or replaces the one stored under the same ID.
	Save(ctx context.Context, product Product) (*Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all stored products in store-defined order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// DeleteByID removes a product by its ID. Missing IDs are not an error.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error
}
