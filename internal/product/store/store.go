// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/abgdnv/cafekiosk/internal/product/domain"
)

// Queries is the set of product storage operations.
// It is implemented by the stores themselves and by the transaction-scoped view passed to WithTx.
type Queries interface {
	// Insert persists a new product and returns it with the storage-assigned fields set.
	// Returns ErrDuplicateProductNumber if the product number is already taken.
	Insert(ctx context.Context, product domain.Product) (*domain.Product, error)

	// FindAllBySellingStatusIn returns the products whose selling status is one of statuses.
	// Returns an empty slice if nothing matches. Order is unspecified.
	FindAllBySellingStatusIn(ctx context.Context, statuses []domain.SellingStatus) ([]domain.Product, error)

	// FindAllByProductNumberIn returns the products whose number is one of numbers.
	// Returns an empty slice if nothing matches. Order is unspecified.
	FindAllByProductNumberIn(ctx context.Context, numbers []string) ([]domain.Product, error)

	// FindLatestProductNumber returns the numerically greatest product number,
	// or nil if no product exists.
	FindLatestProductNumber(ctx context.Context) (*string, error)
}

// TxMode selects the access mode of a transaction.
type TxMode int

const (
	ReadOnly TxMode = iota
	ReadWrite
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	Queries

	// WithTx runs fn inside a single transaction. The transaction is committed when fn returns nil
	// and rolled back when fn returns an error or panics.
	// WithTx does not serialize concurrent callers.
	WithTx(ctx context.Context, mode TxMode, fn func(q Queries) error) error

	// Ping checks that the underlying storage is reachable.
	Ping(ctx context.Context) error
}
