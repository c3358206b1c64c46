package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/cafekiosk/internal/product/domain"
	perrors "github.com/abgdnv/cafekiosk/internal/product/errors"
	"github.com/abgdnv/cafekiosk/internal/product/numbering"
)

// InMemoryStore implements ProductStore using an in-memory map keyed by product number.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	nextID   int64
	now      func() time.Time
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]domain.Product),
		nextID:   1,
		now:      time.Now,
	}
}

// Insert stores a copy of product and assigns its ID and creation time.
func (s *InMemoryStore) Insert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ProductNumber]; exists {
		return nil, perrors.ErrDuplicateProductNumber
	}
	createdAt := s.now()
	product.ID = s.nextID
	product.CreatedAt = &createdAt
	s.nextID++
	s.products[product.ProductNumber] = product

	return &product, nil
}

// FindAllBySellingStatusIn retrieves products having one of the given selling statuses.
func (s *InMemoryStore) FindAllBySellingStatusIn(ctx context.Context, statuses []domain.SellingStatus) ([]domain.Product, error) {
	return s.filter(ctx, func(p domain.Product) bool {
		return slices.Contains(statuses, p.SellingStatus)
	})
}

// FindAllByProductNumberIn retrieves products having one of the given product numbers.
func (s *InMemoryStore) FindAllByProductNumberIn(ctx context.Context, numbers []string) ([]domain.Product, error) {
	return s.filter(ctx, func(p domain.Product) bool {
		return slices.Contains(numbers, p.ProductNumber)
	})
}

// FindLatestProductNumber returns the numerically greatest product number, or nil if the store is empty.
func (s *InMemoryStore) FindLatestProductNumber(ctx context.Context) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *string
	for number := range s.products {
		if latest == nil || numbering.Compare(number, *latest) > 0 {
			n := number
			latest = &n
		}
	}
	return latest, nil
}

// WithTx calls fn with the store itself. Every call locks on its own, so concurrent
// read-then-insert sequences may interleave exactly as they do against PostgreSQL.
func (s *InMemoryStore) WithTx(ctx context.Context, _ TxMode, fn func(q Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *InMemoryStore) filter(ctx context.Context, keep func(p domain.Product) bool) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			list = append(list, p)
		}
	}
	return list, nil
}
