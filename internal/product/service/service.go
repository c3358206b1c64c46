// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/cafekiosk/internal/product/domain"
	producterrors "github.com/abgdnv/cafekiosk/internal/product/errors"
	"github.com/abgdnv/cafekiosk/internal/product/numbering"
	"github.com/abgdnv/cafekiosk/internal/product/store"
	"github.com/abgdnv/cafekiosk/pkg/messaging"
	"github.com/abgdnv/cafekiosk/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing the product catalog.
type ProductService interface {
	// Create validates the request, assigns the next product number and stores the product.
	// Returns ErrInvalidProduct for an invalid request, ErrInvalidProductNumber when the latest
	// stored number is malformed and ErrDuplicateProductNumber when the number was taken concurrently.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindSelling returns the products visible for display.
	// Returns an empty slice if nothing matches.
	FindSelling(ctx context.Context) ([]ProductDto, error)

	// FindByProductNumbers returns the products with the given numbers.
	// Unknown numbers are ignored.
	FindByProductNumbers(ctx context.Context, numbers []string) ([]ProductDto, error)
}

// Service implements ProductService.
type Service struct {
	store           store.ProductStore
	generator       numbering.Generator
	publisher       messaging.Publisher
	validate        *validator.Validate
	logger          *slog.Logger
	productsCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService.
func NewService(productStore store.ProductStore, generator numbering.Generator, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("product-service")
	productsCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		store:           productStore,
		generator:       generator,
		publisher:       publisher,
		validate:        validator.New(),
		logger:          logger.With("component", "service"),
		productsCounter: productsCounter,
	}
}

// ProductCreateDto is the request to create a product.
// SellingStatus is optional and defaults to SELLING.
type ProductCreateDto struct {
	Name          string               `json:"name" validate:"required,max=100"`
	Price         int64                `json:"price" validate:"min=0"`
	Type          domain.ProductType   `json:"type" validate:"required,oneof=HANDMADE BOTTLE BAKERY"`
	SellingStatus domain.SellingStatus `json:"sellingStatus,omitempty" validate:"omitempty,oneof=SELLING HOLD STOP_SELLING"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID                       int64                `json:"id"`
	ProductNumber            string               `json:"productNumber"`
	Name                     string               `json:"name"`
	Price                    int64                `json:"price"`
	Type                     domain.ProductType   `json:"type"`
	TypeDescription          string               `json:"typeDescription"`
	SellingStatus            domain.SellingStatus `json:"sellingStatus"`
	SellingStatusDescription string               `json:"sellingStatusDescription"`
}

// Create stores a new product under the next sequential number.
// Reading the latest number and inserting are not serialized against concurrent creates;
// a lost race surfaces as ErrDuplicateProductNumber.
func (s *Service) Create(ctx context.Context, request ProductCreateDto) (*ProductDto, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("%w: %w", producterrors.ErrInvalidProduct, err)
	}
	status := request.SellingStatus
	if status == "" {
		status = domain.Selling
	}

	var created *domain.Product
	err := s.store.WithTx(ctx, store.ReadWrite, func(q store.Queries) error {
		latest, err := q.FindLatestProductNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to find latest product number: %w", err)
		}
		number, err := s.generator.Next(latest)
		if err != nil {
			return err
		}
		created, err = q.Insert(ctx, domain.Product{
			ProductNumber: number,
			Name:          request.Name,
			Price:         request.Price,
			Type:          request.Type,
			SellingStatus: status,
		})
		if err != nil {
			return fmt.Errorf("failed to insert product %s: %w", number, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Product created", "productNumber", created.ProductNumber, "name", created.Name)

	s.publishCreated(ctx, created)
	s.productsCounter.Add(ctx, 1)

	return toDto(created), nil
}

// publishCreated announces a stored product. Failures are logged only.
func (s *Service) publishCreated(ctx context.Context, p *domain.Product) {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.ProductCreatedEvent{
		Carrier:       carrier,
		ProductID:     p.ID,
		ProductNumber: p.ProductNumber,
		Name:          p.Name,
		Price:         p.Price,
		Type:          string(p.Type),
		SellingStatus: string(p.SellingStatus),
	}
	if p.CreatedAt != nil {
		event.CreatedAt = *p.CreatedAt
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ProductCreatedEvent", "productNumber", p.ProductNumber, "error", err)
	}
}

// FindSelling returns the products whose status is visible for display.
func (s *Service) FindSelling(ctx context.Context) ([]ProductDto, error) {
	var products []domain.Product
	err := s.store.WithTx(ctx, store.ReadOnly, func(q store.Queries) error {
		var err error
		products, err = q.FindAllBySellingStatusIn(ctx, domain.ForDisplay())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch selling products: %w", err)
	}
	return toDtos(products), nil
}

// FindByProductNumbers returns the products with the given numbers.
func (s *Service) FindByProductNumbers(ctx context.Context, numbers []string) ([]ProductDto, error) {
	if len(numbers) == 0 {
		return []ProductDto{}, nil
	}
	var products []domain.Product
	err := s.store.WithTx(ctx, store.ReadOnly, func(q store.Queries) error {
		var err error
		products, err = q.FindAllByProductNumberIn(ctx, numbers)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by number: %w", err)
	}
	return toDtos(products), nil
}

func toDtos(products []domain.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}

// toDto converts a domain.Product to a ProductDto.
func toDto(p *domain.Product) *ProductDto {
	return &ProductDto{
		ID:                       p.ID,
		ProductNumber:            p.ProductNumber,
		Name:                     p.Name,
		Price:                    p.Price,
		Type:                     p.Type,
		TypeDescription:          p.Type.Description(),
		SellingStatus:            p.SellingStatus,
		SellingStatusDescription: p.SellingStatus.Description(),
	}
}
