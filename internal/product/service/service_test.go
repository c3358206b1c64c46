package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/cafekiosk/internal/product/domain"
	producterrors "github.com/abgdnv/cafekiosk/internal/product/errors"
	"github.com/abgdnv/cafekiosk/internal/product/numbering"
	"github.com/abgdnv/cafekiosk/internal/product/store"
	"github.com/abgdnv/cafekiosk/pkg/messaging"
	"github.com/abgdnv/cafekiosk/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	latest    *string
	latestErr error
	insertErr error
	findErr   error
	products  []domain.Product

	inserted   []domain.Product
	txModes    []store.TxMode
	findCalled bool
}

func (m *mockProductStore) Insert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	p.ID = int64(len(m.inserted) + 1)
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.CreatedAt = &createdAt
	m.inserted = append(m.inserted, p)
	return &p, nil
}

func (m *mockProductStore) FindAllBySellingStatusIn(_ context.Context, _ []domain.SellingStatus) ([]domain.Product, error) {
	m.findCalled = true
	return m.products, m.findErr
}

func (m *mockProductStore) FindAllByProductNumberIn(_ context.Context, _ []string) ([]domain.Product, error) {
	m.findCalled = true
	return m.products, m.findErr
}

func (m *mockProductStore) FindLatestProductNumber(_ context.Context) (*string, error) {
	return m.latest, m.latestErr
}

func (m *mockProductStore) WithTx(_ context.Context, mode store.TxMode, fn func(q store.Queries) error) error {
	m.txModes = append(m.txModes, mode)
	return fn(m)
}

func (m *mockProductStore) Ping(_ context.Context) error {
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string {
	return &s
}

func newTestService(s store.ProductStore, p messaging.Publisher) *Service {
	return NewService(s, numbering.NewGenerator(numbering.DefaultWidth), p, discardLogger())
}

func Test_ProductService_Create(t *testing.T) {
	errStore := errors.New("store error")
	valid := ProductCreateDto{Name: "아메리카노", Price: 4000, Type: domain.Handmade}

	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		request      ProductCreateDto
		expected     *ProductDto
		expectError  error
		expectInsert bool
	}{
		{
			name:      "Success - first product",
			mockStore: &mockProductStore{},
			request:   valid,
			expected: &ProductDto{
				ID: 1, ProductNumber: "001", Name: "아메리카노", Price: 4000,
				Type: domain.Handmade, TypeDescription: "제조 음료",
				SellingStatus: domain.Selling, SellingStatusDescription: "판매중",
			},
			expectInsert: true,
		},
		{
			name:      "Success - next after latest",
			mockStore: &mockProductStore{latest: ptr("099")},
			request:   ProductCreateDto{Name: "카페라떼", Price: 4500, Type: domain.Handmade, SellingStatus: domain.Hold},
			expected: &ProductDto{
				ID: 1, ProductNumber: "100", Name: "카페라떼", Price: 4500,
				Type: domain.Handmade, TypeDescription: "제조 음료",
				SellingStatus: domain.Hold, SellingStatusDescription: "판매보류",
			},
			expectInsert: true,
		},
		{
			name:        "Error - missing name",
			mockStore:   &mockProductStore{},
			request:     ProductCreateDto{Price: 4000, Type: domain.Handmade},
			expectError: producterrors.ErrInvalidProduct,
		},
		{
			name:        "Error - negative price",
			mockStore:   &mockProductStore{},
			request:     ProductCreateDto{Name: "팥빙수", Price: -1, Type: domain.Bakery},
			expectError: producterrors.ErrInvalidProduct,
		},
		{
			name:        "Error - unknown type",
			mockStore:   &mockProductStore{},
			request:     ProductCreateDto{Name: "팥빙수", Price: 7000, Type: "FROZEN"},
			expectError: producterrors.ErrInvalidProduct,
		},
		{
			name:        "Error - unknown selling status",
			mockStore:   &mockProductStore{},
			request:     ProductCreateDto{Name: "팥빙수", Price: 7000, Type: domain.Bakery, SellingStatus: "SOLD_OUT"},
			expectError: producterrors.ErrInvalidProduct,
		},
		{
			name:        "Error - malformed latest number",
			mockStore:   &mockProductStore{latest: ptr("A12")},
			request:     valid,
			expectError: producterrors.ErrInvalidProductNumber,
		},
		{
			name:        "Error - latest number lookup fails",
			mockStore:   &mockProductStore{latestErr: errStore},
			request:     valid,
			expectError: errStore,
		},
		{
			name:        "Error - duplicate number",
			mockStore:   &mockProductStore{latest: ptr("001"), insertErr: producterrors.ErrDuplicateProductNumber},
			request:     valid,
			expectError: producterrors.ErrDuplicateProductNumber,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore, messaging.NoopPublisher{})
			// when
			created, err := service.Create(context.Background(), tc.request)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Empty(t, tc.mockStore.inserted)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, created)
			assert.Len(t, tc.mockStore.inserted, 1)
			assert.Equal(t, []store.TxMode{store.ReadWrite}, tc.mockStore.txModes)
		})
	}
}

func Test_ProductService_Create_ValidationSkipsStorage(t *testing.T) {
	mockStore := &mockProductStore{}
	service := newTestService(mockStore, messaging.NoopPublisher{})

	_, err := service.Create(context.Background(), ProductCreateDto{})

	require.ErrorIs(t, err, producterrors.ErrInvalidProduct)
	assert.Empty(t, mockStore.txModes)
}

func Test_ProductService_Create_NameLengthCountsRunes(t *testing.T) {
	service := newTestService(store.NewInMemoryStore(), messaging.NoopPublisher{})
	name := ""
	for range 100 {
		name += "가"
	}

	_, err := service.Create(context.Background(), ProductCreateDto{Name: name, Price: 0, Type: domain.Bottle})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), ProductCreateDto{Name: name + "가", Price: 0, Type: domain.Bottle})
	assert.ErrorIs(t, err, producterrors.ErrInvalidProduct)
}

func Test_ProductService_Create_PublishesEvent(t *testing.T) {
	// given
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.ProductCreatedEvent) bool {
		return e.ProductNumber == "001" && e.Name == "아메리카노" && e.Type == "HANDMADE" && e.SellingStatus == "SELLING"
	})).Return(nil).Once()
	service := newTestService(&mockProductStore{}, publisher)

	// when
	_, err := service.Create(context.Background(), ProductCreateDto{Name: "아메리카노", Price: 4000, Type: domain.Handmade})

	// then
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func Test_ProductService_Create_PublishFailureIsNotReturned(t *testing.T) {
	// given
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	mockStore := &mockProductStore{}
	service := newTestService(mockStore, publisher)

	// when
	created, err := service.Create(context.Background(), ProductCreateDto{Name: "아메리카노", Price: 4000, Type: domain.Handmade})

	// then
	require.NoError(t, err)
	assert.Equal(t, "001", created.ProductNumber)
	assert.Len(t, mockStore.inserted, 1)
	publisher.AssertExpectations(t)
}

func Test_ProductService_Create_NoEventOnFailure(t *testing.T) {
	publisher := new(mockPublisher)
	service := newTestService(&mockProductStore{insertErr: producterrors.ErrDuplicateProductNumber}, publisher)

	_, err := service.Create(context.Background(), ProductCreateDto{Name: "아메리카노", Price: 4000, Type: domain.Handmade})

	require.Error(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func Test_ProductService_Create_SequentialNumbers(t *testing.T) {
	// given
	service := newTestService(store.NewInMemoryStore(), nil)
	const n = 12

	// when
	numbers := make([]string, 0, n)
	for i := range n {
		created, err := service.Create(context.Background(), ProductCreateDto{
			Name:  fmt.Sprintf("product %d", i),
			Price: int64(i * 100),
			Type:  domain.Bakery,
		})
		require.NoError(t, err)
		numbers = append(numbers, created.ProductNumber)
	}

	// then
	for i, number := range numbers {
		assert.Equal(t, fmt.Sprintf("%03d", i+1), number)
	}
}

func Test_ProductService_Create_LatestStoredIsFirstNumber(t *testing.T) {
	productStore := store.NewInMemoryStore()
	service := newTestService(productStore, nil)

	_, err := service.Create(context.Background(), ProductCreateDto{Name: "아메리카노", Price: 4000, Type: domain.Handmade})
	require.NoError(t, err)

	latest, err := productStore.FindLatestProductNumber(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "001", *latest)
}

func Test_ProductService_FindSelling(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		expectedList []ProductDto
		expectError  error
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{products: []domain.Product{
				{ID: 1, ProductNumber: "001", Name: "아메리카노", Price: 4000, Type: domain.Handmade, SellingStatus: domain.Selling},
			}},
			expectedList: []ProductDto{{
				ID: 1, ProductNumber: "001", Name: "아메리카노", Price: 4000,
				Type: domain.Handmade, TypeDescription: "제조 음료",
				SellingStatus: domain.Selling, SellingStatusDescription: "판매중",
			}},
		},
		{
			name:         "Success - no products",
			mockStore:    &mockProductStore{products: []domain.Product{}},
			expectedList: []ProductDto{},
		},
		{
			name:         "Success - nil from store becomes empty",
			mockStore:    &mockProductStore{},
			expectedList: []ProductDto{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{findErr: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore, nil)
			// when
			list, err := service.FindSelling(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, list)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, list)
			assert.Equal(t, tc.expectedList, list)
			assert.Equal(t, []store.TxMode{store.ReadOnly}, tc.mockStore.txModes)
		})
	}
}

func Test_ProductService_FindSelling_DisplayPolicy(t *testing.T) {
	// given
	productStore := store.NewInMemoryStore()
	ctx := context.Background()
	for _, p := range []domain.Product{
		{ProductNumber: "001", Name: "아메리카노", Price: 4000, Type: domain.Handmade, SellingStatus: domain.Selling},
		{ProductNumber: "002", Name: "카페라떼", Price: 4500, Type: domain.Handmade, SellingStatus: domain.Hold},
		{ProductNumber: "003", Name: "팥빙수", Price: 7000, Type: domain.Handmade, SellingStatus: domain.StopSelling},
	} {
		_, err := productStore.Insert(ctx, p)
		require.NoError(t, err)
	}
	service := newTestService(productStore, nil)

	// when
	list, err := service.FindSelling(ctx)

	// then
	require.NoError(t, err)
	numbers := make([]string, 0, len(list))
	for _, p := range list {
		numbers = append(numbers, p.ProductNumber)
	}
	assert.ElementsMatch(t, []string{"001", "002"}, numbers)
}

func Test_ProductService_FindByProductNumbers(t *testing.T) {
	t.Run("empty input does not touch storage", func(t *testing.T) {
		mockStore := &mockProductStore{}
		service := newTestService(mockStore, nil)

		list, err := service.FindByProductNumbers(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []ProductDto{}, list)
		assert.False(t, mockStore.findCalled)
		assert.Empty(t, mockStore.txModes)
	})

	t.Run("returns matching products", func(t *testing.T) {
		productStore := store.NewInMemoryStore()
		service := newTestService(productStore, nil)
		ctx := context.Background()
		for _, name := range []string{"아메리카노", "카페라떼", "팥빙수"} {
			_, err := service.Create(ctx, ProductCreateDto{Name: name, Price: 4000, Type: domain.Handmade})
			require.NoError(t, err)
		}

		list, err := service.FindByProductNumbers(ctx, []string{"001", "003", "404"})

		require.NoError(t, err)
		names := make([]string, 0, len(list))
		for _, p := range list {
			names = append(names, p.Name)
		}
		assert.ElementsMatch(t, []string{"아메리카노", "팥빙수"}, names)
	})

	t.Run("store error", func(t *testing.T) {
		errStore := errors.New("store error")
		service := newTestService(&mockProductStore{findErr: errStore}, nil)

		list, err := service.FindByProductNumbers(context.Background(), []string{"001"})

		assert.ErrorIs(t, err, errStore)
		assert.Nil(t, list)
	})
}
