package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_List(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.Product{
		{ID: 1, Name: "Product 1", CurrentPrice: decimal.NewFromInt(10), AddedAt: time.Now()},
		{ID: 2, Name: "Product 2", CurrentPrice: decimal.NewFromInt(20), AddedAt: time.Now()},
	}

	tests := []struct {
		name          string
		limit         int
		offset        int
		expectedLimit int
		expectedOff   int
		mockReturn    []model.Product
		mockError     error
		expectError   bool
	}{
		{
			name:          "Success with valid pagination",
			limit:         10,
			offset:        0,
			expectedLimit: 10,
			mockReturn:    testProducts,
		},
		{
			name:          "Zero limit uses the page size",
			limit:         0,
			offset:        0,
			expectedLimit: 20,
			mockReturn:    testProducts,
		},
		{
			name:          "Limit over 100 is capped",
			limit:         150,
			offset:        0,
			expectedLimit: 100,
			mockReturn:    testProducts,
		},
		{
			name:          "Negative offset is reset",
			limit:         10,
			offset:        -5,
			expectedLimit: 10,
			expectedOff:   0,
			mockReturn:    testProducts,
		},
		{
			name:          "Repository error",
			limit:         10,
			expectedLimit: 10,
			mockError:     errors.New("database error"),
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewCatalogService(mockRepo, 20, logger)

			mockRepo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOff).Return(tt.mockReturn, tt.mockError)

			products, err := service.List(ctx, tt.limit, tt.offset)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, products)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.mockReturn, products)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetByID(t *testing.T) {
	ctx := context.Background()
	product := &model.Product{ID: 3, Name: "Hat"}

	mockRepo := new(MockProductRepository)
	mockRepo.On("GetByID", ctx, int64(3)).Return(product, nil)
	mockRepo.On("GetByID", ctx, int64(4)).Return(nil, nil)
	mockRepo.On("GetByID", ctx, int64(5)).Return(nil, errors.New("database error"))

	service := NewCatalogService(mockRepo, 20, zerolog.Nop())

	got, err := service.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, product, got)

	_, err = service.GetByID(ctx, 4)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = service.GetByID(ctx, 0)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = service.GetByID(ctx, 5)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestCatalogService_Search(t *testing.T) {
	ctx := context.Background()
	shirts := []model.Product{{ID: 1, Name: "Blue Shirt"}, {ID: 2, Name: "T-SHIRT"}}

	mockRepo := new(MockProductRepository)
	mockRepo.On("Search", ctx, "shirt").Return(shirts, nil)
	service := NewCatalogService(mockRepo, 20, zerolog.Nop())

	got, err := service.Search(ctx, "  shirt ")
	require.NoError(t, err)
	assert.Equal(t, shirts, got)

	got, err = service.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)

	mockRepo.AssertNumberOfCalls(t, "Search", 1)
}

func TestCatalogService_Home(t *testing.T) {
	ctx := context.Background()
	flash := []model.Product{{ID: 1, Name: "Deal", FlashSale: true}}

	mockRepo := new(MockProductRepository)
	mockRepo.On("GetFlashSale", ctx).Return(flash, nil)

	got, err := NewCatalogService(mockRepo, 20, zerolog.Nop()).Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, flash, got)
}
