package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: 1, Name: "Product 1", CurrentPrice: decimal.NewFromInt(10), AddedAt: time.Now()},
		{ID: 2, Name: "Product 2", CurrentPrice: decimal.NewFromInt(20), AddedAt: time.Now()},
	}

	tests := []struct {
		name           string
		queryParams    string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		limit          int
		offset         int
	}{
		{
			name:           "Success with default pagination",
			queryParams:    "",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          0,
			offset:         0,
		},
		{
			name:           "Success with custom pagination",
			queryParams:    "?limit=5&offset=10",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          5,
			offset:         10,
		},
		{
			name:           "Invalid limit parameter",
			queryParams:    "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset parameter",
			queryParams:    "?offset=invalid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service error",
			queryParams:    "",
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogService)
			if tt.expectService {
				catalog.On("List", mock.Anything, tt.limit, tt.offset).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.queryParams, nil)
			rec := httptest.NewRecorder()
			NewCatalogHandler(catalog, new(MockCartService), logger).List(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"currentPrice":10`)
			}
			catalog.AssertExpectations(t)
		})
	}
}

func TestCatalogHandler_GetByID(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("GetByID", mock.Anything, int64(3)).Return(&model.Product{ID: 3, Name: "Hat"}, nil)
	catalog.On("GetByID", mock.Anything, int64(4)).Return(nil, model.NewNotFoundError("Product"))
	h := NewCatalogHandler(catalog, new(MockCartService), zerolog.Nop())

	for _, tc := range []struct {
		id     string
		status int
	}{
		{"3", http.StatusOK},
		{"4", http.StatusNotFound},
		{"hat", http.StatusNotFound},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/products/"+tc.id, nil)
		req.SetPathValue("id", tc.id)
		rec := httptest.NewRecorder()
		h.GetByID(rec, req)
		assert.Equal(t, tc.status, rec.Code, "id %s", tc.id)
	}
	catalog.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestCatalogHandler_Home(t *testing.T) {
	flash := []model.Product{{ID: 1, Name: "Deal", FlashSale: true}}

	t.Run("Anonymous callers get products only", func(t *testing.T) {
		catalog := new(MockCatalogService)
		cart := new(MockCartService)
		catalog.On("Home", mock.Anything).Return(flash, nil)

		rec := httptest.NewRecorder()
		NewCatalogHandler(catalog, cart, zerolog.Nop()).Home(rec, httptest.NewRequest(http.MethodGet, "/api/home", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"cart"`)
		cart.AssertNotCalled(t, "Totals", mock.Anything, mock.Anything)
	})

	t.Run("Signed-in callers also get cart totals", func(t *testing.T) {
		catalog := new(MockCatalogService)
		cart := new(MockCartService)
		catalog.On("Home", mock.Anything).Return(flash, nil)
		cart.On("Totals", mock.Anything, customerID).Return(model.CartTotals{
			Subtotal:    decimal.NewFromInt(500),
			ShippingFee: decimal.NewFromInt(200),
			Total:       decimal.NewFromInt(700),
		}, nil)

		req := asCaller(httptest.NewRequest(http.MethodGet, "/api/home", nil), customerID)
		rec := httptest.NewRecorder()
		NewCatalogHandler(catalog, cart, zerolog.Nop()).Home(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"cart":{"amount":500,"shippingFee":200,"total":700}`)
	})
}

func TestCatalogHandler_Search(t *testing.T) {
	shirts := []model.Product{{ID: 1, Name: "Blue Shirt"}}

	catalog := new(MockCatalogService)
	catalog.On("Search", mock.Anything, "shirt").Return(shirts, nil)
	h := NewCatalogHandler(catalog, new(MockCartService), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=+shirt+", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blue Shirt")

	form := url.Values{"search": {"shirt"}}
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.Search(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	catalog.AssertNumberOfCalls(t, "Search", 2)
}
