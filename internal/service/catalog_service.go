package service

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/rs/zerolog"
)

const maxPageSize = 100

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	pageSize    int
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service. pageSize is the default
// listing limit.
func NewCatalogService(productRepo repository.ProductRepository, pageSize int, logger zerolog.Logger) CatalogService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &catalogService{
		productRepo: productRepo,
		pageSize:    pageSize,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// Home returns the flash-sale products.
func (s *catalogService) Home(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.GetFlashSale(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get flash-sale products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// List retrieves products with pagination.
func (s *catalogService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *catalogService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.NewNotFoundError("Product")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.NewNotFoundError("Product")
	}

	return product, nil
}

// Search returns products whose name contains term. A blank term matches
// nothing.
func (s *catalogService) Search(ctx context.Context, term string) ([]model.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.Search(ctx, term)
	if err != nil {
		s.logger.Error().Err(err).Str("term", term).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	s.logger.Debug().Str("term", term).Int("count", len(products)).Msg("search completed")
	return products, nil
}
