package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"shopfront/internal/export"
	"shopfront/internal/model"
	"shopfront/internal/repository"
	"shopfront/internal/storage"

	"github.com/rs/zerolog"
)

// adminService implements AdminService.
type adminService struct {
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	media        storage.Store
	logger       zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	media storage.Store,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		media:        media,
		logger:       logger.With().Str("service", "admin").Logger(),
	}
}

func (s *adminService) authorize(id model.Identity, c model.Capability) error {
	if id.Can(c) {
		return nil
	}
	s.logger.Warn().
		Int64("customer_id", id.CustomerID).
		Str("capability", string(c)).
		Msg("admin operation refused")
	return model.NewAuthorizationError("You are not allowed to do that")
}

// CreateProduct validates in, stores the image and inserts the product.
func (s *adminService) CreateProduct(ctx context.Context, id model.Identity, in *model.ProductInput, image *model.Upload) (*model.Product, error) {
	if err := s.authorize(id, model.CapManageCatalog); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, model.NewValidationError(map[string]string{"name": "name is required"})
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product := &model.Product{}
	in.Apply(product)

	if image != nil {
		ref, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		product.ImageRef = ref
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Int64("admin_id", id.CustomerID).
		Msg("product created")

	return product, nil
}

// UpdateProduct replaces the product fields and, when given, its image.
func (s *adminService) UpdateProduct(ctx context.Context, id model.Identity, productID int64, in *model.ProductInput, image *model.Upload) (*model.Product, error) {
	if err := s.authorize(id, model.CapManageCatalog); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, model.NewValidationError(map[string]string{"name": "name is required"})
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("Product")
	}

	in.Apply(product)
	if image != nil {
		ref, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		product.ImageRef = ref
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Int64("admin_id", id.CustomerID).
		Msg("product updated")

	return product, nil
}

// DeleteProduct removes a product that no order refers to.
func (s *adminService) DeleteProduct(ctx context.Context, id model.Identity, productID int64) error {
	if err := s.authorize(id, model.CapManageCatalog); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("product_id", productID).
		Int64("admin_id", id.CustomerID).
		Msg("product deleted")
	return nil
}

// ListProducts returns the whole catalogue, newest first.
func (s *adminService) ListProducts(ctx context.Context, id model.Identity) ([]model.Product, error) {
	if err := s.authorize(id, model.CapManageCatalog); err != nil {
		return nil, err
	}
	return s.productRepo.ListAll(ctx)
}

// ExportProducts writes the catalogue to w as an xlsx workbook.
func (s *adminService) ExportProducts(ctx context.Context, id model.Identity, w io.Writer) error {
	if err := s.authorize(id, model.CapManageCatalog); err != nil {
		return err
	}

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteProducts(w, products); err != nil {
		s.logger.Error().Err(err).Msg("failed to export products")
		return err
	}
	return nil
}

// ListOrders returns every order, newest first.
func (s *adminService) ListOrders(ctx context.Context, id model.Identity) ([]model.Order, error) {
	if err := s.authorize(id, model.CapManageOrders); err != nil {
		return nil, err
	}
	return s.orderRepo.ListAll(ctx)
}

// UpdateOrderStatus moves an order to one of the fixed statuses.
func (s *adminService) UpdateOrderStatus(ctx context.Context, id model.Identity, orderID int64, status string) (*model.Order, error) {
	if err := s.authorize(id, model.CapManageOrders); err != nil {
		return nil, err
	}

	st, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, model.NewValidationError(map[string]string{"status": err.Error()})
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, st); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("Order")
	}

	s.logger.Info().
		Int64("order_id", orderID).
		Str("status", string(st)).
		Int64("admin_id", id.CustomerID).
		Msg("order status updated")

	return order, nil
}

// ListCustomers returns every registered customer.
func (s *adminService) ListCustomers(ctx context.Context, id model.Identity) ([]model.Customer, error) {
	if err := s.authorize(id, model.CapViewCustomers); err != nil {
		return nil, err
	}
	return s.customerRepo.List(ctx)
}

func (s *adminService) saveImage(ctx context.Context, image *model.Upload) (string, error) {
	ref, err := s.media.Save(ctx, image.Filename, image.Body)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return "", model.NewValidationError(map[string]string{"image": "image filename is invalid"})
		}
		s.logger.Error().Err(err).Str("file", image.Filename).Msg("failed to store product image")
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}
