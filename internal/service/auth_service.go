package service

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/rs/zerolog"
)

const invalidCredentialsMessage = "Incorrect email or password"

// authService implements AuthService.
type authService struct {
	customerRepo repository.CustomerRepository
	tokens       SessionTokens
	logger       zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(customerRepo repository.CustomerRepository, tokens SessionTokens, logger zerolog.Logger) AuthService {
	return &authService{
		customerRepo: customerRepo,
		tokens:       tokens,
		logger:       logger.With().Str("service", "auth").Logger(),
	}
}

// Register validates req and creates a customer. Nothing is written when
// validation fails.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Customer, error) {
	if req == nil {
		return nil, model.NewValidationError(map[string]string{"email": "email is required"})
	}
	if err := req.Validate(); err != nil {
		s.logger.Debug().Err(err).Msg("registration rejected")
		return nil, err
	}

	customer := &model.Customer{
		Email:    strings.ToLower(req.Email),
		Username: req.Username,
		Phone:    req.Phone,
		Role:     model.RoleCustomer,
	}
	if err := customer.SetPassword(req.Password1); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("customer_id", customer.ID).Msg("customer registered")
	return customer, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, model.NewAuthorizationError(invalidCredentialsMessage)
	}

	customer, err := s.customerRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil || !customer.VerifyPassword(req.Password) {
		s.logger.Debug().Str("email", req.Email).Msg("login failed")
		return nil, model.NewAuthorizationError(invalidCredentialsMessage)
	}

	token, expiresAt, err := s.tokens.Issue(customer)
	if err != nil {
		s.logger.Error().Err(err).Int64("customer_id", customer.ID).Msg("failed to issue session token")
		return nil, err
	}

	s.logger.Info().Int64("customer_id", customer.ID).Msg("customer logged in")
	return &model.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Customer:  customer,
	}, nil
}

// Authenticate parses token and reloads the customer so role changes and
// deletions take effect on the next request.
func (s *authService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	customerID, err := s.tokens.Parse(token)
	if err != nil {
		return model.Identity{}, model.NewAuthorizationError("Session is invalid or expired")
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return model.Identity{}, model.NewAuthorizationError("Session is invalid or expired")
	}

	return model.IdentityOf(customer), nil
}

// Profile returns the caller's own record. Admins may view any customer;
// everyone else gets not-found for other IDs.
func (s *authService) Profile(ctx context.Context, id model.Identity, customerID int64) (*model.Customer, error) {
	if id.CustomerID != customerID && !id.Can(model.CapViewCustomers) {
		return nil, model.NewNotFoundError("Customer")
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, model.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ChangePassword verifies the current password and stores a hash of the new one.
func (s *authService) ChangePassword(ctx context.Context, id model.Identity, req *model.ChangePasswordRequest) error {
	if req == nil {
		return model.NewValidationError(map[string]string{"currentPassword": "current password is required"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	customer, err := s.customerRepo.GetByID(ctx, id.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return model.NewNotFoundError("Customer")
	}
	if !customer.VerifyPassword(req.CurrentPassword) {
		return model.NewValidationError(map[string]string{"currentPassword": "current password is incorrect"})
	}

	if err := customer.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.customerRepo.UpdatePasswordHash(ctx, customer.ID, customer.PasswordHash); err != nil {
		return err
	}

	s.logger.Info().Int64("customer_id", customer.ID).Msg("password changed")
	return nil
}
