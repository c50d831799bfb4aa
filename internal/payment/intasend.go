package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shopfront/internal/config"

	"github.com/rs/zerolog"
)

const (
	stkPushPath    = "/api/v1/payment/mpesa-stk-push/"
	chargebackPath = "/api/v1/chargebacks/"
	maxErrorBody   = 4 << 10
)

// intaSendClient implements Provider against the IntaSend M-Pesa STK push API.
type intaSendClient struct {
	baseURL        string
	token          string
	publishableKey string
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewIntaSendClient creates a provider using cfg. The HTTP client timeout is
// the only bound on how long checkout waits for the provider.
func NewIntaSendClient(cfg config.PaymentConfig, logger zerolog.Logger) Provider {
	return &intaSendClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.APIToken,
		publishableKey: cfg.PublishableKey,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger.With().Str("component", "intasend-client").Logger(),
	}
}

type stkPushRequest struct {
	PublicKey   string      `json:"public_key"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	Amount      json.Number `json:"amount"`
	Narrative   string      `json:"narrative"`
	APIRef      string      `json:"api_ref"`
}

type stkPushResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Invoice struct {
		InvoiceID string `json:"invoice_id"`
		State     string `json:"state"`
	} `json:"invoice"`
}

type chargebackRequest struct {
	Invoice string      `json:"invoice"`
	Amount  json.Number `json:"amount"`
	Reason  string      `json:"reason"`
}

// Collect sends an STK push to the customer's phone.
func (c *intaSendClient) Collect(ctx context.Context, req CollectRequest) (*CollectResult, error) {
	body := stkPushRequest{
		PublicKey:   c.publishableKey,
		PhoneNumber: req.Phone,
		Email:       req.Email,
		Amount:      json.Number(req.Amount.StringFixed(2)),
		Narrative:   req.Narrative,
		APIRef:      req.IdempotencyKey,
	}

	var resp stkPushResponse
	if err := c.post(ctx, stkPushPath, body, &resp); err != nil {
		return nil, err
	}

	result := &CollectResult{
		ID:           resp.ID,
		Status:       resp.Status,
		InvoiceID:    resp.Invoice.InvoiceID,
		InvoiceState: resp.Invoice.State,
	}

	if !strings.EqualFold(resp.Status, StatusSuccess) {
		c.logger.Warn().
			Str("api_ref", req.IdempotencyKey).
			Str("status", resp.Status).
			Msg("payment collection not successful")
		return result, fmt.Errorf("%w: provider status %q", ErrDeclined, resp.Status)
	}

	c.logger.Info().
		Str("api_ref", req.IdempotencyKey).
		Str("invoice_id", result.InvoiceID).
		Str("state", result.InvoiceState).
		Msg("payment collection accepted")

	return result, nil
}

// Refund raises a chargeback for a collected invoice.
func (c *intaSendClient) Refund(ctx context.Context, req RefundRequest) error {
	body := chargebackRequest{
		Invoice: req.InvoiceID,
		Amount:  json.Number(req.Amount.StringFixed(2)),
		Reason:  req.Reason,
	}

	if err := c.post(ctx, chargebackPath, body, nil); err != nil {
		return err
	}

	c.logger.Info().
		Str("invoice_id", req.InvoiceID).
		Str("amount", req.Amount.String()).
		Msg("refund requested")
	return nil
}

func (c *intaSendClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("payment request failed")
		return fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(snippet)).
			Msg("payment provider returned error")
		return fmt.Errorf("payment provider returned HTTP %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode payment response: %w", err)
	}
	return nil
}
