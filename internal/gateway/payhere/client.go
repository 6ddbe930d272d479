// internal/gateway/payhere/client.go
package payhere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lsa-service/internal/domain/billing"

	"go.uber.org/zap"
)

// Config holds the PayHere merchant credentials and endpoint.
type Config struct {
	BaseURL        string
	MerchantID     string
	MerchantSecret string
	Timeout        time.Duration
}

// Client talks to the PayHere payment gateway. All calls are bounded by the
// configured timeout on top of the caller's context.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type chargeRequest struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
	HolderName string `json:"holder_name"`
}

type chargeResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Charge runs a one-off card charge. A declined card is not an error: the
// result comes back with Accepted=false and the caller records the failure.
func (c *Client) Charge(ctx context.Context, amount int64, card *billing.CardDetails) (*billing.GatewayResult, error) {
	payload := chargeRequest{
		MerchantID: c.cfg.MerchantID,
		Amount:     amount,
		Currency:   "LKR",
		CardNumber: card.CardNumber,
		CardExpiry: card.Expiry,
		CardCVV:    card.CVV,
		HolderName: card.HolderName,
	}

	var resp chargeResponse
	if err := c.post(ctx, "/charge", payload, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("gateway charge completed",
		zap.String("reference", resp.Reference),
		zap.String("status", resp.Status))

	return &billing.GatewayResult{
		Reference: resp.Reference,
		Accepted:  resp.Status == "AUTHORIZED",
	}, nil
}

type proofRequest struct {
	MerchantID     string `json:"merchant_id"`
	SpaID          int64  `json:"spa_id"`
	ProofReference string `json:"proof_reference"`
}

// UploadProof registers a bank transfer slip reference for manual review.
func (c *Client) UploadProof(ctx context.Context, spaID int64, proofReference string) (*billing.GatewayResult, error) {
	payload := proofRequest{
		MerchantID:     c.cfg.MerchantID,
		SpaID:          spaID,
		ProofReference: proofReference,
	}

	var resp chargeResponse
	if err := c.post(ctx, "/proof", payload, &resp); err != nil {
		return nil, err
	}

	return &billing.GatewayResult{
		Reference: resp.Reference,
		Accepted:  resp.Status == "RECEIVED",
	}, nil
}

type statusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// ConfirmAcceptance re-checks whether the gateway still holds a charge or
// proof as accepted. Used when reconciling state after an interrupted
// submission.
func (c *Client) ConfirmAcceptance(ctx context.Context, reference string) (bool, error) {
	url := fmt.Sprintf("%s/status/%s?merchant_id=%s", c.cfg.BaseURL, reference, c.cfg.MerchantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.MerchantSecret)

	res, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("gateway status check failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("gateway status check returned %d", res.StatusCode)
	}

	var resp statusResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return false, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return resp.Status == "AUTHORIZED" || resp.Status == "RECEIVED", nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.MerchantSecret)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
