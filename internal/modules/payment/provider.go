package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lendaround/internal/config"
)

// ProviderPayment is one payment attempt attached to an order upstream.
type ProviderPayment struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created | authorized | captured | failed
}

type ProviderRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"` // processed | pending | failed
}

// Client talks to the payment gateway's REST API with key-id/key-secret
// basic auth.
type Client struct {
	http    *http.Client
	baseURL string
	keyID   string
	secret  string
}

func NewClient(cfg *config.Payments) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: cfg.BaseURL,
		keyID:   cfg.KeyID,
		secret:  cfg.KeySecret,
	}
}

func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency string, notes map[string]string) (string, error) {
	body := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"notes":    notes,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("provider: order created without id")
	}
	return resp.ID, nil
}

func (c *Client) PaymentsForOrder(ctx context.Context, orderID string) ([]ProviderPayment, error) {
	var resp struct {
		Items []ProviderPayment `json:"items"`
	}
	path := "/v1/orders/" + url.PathEscape(orderID) + "/payments"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Refund(ctx context.Context, paymentID string, amountMinor int64) (*ProviderRefund, error) {
	body := map[string]any{"amount": amountMinor}
	var resp ProviderRefund
	path := "/v1/payments/" + url.PathEscape(paymentID) + "/refund"
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider: %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
