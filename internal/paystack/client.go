package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sterlingcraftco/taxaware-backend/internal/config"
)

const defaultBaseURL = "https://api.paystack.co"

// Client talks to the Paystack transaction API. All amounts are in the
// gateway's minor unit (kobo). Every call is bounded by the configured
// timeout and the request context.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.PaystackConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secretKey:  cfg.SecretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InitializeRequest starts a hosted checkout session.
type InitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// InitializeData is the checkout session returned by the gateway.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyData is the authoritative transaction state for a reference.
type VerifyData struct {
	Status    string         `json:"status"`
	Reference string         `json:"reference"`
	Amount    int64          `json:"amount"`
	Currency  string         `json:"currency"`
	PaidAt    string         `json:"paid_at"`
	Channel   string         `json:"channel"`
	Metadata  map[string]any `json:"metadata"`
	Customer  Customer       `json:"customer"`
}

type Customer struct {
	Email string `json:"email"`
}

type initializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`
}

type verifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    VerifyData `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// InitializeTransaction creates a checkout session for the given amount.
func (c *Client) InitializeTransaction(ctx context.Context, params InitializeRequest) (*InitializeData, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/transaction/initialize", params)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack initialize: unexpected status %s", resp.Status)
	}

	var initResp initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, fmt.Errorf("paystack initialize: decode response: %w", err)
	}
	if !initResp.Status {
		return nil, fmt.Errorf("paystack initialize: %s", initResp.Message)
	}
	return &initResp.Data, nil
}

// VerifyTransaction fetches the authoritative state of a transaction. The
// returned Status is the gateway's word ("success", "failed", "abandoned",
// ...); interpreting it is the caller's job.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verify: unexpected status %s", resp.Status)
	}

	var verResp verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verResp); err != nil {
		return nil, fmt.Errorf("paystack verify: decode response: %w", err)
	}
	if !verResp.Status {
		return nil, fmt.Errorf("paystack verify: %s", verResp.Message)
	}
	return &verResp.Data, nil
}
