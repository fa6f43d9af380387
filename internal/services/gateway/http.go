package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPProviderConfig configures a JSON-over-HTTP provider.
type HTTPProviderConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPProvider talks to a provider exposing POST /charges and POST
// /payouts, both answering {"success", "transactionId", "error"}.
type HTTPProvider struct {
	config     HTTPProviderConfig
	httpClient *http.Client
}

func NewHTTPProvider(config HTTPProviderConfig) *HTTPProvider {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Name == "" {
		config.Name = "http"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &HTTPProvider{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

func (p *HTTPProvider) Name() string { return p.config.Name }

func (p *HTTPProvider) Charge(ctx context.Context, req Request) (*Result, error) {
	return p.post(ctx, "/charges", req)
}

func (p *HTTPProvider) Payout(ctx context.Context, req Request) (*Result, error) {
	return p.post(ctx, "/payouts", req)
}

type providerRequest struct {
	Method    string `json:"method"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	UserID    string `json:"userId"`
	Reference string `json:"reference"`
	Account   string `json:"account,omitempty"`
}

type providerResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Error         string `json:"error"`
}

func (p *HTTPProvider) post(ctx context.Context, path string, req Request) (*Result, error) {
	body, err := json.Marshal(providerRequest{
		Method:    req.Method,
		Amount:    req.Amount.StringFixed(2),
		Currency:  req.Currency,
		UserID:    req.UserID,
		Reference: req.Reference,
		Account:   req.Account,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.Reference)
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(p.config.Name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, transportError(p.config.Name, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, transportError(p.config.Name, fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed providerResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &Result{
				Success:  false,
				Error:    fmt.Sprintf("provider rejected request with status %d", resp.StatusCode),
				Provider: p.config.Name,
			}, nil
		}
		return nil, transportError(p.config.Name, fmt.Errorf("undecodable response: %w", err))
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBody, &raw)

	result := &Result{
		Success:       parsed.Success && resp.StatusCode < http.StatusBadRequest,
		TransactionID: parsed.TransactionID,
		Error:         parsed.Error,
		Provider:      p.config.Name,
		Raw:           raw,
	}
	if !result.Success && result.Error == "" {
		result.Error = fmt.Sprintf("provider reported failure with status %d", resp.StatusCode)
	}
	return result, nil
}
