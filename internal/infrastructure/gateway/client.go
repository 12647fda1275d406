// Package gateway talks to the external payment gateway. The gateway is an
// opaque remote collaborator with two operations this service depends on:
// order creation and payment lookup.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"turfbook/internal/config"
)

// Client is the order-creation and payment-lookup contract used by the
// booking services. Implemented by HTTPClient and wrapped by RetryClient.
type Client interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentResponse, error)
}

type HTTPClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	url := fmt.Sprintf("%s/v1/orders", c.baseURL)
	return sendRequest[OrderRequest, OrderResponse](c, ctx, http.MethodPost, url, &req)
}

func (c *HTTPClient) FetchPayment(ctx context.Context, paymentID string) (*PaymentResponse, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.baseURL, paymentID)
	return sendRequest[any, PaymentResponse](c, ctx, http.MethodGet, url, nil)
}

func sendRequest[Req any, Resp any](c *HTTPClient, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var envelope gatewayErrorEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &GatewayError{
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Description,
			StatusCode: resp.StatusCode,
		}
	}

	var gatewayResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &gatewayResp, nil
}
