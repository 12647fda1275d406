package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"turfbook/internal/config"
)

// RetryClient wraps a Client with bounded exponential backoff. Only
// transport-level failures and gateway 5xx responses are retried; a definite
// gateway rejection is returned as-is.
type RetryClient struct {
	inner      Client
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner Client, cfg config.RetryConfig) *RetryClient {
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetryClient) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*OrderResponse, error) {
			return r.inner.CreateOrder(ctx, req)
		},
	)
}

func (r *RetryClient) FetchPayment(ctx context.Context, paymentID string) (*PaymentResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*PaymentResponse, error) {
			return r.inner.FetchPayment(ctx, paymentID)
		},
	)
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.IsRetryable()
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// Network errors and client-side timeouts are worth another attempt.
	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
