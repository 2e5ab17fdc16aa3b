package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"livetokens/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// HTTPClient talks to the payout provider's REST API. Transport failures are
// retried with exponential backoff; that is safe because every request
// carries the redemption reference as an idempotency key. Failures the
// provider declares are permanent and returned as *ProviderError.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SendPayout(ctx context.Context, req *Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payout request: %w", err)
	}

	var result *Result
	operation := func() error {
		res, err := c.doRequest(ctx, body, req.Reference)
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *HTTPClient) doRequest(ctx context.Context, body []byte, reference string) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payouts", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", reference)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		logger.Warn("payout request failed, will retry", zap.String("reference", reference), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode payout response: %w", err))
		}
		return &result, nil
	}

	// 5xx may be transient; anything else is the provider rejecting the payout
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("payout provider returned %d", resp.StatusCode)
	}

	var providerResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(data, &providerResp)
	message := providerResp.Message
	if message == "" {
		message = providerResp.Error
	}
	if message == "" {
		message = fmt.Sprintf("payout rejected with status %d", resp.StatusCode)
	}

	return nil, backoff.Permanent(&ProviderError{StatusCode: resp.StatusCode, Message: message})
}
