package payout

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider is the external payout collaborator. Implementations must treat
// Reference as an idempotency key: resubmitting the same reference must not
// produce a second payout.
type Provider interface {
	SendPayout(ctx context.Context, req *Request) (*Result, error)
}

// Request describes a single payout
type Request struct {
	Destination string          `json:"destination"`
	USDAmount   decimal.Decimal `json:"usd_amount"`
	Reference   string          `json:"reference"`
}

// Result is the provider's acknowledgement
type Result struct {
	BatchID string `json:"batch_id"`
}

// ProviderError is a failure declared by the provider itself, as opposed to
// a transport error. Its message is surfaced to the caller verbatim.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}
