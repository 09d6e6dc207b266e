package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature means the callback failed authenticity
// verification. Callers must treat it as a hard rejection, never as a
// failed-but-acceptable payment.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrUpstream wraps provider network/HTTP failures. Retryable by the
// caller; the adapter itself never retries.
var ErrUpstream = errors.New("payment provider unavailable")

type InitiateRequest struct {
	// Merchant-side order reference sent to the provider in place of
	// any internal id.
	TransactionCode string
	Amount          int64
	OrderInfo       string
	ClientIP        string
}

type InitiateResult struct {
	PaymentURL string
}

type CallbackResult struct {
	Success         bool
	TransactionCode string
	TransactionID   string
	Amount          int64
	Code            string
	Message         string
	// Canonicalized raw parameters, kept for audit.
	Raw string
}

// Gateway is one redirect-based payment provider. Both the browser
// return and the server-to-server IPN go through the same
// VerifyCallback.
type Gateway interface {
	Provider() string
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	VerifyCallback(params map[string]string) (CallbackResult, error)
}
