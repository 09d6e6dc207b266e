package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (int64, error)
	FindByTransactionCode(ctx context.Context, code string) (model.Payment, error)
	FindLatestByOrderID(ctx context.Context, orderID int64) (model.Payment, error)

	// Payments created on the given day; drives the PAY-YYYYMMDD-NNN
	// per-day sequence.
	CountCreatedOn(ctx context.Context, day time.Time) (int64, error)

	SetPaymentURL(ctx context.Context, paymentID int64, url string) error

	// One-shot move to a terminal state, recording the provider
	// transaction id and the raw gateway response.
	MarkResult(ctx context.Context, paymentID int64, status model.PaymentStatus, transactionID string, rawResponse string) error
}
