package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// Order-code collision probe for the generator's retry loop.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Sets the status and stamps the matching timestamp column in one write.
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error

	MarkPaid(ctx context.Context, orderID int64, transactionID string, paidAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error

	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
