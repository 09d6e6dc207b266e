package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type OrderStatusHistoryRepository interface {
	Create(ctx context.Context, h model.OrderStatusHistory) error
}
