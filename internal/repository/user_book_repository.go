package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type UserBookRepository interface {
	Create(ctx context.Context, ub model.UserBook) (int64, error)

	// Any grant, active or not, counts: repurchase must not duplicate.
	ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error)

	ListByOrderID(ctx context.Context, orderID int64) ([]model.UserBook, error)
	DeactivateByOrderID(ctx context.Context, orderID int64) error
}
