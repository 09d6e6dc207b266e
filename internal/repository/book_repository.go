package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// Catalog store. Stock mutations are conditional updates pushed down to
// the database so concurrent checkouts cannot interleave a read-modify-write.
type BookRepository interface {
	FindByID(ctx context.Context, bookID int64) (model.Book, error)
	FindByIDs(ctx context.Context, bookIDs []int64) ([]model.Book, error)

	// Decrements stock only when enough remains; reports whether it did.
	DecreaseStockIfEnough(ctx context.Context, bookID int64, qty int64) (bool, error)

	IncreaseStock(ctx context.Context, bookID int64, qty int64) error

	SetStock(ctx context.Context, bookID int64, newStock int64) error
}
