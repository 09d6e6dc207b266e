package usecase

import (
	"context"
	"errors"
	"log/slog"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// EntitlementUsecase handles the per-item side effects of a committed
// order: digital items become UserBook grants, physical items consume
// catalog stock. Each item is best-effort on its own; one failure never
// blocks the others (the order itself is already committed).
type EntitlementUsecase struct {
	books     repo.BookRepository
	userBooks repo.UserBookRepository
	items     repo.OrderItemRepository
	log       *slog.Logger
}

func NewEntitlementUsecase(books repo.BookRepository, userBooks repo.UserBookRepository, items repo.OrderItemRepository, log *slog.Logger) *EntitlementUsecase {
	return &EntitlementUsecase{books: books, userBooks: userBooks, items: items, log: log}
}

// Grant processes the items of a freshly committed order. Stock was
// already checked before commit; a decrement that still comes up short
// here means a concurrent checkout won the race, so the stock is
// clamped at zero rather than failing the order.
func (u *EntitlementUsecase) Grant(ctx context.Context, userID int64, orderID int64, items []model.OrderItem) {
	for _, it := range items {
		if it.FormatSnapshot.IsDigital() {
			u.grantDigital(ctx, userID, orderID, it)
			continue
		}

		ok, err := u.books.DecreaseStockIfEnough(ctx, it.BookID, it.Quantity)
		if err != nil {
			u.log.Error("stock decrement failed", "order_id", orderID, "book_id", it.BookID, "error", err)
			continue
		}
		if !ok {
			u.log.Warn("stock raced below requested quantity, clamping to zero",
				"order_id", orderID, "book_id", it.BookID, "quantity", it.Quantity)
			if err := u.books.SetStock(ctx, it.BookID, 0); err != nil {
				u.log.Error("stock clamp failed", "order_id", orderID, "book_id", it.BookID, "error", err)
			}
		}
	}
}

func (u *EntitlementUsecase) grantDigital(ctx context.Context, userID int64, orderID int64, it model.OrderItem) {
	exists, err := u.userBooks.ExistsByUserAndBook(ctx, userID, it.BookID)
	if err != nil {
		u.log.Error("entitlement lookup failed", "order_id", orderID, "book_id", it.BookID, "error", err)
		return
	}
	if exists {
		// Repurchase: the existing grant stands, no duplicate, no error.
		return
	}

	book, err := u.books.FindByID(ctx, it.BookID)
	if err != nil {
		u.log.Error("book lookup for entitlement failed", "order_id", orderID, "book_id", it.BookID, "error", err)
		return
	}

	_, err = u.userBooks.Create(ctx, model.UserBook{
		UserID:   userID,
		BookID:   it.BookID,
		OrderID:  orderID,
		BookType: it.FormatSnapshot,
		FilePath: book.FilePath,
		FileSize: book.FileSize,
		FileMime: book.FileMime,
		IsActive: true,
	})
	if err != nil {
		u.log.Error("entitlement creation failed", "order_id", orderID, "book_id", it.BookID, "error", err)
	}
}

// Revoke undoes the grants of a cancelled order: entitlements are
// deactivated and physical stock is restored by the ordered quantity.
func (u *EntitlementUsecase) Revoke(ctx context.Context, orderID int64) error {
	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := u.userBooks.DeactivateByOrderID(ctx, orderID); err != nil {
		u.log.Error("entitlement revocation failed", "order_id", orderID, "error", err)
	}

	for _, it := range items {
		if it.FormatSnapshot.IsDigital() {
			continue
		}
		err := u.books.IncreaseStock(ctx, it.BookID, it.Quantity)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			u.log.Error("stock restore failed", "order_id", orderID, "book_id", it.BookID, "error", err)
		}
	}
	return nil
}
