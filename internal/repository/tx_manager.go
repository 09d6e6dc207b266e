package repository

import "context"

// Repos available inside one transaction.
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Books() BookRepository
	Vouchers() VoucherRepository
	VoucherUsages() VoucherUsageRepository
	UserBooks() UserBookRepository
	StatusHistory() OrderStatusHistoryRepository
}

// Hides tx begin/commit/rollback from usecases.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
