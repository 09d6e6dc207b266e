package repository

import (
	"context"

	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	books         repo.BookRepository
	vouchers      repo.VoucherRepository
	voucherUsages repo.VoucherUsageRepository
	userBooks     repo.UserBookRepository
	statusHistory repo.OrderStatusHistoryRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                     { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository             { return r.orderItems }
func (r *txReposGorm) Books() repo.BookRepository                       { return r.books }
func (r *txReposGorm) Vouchers() repo.VoucherRepository                 { return r.vouchers }
func (r *txReposGorm) VoucherUsages() repo.VoucherUsageRepository       { return r.voucherUsages }
func (r *txReposGorm) UserBooks() repo.UserBookRepository               { return r.userBooks }
func (r *txReposGorm) StatusHistory() repo.OrderStatusHistoryRepository { return r.statusHistory }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Repos are rebuilt on the tx-scoped DB handle.
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			books:         NewBookGormRepository(tx),
			vouchers:      NewVoucherGormRepository(tx),
			voucherUsages: NewVoucherUsageGormRepository(tx),
			userBooks:     NewUserBookGormRepository(tx),
			statusHistory: NewOrderStatusHistoryGormRepository(tx),
		}
		return fn(r)
	})
}
