package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/metrics"
	repo "bookstore/internal/repository"

	"github.com/stretchr/testify/mock"
)

// Shared testify mocks. Methods a scenario never reaches panic instead
// of silently answering, so forgotten expectations surface immediately.

type TxManagerMock struct {
	Repos  repo.TxRepos
	Called int
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called++
	return fn(m.Repos)
}

type TxReposMock struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	books         repo.BookRepository
	vouchers      repo.VoucherRepository
	voucherUsages repo.VoucherUsageRepository
	userBooks     repo.UserBookRepository
	statusHistory repo.OrderStatusHistoryRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository                     { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository             { return r.orderItems }
func (r *TxReposMock) Books() repo.BookRepository                       { return r.books }
func (r *TxReposMock) Vouchers() repo.VoucherRepository                 { return r.vouchers }
func (r *TxReposMock) VoucherUsages() repo.VoucherUsageRepository       { return r.voucherUsages }
func (r *TxReposMock) UserBooks() repo.UserBookRepository               { return r.userBooks }
func (r *TxReposMock) StatusHistory() repo.OrderStatusHistoryRepository { return r.statusHistory }

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error {
	args := m.Called(ctx, orderID, status, at)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkPaid(ctx context.Context, orderID int64, transactionID string, paidAt time.Time) error {
	args := m.Called(ctx, orderID, transactionID, paidAt)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type BookRepoMock struct{ mock.Mock }

func (m *BookRepoMock) FindByID(ctx context.Context, bookID int64) (model.Book, error) {
	args := m.Called(ctx, bookID)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) FindByIDs(ctx context.Context, bookIDs []int64) ([]model.Book, error) {
	args := m.Called(ctx, bookIDs)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Error(1)
}

func (m *BookRepoMock) DecreaseStockIfEnough(ctx context.Context, bookID int64, qty int64) (bool, error) {
	args := m.Called(ctx, bookID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *BookRepoMock) IncreaseStock(ctx context.Context, bookID int64, qty int64) error {
	args := m.Called(ctx, bookID, qty)
	return args.Error(0)
}

func (m *BookRepoMock) SetStock(ctx context.Context, bookID int64, newStock int64) error {
	args := m.Called(ctx, bookID, newStock)
	return args.Error(0)
}

type VoucherRepoMock struct{ mock.Mock }

func (m *VoucherRepoMock) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepoMock) IncrementUsedCount(ctx context.Context, voucherID int64) (bool, error) {
	args := m.Called(ctx, voucherID)
	return args.Bool(0), args.Error(1)
}

func (m *VoucherRepoMock) DecrementUsedCount(ctx context.Context, voucherID int64) error {
	args := m.Called(ctx, voucherID)
	return args.Error(0)
}

type VoucherUsageRepoMock struct{ mock.Mock }

func (m *VoucherUsageRepoMock) Create(ctx context.Context, usage model.VoucherUsage) (int64, error) {
	args := m.Called(ctx, usage)
	return args.Get(0).(int64), args.Error(1)
}

func (m *VoucherUsageRepoMock) HasActiveUsage(ctx context.Context, voucherID int64, userID int64) (bool, error) {
	args := m.Called(ctx, voucherID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *VoucherUsageRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.VoucherUsage, error) {
	args := m.Called(ctx, orderID)
	u, _ := args.Get(0).(model.VoucherUsage)
	return u, args.Error(1)
}

func (m *VoucherUsageRepoMock) MarkRefunded(ctx context.Context, usageID int64, reason string, at time.Time) error {
	args := m.Called(ctx, usageID, reason, at)
	return args.Error(0)
}

type UserBookRepoMock struct{ mock.Mock }

func (m *UserBookRepoMock) Create(ctx context.Context, ub model.UserBook) (int64, error) {
	args := m.Called(ctx, ub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserBookRepoMock) ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *UserBookRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.UserBook, error) {
	args := m.Called(ctx, orderID)
	ubs, _ := args.Get(0).([]model.UserBook)
	return ubs, args.Error(1)
}

func (m *UserBookRepoMock) DeactivateByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) RemoveItems(ctx context.Context, userID int64, bookIDs []int64) error {
	args := m.Called(ctx, userID, bookIDs)
	return args.Error(0)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

type ShippingProviderRepoMock struct{ mock.Mock }

func (m *ShippingProviderRepoMock) FindByID(ctx context.Context, providerID int64) (model.ShippingProvider, error) {
	args := m.Called(ctx, providerID)
	p, _ := args.Get(0).(model.ShippingProvider)
	return p, args.Error(1)
}

type StatusHistoryRepoMock struct{ mock.Mock }

func (m *StatusHistoryRepoMock) Create(ctx context.Context, h model.OrderStatusHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, p model.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) FindByTransactionCode(ctx context.Context, code string) (model.Payment, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) FindLatestByOrderID(ctx context.Context, orderID int64) (model.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) CountCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) SetPaymentURL(ctx context.Context, paymentID int64, url string) error {
	args := m.Called(ctx, paymentID, url)
	return args.Error(0)
}

func (m *PaymentRepoMock) MarkResult(ctx context.Context, paymentID int64, status model.PaymentStatus, transactionID string, rawResponse string) error {
	args := m.Called(ctx, paymentID, status, transactionID, rawResponse)
	return args.Error(0)
}

// DispatcherMock records enqueued jobs in order.
type DispatcherMock struct {
	Jobs []struct {
		Type    string
		Payload map[string]any
	}
}

func (m *DispatcherMock) Enqueue(jobType string, payload map[string]any) {
	m.Jobs = append(m.Jobs, struct {
		Type    string
		Payload map[string]any
	}{jobType, payload})
}

func (m *DispatcherMock) TypesSeen() []string {
	types := make([]string, 0, len(m.Jobs))
	for _, j := range m.Jobs {
		types = append(types, j.Type)
	}
	return types
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.CheckoutMetrics {
	return metrics.NewCheckoutMetrics()
}
