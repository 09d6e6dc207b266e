package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/metrics"
	"bookstore/internal/notification"
	repo "bookstore/internal/repository"
)

const orderCodeMaxAttempts = 10

type OrderUsecase struct {
	tx           repo.TransactionManager
	books        repo.BookRepository
	addresses    repo.AddressRepository
	shipping     repo.ShippingProviderRepository
	cartItems    repo.CartItemRepository
	vouchers     *VoucherUsecase
	entitlements *EntitlementUsecase
	dispatcher   notification.Dispatcher
	metrics      *metrics.CheckoutMetrics
	log          *slog.Logger
	now          func() time.Time
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	books repo.BookRepository,
	addresses repo.AddressRepository,
	shipping repo.ShippingProviderRepository,
	cartItems repo.CartItemRepository,
	vouchers *VoucherUsecase,
	entitlements *EntitlementUsecase,
	dispatcher notification.Dispatcher,
	m *metrics.CheckoutMetrics,
	log *slog.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:           tx,
		books:        books,
		addresses:    addresses,
		shipping:     shipping,
		cartItems:    cartItems,
		vouchers:     vouchers,
		entitlements: entitlements,
		dispatcher:   dispatcher,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

type OrderLineInput struct {
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
}

type CreateOrderInput struct {
	Items              []OrderLineInput
	AddressID          int64
	ShippingProviderID int64
	PaymentMethod      string
	VoucherCode        string
	Note               string
}

type OrderItemOutput struct {
	BookID          int64  `json:"book_id"`
	Title           string `json:"title"`
	Quantity        int64  `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	OrderCode      string            `json:"order_code"`
	UserID         int64             `json:"user_id"`
	Status         string            `json:"status"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentStatus  string            `json:"payment_status"`
	OriginalAmount int64             `json:"original_amount"`
	DiscountAmount int64             `json:"discount_amount"`
	ShippingFee    int64             `json:"shipping_fee"`
	TotalPrice     int64             `json:"total_price"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// CreateOrder builds an order from selected items. All validation runs
// before the first write; the Order, its items and the voucher
// consumption commit in one transaction; stock, entitlements, cart
// cleanup and notifications follow best-effort.
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, errInvalidRequest("order items required")
	}
	for _, it := range in.Items {
		if it.BookID <= 0 || it.Quantity < 1 {
			return OrderOutput{}, errInvalidRequest("invalid order item")
		}
	}
	method := model.PaymentMethod(in.PaymentMethod)
	if !model.IsRecognizedPaymentMethod(method) {
		return OrderOutput{}, errInvalidRequest("invalid payment method")
	}
	if in.AddressID <= 0 || in.ShippingProviderID <= 0 {
		return OrderOutput{}, errInvalidRequest("address and shipping provider required")
	}

	bookIDs := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		bookIDs = append(bookIDs, it.BookID)
	}

	books, err := u.books.FindByIDs(ctx, bookIDs)
	if err != nil {
		return OrderOutput{}, errDB()
	}
	byID := make(map[int64]model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	categoryIDs := make([]int64, 0, len(in.Items))
	var originalAmount int64
	for _, it := range in.Items {
		b, ok := byID[it.BookID]
		if !ok || !b.IsActive {
			return OrderOutput{}, errNotFound("book not found")
		}
		if !b.Format.IsDigital() && b.Stock < it.Quantity {
			return OrderOutput{}, errInsufficientStock(fmt.Sprintf("insufficient stock for %q", b.Title))
		}
		originalAmount += b.Price * it.Quantity
		categoryIDs = append(categoryIDs, b.CategoryID)
	}

	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, errNotFound("address not found")
	}
	if err != nil {
		return OrderOutput{}, errDB()
	}
	if addr.UserID != userID {
		return OrderOutput{}, errForbidden("address does not belong to user")
	}

	provider, err := u.shipping.FindByID(ctx, in.ShippingProviderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, errNotFound("shipping provider not found")
	}
	if err != nil {
		return OrderOutput{}, errDB()
	}
	shippingFee := provider.Fee

	var discountAmount int64
	var voucherID *int64
	var eval VoucherEvaluation
	if in.VoucherCode != "" {
		// Voucher rejections propagate unchanged; the order is not created.
		eval, err = u.vouchers.Evaluate(ctx, in.VoucherCode, originalAmount, userID, categoryIDs, bookIDs)
		if err != nil {
			return OrderOutput{}, err
		}
		discountAmount = eval.DiscountAmount
		if eval.FreeShipping {
			shippingFee = 0
		}
		voucherID = &eval.Voucher.ID
	}

	discounted := originalAmount - discountAmount
	if discounted < 0 {
		discounted = 0
	}
	totalPrice := discounted + shippingFee

	now := u.now()
	var out OrderOutput

	orderItems := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		b := byID[it.BookID]
		orderItems = append(orderItems, model.OrderItem{
			BookID:          it.BookID,
			TitleSnapshot:   b.Title,
			FormatSnapshot:  b.Format,
			Quantity:        it.Quantity,
			PriceAtPurchase: b.Price,
		})
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		code, err := u.generateOrderCode(ctx, r.Orders(), now)
		if err != nil {
			return errDB()
		}

		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:             userID,
			AddressID:          in.AddressID,
			OrderCode:          code,
			ShippingProviderID: in.ShippingProviderID,
			VoucherID:          voucherID,
			OriginalAmount:     originalAmount,
			DiscountAmount:     discountAmount,
			ShippingFee:        shippingFee,
			TotalPrice:         totalPrice,
			PaymentMethod:      method,
			PaymentStatus:      model.PaymentStatusPending,
			Status:             model.OrderStatusPending,
			Note:               in.Note,
		})
		if err != nil {
			return errDB()
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return errDB()
		}

		if voucherID != nil {
			// Consumption happens here, not at evaluation time. The
			// conditional increment loses to a concurrent consumer
			// taking the last slot, which aborts the whole order.
			ok, err := r.Vouchers().IncrementUsedCount(ctx, *voucherID)
			if err != nil {
				return errDB()
			}
			if !ok {
				return errVoucherInvalid("voucher usage limit reached")
			}
			if _, err := r.VoucherUsages().Create(ctx, model.VoucherUsage{
				VoucherID:      *voucherID,
				UserID:         userID,
				OrderID:        orderID,
				VoucherCode:    eval.Voucher.Code,
				DiscountAmount: discountAmount,
				OrderAmount:    originalAmount,
			}); err != nil {
				return errDB()
			}
		}

		out = OrderOutput{
			ID:             orderID,
			OrderCode:      code,
			UserID:         userID,
			Status:         string(model.OrderStatusPending),
			PaymentMethod:  string(method),
			PaymentStatus:  string(model.PaymentStatusPending),
			OriginalAmount: originalAmount,
			DiscountAmount: discountAmount,
			ShippingFee:    shippingFee,
			TotalPrice:     totalPrice,
			CreatedAt:      now,
			Items:          toItemOutputs(orderItems),
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.runPostCommit(ctx, userID, out, orderItems, bookIDs)

	u.metrics.OrdersCreated.Inc()
	return out, nil
}

// Post-commit side effects. Each one is independent best-effort: a
// failure is logged and the rest still run; the committed order is
// never unwound.
func (u *OrderUsecase) runPostCommit(ctx context.Context, userID int64, out OrderOutput, items []model.OrderItem, bookIDs []int64) {
	u.entitlements.Grant(ctx, userID, out.ID, items)

	if err := u.cartItems.RemoveItems(ctx, userID, bookIDs); err != nil {
		u.log.Error("cart cleanup failed", "order_code", out.OrderCode, "error", err)
	}

	u.dispatcher.Enqueue(notification.JobOrderConfirmation, map[string]any{
		"order_id":   out.ID,
		"order_code": out.OrderCode,
		"user_id":    userID,
		"total":      out.TotalPrice,
	})
	for _, it := range items {
		if it.FormatSnapshot.IsDigital() {
			u.dispatcher.Enqueue(notification.JobDigitalDelivery, map[string]any{
				"order_id": out.ID,
				"user_id":  userID,
				"book_id":  it.BookID,
			})
		}
	}
}

// generateOrderCode produces ORD-YYYYMMDD-NNNN, retrying on collision a
// bounded number of times and finally falling back to a timestamp
// suffix so it always terminates with a unique code.
func (u *OrderUsecase) generateOrderCode(ctx context.Context, orders repo.OrderRepository, now time.Time) (string, error) {
	day := now.Format("20060102")
	for attempt := 0; attempt < orderCodeMaxAttempts; attempt++ {
		code := fmt.Sprintf("ORD-%s-%04d", day, rand.Intn(10000))
		exists, err := orders.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return fmt.Sprintf("ORD-%s-%d", day, now.UnixMilli()%10000), nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) ([]OrderOutput, int64, error) {
	if userID <= 0 {
		return []OrderOutput{}, 0, errUnauthorized()
	}
	if page < 1 {
		return []OrderOutput{}, 0, errInvalidRequest("invalid page")
	}
	if limit < 1 || limit > 100 {
		return []OrderOutput{}, 0, errInvalidRequest("invalid limit")
	}

	var outs []OrderOutput
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return errDB()
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return errDB()
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return []OrderOutput{}, 0, err
	}
	return outs, total, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, errInvalidRequest("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return errDB()
		}
		if o.UserID != userID {
			// Someone else's order reads as absent.
			return errNotFound("order not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errDB()
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	return OrderOutput{
		ID:             o.ID,
		OrderCode:      o.OrderCode,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  string(o.PaymentStatus),
		OriginalAmount: o.OriginalAmount,
		DiscountAmount: o.DiscountAmount,
		ShippingFee:    o.ShippingFee,
		TotalPrice:     o.TotalPrice,
		CreatedAt:      o.CreatedAt,
		Items:          toItemOutputs(items),
	}
}

func toItemOutputs(items []model.OrderItem) []OrderItemOutput {
	outs := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outs = append(outs, OrderItemOutput{
			BookID:          it.BookID,
			Title:           it.TitleSnapshot,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		})
	}
	return outs
}
