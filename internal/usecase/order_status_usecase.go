package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/metrics"
	"bookstore/internal/notification"
	repo "bookstore/internal/repository"
)

// OrderStatusUsecase owns the status state machine:
//
//	pending -> confirmed -> shipped -> delivered
//	digital_delivered as an alternate terminal for all-digital orders
//	cancelled reachable from pending or confirmed only
//
// Cancellation triggers the compensating actions: entitlement
// revocation, stock restoration and voucher refund.
type OrderStatusUsecase struct {
	tx           repo.TransactionManager
	orders       repo.OrderRepository
	entitlements *EntitlementUsecase
	dispatcher   notification.Dispatcher
	metrics      *metrics.CheckoutMetrics
	log          *slog.Logger
	now          func() time.Time
}

func NewOrderStatusUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	entitlements *EntitlementUsecase,
	dispatcher notification.Dispatcher,
	m *metrics.CheckoutMetrics,
	log *slog.Logger,
) *OrderStatusUsecase {
	return &OrderStatusUsecase{
		tx:           tx,
		orders:       orders,
		entitlements: entitlements,
		dispatcher:   dispatcher,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// SetStatus applies one transition. The status update, its trail row
// and the voucher refund commit together; physical compensations
// (entitlement revoke, stock restore) run best-effort after commit.
func (u *OrderStatusUsecase) SetStatus(ctx context.Context, orderID int64, newStatus model.OrderStatus, actorUserID int64) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, errInvalidRequest("invalid id")
	}
	if !model.IsRecognizedOrderStatus(newStatus) {
		return model.Order{}, errInvalidStatus(fmt.Sprintf("unrecognized status %q", newStatus))
	}

	now := u.now()
	var updated model.Order
	cancelled := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return errDB()
		}

		if o.Status == newStatus {
			// No-op; nothing to write, nothing to compensate.
			updated = o
			return nil
		}
		if o.Status.IsTerminal() {
			return errInvalidTransition(fmt.Sprintf("order is %s", o.Status))
		}
		if newStatus == model.OrderStatusCancelled && !o.CanBeCancelled() {
			return errInvalidTransition(fmt.Sprintf("cannot cancel order in status %s", o.Status))
		}
		if newStatus == model.OrderStatusDigitalDelivered {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return errDB()
			}
			for _, it := range items {
				if !it.FormatSnapshot.IsDigital() {
					return errInvalidTransition("digital_delivered requires an all-digital order")
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus, now); err != nil {
			return errDB()
		}

		var actor *int64
		if actorUserID > 0 {
			actor = &actorUserID
		}
		if err := r.StatusHistory().Create(ctx, model.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   newStatus,
			ChangedBy:  actor,
		}); err != nil {
			return errDB()
		}

		if newStatus == model.OrderStatusCancelled {
			cancelled = true
			if err := u.refundVoucher(ctx, r, o, now); err != nil {
				return err
			}
		}

		updated = o
		updated.Status = newStatus
		switch newStatus {
		case model.OrderStatusConfirmed:
			updated.ConfirmedAt = &now
		case model.OrderStatusShipped:
			updated.ShippedAt = &now
		case model.OrderStatusDelivered, model.OrderStatusDigitalDelivered:
			updated.DeliveredAt = &now
		case model.OrderStatusCancelled:
			updated.CancelledAt = &now
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	if cancelled {
		if err := u.entitlements.Revoke(ctx, orderID); err != nil {
			u.log.Error("cancellation compensations failed", "order_id", orderID, "error", err)
		}
		u.metrics.OrdersCancelled.Inc()
		u.dispatcher.Enqueue(notification.JobOrderCancelled, map[string]any{
			"order_id":   orderID,
			"order_code": updated.OrderCode,
			"user_id":    updated.UserID,
		})
	}

	return updated, nil
}

// refundVoucher flips the usage row and gives the slot back, floored at
// zero. A cancelled order without a voucher is a no-op.
func (u *OrderStatusUsecase) refundVoucher(ctx context.Context, r repo.TxRepos, o model.Order, now time.Time) error {
	if o.VoucherID == nil {
		return nil
	}

	usage, err := r.VoucherUsages().FindByOrderID(ctx, o.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errDB()
	}
	if usage.IsRefunded {
		return nil
	}

	if err := r.VoucherUsages().MarkRefunded(ctx, usage.ID, "order cancelled", now); err != nil {
		return errDB()
	}
	if err := r.Vouchers().DecrementUsedCount(ctx, usage.VoucherID); err != nil {
		return errDB()
	}
	return nil
}

// Cancel is the user-facing exit, restricted to the owning user.
func (u *OrderStatusUsecase) Cancel(ctx context.Context, orderID int64, userID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, errUnauthorized()
	}
	if orderID <= 0 {
		return model.Order{}, errInvalidRequest("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, errNotFound("order not found")
	}
	if err != nil {
		return model.Order{}, errDB()
	}
	if o.UserID != userID {
		return model.Order{}, errForbidden("not your order")
	}

	return u.SetStatus(ctx, orderID, model.OrderStatusCancelled, userID)
}

// ApplyPaymentResult records a verified callback outcome on the order.
// A successful payment confirms the order; a failed one only marks the
// payment status, leaving the order cancellable. A success reported for
// an order that already left pending changes nothing.
func (u *OrderStatusUsecase) ApplyPaymentResult(ctx context.Context, orderID int64, success bool, transactionID string) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, errInvalidRequest("invalid id")
	}

	if !success {
		err := u.orders.UpdatePaymentStatus(ctx, orderID, model.PaymentStatusFailed)
		if errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, errNotFound("order not found")
		}
		if err != nil {
			return model.Order{}, errDB()
		}
		o, err := u.orders.FindByID(ctx, orderID)
		if err != nil {
			return model.Order{}, errDB()
		}
		return o, nil
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, errNotFound("order not found")
	}
	if err != nil {
		return model.Order{}, errDB()
	}
	if o.Status != model.OrderStatusPending {
		// Replayed callback after the order already advanced. Writing
		// again would rewind a shipped order to confirmed.
		return o, nil
	}

	now := u.now()
	if err := u.orders.MarkPaid(ctx, orderID, transactionID, now); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, errNotFound("order not found")
		}
		return model.Order{}, errDB()
	}

	return u.SetStatus(ctx, orderID, model.OrderStatusConfirmed, 0)
}

// ListAdmin exposes the back-office order listing.
func (u *OrderStatusUsecase) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	if f.Page < 1 {
		return []OrderOutput{}, 0, errInvalidRequest("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, 0, errInvalidRequest("invalid limit")
	}

	var outs []OrderOutput
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, f)
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
