package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/infra/payment"
	"bookstore/internal/metrics"
	repo "bookstore/internal/repository"
)

// PaymentUsecase owns Payment records and drives the gateway adapters.
// It never mutates the Order; callers take the verified result to the
// status state machine.
type PaymentUsecase struct {
	payments repo.PaymentRepository
	orders   repo.OrderRepository
	gateways map[string]payment.Gateway
	metrics  *metrics.CheckoutMetrics
	log      *slog.Logger
	now      func() time.Time
}

func NewPaymentUsecase(
	payments repo.PaymentRepository,
	orders repo.OrderRepository,
	gateways []payment.Gateway,
	m *metrics.CheckoutMetrics,
	log *slog.Logger,
) *PaymentUsecase {
	byName := make(map[string]payment.Gateway, len(gateways))
	for _, g := range gateways {
		byName[g.Provider()] = g
	}
	return &PaymentUsecase{
		payments: payments,
		orders:   orders,
		gateways: byName,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

type InitiatePaymentInput struct {
	OrderID     int64
	Amount      int64
	Description string
	ClientIP    string
}

type InitiatePaymentOutput struct {
	PaymentURL      string `json:"payment_url"`
	TransactionCode string `json:"transaction_code"`
}

// InitiatePayment creates the Payment record and builds the provider
// redirect. The provider only ever sees the transaction code.
func (u *PaymentUsecase) InitiatePayment(ctx context.Context, userID int64, in InitiatePaymentInput) (InitiatePaymentOutput, error) {
	if userID <= 0 {
		return InitiatePaymentOutput{}, errUnauthorized()
	}
	if in.OrderID <= 0 {
		return InitiatePaymentOutput{}, errInvalidRequest("invalid order id")
	}

	o, err := u.orders.FindByID(ctx, in.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		return InitiatePaymentOutput{}, errNotFound("order not found")
	}
	if err != nil {
		return InitiatePaymentOutput{}, errDB()
	}
	if o.UserID != userID {
		return InitiatePaymentOutput{}, errForbidden("not your order")
	}
	if o.PaymentStatus == model.PaymentStatusCompleted {
		return InitiatePaymentOutput{}, errInvalidRequest("order already paid")
	}

	gw, ok := u.gateways[string(o.PaymentMethod)]
	if !ok {
		return InitiatePaymentOutput{}, errInvalidRequest(fmt.Sprintf("payment method %s has no online gateway", o.PaymentMethod))
	}

	amount := in.Amount
	if amount == 0 {
		amount = o.TotalPrice
	}
	if amount != o.TotalPrice {
		return InitiatePaymentOutput{}, errInvalidRequest("amount does not match order total")
	}

	// Re-initiating an order with an open redirect hands back the same
	// URL instead of minting a second transaction code.
	if existing, err := u.payments.FindLatestByOrderID(ctx, o.ID); err == nil &&
		existing.Status == model.PaymentStatusPending && existing.PaymentURL != "" {
		return InitiatePaymentOutput{
			PaymentURL:      existing.PaymentURL,
			TransactionCode: existing.TransactionCode,
		}, nil
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return InitiatePaymentOutput{}, errDB()
	}

	description := in.Description
	if description == "" {
		description = "Payment for order " + o.OrderCode
	}

	now := u.now()
	code, err := u.generateTransactionCode(ctx, now)
	if err != nil {
		return InitiatePaymentOutput{}, errDB()
	}

	paymentID, err := u.payments.Create(ctx, model.Payment{
		OrderID:         o.ID,
		TransactionCode: code,
		Amount:          amount,
		Method:          o.PaymentMethod,
		Status:          model.PaymentStatusPending,
		Description:     description,
	})
	if err != nil {
		return InitiatePaymentOutput{}, errDB()
	}

	res, err := gw.Initiate(ctx, payment.InitiateRequest{
		TransactionCode: code,
		Amount:          amount,
		OrderInfo:       description,
		ClientIP:        in.ClientIP,
	})
	if err != nil {
		u.log.Error("payment initiation failed", "provider", gw.Provider(), "transaction_code", code, "error", err)
		if markErr := u.payments.MarkResult(ctx, paymentID, model.PaymentStatusFailed, "", err.Error()); markErr != nil {
			u.log.Error("payment failure record failed", "transaction_code", code, "error", markErr)
		}
		if errors.Is(err, payment.ErrUpstream) {
			return InitiatePaymentOutput{}, errUpstreamFailure("payment provider unavailable")
		}
		return InitiatePaymentOutput{}, errInvalidRequest("payment initiation rejected")
	}

	if err := u.payments.SetPaymentURL(ctx, paymentID, res.PaymentURL); err != nil {
		return InitiatePaymentOutput{}, errDB()
	}

	u.metrics.PaymentsInitiated.WithLabelValues(gw.Provider()).Inc()

	return InitiatePaymentOutput{
		PaymentURL:      res.PaymentURL,
		TransactionCode: code,
	}, nil
}

type CallbackOutput struct {
	Success       bool   `json:"success"`
	OrderID       int64  `json:"order_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Code          string `json:"code,omitempty"`
	Message       string `json:"message,omitempty"`
}

// HandleCallback verifies an inbound provider callback. The browser
// return and the server IPN both land here so there is exactly one
// verification path. Replays of a terminal payment return the recorded
// outcome without a second write.
func (u *PaymentUsecase) HandleCallback(ctx context.Context, provider string, params map[string]string) (CallbackOutput, error) {
	gw, ok := u.gateways[provider]
	if !ok {
		return CallbackOutput{}, errNotFound("unknown payment provider")
	}

	cb, err := gw.VerifyCallback(params)
	if errors.Is(err, payment.ErrInvalidSignature) {
		u.metrics.PaymentsVerified.WithLabelValues(provider, "invalid_signature").Inc()
		u.log.Warn("payment callback rejected, bad signature", "provider", provider)
		return CallbackOutput{}, errInvalidSignature()
	}
	if err != nil {
		return CallbackOutput{}, errInvalidRequest(err.Error())
	}

	p, err := u.payments.FindByTransactionCode(ctx, cb.TransactionCode)
	if errors.Is(err, repo.ErrNotFound) {
		return CallbackOutput{}, errNotFound("payment not found")
	}
	if err != nil {
		return CallbackOutput{}, errDB()
	}

	if cb.Amount != p.Amount {
		u.log.Warn("payment callback amount mismatch",
			"transaction_code", cb.TransactionCode, "expected", p.Amount, "got", cb.Amount)
		return CallbackOutput{}, errInvalidRequest("amount mismatch")
	}

	if p.IsTerminal() {
		return CallbackOutput{
			Success:       p.Status == model.PaymentStatusCompleted,
			OrderID:       p.OrderID,
			TransactionID: p.TransactionID,
			Code:          cb.Code,
			Message:       "already processed",
		}, nil
	}

	status := model.PaymentStatusFailed
	if cb.Success {
		status = model.PaymentStatusCompleted
	}
	if err := u.payments.MarkResult(ctx, p.ID, status, cb.TransactionID, cb.Raw); err != nil {
		return CallbackOutput{}, errDB()
	}

	result := "failed"
	if cb.Success {
		result = "completed"
	}
	u.metrics.PaymentsVerified.WithLabelValues(provider, result).Inc()

	return CallbackOutput{
		Success:       cb.Success,
		OrderID:       p.OrderID,
		TransactionID: cb.TransactionID,
		Code:          cb.Code,
		Message:       cb.Message,
	}, nil
}

// Transaction codes are sequential per day: PAY-YYYYMMDD-NNN.
func (u *PaymentUsecase) generateTransactionCode(ctx context.Context, now time.Time) (string, error) {
	count, err := u.payments.CountCreatedOn(ctx, now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%s-%03d", now.Format("20060102"), count+1), nil
}
