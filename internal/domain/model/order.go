package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
	OrderStatusDigitalDelivered OrderStatus = "digital_delivered"
)

// IsRecognizedOrderStatus guards free-form status input at the boundary.
func IsRecognizedOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusDigitalDelivered:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusDigitalDelivered
}

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodVNPay        PaymentMethod = "vnpay"
	PaymentMethodMomo         PaymentMethod = "momo"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodZaloPay      PaymentMethod = "zalopay"
)

func IsRecognizedPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodVNPay, PaymentMethodMomo,
		PaymentMethodBankTransfer, PaymentMethodZaloPay:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Order struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`
	AddressID int64 `gorm:"not null" json:"address_id"`

	// Human-facing code handed out to users and support staff.
	// Unique and immutable once assigned.
	OrderCode string `gorm:"type:varchar(30);not null;uniqueIndex" json:"order_code"`

	ShippingProviderID int64  `gorm:"not null" json:"shipping_provider_id"`
	VoucherID          *int64 `gorm:"index" json:"voucher_id,omitempty"`

	OriginalAmount int64 `gorm:"not null" json:"original_amount"`
	DiscountAmount int64 `gorm:"not null;default:0" json:"discount_amount"`
	ShippingFee    int64 `gorm:"not null;default:0" json:"shipping_fee"`
	TotalPrice     int64 `gorm:"not null" json:"total_price"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`

	// Provider-side transaction id, set once payment is confirmed.
	TransactionID string `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`

	Note string `gorm:"type:text" json:"note,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CanBeCancelled holds the single cancellation rule: only orders that
// have not yet shipped may be cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

func (o *Order) RequiresOnlinePayment() bool {
	return o.PaymentMethod != PaymentMethodCOD
}
