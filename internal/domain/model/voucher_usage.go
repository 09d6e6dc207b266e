package model

import "time"

// VoucherUsage records one actual consumption of a voucher by an order.
// Evaluating a voucher never creates one; only a committed order does.
type VoucherUsage struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	VoucherID int64 `gorm:"not null;index" json:"voucher_id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`

	// Snapshots for audit, kept even if the voucher is later edited.
	VoucherCode    string `gorm:"type:varchar(50);not null" json:"voucher_code"`
	DiscountAmount int64  `gorm:"not null" json:"discount_amount"`
	OrderAmount    int64  `gorm:"not null" json:"order_amount"`

	IsRefunded   bool       `gorm:"not null;default:false" json:"is_refunded"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
	RefundReason string     `gorm:"type:varchar(255)" json:"refund_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
