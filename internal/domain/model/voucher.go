package model

import (
	"time"

	"gorm.io/gorm"
)

type VoucherType string

const (
	VoucherTypePercentage   VoucherType = "percentage"
	VoucherTypeFixedAmount  VoucherType = "fixed_amount"
	VoucherTypeFreeShipping VoucherType = "free_shipping"
)

type Voucher struct {
	ID   int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Type VoucherType `gorm:"type:varchar(20);not null" json:"type"`

	// Percent for percentage vouchers, amount for fixed_amount, unused
	// for free_shipping.
	Value int64 `gorm:"not null" json:"value"`

	MinOrderAmount    int64  `gorm:"not null;default:0" json:"min_order_amount"`
	MaxDiscountAmount *int64 `json:"max_discount_amount,omitempty"`

	UsageLimit *int64 `json:"usage_limit,omitempty"`
	UsedCount  int64  `gorm:"not null;default:0" json:"used_count"`

	ValidFrom time.Time `gorm:"not null" json:"valid_from"`
	ValidTo   time.Time `gorm:"not null" json:"valid_to"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`

	// Optional allow-lists. Empty means unrestricted.
	CategoryIDs []int64 `gorm:"serializer:json" json:"category_ids,omitempty"`
	BookIDs     []int64 `gorm:"serializer:json" json:"book_ids,omitempty"`
	UserIDs     []int64 `gorm:"serializer:json" json:"user_ids,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsUsable is the derived validity check: active, inside the window, and
// under the usage limit when one is set.
func (v *Voucher) IsUsable(now time.Time) bool {
	if !v.IsActive {
		return false
	}
	if now.Before(v.ValidFrom) || now.After(v.ValidTo) {
		return false
	}
	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		return false
	}
	return true
}
