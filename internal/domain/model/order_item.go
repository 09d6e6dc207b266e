package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem snapshots the book at purchase time. PriceAtPurchase and
// FormatSnapshot are never re-read from the catalog afterward, so later
// price or format changes cannot rewrite order history.
type OrderItem struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64      `gorm:"not null;index" json:"order_id"`
	BookID         int64      `gorm:"not null;index" json:"book_id"`
	TitleSnapshot  string     `gorm:"type:varchar(255);not null" json:"title_snapshot"`
	FormatSnapshot BookFormat `gorm:"type:varchar(20);not null" json:"format_snapshot"`

	Quantity        int64 `gorm:"not null" json:"quantity"`
	PriceAtPurchase int64 `gorm:"not null" json:"price_at_purchase"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (oi *OrderItem) Subtotal() int64 {
	return oi.PriceAtPurchase * oi.Quantity
}
