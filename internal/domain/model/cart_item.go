package model

import "time"

// One cart line per (user, book). Checkout removes the purchased lines;
// it never mutates quantities.
type CartItem struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64 `gorm:"not null;uniqueIndex:idx_cart_items_user_book" json:"user_id"`
	BookID   int64 `gorm:"not null;uniqueIndex:idx_cart_items_user_book" json:"book_id"`
	Quantity int64 `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
