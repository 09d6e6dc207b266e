package model

import "time"

// Append-only trail of status transitions, one row per change.
type OrderStatusHistory struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64       `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	ChangedBy  *int64      `json:"changed_by,omitempty"`
	Note       string      `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
