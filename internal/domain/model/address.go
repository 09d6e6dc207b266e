package model

import "time"

// Shipping address. Managed elsewhere; the checkout core only reads it
// to validate ownership.
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Phone    string `gorm:"type:varchar(30);not null" json:"phone"`
	Line1    string `gorm:"type:varchar(255);not null" json:"line1"`
	Line2    string `gorm:"type:varchar(255)" json:"line2"`
	Ward     string `gorm:"type:varchar(100)" json:"ward"`
	City     string `gorm:"type:varchar(100);not null" json:"city"`
	Province string `gorm:"type:varchar(100);not null" json:"province"`

	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
