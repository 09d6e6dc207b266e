package model

import "time"

type ShippingProvider struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	Fee           int64  `gorm:"not null" json:"fee"`
	EstimatedDays string `gorm:"type:varchar(50)" json:"estimated_days"`
	IsActive      bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
