package model

import (
	"time"

	"gorm.io/gorm"
)

type BookFormat string

const (
	FormatHardcover BookFormat = "hardcover"
	FormatPaperback BookFormat = "paperback"
	FormatEbook     BookFormat = "ebook"
	FormatAudiobook BookFormat = "audiobook"
)

// IsDigital reports whether the format is delivered as a file grant
// instead of shipped stock.
func (f BookFormat) IsDigital() bool {
	return f == FormatEbook || f == FormatAudiobook
}

type Book struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string     `gorm:"type:varchar(255);not null" json:"title"`
	CategoryID int64      `gorm:"not null;index" json:"category_id"`
	Price      int64      `gorm:"not null" json:"price"`
	Stock      int64      `gorm:"not null;default:0" json:"stock"`
	Format     BookFormat `gorm:"type:varchar(20);not null" json:"format"`

	// File metadata, only set for digital formats.
	FilePath string `gorm:"type:varchar(500)" json:"-"`
	FileSize int64  `json:"-"`
	FileMime string `gorm:"type:varchar(100)" json:"-"`

	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
