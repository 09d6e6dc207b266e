package model

import "time"

// MaxDownloadsPerGrant caps downloads per entitlement. Enforced when a
// download is requested, not when the grant is created.
const MaxDownloadsPerGrant = 3

type DownloadRecord struct {
	Type      string    `json:"type"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// UserBook is a digital entitlement: a durable grant letting one user
// access one digital book's file. Unique per (user, book); repurchase
// does not duplicate it.
type UserBook struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64 `gorm:"not null;uniqueIndex:idx_user_books_user_book" json:"user_id"`
	BookID  int64 `gorm:"not null;uniqueIndex:idx_user_books_user_book" json:"book_id"`
	OrderID int64 `gorm:"not null;index" json:"order_id"`

	BookType BookFormat `gorm:"type:varchar(20);not null" json:"book_type"`

	FilePath string `gorm:"type:varchar(500)" json:"-"`
	FileSize int64  `json:"file_size"`
	FileMime string `gorm:"type:varchar(100)" json:"file_mime"`

	DownloadCount   int64            `gorm:"not null;default:0" json:"download_count"`
	DownloadHistory []DownloadRecord `gorm:"serializer:json" json:"download_history,omitempty"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ub *UserBook) CanDownload() bool {
	return ub.IsActive && ub.DownloadCount < MaxDownloadsPerGrant
}
