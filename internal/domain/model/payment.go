package model

import "time"

// Payment is the authoritative record for one provider redirect attempt.
// TransactionCode is what the provider sees as the merchant order
// reference; internal ids never leave the system.
type Payment struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;index" json:"order_id"`

	TransactionCode string `gorm:"type:varchar(30);not null;uniqueIndex" json:"transaction_code"`

	Amount      int64         `gorm:"not null" json:"amount"`
	Method      PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Description string        `gorm:"type:varchar(255)" json:"description"`

	// Provider-side transaction id echoed back on the callback.
	TransactionID string `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`

	// Full raw gateway response, stored for audit.
	RawResponse string `gorm:"type:text" json:"-"`

	PaymentURL string `gorm:"type:text" json:"payment_url,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed || p.Status == PaymentStatusRefunded
}
