package model

import "time"

type LedgerStatus string

const (
	LedgerStatusCurrent LedgerStatus = "current"
	LedgerStatusSeen    LedgerStatus = "seen"
)

// Ledger entry for a verified payment. Only Status ever changes.
type Transaction struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	PayersID      string          `gorm:"type:uuid;not null;index" json:"payersID"`
	Reference     string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"reference"`
	Shipping      ShippingDetails `gorm:"embedded" json:"shipping"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"paymentMethod"`
	ItemNum       int64           `gorm:"not null" json:"itemNum"`
	Status        LedgerStatus    `gorm:"type:varchar(20);not null;default:'current'" json:"status"`
	TotalAmount   int64           `gorm:"not null" json:"totalAmount"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
}
