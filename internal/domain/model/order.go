package model

import (
	"time"

	"gorm.io/datatypes"
)

// Work still owed to the customer. Deleted once converted into Fulfilled.
type Order struct {
	ID            string                        `gorm:"type:uuid;primaryKey" json:"id"`
	PayersID      string                        `gorm:"type:uuid;not null;index" json:"payersID"`
	ReceiptID     string                        `gorm:"type:uuid;not null;index" json:"receiptId"`
	Shipping      ShippingDetails               `gorm:"embedded" json:"shipping"`
	PaymentMethod string                        `gorm:"type:varchar(50)" json:"paymentMethod"`
	ItemNum       int64                         `gorm:"not null" json:"itemNum"`
	TotalAmount   int64                         `gorm:"not null" json:"totalAmount"`
	Products      datatypes.JSONSlice[CartLine] `gorm:"type:jsonb;not null" json:"products"`
	Date          time.Time                     `gorm:"not null;index" json:"date"`
}

// Terminal, append-only record of a delivered order.
type Fulfilled struct {
	ID            string                        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       string                        `gorm:"type:uuid;not null;uniqueIndex" json:"orderId"`
	PayersID      string                        `gorm:"type:uuid;not null;index" json:"payersID"`
	ReceiptID     string                        `gorm:"type:uuid;not null" json:"receiptId"`
	Shipping      ShippingDetails               `gorm:"embedded" json:"shipping"`
	PaymentMethod string                        `gorm:"type:varchar(50)" json:"paymentMethod"`
	ItemNum       int64                         `gorm:"not null" json:"itemNum"`
	TotalAmount   int64                         `gorm:"not null" json:"totalAmount"`
	Products      datatypes.JSONSlice[CartLine] `gorm:"type:jsonb;not null" json:"products"`
	Date          time.Time                     `gorm:"not null" json:"date"`
	FulfilledAt   time.Time                     `gorm:"not null;index" json:"fulfilledAt"`
}

func (Fulfilled) TableName() string { return "fulfilled" }

// Idempotency marker. A row for a reference means verification is done.
type VerifiedTransaction struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Reference string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"reference"`
	ReceiptID string    `gorm:"type:uuid;not null" json:"receiptId"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
