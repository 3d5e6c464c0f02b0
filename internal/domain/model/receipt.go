package model

import (
	"time"

	"gorm.io/datatypes"
)

type Receipt struct {
	ID            string                        `gorm:"type:uuid;primaryKey" json:"id"`
	PayersID      string                        `gorm:"type:uuid;not null;index" json:"payersID"`
	TransactionID string                        `gorm:"type:uuid;not null;index" json:"transactionId"`
	Shipping      ShippingDetails               `gorm:"embedded" json:"shipping"`
	PaymentMethod string                        `gorm:"type:varchar(50)" json:"paymentMethod"`
	ItemNum       int64                         `gorm:"not null" json:"itemNum"`
	Status        LedgerStatus                  `gorm:"type:varchar(20);not null;default:'current'" json:"status"`
	TotalAmount   int64                         `gorm:"not null" json:"totalAmount"`
	Products      datatypes.JSONSlice[CartLine] `gorm:"type:jsonb;not null" json:"products"`
	Date          time.Time                     `gorm:"not null;index" json:"date"`
}
