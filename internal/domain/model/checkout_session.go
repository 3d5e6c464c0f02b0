package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CheckoutStatus string

const (
	CheckoutStatusStaged    CheckoutStatus = "STAGED"
	CheckoutStatusVerifying CheckoutStatus = "VERIFYING"
)

// Staging snapshot of one checkout attempt. The row is deleted in the same
// transaction that records the VerifiedTransaction.
type CheckoutSession struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	PayersID      string          `gorm:"type:uuid;not null;index" json:"payersID"`
	Shipping      ShippingDetails `gorm:"embedded" json:"shipping"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"paymentMethod"`
	ItemNum       int64           `gorm:"not null" json:"itemNum"`

	Products datatypes.JSONSlice[CartLine] `gorm:"type:jsonb;not null" json:"products"`

	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	ShippingFee int64 `gorm:"not null" json:"shippingFee"`
	Tax         int64 `gorm:"not null" json:"tax"`
	Total       int64 `gorm:"not null" json:"total"`

	DiscountCode       string          `gorm:"type:varchar(64)" json:"discountCode"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discountPercentage"`
	AmountDue          int64           `gorm:"not null" json:"amountDue"`
	AmountMinor        int64           `gorm:"not null" json:"amountMinor"`

	Status    CheckoutStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Reference string         `gorm:"type:varchar(255);index" json:"reference"`
	ExpiresAt time.Time      `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (s CheckoutSession) HasDiscount() bool {
	return s.DiscountCode != "" && s.DiscountCode != NoDiscountCode
}
