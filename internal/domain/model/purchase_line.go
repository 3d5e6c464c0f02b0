package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseState string

const (
	PurchaseStatePending PurchaseState = "PENDING"
	PurchaseStateHistory PurchaseState = "HISTORY"
)

// The user's pending and history lists, tagged with the order they came from.
type PurchaseLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string          `gorm:"type:uuid;not null;index:idx_purchase_lines_user_state" json:"user_id"`
	OrderID   string          `gorm:"type:uuid;not null;index" json:"order_id"`
	State     PurchaseState   `gorm:"type:varchar(20);not null;index:idx_purchase_lines_user_state" json:"state"`
	ProductID string          `gorm:"type:uuid;not null" json:"productId"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Category  string          `gorm:"type:varchar(100)" json:"category"`
	Image     string          `gorm:"type:varchar(255)" json:"image"`
	Amount    int64           `gorm:"not null" json:"amount"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (p PurchaseLine) Line() CartLine {
	return CartLine{
		ProductID: p.ProductID,
		Name:      p.Name,
		Category:  p.Category,
		Amount:    p.Amount,
		Image:     p.Image,
		UnitPrice: p.UnitPrice,
	}
}
