package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// One product entry with its quantity. Snapshots of these are copied into
// sessions, receipts, orders and fulfilled records.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Amount    int64           `json:"amount"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Cart rows. (user_id, product_id) is unique so the same product is merged, never duplicated.
type CartItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID string          `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Category  string          `gorm:"type:varchar(100)" json:"category"`
	Image     string          `gorm:"type:varchar(255)" json:"image"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c CartItem) Line() CartLine {
	return CartLine{
		ProductID: c.ProductID,
		Name:      c.Name,
		Category:  c.Category,
		Amount:    c.Quantity,
		Image:     c.Image,
		UnitPrice: c.UnitPrice,
	}
}

func LinesFromItems(items []CartItem) []CartLine {
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.Line())
	}
	return lines
}

// Total quantity across lines.
func CountItems(lines []CartLine) int64 {
	var n int64
	for _, l := range lines {
		n += l.Amount
	}
	return n
}
