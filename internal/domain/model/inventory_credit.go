package model

import "time"

// Restock applied for one order line. (order_id, product_id) is unique so a
// retried fulfillment never credits twice.
type InventoryCredit struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_credits_order_product" json:"order_id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_credits_order_product" json:"product_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
