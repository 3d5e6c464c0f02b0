package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Count is the inventory counter credited when orders are fulfilled.
type Product struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Category  string          `gorm:"type:varchar(100)" json:"category"`
	Image     string          `gorm:"type:varchar(255)" json:"image"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Count     int64           `gorm:"not null;default:0" json:"count"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
