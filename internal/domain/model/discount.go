package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentUseCount never exceeds Limit. Redemptions hold the users list.
type Discount struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Percentage      decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"percentage"`
	CurrentUseCount int64           `gorm:"not null;default:0" json:"currentUseCount"`
	Limit           int64           `gorm:"column:usage_limit;not null" json:"limit"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (d Discount) Exhausted() bool {
	return d.CurrentUseCount >= d.Limit
}

// One row per (code, user). The unique index is what blocks double use.
type DiscountRedemption struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_redemptions_code_user" json:"code"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_redemptions_code_user" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
