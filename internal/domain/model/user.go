package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Sentinel stored when no discount code is attached to the user.
const NoDiscountCode = "No discountCode"

// The user directory owns this table; the pipeline reads the discount code
// and resets it after a verified checkout.
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	DiscountCode string    `gorm:"type:varchar(64);not null;default:'No discountCode'" json:"discountCode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) HasDiscount() bool {
	return u.DiscountCode != "" && u.DiscountCode != NoDiscountCode
}
