package model

// Shipping fields shared by checkout sessions and the ledger records.
type ShippingDetails struct {
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Email       string `gorm:"type:varchar(255);not null;index" json:"email"`
	Address     string `gorm:"type:varchar(255);not null" json:"address"`
	PhoneNumber string `gorm:"type:varchar(30)" json:"phoneNumber"`
	City        string `gorm:"type:varchar(255)" json:"city"`
	State       string `gorm:"type:varchar(100)" json:"state"`
	PostalCode  string `gorm:"type:varchar(20)" json:"postalCode"`
}
