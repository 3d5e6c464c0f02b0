package model

import "time"

type AuditAction string

const (
	AuditActionFulfillOrder           AuditAction = "FULFILL_ORDER"
	AuditActionMarkTransactionSeen    AuditAction = "MARK_TRANSACTION_SEEN"
	AuditActionMarkReceiptSeen        AuditAction = "MARK_RECEIPT_SEEN"
	AuditActionCreateDiscount         AuditAction = "CREATE_DISCOUNT"
	AuditActionDiscountOversubscribed AuditAction = "DISCOUNT_OVERSUBSCRIBED"
)

type AuditResourceType string

const (
	AuditResourceOrder       AuditResourceType = "order"
	AuditResourceTransaction AuditResourceType = "transaction"
	AuditResourceReceipt     AuditResourceType = "receipt"
	AuditResourceDiscount    AuditResourceType = "discount"
)

// Operator and system actions that change money or stock records.
// ActorUserID is empty for actions taken by the pipeline itself.
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ActorUserID string `gorm:"type:varchar(64);index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	// JSON text.
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
