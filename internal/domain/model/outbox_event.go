package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TopicCheckoutVerified = "checkout.verified"
	TopicOrderFulfilled   = "order.fulfilled"
)

type OutboxEvent struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string         `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	Topic     string         `gorm:"type:varchar(100);not null" json:"topic"`
	Key       string         `gorm:"type:varchar(255);not null" json:"key"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	SentAt    *time.Time     `gorm:"index" json:"sent_at"`
}
