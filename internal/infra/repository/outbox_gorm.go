package repository

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

func (r *OutboxGormRepository) Insert(ctx context.Context, topic string, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ev := model.OutboxEvent{
		EventID: uuid.NewString(),
		Topic:   topic,
		Key:     key,
		Payload: datatypes.JSON(data),
	}
	return r.db.WithContext(ctx).Create(&ev).Error
}

func (r *OutboxGormRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var out []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id asc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return []model.OutboxEvent{}, err
	}
	return out, nil
}

func (r *OutboxGormRepository) MarkSent(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Update("sent_at", time.Now().UTC()).Error
}
