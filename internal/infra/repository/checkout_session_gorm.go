package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CheckoutSessionGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewCheckoutSessionGormRepository(db *gorm.DB) *CheckoutSessionGormRepository {
	return &CheckoutSessionGormRepository{db: db}
}

func (r *CheckoutSessionGormRepository) Create(ctx context.Context, s model.CheckoutSession) error {
	return r.db.WithContext(ctx).Create(&s).Error
}

func (r *CheckoutSessionGormRepository) FindByID(ctx context.Context, id string) (model.CheckoutSession, error) {
	var s model.CheckoutSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if isNotFound(err) {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CheckoutSession{}, err
	}
	return s, nil
}

// Fallback lookup when the gateway drops our metadata.
func (r *CheckoutSessionGormRepository) FindLatestByEmail(ctx context.Context, email string) (model.CheckoutSession, error) {
	var s model.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Order("created_at desc").
		First(&s).Error
	if isNotFound(err) {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CheckoutSession{}, err
	}
	return s, nil
}

func (r *CheckoutSessionGormRepository) MarkVerifying(ctx context.Context, id string, reference string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.CheckoutSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.CheckoutStatusVerifying,
			"reference":  reference,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CheckoutSessionGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CheckoutSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// VERIFYING rows are left to the reconciler.
func (r *CheckoutSessionGormRepository) DeleteExpiredStaged(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", model.CheckoutStatusStaged, now).
		Delete(&model.CheckoutSession{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *CheckoutSessionGormRepository) ListVerifyingBefore(ctx context.Context, before time.Time, limit int) ([]model.CheckoutSession, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []model.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.CheckoutStatusVerifying, before).
		Order("updated_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return []model.CheckoutSession{}, err
	}
	return rows, nil
}
