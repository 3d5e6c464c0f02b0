package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscountGormRepository struct {
	db *gorm.DB
}

// DI
func NewDiscountGormRepository(db *gorm.DB) *DiscountGormRepository {
	return &DiscountGormRepository{db: db}
}

func (r *DiscountGormRepository) FindByCode(ctx context.Context, code string) (model.Discount, error) {
	var d model.Discount
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&d).Error
	if isNotFound(err) {
		return model.Discount{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Discount{}, err
	}
	return d, nil
}

func (r *DiscountGormRepository) Create(ctx context.Context, d model.Discount) (model.Discount, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Discount{}, repo.ErrDuplicate
		}
		return model.Discount{}, err
	}
	return d, nil
}

func (r *DiscountGormRepository) HasRedeemed(ctx context.Context, code string, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DiscountRedemption{}).
		Where("code = ? AND user_id = ?", code, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ON CONFLICT DO NOTHING keeps an enclosing transaction usable on a repeat.
func (r *DiscountGormRepository) RecordRedemption(ctx context.Context, code string, userID string) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.DiscountRedemption{Code: code, UserID: userID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrDuplicate
	}
	return nil
}

// Increments only while below the limit.
func (r *DiscountGormRepository) IncrementUsageIfBelowLimit(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Discount{}).
		Where("code = ? AND current_use_count < usage_limit", code).
		Update("current_use_count", gorm.Expr("current_use_count + 1"))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *DiscountGormRepository) ListRedeemers(ctx context.Context, code string) ([]string, error) {
	var users []string
	err := r.db.WithContext(ctx).
		Model(&model.DiscountRedemption{}).
		Where("code = ?", code).
		Order("id asc").
		Pluck("user_id", &users).Error
	if err != nil {
		return []string{}, err
	}
	return users, nil
}
