package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) repo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) FindByID(ctx context.Context, userID string) (model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&u).Error
	if isNotFound(err) {
		return model.User{}, repo.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *userGormRepository) SetDiscountCode(ctx context.Context, userID string, code string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("discount_code", code)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
