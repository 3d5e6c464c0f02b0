package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, o model.Order) error {
	return r.db.WithContext(ctx).Create(&o).Error
}

func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, id string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&o).Error
	if isNotFound(err) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type FulfilledGormRepository struct {
	db *gorm.DB
}

func NewFulfilledGormRepository(db *gorm.DB) *FulfilledGormRepository {
	return &FulfilledGormRepository{db: db}
}

func (r *FulfilledGormRepository) Create(ctx context.Context, f model.Fulfilled) error {
	err := r.db.WithContext(ctx).Create(&f).Error
	if isUniqueViolation(err) {
		return repo.ErrDuplicate
	}
	return err
}

func (r *FulfilledGormRepository) FindByOrderID(ctx context.Context, orderID string) (model.Fulfilled, error) {
	var f model.Fulfilled
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&f).Error
	if isNotFound(err) {
		return model.Fulfilled{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Fulfilled{}, err
	}
	return f, nil
}
