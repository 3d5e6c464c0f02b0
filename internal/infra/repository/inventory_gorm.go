package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

var errAlreadyCredited = errors.New("already credited")

// Credit row first, then the counter. Runs in a nested transaction (a
// savepoint when called inside WithinTx) so a missing product leaves no
// credit row behind.
func (r *InventoryGormRepository) CreditOnce(ctx context.Context, orderID string, productID string, qty int64) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credit := model.InventoryCredit{OrderID: orderID, ProductID: productID, Delta: qty}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&credit)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyCredited
		}

		upd := tx.Model(&model.Product{}).
			Where("id = ?", productID).
			Update("count", gorm.Expr("count + ?", qty))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})

	if errors.Is(err, errAlreadyCredited) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
