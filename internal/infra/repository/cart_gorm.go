package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// Same product adds to the quantity: upsert on (user_id, product_id).
func (r *CartGormRepository) AddLine(ctx context.Context, userID string, line model.CartLine) error {
	if line.Amount <= 0 {
		return errors.New("invalid quantity")
	}

	item := model.CartItem{
		UserID:    userID,
		ProductID: line.ProductID,
		Name:      line.Name,
		Category:  line.Category,
		Image:     line.Image,
		Quantity:  line.Amount,
		UnitPrice: line.UnitPrice,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"unit_price": gorm.Expr("EXCLUDED.unit_price"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(&item).Error
}

func (r *CartGormRepository) RemoveLines(ctx context.Context, userID string, lines []model.CartLine) error {
	db := r.db.WithContext(ctx)

	for _, l := range lines {
		if err := db.Model(&model.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, l.ProductID).
			Update("quantity", gorm.Expr("quantity - ?", l.Amount)).Error; err != nil {
			return err
		}
	}

	// drop rows that are used up
	return db.Where("user_id = ? AND quantity <= 0", userID).
		Delete(&model.CartItem{}).Error
}

type PurchaseLineGormRepository struct {
	db *gorm.DB
}

func NewPurchaseLineGormRepository(db *gorm.DB) *PurchaseLineGormRepository {
	return &PurchaseLineGormRepository{db: db}
}

func (r *PurchaseLineGormRepository) AddPending(ctx context.Context, userID string, orderID string, lines []model.CartLine) error {
	if len(lines) == 0 {
		return nil
	}

	rows := make([]model.PurchaseLine, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, model.PurchaseLine{
			UserID:    userID,
			OrderID:   orderID,
			State:     model.PurchaseStatePending,
			ProductID: l.ProductID,
			Name:      l.Name,
			Category:  l.Category,
			Image:     l.Image,
			Amount:    l.Amount,
			UnitPrice: l.UnitPrice,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PurchaseLineGormRepository) MoveToHistory(ctx context.Context, orderID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PurchaseLine{}).
		Where("order_id = ? AND state = ?", orderID, model.PurchaseStatePending).
		Update("state", model.PurchaseStateHistory)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *PurchaseLineGormRepository) ListByUser(ctx context.Context, userID string, state model.PurchaseState) ([]model.PurchaseLine, error) {
	var rows []model.PurchaseLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, state).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return []model.PurchaseLine{}, err
	}
	return rows, nil
}

var _ repo.CartRepository = (*CartGormRepository)(nil)
var _ repo.PurchaseLineRepository = (*PurchaseLineGormRepository)(nil)
