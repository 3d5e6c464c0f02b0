package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

// DI
func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

func (r *TransactionGormRepository) Create(ctx context.Context, t model.Transaction) error {
	return r.db.WithContext(ctx).Create(&t).Error
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, id string) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if isNotFound(err) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionGormRepository) UpdateStatus(ctx context.Context, id string, status model.LedgerStatus) error {
	return updateLedgerStatus(ctx, r.db, &model.Transaction{}, id, status)
}

type ReceiptGormRepository struct {
	db *gorm.DB
}

func NewReceiptGormRepository(db *gorm.DB) *ReceiptGormRepository {
	return &ReceiptGormRepository{db: db}
}

func (r *ReceiptGormRepository) Create(ctx context.Context, rc model.Receipt) error {
	return r.db.WithContext(ctx).Create(&rc).Error
}

func (r *ReceiptGormRepository) FindByID(ctx context.Context, id string) (model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rc).Error
	if isNotFound(err) {
		return model.Receipt{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Receipt{}, err
	}
	return rc, nil
}

func (r *ReceiptGormRepository) UpdateStatus(ctx context.Context, id string, status model.LedgerStatus) error {
	return updateLedgerStatus(ctx, r.db, &model.Receipt{}, id, status)
}

func updateLedgerStatus(ctx context.Context, db *gorm.DB, m interface{}, id string, status model.LedgerStatus) error {
	res := db.WithContext(ctx).
		Model(m).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type VerifiedTransactionGormRepository struct {
	db *gorm.DB
}

func NewVerifiedTransactionGormRepository(db *gorm.DB) *VerifiedTransactionGormRepository {
	return &VerifiedTransactionGormRepository{db: db}
}

func (r *VerifiedTransactionGormRepository) FindByReference(ctx context.Context, reference string) (model.VerifiedTransaction, error) {
	var v model.VerifiedTransaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&v).Error
	if isNotFound(err) {
		return model.VerifiedTransaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.VerifiedTransaction{}, err
	}
	return v, nil
}

// The unique index on reference is the check-then-act guard. A concurrent
// insert blocks until the other transaction commits, then reports no row.
func (r *VerifiedTransactionGormRepository) Create(ctx context.Context, v model.VerifiedTransaction) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "reference"}}, DoNothing: true}).
		Create(&v)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return repo.ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrDuplicate
	}
	return nil
}
