package repository

import (
	"errors"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// FindOrCreate returns the transaction with tx's (action kind, file name),
// creating it from tx when none exists. created reports which happened.
func (r *TransactionRepository) FindOrCreate(tx *model.Transaction) (*model.Transaction, bool, error) {
	var out model.Transaction
	result := r.db.
		Where("action_kind = ? AND file_name = ?", tx.ActionKind, tx.FileName).
		Attrs(tx).
		FirstOrCreate(&out)
	if result.Error != nil {
		// lost a race against another writer on the unique index
		if existing, err := r.FindByKindAndFile(tx.ActionKind, tx.FileName); err == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, result.Error
	}
	return &out, result.RowsAffected > 0, nil
}

// FindByKindAndFile returns nil, nil when nothing matches.
func (r *TransactionRepository) FindByKindAndFile(kind model.ActionKind, fileName string) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.Where("action_kind = ? AND file_name = ?", kind, fileName).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) FindByID(id uint) (*model.Transaction, error) {
	var tx model.Transaction
	if err := r.db.Preload("Errors").First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByKindStates lists a profile's transactions of one kind in the given
// states, oldest first.
func (r *TransactionRepository) ListByKindStates(kind model.ActionKind, profileID uint, states ...model.TransactionState) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := r.db.
		Where("action_kind = ? AND profile_id = ? AND state IN ?", kind, profileID, states).
		Order("id ASC").
		Find(&txs).Error
	return txs, err
}

// List returns the latest transactions, optionally filtered by kind and state.
func (r *TransactionRepository) List(kind model.ActionKind, state model.TransactionState, limit int) ([]model.Transaction, error) {
	query := r.db.Model(&model.Transaction{})
	if kind != "" {
		query = query.Where("action_kind = ?", kind)
	}
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if limit <= 0 {
		limit = 50
	}

	var txs []model.Transaction
	err := query.Order("id DESC").Limit(limit).Find(&txs).Error
	return txs, err
}

// Save persists state, treatment date and links. The payload is never
// rewritten.
func (r *TransactionRepository) Save(tx *model.Transaction) error {
	return r.db.Model(tx).Select("State", "TreatmentDate", "JournalID", "LinkedTransactionID").Updates(tx).Error
}
