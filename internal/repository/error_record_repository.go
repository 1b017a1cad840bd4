package repository

import (
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"gorm.io/gorm"
)

// ErrorRecordRepository is the append-only audit sink. Every Append commits
// on its own session, outside any unit of work of the caller.
type ErrorRecordRepository struct {
	db *gorm.DB
}

func NewErrorRecordRepository(db *gorm.DB) *ErrorRecordRepository {
	return &ErrorRecordRepository{db: db}
}

func (r *ErrorRecordRepository) Append(rec *model.ErrorRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	return r.db.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true}).Create(rec).Error
}

func (r *ErrorRecordRepository) ListByTransaction(txID uint) ([]model.ErrorRecord, error) {
	var recs []model.ErrorRecord
	err := r.db.Where("transaction_id = ?", txID).Order("timestamp ASC").Find(&recs).Error
	return recs, err
}
