package repository

import (
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"gorm.io/gorm"
)

type LogReportRepository struct {
	db *gorm.DB
}

func NewLogReportRepository(db *gorm.DB) *LogReportRepository {
	return &LogReportRepository{db: db}
}

func (r *LogReportRepository) Create(report *model.LogReport) error {
	return r.db.Create(report).Error
}

func (r *LogReportRepository) ListByOutbound(txID uint) ([]model.LogReport, error) {
	var reports []model.LogReport
	err := r.db.Where("outbound_transaction_id = ?", txID).Order("date ASC").Find(&reports).Error
	return reports, err
}
