package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"gorm.io/gorm"
)

// DocumentRepository serves outbound documents waiting to be sent.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.OutboundDocument) error {
	return r.db.Create(doc).Error
}

// Ready lists the company's documents not handed over yet.
func (r *DocumentRepository) Ready(companyID uint) ([]model.OutboundDocument, error) {
	var docs []model.OutboundDocument
	err := r.db.
		Where("company_id = ? AND status = ?", companyID, model.DocumentReady).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

// MarkSubmitted records the transaction that carries the document.
func (r *DocumentRepository) MarkSubmitted(docID, txID uint) error {
	return r.db.Model(&model.OutboundDocument{}).
		Where("id = ?", docID).
		Updates(map[string]interface{}{
			"status":         model.DocumentSubmitted,
			"transaction_id": txID,
		}).Error
}

// StatementImportRepository is the default statement import engine: it
// stores the file once per file name.
type StatementImportRepository struct {
	db *gorm.DB
}

func NewStatementImportRepository(db *gorm.DB) *StatementImportRepository {
	return &StatementImportRepository{db: db}
}

// ErrAlreadyImported is returned for a file name imported before.
var ErrAlreadyImported = errors.New("statement already imported")

func (r *StatementImportRepository) Import(ctx context.Context, tx *model.Transaction) error {
	if len(tx.FileData) == 0 {
		return fmt.Errorf("statement %s is empty", tx.FileName)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.StatementImport{}).Where("file_name = ?", tx.FileName).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyImported, tx.FileName)
	}

	return r.db.WithContext(ctx).Create(&model.StatementImport{
		CompanyID:  tx.CompanyID,
		FileName:   tx.FileName,
		FileData:   tx.FileData,
		JournalID:  tx.JournalID,
		ImportedAt: time.Now(),
	}).Error
}

// JournalRepository looks bank journals up by account number.
type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Create(j *model.BankJournal) error {
	return r.db.Create(j).Error
}

// FindBySanitizedAccount returns the first journal of the company whose
// sanitized account number contains sanitized, or nil.
func (r *JournalRepository) FindBySanitizedAccount(companyID uint, sanitized string) (*model.BankJournal, error) {
	var journals []model.BankJournal
	err := r.db.
		Where("company_id = ? AND sanitized_account_number LIKE ?", companyID, "%"+sanitized+"%").
		Order("id ASC").
		Limit(1).
		Find(&journals).Error
	if err != nil || len(journals) == 0 {
		return nil, err
	}
	return &journals[0], nil
}
