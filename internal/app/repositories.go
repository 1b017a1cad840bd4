package app

import (
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/repository"
	"gorm.io/gorm"
)

// Repositories holds every repository instance.
type Repositories struct {
	Profile         *repository.ProfileRepository
	Connector       *repository.ConnectorRepository
	Transaction     *repository.TransactionRepository
	ErrorRecord     *repository.ErrorRecordRepository
	LogReport       *repository.LogReportRepository
	Document        *repository.DocumentRepository
	StatementImport *repository.StatementImportRepository
	Journal         *repository.JournalRepository
}

func InitializeRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile:         repository.NewProfileRepository(db),
		Connector:       repository.NewConnectorRepository(db),
		Transaction:     repository.NewTransactionRepository(db),
		ErrorRecord:     repository.NewErrorRecordRepository(db),
		LogReport:       repository.NewLogReportRepository(db),
		Document:        repository.NewDocumentRepository(db),
		StatementImport: repository.NewStatementImportRepository(db),
		Journal:         repository.NewJournalRepository(db),
	}
}
