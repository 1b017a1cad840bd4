package model

import "time"

// Outbound document statuses.
const (
	DocumentReady     = "ready"
	DocumentSubmitted = "submitted"
)

// OutboundDocument is a payment file handed over by the ERP for sending.
type OutboundDocument struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CompanyID     uint      `json:"companyId" gorm:"index"`
	Reference     string    `json:"reference" gorm:"type:varchar(100)"` // payment order
	FileName      string    `json:"fileName" gorm:"type:varchar(255);not null"`
	FileData      []byte    `json:"-"`
	Status        string    `json:"status" gorm:"type:varchar(20);default:'ready';index"`
	TransactionID *uint     `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (OutboundDocument) TableName() string {
	return "outbound_documents"
}

// StatementImport is a statement file accepted by the import engine.
type StatementImport struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CompanyID  uint      `json:"companyId" gorm:"index"`
	FileName   string    `json:"fileName" gorm:"type:varchar(255);uniqueIndex"`
	FileData   []byte    `json:"-"`
	JournalID  *uint     `json:"journalId"`
	ImportedAt time.Time `json:"importedAt"`
}

func (StatementImport) TableName() string {
	return "statement_imports"
}

// BankJournal is an accounting journal bound to a bank account.
type BankJournal struct {
	ID                     uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	CompanyID              uint   `json:"companyId" gorm:"index"`
	Name                   string `json:"name" gorm:"type:varchar(100)"`
	AccountNumber          string `json:"accountNumber" gorm:"type:varchar(64)"`
	SanitizedAccountNumber string `json:"sanitizedAccountNumber" gorm:"type:varchar(64);index"`
}

func (BankJournal) TableName() string {
	return "bank_journals"
}
