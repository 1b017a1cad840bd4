package model

import "time"

// ErrorRecord is an append-only audit entry. Successful imports are
// recorded here too, so it reads as an event log rather than a failure log.
// TransactionID is nil for connection-level events.
type ErrorRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Component     string    `json:"component" gorm:"type:varchar(100)"`
	Operation     string    `json:"operation" gorm:"type:varchar(100)"`
	Name          string    `json:"name" gorm:"type:varchar(255)"`
	Message       string    `json:"message" gorm:"type:text"`
	Timestamp     time.Time `json:"timestamp" gorm:"index"`
	TransactionID *uint     `json:"transactionId" gorm:"index"`
}

func (ErrorRecord) TableName() string {
	return "error_records"
}
