package model

import "time"

// LogReport is a parsed bank processing report.
type LogReport struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Date        time.Time `json:"date" gorm:"index"`
	LogFileName string    `json:"logFileName" gorm:"type:varchar(255)"`
	LogFileData []byte    `json:"-"`

	Direction       string `json:"direction" gorm:"type:varchar(20)"` // emission, reception, import
	Directory       string `json:"directory" gorm:"type:varchar(255)"`
	FileName        string `json:"fileName" gorm:"type:varchar(255);index"`
	ComRef          string `json:"comRef" gorm:"type:varchar(100)"`
	Result          string `json:"result" gorm:"type:varchar(10)"` // success, error
	ResultErrorCode *int   `json:"resultErrorCode"`
	Report          string `json:"report" gorm:"type:text"`

	CompanyID uint `json:"companyId" gorm:"index"`
	// TransactionID is the log transaction that carried the file.
	TransactionID *uint `json:"transactionId" gorm:"index"`
	// OutboundTransactionID is the lcr transaction the report is about.
	OutboundTransactionID *uint `json:"outboundTransactionId" gorm:"index"`
}

func (LogReport) TableName() string {
	return "log_reports"
}
