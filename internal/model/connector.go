package model

import "time"

// ActionKind is what a connector (and the transactions it creates) does.
type ActionKind string

const (
	// ActionLCR sends payment batch files (LCR / PAIN) to the bank.
	ActionLCR ActionKind = "lcr"
	// ActionStatement retrieves bank statement files.
	ActionStatement ActionKind = "statement"
	// ActionLog retrieves processing report files.
	ActionLog ActionKind = "log"
)

// cycleRank orders connectors inside one scheduling cycle. Logs run last
// so reports can be linked to outbound transactions created earlier in
// the same cycle.
var cycleRank = map[ActionKind]int{
	ActionLCR:       0,
	ActionStatement: 1,
	ActionLog:       2,
}

// CycleRank returns the position of the kind in a scheduling cycle.
func (k ActionKind) CycleRank() int {
	if r, ok := cycleRank[k]; ok {
		return r
	}
	return len(cycleRank)
}

// Connector is a recurring job bound to one Connection Profile.
type Connector struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string     `json:"name" gorm:"type:varchar(100)"`
	Active     bool       `json:"active" gorm:"default:false;index"`
	ActionKind ActionKind `json:"actionKind" gorm:"type:varchar(20);not null"`
	// UseCron lets the scheduler upload new lcr transactions; without it
	// uploads only happen when a document is submitted.
	UseCron   bool `json:"useCron" gorm:"default:false"`
	TestMode  bool `json:"testMode" gorm:"default:false"`
	CompanyID uint `json:"companyId" gorm:"index"`

	ProfileID uint               `json:"profileId" gorm:"index;not null"`
	Profile   *ConnectionProfile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`

	// JournalID is used for statements whose file name carries no account.
	JournalID *uint `json:"journalId"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Connector) TableName() string {
	return "connectors"
}
