package model

import (
	"fmt"
	"time"
)

// TransactionState is the lifecycle position of a Transaction.
type TransactionState string

const (
	StateNew        TransactionState = "new"
	StateTreated    TransactionState = "treated"
	StateProcessing TransactionState = "processing"
	StateSuccess    TransactionState = "success"
	StateError      TransactionState = "error"
	StateTest       TransactionState = "test"
)

var transitions = map[TransactionState][]TransactionState{
	StateNew:        {StateTreated, StateTest, StateSuccess, StateError},
	StateTreated:    {StateTreated, StateProcessing, StateSuccess, StateError},
	StateProcessing: {StateProcessing, StateSuccess, StateError},
}

// IsTerminal reports whether no further transition is allowed.
func (s TransactionState) IsTerminal() bool {
	_, ok := transitions[s]
	return !ok
}

// CanTransition reports whether from -> to is an edge of the state machine.
func (s TransactionState) CanTransition(to TransactionState) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transaction is the unit of reconciliation: one exchanged file.
// (ActionKind, FileName) is unique so creation is idempotent.
type Transaction struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	ActionKind ActionKind `json:"actionKind" gorm:"type:varchar(20);not null;uniqueIndex:idx_transaction_kind_file"`
	FileName   string     `json:"fileName" gorm:"type:varchar(255);not null;uniqueIndex:idx_transaction_kind_file"`
	FileData   []byte     `json:"-"`

	State         TransactionState `json:"state" gorm:"type:varchar(20);default:'new';index"`
	CompanyID     uint             `json:"companyId" gorm:"index"`
	ProfileID     uint             `json:"profileId" gorm:"index"`
	TreatmentDate *time.Time       `json:"treatmentDate"`

	// inbound statements: journal inferred from the file name
	JournalID *uint `json:"journalId"`
	// outbound: reference of the document that produced the file
	DocumentRef string `json:"documentRef" gorm:"type:varchar(100)"`
	// log: the outbound transaction the report talks about
	LinkedTransactionID *uint `json:"linkedTransactionId" gorm:"index"`

	Errors []ErrorRecord `json:"errors,omitempty" gorm:"foreignKey:TransactionID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Transition moves the transaction to state `to` and stamps the treatment
// date. Staying in the same non-terminal state is allowed.
func (t *Transaction) Transition(to TransactionState, at time.Time) error {
	if t.State == to && !to.IsTerminal() {
		return nil
	}
	if !t.State.CanTransition(to) {
		return fmt.Errorf("transaction %d (%s): invalid transition %s -> %s", t.ID, t.FileName, t.State, to)
	}
	t.State = to
	t.TreatmentDate = &at
	return nil
}
