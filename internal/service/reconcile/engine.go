// Package reconcile drives transactions through their lifecycle: outbound
// payment files are uploaded, inbound statements and bank reports are
// collected, imported and linked.
package reconcile

import (
	"context"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/service/connector"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/metrics"
)

// TransactionStore persists transactions. FindOrCreate is keyed by
// (action kind, file name).
type TransactionStore interface {
	FindOrCreate(tx *model.Transaction) (*model.Transaction, bool, error)
	FindByKindAndFile(kind model.ActionKind, fileName string) (*model.Transaction, error)
	FindByID(id uint) (*model.Transaction, error)
	ListByKindStates(kind model.ActionKind, profileID uint, states ...model.TransactionState) ([]model.Transaction, error)
	Save(tx *model.Transaction) error
}

// ErrorSink appends audit records outside the caller's unit of work.
type ErrorSink interface {
	Append(rec *model.ErrorRecord) error
}

type LogReportStore interface {
	Create(report *model.LogReport) error
}

// DocumentSource hands over outbound files produced by the ERP and takes
// back the transaction that carries each of them.
type DocumentSource interface {
	Ready(companyID uint) ([]model.OutboundDocument, error)
	MarkSubmitted(docID, txID uint) error
}

// StatementImporter books a statement file. A nil error means success.
type StatementImporter interface {
	Import(ctx context.Context, tx *model.Transaction) error
}

// JournalLookup finds the bank journal of a sanitized account number. It
// returns nil when none matches.
type JournalLookup interface {
	FindBySanitizedAccount(companyID uint, sanitized string) (*model.BankJournal, error)
}

// Deps are the collaborators of an Engine. Documents, Importer and Journals
// may be nil when the matching flow is not used.
type Deps struct {
	Opener       connector.Opener
	Transactions TransactionStore
	Errors       ErrorSink
	Reports      LogReportStore
	Documents    DocumentSource
	Importer     StatementImporter
	Journals     JournalLookup
}

type Engine struct {
	opener    connector.Opener
	txs       TransactionStore
	sink      ErrorSink
	reports   LogReportStore
	documents DocumentSource
	importer  StatementImporter
	journals  JournalLookup
	now       func() time.Time
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		opener:    d.Opener,
		txs:       d.Transactions,
		sink:      d.Errors,
		reports:   d.Reports,
		documents: d.Documents,
		importer:  d.Importer,
		journals:  d.Journals,
		now:       time.Now,
	}
}

func (e *Engine) open(ctx context.Context, conn *model.Connector) (transfer.Session, func(), error) {
	s, err := e.opener.Open(ctx, conn.Profile)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if cerr := s.Close(); cerr != nil {
			logger.Warnf("[Reconcile] Close session for connector %d: %v", conn.ID, cerr)
		}
	}, nil
}

// transition moves tx to state, persists it and counts it.
func (e *Engine) transition(tx *model.Transaction, state model.TransactionState) error {
	if err := tx.Transition(state, e.now()); err != nil {
		return err
	}
	if err := e.txs.Save(tx); err != nil {
		return err
	}
	metrics.TransactionStates.WithLabelValues(string(tx.ActionKind), string(state)).Inc()
	return nil
}

// record appends an audit entry. A failing sink is logged and ignored so
// that auditing never changes the outcome of the audited operation.
func (e *Engine) record(txID *uint, component, operation, name, message string) {
	rec := &model.ErrorRecord{
		Component:     component,
		Operation:     operation,
		Name:          name,
		Message:       message,
		Timestamp:     e.now(),
		TransactionID: txID,
	}
	if err := e.sink.Append(rec); err != nil {
		logger.Warnf("[Reconcile] Cannot append record %q: %v", name, err)
	}
}

func idOf(tx *model.Transaction) *uint {
	id := tx.ID
	return &id
}
