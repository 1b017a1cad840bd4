package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/service/connector"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/metrics"
)

// Audit fields of the record appended when a file lands in error/.
const (
	errorRecordName      = "Error within Exabanque"
	errorRecordComponent = "connector"
	errorRecordOperation = "process file"
	errorRecordMessage   = "Found file in error path"
)

// TransactionStore is the transaction persistence the poller needs.
type TransactionStore interface {
	ListByKindStates(kind model.ActionKind, profileID uint, states ...model.TransactionState) ([]model.Transaction, error)
	Save(tx *model.Transaction) error
}

// ErrorSink appends audit records outside the caller's unit of work.
type ErrorSink interface {
	Append(rec *model.ErrorRecord) error
}

type Poller struct {
	opener connector.Opener
	txs    TransactionStore
	sink   ErrorSink
	now    func() time.Time
}

func NewPoller(opener connector.Opener, txs TransactionStore, sink ErrorSink) *Poller {
	return &Poller{opener: opener, txs: txs, sink: sink, now: time.Now}
}

// Run checks every treated or processing lcr transaction of the connector's
// profile against one snapshot of process/, error/ and success/. A failing
// transaction never stops the others.
func (p *Poller) Run(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("poll connector %d", conn.ID))
	if conn.Profile == nil {
		return report, errs.Missing("profile")
	}

	txs, err := p.txs.ListByKindStates(model.ActionLCR, conn.ProfileID, model.StateTreated, model.StateProcessing)
	if err != nil {
		report.Abort(err)
		return report, err
	}
	if len(txs) == 0 {
		logger.Debugf("[Poller] Nothing to check for connector %d", conn.ID)
		return report, nil
	}

	session, err := p.opener.Open(ctx, conn.Profile)
	if err != nil {
		report.Abort(err)
		return report, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warnf("[Poller] Close session for connector %d: %v", conn.ID, cerr)
		}
	}()

	listings, err := snapshot(session, conn.Profile.Paths())
	if err != nil {
		// without a full snapshot any verdict could be wrong: touch nothing
		logger.Warnf("[Poller] Cannot list status directories for connector %d: %v", conn.ID, err)
		for i := range txs {
			report.Fail(txs[i].FileName, err)
		}
		return report, nil
	}

	for i := range txs {
		tx := &txs[i]
		if err := p.apply(tx, Locate(tx.FileName, listings)); err != nil {
			logger.Errorf("[Poller] Error checking file %s: %v", tx.FileName, err)
			report.Fail(tx.FileName, err)
			continue
		}
		report.Succeed(tx.FileName)
	}

	logger.Infof("[Poller] %s", report)
	return report, nil
}

func snapshot(s transfer.Session, paths model.RemotePaths) (Listings, error) {
	var (
		l   Listings
		err error
	)
	if l.Process, err = s.List(paths.Process); err != nil {
		return l, err
	}
	if l.Error, err = s.List(paths.Error); err != nil {
		return l, err
	}
	if l.Success, err = s.List(paths.Success); err != nil {
		return l, err
	}
	return l, nil
}

func (p *Poller) apply(tx *model.Transaction, loc Location) error {
	if loc.State == "" {
		return nil
	}

	now := p.now()
	if loc.InError {
		txID := tx.ID
		rec := &model.ErrorRecord{
			Component:     errorRecordComponent,
			Operation:     errorRecordOperation,
			Name:          errorRecordName,
			Message:       errorRecordMessage,
			Timestamp:     now,
			TransactionID: &txID,
		}
		if err := p.sink.Append(rec); err != nil {
			logger.Warnf("[Poller] Cannot record error for %s: %v", tx.FileName, err)
		}
	}

	if tx.State == loc.State {
		return nil
	}
	if err := tx.Transition(loc.State, now); err != nil {
		return err
	}
	if err := p.txs.Save(tx); err != nil {
		return err
	}

	metrics.TransactionStates.WithLabelValues(string(tx.ActionKind), string(tx.State)).Inc()
	logger.Infof("[Poller] %s -> %s", tx.FileName, tx.State)
	return nil
}
