package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
)

const (
	componentOutbound = "connector"
	operationUpload   = "upload file"
)

// Outbound describes a payment file ready to be sent.
type Outbound struct {
	CompanyID   uint
	ProfileID   uint
	FileName    string
	Data        []byte
	DocumentRef string
}

// CreateOutbound creates the lcr transaction for a file, or returns the
// existing one when the file name was seen before.
func (e *Engine) CreateOutbound(o Outbound) (*model.Transaction, bool, error) {
	if strings.TrimSpace(o.FileName) == "" {
		return nil, false, errs.Missing("file_name")
	}
	tx, created, err := e.txs.FindOrCreate(&model.Transaction{
		ActionKind:  model.ActionLCR,
		FileName:    o.FileName,
		FileData:    o.Data,
		State:       model.StateNew,
		CompanyID:   o.CompanyID,
		ProfileID:   o.ProfileID,
		DocumentRef: o.DocumentRef,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Infof("[Outbound] Created transaction %d for %s", tx.ID, tx.FileName)
	} else {
		logger.Debugf("[Outbound] Reusing transaction %d for %s", tx.ID, tx.FileName)
	}
	return tx, created, nil
}

// Run uploads every new lcr transaction of the profile to emission/ and
// marks it treated. A failed upload leaves the transaction new for the next
// cycle.
func (e *Engine) Run(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	return e.upload(ctx, conn, false)
}

// RunTest is Run against test/. Transactions end in the test state and are
// never polled.
func (e *Engine) RunTest(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	return e.upload(ctx, conn, true)
}

// RunOutbound runs Run or RunTest depending on the connector's test mode.
func (e *Engine) RunOutbound(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	return e.upload(ctx, conn, conn.TestMode)
}

func (e *Engine) upload(ctx context.Context, conn *model.Connector, test bool) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("upload connector %d", conn.ID))
	if conn.Profile == nil {
		return report, errs.Missing("profile")
	}

	txs, err := e.txs.ListByKindStates(model.ActionLCR, conn.ProfileID, model.StateNew)
	if err != nil {
		report.Abort(err)
		return report, err
	}
	return e.sendAll(ctx, conn, txs, test, report)
}

// sendAll uploads txs over one session. Nothing is dialed for an empty list.
func (e *Engine) sendAll(ctx context.Context, conn *model.Connector, txs []model.Transaction, test bool, report *errs.BatchReport) (*errs.BatchReport, error) {
	if len(txs) == 0 {
		return report, nil
	}

	session, done, err := e.open(ctx, conn)
	if err != nil {
		report.Abort(err)
		return report, err
	}
	defer done()

	for i := range txs {
		tx := &txs[i]
		if err := e.send(session, conn.Profile.Paths(), tx, test); err != nil {
			report.Fail(tx.FileName, err)
			continue
		}
		report.Succeed(tx.FileName)
	}

	logger.Infof("[Outbound] %s", report)
	return report, nil
}

func (e *Engine) send(s transfer.Session, paths model.RemotePaths, tx *model.Transaction, test bool) error {
	dir, state := paths.Emission, model.StateTreated
	if test {
		dir, state = paths.Test, model.StateTest
	}

	if err := s.Upload(model.JoinRemote(dir, tx.FileName), tx.FileData); err != nil {
		logger.Errorf("[Outbound] Error while uploading file %s: %v", tx.FileName, err)
		e.record(idOf(tx), componentOutbound, operationUpload, "Error while uploading file", err.Error())
		return err
	}
	if err := e.transition(tx, state); err != nil {
		logger.Errorf("[Outbound] Uploaded %s but cannot mark it %s: %v", tx.FileName, state, err)
		return err
	}
	logger.Infof("[Outbound] Uploaded %s to %s", tx.FileName, dir)
	return nil
}

// RunTransaction sends one new lcr transaction right away through conn,
// honoring the connector's test mode.
func (e *Engine) RunTransaction(ctx context.Context, conn *model.Connector, txID uint) (*model.Transaction, error) {
	if conn.Profile == nil {
		return nil, errs.Missing("profile")
	}
	tx, err := e.txs.FindByID(txID)
	if err != nil {
		return nil, err
	}
	if tx.ActionKind != model.ActionLCR {
		return nil, fmt.Errorf("transaction %d is %s, not lcr", tx.ID, tx.ActionKind)
	}
	if tx.State != model.StateNew {
		return nil, fmt.Errorf("transaction %d is already %s", tx.ID, tx.State)
	}

	session, done, err := e.open(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := e.send(session, conn.Profile.Paths(), tx, conn.TestMode); err != nil {
		return tx, err
	}
	return tx, nil
}

// SubmitDocuments turns every ready document of the connector's company
// into an lcr transaction, hands the transaction back to the source, then
// sends those transactions only. Other new transactions wait for Run.
func (e *Engine) SubmitDocuments(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("submit connector %d", conn.ID))
	if e.documents == nil {
		return report, nil
	}
	if conn.Profile == nil {
		return report, errs.Missing("profile")
	}

	docs, err := e.documents.Ready(conn.CompanyID)
	if err != nil {
		report.Abort(err)
		return report, err
	}
	if len(docs) == 0 {
		return report, nil
	}

	var submitted []model.Transaction
	for _, doc := range docs {
		tx, _, err := e.CreateOutbound(Outbound{
			CompanyID:   conn.CompanyID,
			ProfileID:   conn.ProfileID,
			FileName:    doc.FileName,
			Data:        doc.FileData,
			DocumentRef: doc.Reference,
		})
		if err == nil {
			err = e.documents.MarkSubmitted(doc.ID, tx.ID)
		}
		if err != nil {
			logger.Errorf("[Outbound] Cannot submit document %d (%s): %v", doc.ID, doc.FileName, err)
			report.Fail(doc.FileName, err)
			continue
		}
		report.Succeed(doc.FileName)
		if tx.State == model.StateNew {
			submitted = append(submitted, *tx)
		}
	}

	sent, err := e.sendAll(ctx, conn, submitted, conn.TestMode,
		errs.NewBatchReport(fmt.Sprintf("upload connector %d", conn.ID)))
	if err != nil {
		return report, err
	}
	if err := sent.Err(); err != nil {
		report.Abort(err)
	}
	return report, nil
}
