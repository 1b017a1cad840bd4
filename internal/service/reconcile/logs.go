package reconcile

import (
	"context"
	"fmt"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/logreport"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
)

const (
	componentLog   = "log-report"
	operationParse = "parse report"
	operationBank  = "bank report"
)

// DiscoverLogs collects the report files of log/ and then parses every log
// transaction still new, so a report stored by an earlier pass but never
// linked is picked up again. Run it after the outbound step of the same
// cycle so reports about freshly sent files find their target.
func (e *Engine) DiscoverLogs(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("logs connector %d", conn.ID))
	if conn.Profile == nil {
		return report, errs.Missing("profile")
	}

	session, done, openErr := e.open(ctx, conn)
	if openErr != nil {
		report.Abort(openErr)
	} else {
		_, err := e.collect(session, conn, conn.Profile.Paths().Log, model.ActionLog, report)
		done()
		if err != nil {
			report.Abort(err)
			logger.Errorf("[Log] Cannot list %s: %v", conn.Profile.Paths().Log, err)
		}
	}

	pending, err := e.ProcessPendingLogs(ctx, conn)
	report.Merge(pending)
	if err != nil {
		report.Abort(err)
	}

	logger.Infof("[Log] %s", report)
	return report, openErr
}

// ProcessPendingLogs parses and links every new log transaction of the
// connector's profile from its stored content. No session is needed.
func (e *Engine) ProcessPendingLogs(_ context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("pending logs connector %d", conn.ID))

	txs, err := e.txs.ListByKindStates(model.ActionLog, conn.ProfileID, model.StateNew)
	if err != nil {
		return report, err
	}

	for i := range txs {
		tx := &txs[i]
		if err := e.processLog(conn, tx); err != nil {
			logger.Errorf("[Log] Cannot process %s: %v", tx.FileName, err)
			report.Fail(tx.FileName, err)
			continue
		}
		report.Succeed(tx.FileName)
	}
	return report, nil
}

func (e *Engine) processLog(conn *model.Connector, tx *model.Transaction) error {
	parsed, err := logreport.Parse(tx.FileName, tx.FileData)
	if err != nil {
		logger.Errorf("[Log] %v", err)
		if terr := e.transition(tx, model.StateError); terr != nil {
			return terr
		}
		e.record(idOf(tx), componentLog, operationParse, "Malformed report file", err.Error())
		return err
	}

	outbound, err := e.findOutbound(parsed)
	if err != nil {
		return err
	}

	row := &model.LogReport{
		Date:            e.now(),
		LogFileName:     tx.FileName,
		LogFileData:     tx.FileData,
		Direction:       parsed.Direction,
		Directory:       parsed.Directory,
		FileName:        parsed.FileName,
		ComRef:          parsed.ComRef,
		Result:          string(parsed.Result),
		ResultErrorCode: parsed.ErrorCode,
		Report:          parsed.Text,
		CompanyID:       conn.CompanyID,
		TransactionID:   idOf(tx),
	}
	if outbound != nil {
		row.OutboundTransactionID = idOf(outbound)
		tx.LinkedTransactionID = idOf(outbound)
	}
	if err := e.reports.Create(row); err != nil {
		return err
	}
	if err := e.transition(tx, model.StateSuccess); err != nil {
		return err
	}

	if outbound == nil {
		logger.Infof("[Log] %s: no lcr transaction for %q", tx.FileName, parsed.FileName)
		return nil
	}
	logger.Infof("[Log] %s reports %s for %s", tx.FileName, parsed.Result, outbound.FileName)

	// the outbound state belongs to the poller, only the verdict is recorded
	if parsed.Result == logreport.ResultError {
		e.record(idOf(outbound), componentLog, operationBank,
			fmt.Sprintf("Bank rejected file (NOK%03d)", *parsed.ErrorCode), parsed.Text)
	}
	return nil
}

// findOutbound returns the lcr transaction named by the report's file name,
// or by its reference when the file name matches nothing.
func (e *Engine) findOutbound(r *logreport.Report) (*model.Transaction, error) {
	for _, name := range []string{r.FileName, r.ComRef} {
		if name == "" {
			continue
		}
		tx, err := e.txs.FindByKindAndFile(model.ActionLCR, name)
		if err != nil {
			return nil, err
		}
		if tx != nil {
			return tx, nil
		}
	}
	return nil, nil
}
