package reconcile

import (
	"context"
	"fmt"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/accountno"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
)

const (
	componentImport = "statement-import"
	operationImport = "import file"

	recordImported     = "Statement file imported successfully"
	recordImportFailed = "Error while importing statement file"
)

// collected is an inbound file durably stored as a transaction.
type collected struct {
	tx      *model.Transaction
	created bool
}

// collect downloads every file of dir, stores each as a transaction of kind
// and deletes the remote copy only once the transaction exists. A file that
// cannot be stored stays on the server for the next cycle.
func (e *Engine) collect(s transfer.Session, conn *model.Connector, dir string, kind model.ActionKind, report *errs.BatchReport) ([]collected, error) {
	names, err := transfer.ListFiles(s, dir)
	if err != nil {
		return nil, err
	}

	var (
		out       []collected
		toDelete  []string
		component = "[" + string(kind) + "]"
	)
	for _, name := range names {
		data, err := s.Download(model.JoinRemote(dir, name))
		if err != nil {
			logger.Errorf("%s Error processing file %s: %v", component, name, err)
			report.Fail(name, err)
			continue
		}

		draft := &model.Transaction{
			ActionKind: kind,
			FileName:   name,
			FileData:   data,
			State:      model.StateNew,
			CompanyID:  conn.CompanyID,
			ProfileID:  conn.ProfileID,
		}
		if kind == model.ActionStatement {
			draft.JournalID = e.journalFor(conn, name)
		}

		tx, created, err := e.txs.FindOrCreate(draft)
		if err != nil {
			logger.Errorf("%s Cannot store %s: %v", component, name, err)
			report.Fail(name, err)
			continue
		}
		if !created {
			logger.Infof("%s %s already collected as transaction %d", component, name, tx.ID)
		}
		out = append(out, collected{tx: tx, created: created})
		toDelete = append(toDelete, name)
	}

	for _, name := range toDelete {
		if err := s.Delete(model.JoinRemote(dir, name)); err != nil {
			// the file comes back next cycle and maps onto the same transaction
			logger.Warnf("%s Error deleting file %s: %v", component, name, err)
		}
	}
	return out, nil
}

// journalFor infers the bank journal from the account number in the file
// name, falling back to the connector's default journal.
func (e *Engine) journalFor(conn *model.Connector, fileName string) *uint {
	if e.journals != nil {
		if account, ok := accountno.FromFileName(fileName); ok {
			j, err := e.journals.FindBySanitizedAccount(conn.CompanyID, account)
			if err != nil {
				logger.Warnf("[Statement] Journal lookup for %s: %v", fileName, err)
			} else if j != nil {
				id := j.ID
				return &id
			}
		}
	}
	return conn.JournalID
}

// DiscoverStatements collects the statement files of success_recept/ and
// imports every statement still new, all in one pass. The import runs even
// when the connection fails; the connection error is still returned.
func (e *Engine) DiscoverStatements(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("statements connector %d", conn.ID))
	if conn.Profile == nil {
		return report, errs.Missing("profile")
	}

	session, done, openErr := e.open(ctx, conn)
	if openErr != nil {
		report.Abort(openErr)
	} else {
		items, err := e.collect(session, conn, conn.Profile.Paths().SuccessRecept, model.ActionStatement, report)
		done()
		if err != nil {
			report.Abort(err)
			logger.Errorf("[Statement] Cannot list %s: %v", conn.Profile.Paths().SuccessRecept, err)
		}
		for _, it := range items {
			if it.created {
				report.Succeed(it.tx.FileName)
			}
		}
	}

	// stored statements import without a session, even when the server is down

	imported, err := e.ImportPendingStatements(ctx, conn)
	if err != nil {
		report.Abort(err)
	} else if ierr := imported.Err(); ierr != nil {
		report.Abort(ierr)
	}

	logger.Infof("[Statement] %s", report)
	return report, openErr
}

// ImportPendingStatements imports every new statement transaction of the
// connector's profile. The outcome is recorded either way.
func (e *Engine) ImportPendingStatements(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error) {
	report := errs.NewBatchReport(fmt.Sprintf("import connector %d", conn.ID))
	if e.importer == nil {
		return report, nil
	}

	txs, err := e.txs.ListByKindStates(model.ActionStatement, conn.ProfileID, model.StateNew)
	if err != nil {
		report.Abort(err)
		return report, err
	}

	for i := range txs {
		tx := &txs[i]
		if err := e.importStatement(ctx, tx); err != nil {
			report.Fail(tx.FileName, err)
			continue
		}
		report.Succeed(tx.FileName)
	}
	return report, nil
}

func (e *Engine) importStatement(ctx context.Context, tx *model.Transaction) error {
	importErr := e.importer.Import(ctx, tx)
	if importErr == nil {
		if err := e.transition(tx, model.StateSuccess); err != nil {
			return err
		}
		e.record(idOf(tx), "", "", recordImported, "")
		logger.Infof("[Statement] Imported %s", tx.FileName)
		return nil
	}

	logger.Errorf("[Statement] Import of %s failed: %v", tx.FileName, importErr)
	if err := e.transition(tx, model.StateError); err != nil {
		return err
	}
	e.record(idOf(tx), componentImport, operationImport, recordImportFailed, importErr.Error())
	return importErr
}
