package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverStatementsEndToEnd(t *testing.T) {
	f := newFixture()
	f.mem.Put("/exa/success_recept/report.txt", []byte("statement"))

	report, err := f.engine.DiscoverStatements(context.Background(), f.conn)
	require.NoError(t, err)
	assert.NoError(t, report.Err())

	txs := f.store.all(model.ActionStatement)
	require.Len(t, txs, 1)
	assert.Equal(t, "report.txt", txs[0].FileName)
	assert.Equal(t, []byte("statement"), txs[0].FileData)
	assert.Equal(t, model.StateSuccess, txs[0].State)
	assert.Equal(t, []string{"report.txt"}, f.importer.calls)

	recs := f.sink.forTx(txs[0].ID)
	require.Len(t, recs, 1)
	assert.Equal(t, "Statement file imported successfully", recs[0].Name)

	names, err := transfer.ListFiles(f.mem, "/exa/success_recept")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDiscoverStatementsSkippedDeleteMakesNoDuplicate(t *testing.T) {
	f := newFixture()
	f.mem.Put("/exa/success_recept/report.txt", []byte("statement"))
	f.mem.FailOn("delete", "/exa/success_recept/report.txt", errors.New("crash"))

	for pass := 0; pass < 2; pass++ {
		_, err := f.engine.DiscoverStatements(context.Background(), f.conn)
		require.NoError(t, err)
	}

	assert.Len(t, f.store.all(model.ActionStatement), 1)
	assert.Equal(t, []string{"report.txt"}, f.importer.calls, "imported once")
	_, stillThere := f.mem.File("/exa/success_recept/report.txt")
	assert.True(t, stillThere)
}

func TestDiscoverStatementsImportFailure(t *testing.T) {
	f := newFixture()
	f.importer.err = errors.New("unknown format")
	f.mem.Put("/exa/success_recept/bad.txt", []byte("?"))

	report, err := f.engine.DiscoverStatements(context.Background(), f.conn)
	require.NoError(t, err)
	assert.Error(t, report.Err())

	tx := f.store.all(model.ActionStatement)[0]
	assert.Equal(t, model.StateError, tx.State)

	recs := f.sink.forTx(tx.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, "Error while importing statement file", recs[0].Name)
	assert.Equal(t, "unknown format", recs[0].Message)
}

func TestDiscoverStatementsJournalInference(t *testing.T) {
	f := newFixture()
	defaultJournal := uint(5)
	f.conn.JournalID = &defaultJournal
	f.mem.Put("/exa/success_recept/RLV_000123456789EUR_20240101.txt", []byte("x"))
	f.mem.Put("/exa/success_recept/RLV_UNKNOWN.txt", []byte("y"))

	_, err := f.engine.DiscoverStatements(context.Background(), f.conn)
	require.NoError(t, err)

	journals := map[string]uint{}
	for _, tx := range f.store.all(model.ActionStatement) {
		require.NotNil(t, tx.JournalID)
		journals[tx.FileName] = *tx.JournalID
	}
	assert.Equal(t, map[string]uint{
		"RLV_000123456789EUR_20240101.txt": 77,
		"RLV_UNKNOWN.txt":                  5,
	}, journals)
}

func TestDiscoverStatementsSiblingsSurviveDownloadFailure(t *testing.T) {
	f := newFixture()
	f.mem.Put("/exa/success_recept/a.txt", []byte("a"))
	f.mem.Put("/exa/success_recept/b.txt", []byte("b"))
	f.mem.MkdirAll("/exa/success_recept/archive")
	f.mem.FailOn("download", "/exa/success_recept/a.txt", errors.New("reset"))

	report, err := f.engine.DiscoverStatements(context.Background(), f.conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, report.Failed())

	txs := f.store.all(model.ActionStatement)
	require.Len(t, txs, 1)
	assert.Equal(t, "b.txt", txs[0].FileName)

	_, kept := f.mem.File("/exa/success_recept/a.txt")
	assert.True(t, kept, "a file not stored is never deleted")
}

func TestImportPendingStatementsRetriesNew(t *testing.T) {
	f := newFixture()
	_, _, err := f.store.FindOrCreate(&model.Transaction{
		ActionKind: model.ActionStatement, FileName: "left.txt", FileData: []byte("x"),
		State: model.StateNew, ProfileID: 9,
	})
	require.NoError(t, err)

	report, err := f.engine.ImportPendingStatements(context.Background(), f.conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"left.txt"}, report.Succeeded())
	assert.Equal(t, model.StateSuccess, f.store.all(model.ActionStatement)[0].State)
}

func TestDiscoverStatementsImportsWhenServerUnreachable(t *testing.T) {
	f := newFixture()
	_, _, err := f.store.FindOrCreate(&model.Transaction{
		ActionKind: model.ActionStatement, FileName: "left.txt", FileData: []byte("x"),
		State: model.StateNew, ProfileID: 9,
	})
	require.NoError(t, err)
	f.opener.err = errors.New("connection refused")

	report, err := f.engine.DiscoverStatements(context.Background(), f.conn)
	assert.Error(t, err)
	assert.Error(t, report.Err())

	assert.Equal(t, []string{"left.txt"}, f.importer.calls)
	assert.Equal(t, model.StateSuccess, f.store.all(model.ActionStatement)[0].State)
}
