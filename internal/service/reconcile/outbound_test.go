package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOutboundIsIdempotent(t *testing.T) {
	f := newFixture()
	o := Outbound{CompanyID: 1, ProfileID: 9, FileName: "PAIN_1.xml", Data: []byte("<x/>")}

	first, created, err := f.engine.CreateOutbound(o)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.engine.CreateOutbound(o)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.store.all(model.ActionLCR), 1)
}

func TestCreateOutboundNeedsFileName(t *testing.T) {
	_, _, err := newFixture().engine.CreateOutbound(Outbound{FileName: " "})
	assert.True(t, errs.IsConfiguration(err))
}

func TestRunUploadsToEmission(t *testing.T) {
	f := newFixture()
	_, _, err := f.engine.CreateOutbound(Outbound{ProfileID: 9, FileName: "a.xml", Data: []byte("A")})
	require.NoError(t, err)
	_, _, err = f.engine.CreateOutbound(Outbound{ProfileID: 9, FileName: "b.xml", Data: []byte("B")})
	require.NoError(t, err)
	// another profile's file is not ours to send
	_, _, err = f.engine.CreateOutbound(Outbound{ProfileID: 4, FileName: "c.xml", Data: []byte("C")})
	require.NoError(t, err)

	report, err := f.engine.Run(context.Background(), f.conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml", "b.xml"}, report.Succeeded())

	data, ok := f.mem.File("/exa/emission/a.xml")
	require.True(t, ok)
	assert.Equal(t, []byte("A"), data)

	for _, tx := range f.store.all(model.ActionLCR) {
		if tx.ProfileID == 9 {
			assert.Equal(t, model.StateTreated, tx.State)
			assert.NotNil(t, tx.TreatmentDate)
		} else {
			assert.Equal(t, model.StateNew, tx.State)
		}
	}
	assert.Equal(t, 1, f.opener.opened)
	assert.Equal(t, 1, f.opener.closed)
}

func TestRunUploadFailureKeepsNew(t *testing.T) {
	f := newFixture()
	tx, _, err := f.engine.CreateOutbound(Outbound{ProfileID: 9, FileName: "a.xml", Data: []byte("A")})
	require.NoError(t, err)
	_, _, err = f.engine.CreateOutbound(Outbound{ProfileID: 9, FileName: "b.xml", Data: []byte("B")})
	require.NoError(t, err)
	f.mem.FailOn("upload", "/exa/emission/a.xml", errors.New("quota exceeded"))

	report, err := f.engine.Run(context.Background(), f.conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml"}, report.Failed())
	assert.Equal(t, []string{"b.xml"}, report.Succeeded())

	stored, err := f.store.FindByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateNew, stored.State)
	require.Len(t, f.sink.forTx(tx.ID), 1)
	assert.Contains(t, f.sink.forTx(tx.ID)[0].Message, "quota exceeded")
}

func TestRunTestTargetsTestDirectory(t *testing.T) {
	f := newFixture()
	_, _, err := f.engine.CreateOutbound(Outbound{ProfileID: 9, FileName: "a.xml", Data: []byte("A")})
	require.NoError(t, err)

	f.conn.TestMode = true
	_, err = f.engine.RunOutbound(context.Background(), f.conn)
	require.NoError(t, err)

	_, ok := f.mem.File("/exa/test/a.xml")
	assert.True(t, ok)
	_, ok = f.mem.File("/exa/emission/a.xml")
	assert.False(t, ok)
	assert.Equal(t, model.StateTest, f.store.all(model.ActionLCR)[0].State)
}

func TestRunWithNothingNewNeverConnects(t *testing.T) {
	f := newFixture()
	f.opener.err = errors.New("must not dial")

	_, err := f.engine.Run(context.Background(), f.conn)
	assert.NoError(t, err)
}

func TestRunTransaction(t *testing.T) {
	f := newFixture()
	tx, _, err := f.engine.CreateOutbound(Outbound{ProfileID: 9, FileName: "a.xml", Data: []byte("A")})
	require.NoError(t, err)

	sent, err := f.engine.RunTransaction(context.Background(), f.conn, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateTreated, sent.State)

	_, err = f.engine.RunTransaction(context.Background(), f.conn, tx.ID)
	assert.Error(t, err, "a treated transaction is not sent twice")
}

func TestSubmitDocuments(t *testing.T) {
	f := newFixture()
	f.docs.docs = []model.OutboundDocument{
		{ID: 1, CompanyID: 1, FileName: "PAIN_1.xml", FileData: []byte("1"), Reference: "PO-1", Status: model.DocumentReady},
		{ID: 2, CompanyID: 1, FileName: "PAIN_2.xml", FileData: []byte("2"), Reference: "PO-2", Status: model.DocumentReady},
		{ID: 3, CompanyID: 2, FileName: "OTHER.xml", Status: model.DocumentReady},
	}

	report, err := f.engine.SubmitDocuments(context.Background(), f.conn)
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.Equal(t, []string{"PAIN_1.xml", "PAIN_2.xml"}, report.Succeeded())

	txs := f.store.all(model.ActionLCR)
	require.Len(t, txs, 2)
	assert.Equal(t, map[uint]uint{1: txs[0].ID, 2: txs[1].ID}, f.docs.submitted)
	assert.Equal(t, "PO-1", txs[0].DocumentRef)
	for _, tx := range txs {
		assert.Equal(t, model.StateTreated, tx.State)
	}
	_, ok := f.mem.File("/exa/emission/PAIN_2.xml")
	assert.True(t, ok)

	// nothing ready any more
	report, err = f.engine.SubmitDocuments(context.Background(), f.conn)
	require.NoError(t, err)
	assert.Empty(t, report.Succeeded())
}

func TestSubmitDocumentsLeavesHeldTransactions(t *testing.T) {
	f := newFixture()
	f.conn.UseCron = false
	held, _, err := f.engine.CreateOutbound(Outbound{CompanyID: 1, ProfileID: 9, FileName: "HELD.xml", Data: []byte("H")})
	require.NoError(t, err)
	f.docs.docs = []model.OutboundDocument{
		{ID: 1, CompanyID: 1, FileName: "DOC.xml", FileData: []byte("D"), Status: model.DocumentReady},
	}

	report, err := f.engine.SubmitDocuments(context.Background(), f.conn)
	require.NoError(t, err)
	assert.NoError(t, report.Err())

	_, sent := f.mem.File("/exa/emission/DOC.xml")
	assert.True(t, sent)
	_, leaked := f.mem.File("/exa/emission/HELD.xml")
	assert.False(t, leaked)

	stored, err := f.store.FindByID(held.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateNew, stored.State)
}
