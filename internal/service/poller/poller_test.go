package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name     string
		listings Listings
		want     model.TransactionState
	}{
		{"nowhere", Listings{Process: []string{"b.xml"}}, ""},
		{"process", Listings{Process: []string{"a.xml"}}, model.StateProcessing},
		{"error", Listings{Error: []string{"a.xml"}}, model.StateError},
		{"success", Listings{Success: []string{"a.xml"}}, model.StateSuccess},
		// current behavior: error is checked after process and overrides it
		{"process and error", Listings{Process: []string{"a.xml"}, Error: []string{"a.xml"}}, model.StateError},
		{"error and success", Listings{Error: []string{"a.xml"}, Success: []string{"a.xml"}}, model.StateSuccess},
		{"everywhere", Listings{Process: []string{"a.xml"}, Error: []string{"a.xml"}, Success: []string{"a.xml"}}, model.StateSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Locate("a.xml", tt.listings).State)
		})
	}
}

func TestLocateFlags(t *testing.T) {
	loc := Locate("a.xml", Listings{Process: []string{"a.xml"}, Error: []string{"a.xml"}})
	assert.True(t, loc.InProcess)
	assert.True(t, loc.InError)
	assert.False(t, loc.InSuccess)
}

type memTxs struct {
	txs   []model.Transaction
	saved map[string]model.TransactionState
	fail  map[string]error
}

func (m *memTxs) ListByKindStates(kind model.ActionKind, profileID uint, states ...model.TransactionState) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, tx := range m.txs {
		if tx.ActionKind != kind || tx.ProfileID != profileID {
			continue
		}
		for _, s := range states {
			if tx.State == s {
				out = append(out, tx)
				break
			}
		}
	}
	return out, nil
}

func (m *memTxs) Save(tx *model.Transaction) error {
	if err := m.fail[tx.FileName]; err != nil {
		return err
	}
	m.saved[tx.FileName] = tx.State
	return nil
}

type memSink struct {
	records []model.ErrorRecord
}

func (m *memSink) Append(rec *model.ErrorRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

type memOpener struct {
	session *transfer.MemorySession
	err     error
}

func (o *memOpener) Open(context.Context, *model.ConnectionProfile) (transfer.Session, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func lcr(id uint, name string, state model.TransactionState) model.Transaction {
	return model.Transaction{ID: id, ActionKind: model.ActionLCR, FileName: name, State: state, ProfileID: 1}
}

func testConnector() *model.Connector {
	return &model.Connector{
		ID:         7,
		ActionKind: model.ActionLCR,
		ProfileID:  1,
		Profile:    &model.ConnectionProfile{ID: 1, MainPath: "/exa"},
	}
}

func seededSession() *transfer.MemorySession {
	mem := transfer.NewMemorySession(model.ProtocolSFTP)
	mem.MkdirAll("/exa/process")
	mem.MkdirAll("/exa/error")
	mem.MkdirAll("/exa/success")
	return mem
}

func TestRun(t *testing.T) {
	mem := seededSession()
	mem.Put("/exa/process/p.xml", nil)
	mem.Put("/exa/error/e.xml", nil)
	mem.Put("/exa/success/s.xml", nil)
	mem.Put("/exa/process/both.xml", nil)
	mem.Put("/exa/error/both.xml", nil)

	store := &memTxs{
		txs: []model.Transaction{
			lcr(1, "p.xml", model.StateTreated),
			lcr(2, "e.xml", model.StateProcessing),
			lcr(3, "s.xml", model.StateProcessing),
			lcr(4, "both.xml", model.StateTreated),
			lcr(5, "unseen.xml", model.StateTreated),
			lcr(6, "done.xml", model.StateSuccess),
		},
		saved: map[string]model.TransactionState{},
	}
	sink := &memSink{}
	p := NewPoller(&memOpener{session: mem}, store, sink)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	report, err := p.Run(context.Background(), testConnector())
	require.NoError(t, err)
	assert.NoError(t, report.Err())

	assert.Equal(t, map[string]model.TransactionState{
		"p.xml":    model.StateProcessing,
		"e.xml":    model.StateError,
		"s.xml":    model.StateSuccess,
		"both.xml": model.StateError,
	}, store.saved)

	require.Len(t, sink.records, 2)
	for _, rec := range sink.records {
		assert.Equal(t, "Found file in error path", rec.Message)
		assert.Equal(t, "process file", rec.Operation)
		assert.Equal(t, fixed, rec.Timestamp)
	}
	assert.Equal(t, uint(2), *sink.records[0].TransactionID)
	assert.Equal(t, uint(4), *sink.records[1].TransactionID)

	assert.Equal(t, 1, mem.Closes())
}

func TestRunContinuesAfterFailure(t *testing.T) {
	mem := seededSession()
	mem.Put("/exa/success/a.xml", nil)
	mem.Put("/exa/success/b.xml", nil)

	store := &memTxs{
		txs:   []model.Transaction{lcr(1, "a.xml", model.StateTreated), lcr(2, "b.xml", model.StateTreated)},
		saved: map[string]model.TransactionState{},
		fail:  map[string]error{"a.xml": errors.New("db down")},
	}
	p := NewPoller(&memOpener{session: mem}, store, &memSink{})

	report, err := p.Run(context.Background(), testConnector())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.xml"}, report.Failed())
	assert.Equal(t, []string{"b.xml"}, report.Succeeded())
	assert.Equal(t, model.StateSuccess, store.saved["b.xml"])
}

func TestRunWithoutWorkNeverConnects(t *testing.T) {
	store := &memTxs{saved: map[string]model.TransactionState{}}
	p := NewPoller(&memOpener{err: errors.New("must not dial")}, store, &memSink{})

	_, err := p.Run(context.Background(), testConnector())
	assert.NoError(t, err)
}

func TestRunIncompleteSnapshotChangesNothing(t *testing.T) {
	mem := transfer.NewMemorySession(model.ProtocolSFTP)
	mem.Put("/exa/process/a.xml", nil) // no error/ directory

	store := &memTxs{
		txs:   []model.Transaction{lcr(1, "a.xml", model.StateTreated)},
		saved: map[string]model.TransactionState{},
	}
	p := NewPoller(&memOpener{session: mem}, store, &memSink{})

	report, err := p.Run(context.Background(), testConnector())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml"}, report.Failed())
	assert.Empty(t, store.saved)
	assert.Equal(t, 1, mem.Closes())
}

func TestRunConnectFailure(t *testing.T) {
	store := &memTxs{
		txs:   []model.Transaction{lcr(1, "a.xml", model.StateTreated)},
		saved: map[string]model.TransactionState{},
	}
	p := NewPoller(&memOpener{err: errors.New("refused")}, store, &memSink{})

	report, err := p.Run(context.Background(), testConnector())
	assert.Error(t, err)
	assert.Error(t, report.Err())
}
