package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
)

// memStore is an in-memory TransactionStore keyed like the database.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*model.Transaction
}

func newMemStore() *memStore {
	return &memStore{byID: map[uint]*model.Transaction{}}
}

func (m *memStore) FindOrCreate(tx *model.Transaction) (*model.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.ActionKind == tx.ActionKind && existing.FileName == tx.FileName {
			cp := *existing
			return &cp, false, nil
		}
	}
	m.nextID++
	stored := *tx
	stored.ID = m.nextID
	m.byID[stored.ID] = &stored
	cp := stored
	return &cp, true, nil
}

func (m *memStore) FindByKindAndFile(kind model.ActionKind, fileName string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.byID {
		if tx.ActionKind == kind && tx.FileName == fileName {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(id uint) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.byID[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *tx
	return &cp, nil
}

func (m *memStore) ListByKindStates(kind model.ActionKind, profileID uint, states ...model.TransactionState) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Transaction
	for _, tx := range m.byID {
		if tx.ActionKind != kind || tx.ProfileID != profileID {
			continue
		}
		for _, s := range states {
			if tx.State == s {
				out = append(out, *tx)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Save(tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[tx.ID]
	if !ok {
		return errors.New("record not found")
	}
	stored.State = tx.State
	stored.TreatmentDate = tx.TreatmentDate
	stored.JournalID = tx.JournalID
	stored.LinkedTransactionID = tx.LinkedTransactionID
	return nil
}

func (m *memStore) all(kind model.ActionKind) []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Transaction
	for _, tx := range m.byID {
		if tx.ActionKind == kind {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memSink struct {
	records []model.ErrorRecord
}

func (m *memSink) Append(rec *model.ErrorRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *memSink) forTx(id uint) []model.ErrorRecord {
	var out []model.ErrorRecord
	for _, r := range m.records {
		if r.TransactionID != nil && *r.TransactionID == id {
			out = append(out, r)
		}
	}
	return out
}

type memReports struct {
	rows     []model.LogReport
	failNext error
}

func (m *memReports) Create(r *model.LogReport) error {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	m.rows = append(m.rows, *r)
	return nil
}

type stubImporter struct {
	err   error
	calls []string
}

func (s *stubImporter) Import(_ context.Context, tx *model.Transaction) error {
	s.calls = append(s.calls, tx.FileName)
	return s.err
}

type stubJournals map[string]uint

func (s stubJournals) FindBySanitizedAccount(_ uint, sanitized string) (*model.BankJournal, error) {
	if id, ok := s[sanitized]; ok {
		return &model.BankJournal{ID: id}, nil
	}
	return nil, nil
}

type memDocs struct {
	docs      []model.OutboundDocument
	submitted map[uint]uint
}

func (m *memDocs) Ready(companyID uint) ([]model.OutboundDocument, error) {
	var out []model.OutboundDocument
	for _, d := range m.docs {
		if d.CompanyID == companyID && d.Status == model.DocumentReady {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocs) MarkSubmitted(docID, txID uint) error {
	m.submitted[docID] = txID
	for i := range m.docs {
		if m.docs[i].ID == docID {
			m.docs[i].Status = model.DocumentSubmitted
		}
	}
	return nil
}

// sharedOpener hands out views of one remote tree; closing a view leaves
// the tree usable by the next session.
type sharedOpener struct {
	mem    *transfer.MemorySession
	err    error
	opened int
	closed int
}

func (o *sharedOpener) Open(context.Context, *model.ConnectionProfile) (transfer.Session, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened++
	return &view{Session: o.mem, closed: &o.closed}, nil
}

type view struct {
	transfer.Session
	closed *int
}

func (v *view) Close() error {
	*v.closed++
	return nil
}

type fixture struct {
	engine   *Engine
	mem      *transfer.MemorySession
	opener   *sharedOpener
	store    *memStore
	sink     *memSink
	reports  *memReports
	importer *stubImporter
	docs     *memDocs
	conn     *model.Connector
}

func newFixture() *fixture {
	mem := transfer.NewMemorySession(model.ProtocolSFTP)
	for _, dir := range []string{"emission", "test", "process", "success", "error", "success_recept", "log"} {
		mem.MkdirAll("/exa/" + dir)
	}

	f := &fixture{
		mem:      mem,
		opener:   &sharedOpener{mem: mem},
		store:    newMemStore(),
		sink:     &memSink{},
		reports:  &memReports{},
		importer: &stubImporter{},
		docs:     &memDocs{submitted: map[uint]uint{}},
		conn: &model.Connector{
			ID:        3,
			Active:    true,
			CompanyID: 1,
			ProfileID: 9,
			Profile:   &model.ConnectionProfile{ID: 9, MainPath: "/exa"},
		},
	}
	f.engine = NewEngine(Deps{
		Opener:       f.opener,
		Transactions: f.store,
		Errors:       f.sink,
		Reports:      f.reports,
		Documents:    f.docs,
		Importer:     f.importer,
		Journals:     stubJournals{"00012345678": 77},
	})
	return f
}
