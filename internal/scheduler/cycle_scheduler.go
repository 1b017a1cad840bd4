// Package scheduler runs the recurring connector cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/distributed"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/metrics"
)

// CycleLockKey guards a cycle across every worker sharing the database.
const CycleLockKey = "exabanque:cycle"

// ErrCycleRunning is returned when another run holds the cycle lock.
var ErrCycleRunning = errors.New("a cycle is already running")

// ConnectorSource lists the connectors a cycle visits. Profiles must be
// loaded.
type ConnectorSource interface {
	ListActive() ([]model.Connector, error)
}

// Reconciler is the part of the reconciliation engine a cycle drives.
type Reconciler interface {
	SubmitDocuments(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error)
	RunOutbound(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error)
	DiscoverStatements(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error)
	DiscoverLogs(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error)
}

// StatusPoller checks sent files against the status directories.
type StatusPoller interface {
	Run(ctx context.Context, conn *model.Connector) (*errs.BatchReport, error)
}

type Options struct {
	Interval         time.Duration
	ParallelProfiles bool
}

// CycleScheduler runs a cycle every interval and on demand.
type CycleScheduler struct {
	connectors ConnectorSource
	engine     Reconciler
	poller     StatusPoller
	locks      *distributed.LockFactory
	opts       Options

	trigger  chan uint
	stopChan chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewCycleScheduler(connectors ConnectorSource, engine Reconciler, poller StatusPoller, locks *distributed.LockFactory, opts Options) *CycleScheduler {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &CycleScheduler{
		connectors: connectors,
		engine:     engine,
		poller:     poller,
		locks:      locks,
		opts:       opts,
		trigger:    make(chan uint, 1),
		stopChan:   make(chan struct{}),
	}
}

// Start runs the loop in the background until Stop.
func (s *CycleScheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	logger.Infof("[Scheduler] Starting connector cycle every %v (parallel profiles: %v)", s.opts.Interval, s.opts.ParallelProfiles)
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *CycleScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runLogged(ctx, 0)
		case connectorID := <-s.trigger:
			s.runLogged(ctx, connectorID)
		case <-s.stopChan:
			logger.Infof("[Scheduler] Cycle loop stopped")
			return
		}
	}
}

func (s *CycleScheduler) runLogged(ctx context.Context, connectorID uint) {
	if err := s.RunCycle(ctx, connectorID); err != nil {
		if errors.Is(err, ErrCycleRunning) {
			logger.Infof("[Scheduler] Skipping cycle: %v", err)
			return
		}
		logger.Errorf("[Scheduler] Cycle finished with errors: %v", err)
	}
}

// Trigger asks for a cycle as soon as possible. Requests arriving while one
// is pending are merged into a full cycle.
func (s *CycleScheduler) Trigger(connectorID uint) {
	select {
	case s.trigger <- connectorID:
	default:
		// one request is pending already; widen it to every connector
		select {
		case <-s.trigger:
		default:
		}
		select {
		case s.trigger <- 0:
		default:
		}
	}
}

// OnTrigger adapts Trigger to the trigger bus.
func (s *CycleScheduler) OnTrigger(req distributed.TriggerRequest) {
	s.Trigger(req.ConnectorID)
}

// Stop ends the loop and waits for a running cycle to return.
func (s *CycleScheduler) Stop() {
	logger.Infof("[Scheduler] Stopping connector cycle...")
	close(s.stopChan)
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunCycle visits every active connector once, or only connectorID when it
// is not zero. Log connectors run after all the others so reports can be
// matched against files sent in the same cycle. Only configuration and
// credential errors are returned; everything else is logged and retried
// next cycle.
func (s *CycleScheduler) RunCycle(ctx context.Context, connectorID uint) error {
	lock := s.locks.New(CycleLockKey)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !ok {
		metrics.CycleSkipped.Inc()
		return ErrCycleRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warnf("[Scheduler] Release cycle lock: %v", err)
		}
	}()

	cycleID := uuid.NewString()[:8]
	start := time.Now()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
		metrics.LastCycleTimestamp.SetToCurrentTime()
	}()

	all, err := s.connectors.ListActive()
	if err != nil {
		return fmt.Errorf("list connectors: %w", err)
	}
	conns := selectConnectors(all, connectorID)
	logger.Infof("[Scheduler] Cycle %s: %d connector(s)", cycleID, len(conns))

	var first, last []model.Connector
	for _, c := range conns {
		if c.ActionKind == model.ActionLog {
			last = append(last, c)
		} else {
			first = append(first, c)
		}
	}

	result := &fatalErrors{}
	s.runPhase(ctx, cycleID, first, result)
	s.runPhase(ctx, cycleID, last, result)

	logger.Infof("[Scheduler] Cycle %s done in %v", cycleID, time.Since(start).Round(time.Millisecond))
	return result.err()
}

func selectConnectors(all []model.Connector, connectorID uint) []model.Connector {
	var out []model.Connector
	for _, c := range all {
		if connectorID == 0 || c.ID == connectorID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActionKind.CycleRank() < out[j].ActionKind.CycleRank()
	})
	return out
}

// runPhase runs conns in order. With parallel profiles, connectors of
// different profiles run concurrently while one profile stays serialized.
func (s *CycleScheduler) runPhase(ctx context.Context, cycleID string, conns []model.Connector, result *fatalErrors) {
	if !s.opts.ParallelProfiles {
		for i := range conns {
			s.runConnector(ctx, cycleID, &conns[i], result)
		}
		return
	}

	var order []uint
	groups := make(map[uint][]*model.Connector)
	for i := range conns {
		pid := conns[i].ProfileID
		if _, seen := groups[pid]; !seen {
			order = append(order, pid)
		}
		groups[pid] = append(groups[pid], &conns[i])
	}

	var wg sync.WaitGroup
	for _, pid := range order {
		wg.Add(1)
		go func(group []*model.Connector) {
			defer wg.Done()
			for _, c := range group {
				s.runConnector(ctx, cycleID, c, result)
			}
		}(groups[pid])
	}
	wg.Wait()
}

func (s *CycleScheduler) runConnector(ctx context.Context, cycleID string, conn *model.Connector, result *fatalErrors) {
	if ctx.Err() != nil {
		return
	}

	step := func(name string, fn func(context.Context, *model.Connector) (*errs.BatchReport, error)) {
		report, err := fn(ctx, conn)
		if err != nil {
			if errs.IsFatal(err) {
				result.add(fmt.Errorf("connector %d (%s) %s: %w", conn.ID, conn.Name, name, err))
			}
			logger.Errorf("[Scheduler] Cycle %s: connector %d %s: %v", cycleID, conn.ID, name, err)
			return
		}
		if report != nil && report.Err() != nil {
			logger.Warnf("[Scheduler] Cycle %s: connector %d %s: %v", cycleID, conn.ID, name, report.Err())
		}
	}

	switch conn.ActionKind {
	case model.ActionLCR:
		step("submit", s.engine.SubmitDocuments)
		if conn.UseCron {
			step("send", s.engine.RunOutbound)
		}
		step("poll", s.poller.Run)
	case model.ActionStatement:
		step("statements", s.engine.DiscoverStatements)
	case model.ActionLog:
		step("logs", s.engine.DiscoverLogs)
	default:
		logger.Warnf("[Scheduler] Connector %d has unknown action kind %q", conn.ID, conn.ActionKind)
	}
}

type fatalErrors struct {
	mu   sync.Mutex
	errs *multierror.Error
}

func (f *fatalErrors) add(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = multierror.Append(f.errs, err)
}

func (f *fatalErrors) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs.ErrorOrNil()
}
