package app

import (
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/scheduler"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/service/connector"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/service/poller"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/service/reconcile"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/crypto"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/distributed"
	pkgredis "github.com/irOkoo/exabanque-ftp-refactoring/pkg/redis"
)

// Services holds every service instance.
type Services struct {
	Crypto  *crypto.Crypto
	Factory *connector.Factory
	Tools   *connector.Tools
	Keys    *connector.KeyService
	Poller  *poller.Poller
	Engine  *reconcile.Engine
}

func InitializeServices(repos *Repositories, cfg *config.Config) *Services {
	c := crypto.NewCrypto(cfg.Security.CredentialKey)
	factory := connector.NewFactory(c, cfg.Transfer)

	return &Services{
		Crypto:  c,
		Factory: factory,
		Tools:   connector.NewTools(factory),
		Keys:    connector.NewKeyService(repos.Profile, c),
		Poller:  poller.NewPoller(factory, repos.Transaction, repos.ErrorRecord),
		Engine: reconcile.NewEngine(reconcile.Deps{
			Opener:       factory,
			Transactions: repos.Transaction,
			Errors:       repos.ErrorRecord,
			Reports:      repos.LogReport,
			Documents:    repos.Document,
			Importer:     repos.StatementImport,
			Journals:     repos.Journal,
		}),
	}
}

// BackgroundServices are the long running parts of the worker.
type BackgroundServices struct {
	Scheduler *scheduler.CycleScheduler
	Trigger   *distributed.TriggerBus
}

func InitializeBackgroundServices(repos *Repositories, services *Services, cfg *config.Config) *BackgroundServices {
	client := pkgredis.GetClient()
	locks := distributed.NewLockFactory(client, time.Duration(cfg.Scheduler.LockTTL)*time.Second)

	sched := scheduler.NewCycleScheduler(repos.Connector, services.Engine, services.Poller, locks, scheduler.Options{
		Interval:         time.Duration(cfg.Scheduler.Interval) * time.Second,
		ParallelProfiles: cfg.Scheduler.ParallelProfiles,
	})

	return &BackgroundServices{
		Scheduler: sched,
		Trigger:   distributed.NewTriggerBus(client, sched.OnTrigger),
	}
}
