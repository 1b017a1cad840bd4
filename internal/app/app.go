// Package app wires configuration, storage and services into the worker
// and the command line tool.
package app

import (
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/database"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
)

// App is the application context.
type App struct {
	Config     *config.Config
	Repos      *Repositories
	Services   *Services
	Background *BackgroundServices
}

// Initialize bootstraps infrastructure and builds every component.
func Initialize(cfgPath string) (*App, error) {
	cfg, err := Bootstrap(cfgPath)
	if err != nil {
		return nil, err
	}

	repos := InitializeRepositories(database.DB)
	logger.Infof("Repositories initialized")

	services := InitializeServices(repos, cfg)
	logger.Infof("Services initialized")

	background := InitializeBackgroundServices(repos, services, cfg)
	logger.Infof("Background services initialized")

	return &App{
		Config:     cfg,
		Repos:      repos,
		Services:   services,
		Background: background,
	}, nil
}

// Close releases database and Redis connections.
func (a *App) Close() {
	closeStorage(a.Config)
	logger.Sync()
}
