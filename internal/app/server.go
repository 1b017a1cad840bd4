package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/api/middleware"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/database"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	pkgredis "github.com/irOkoo/exabanque-ftp-refactoring/pkg/redis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter serves /health and /metrics.
func NewRouter(mode string) *gin.Engine {
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.RequestLogger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"type":   "exabanque-worker",
		})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

// Run starts the cycle scheduler, the trigger listener and the health
// server, then blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	a.Background.Scheduler.Start()
	go a.Background.Trigger.Start()

	var httpServer *http.Server
	if a.Config.Server.HealthPort > 0 {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", a.Config.Server.HealthPort),
			Handler: NewRouter(a.Config.Server.Mode),
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("Failed to start health server: %v", err)
			}
		}()
	}

	printStartupBanner(a.Config)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		logger.Infof("  → Stopping health server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("  Health server shutdown error: %v", err)
		}
	}

	logger.Infof("  → Stopping trigger listener...")
	a.Background.Trigger.Stop()

	// waits for a running cycle to return
	logger.Infof("  → Stopping scheduler...")
	a.Background.Scheduler.Stop()

	a.Close()
	logger.Infof("Shutdown complete")
}

func closeStorage(cfg *config.Config) {
	if err := database.Close(); err != nil {
		logger.Warnf("  Database close error: %v", err)
	}
	if cfg.Redis.Enabled {
		if err := pkgredis.Close(); err != nil {
			logger.Warnf("  Redis close error: %v", err)
		}
	}
}

func printStartupBanner(cfg *config.Config) {
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("Exabanque connector worker")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("   • Cycle interval: %ds", cfg.Scheduler.Interval)
	logger.Infof("   • Parallel profiles: %v", cfg.Scheduler.ParallelProfiles)
	if pkgredis.IsEnabled() {
		logger.Infof("   • Cycle lock: redis (remote triggers on)")
	} else {
		logger.Infof("   • Cycle lock: in-process")
	}
	if cfg.Server.HealthPort > 0 {
		logger.Infof("   • Health: :%d/health, metrics: :%d/metrics", cfg.Server.HealthPort, cfg.Server.HealthPort)
	}
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
