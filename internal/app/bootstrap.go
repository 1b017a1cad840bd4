package app

import (
	"log"
	"os"

	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/database"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	pkgredis "github.com/irOkoo/exabanque-ftp-refactoring/pkg/redis"
)

// DefaultConfigPath is used when neither a flag nor EXA_CONFIG names one.
const DefaultConfigPath = "config/config.yaml"

// ResolveConfigPath applies the EXA_CONFIG fallback.
func ResolveConfigPath(cfgPath string) string {
	if cfgPath != "" {
		return cfgPath
	}
	if env := os.Getenv("EXA_CONFIG"); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Bootstrap loads the config and brings up logger, database and Redis.
func Bootstrap(cfgPath string) (*config.Config, error) {
	cfg, err := config.Load(ResolveConfigPath(cfgPath))
	if err != nil {
		return nil, err
	}

	if err := logger.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, err
	}

	// Redis is optional: without it the cycle lock is in-process and
	// remote triggers are disabled
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Warnf("Redis initialization failed: %v", err)
		logger.Info("   → Running as a single worker (in-process cycle lock)")
	} else if cfg.Redis.Enabled {
		logger.Infof("Redis initialized - distributed cycle lock enabled")
	}

	return cfg, nil
}
