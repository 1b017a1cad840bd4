package database

import (
	"fmt"

	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init 连接数据库并自动迁移连接器相关的表
func Init(cfg *config.DatabaseConfig) error {
	// 设置默认值
	cfg.SetDefaults()

	if err := InitDatabase(cfg); err != nil {
		return err
	}

	if err := AutoMigrateAll(); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Infof("Database initialized successfully")
	return nil
}

// Close 关闭数据库连接（未初始化时直接返回）
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
